package main

import (
	"encoding/json"
	"time"

	"kidgames-ws/code"
	"kidgames-ws/wire"
)

// roomExpiry is how long a clientless room survives before the sweep
// reclaims it. Resume tokens expire on the same window.
const roomExpiry = 10 * time.Minute

// simulation is what a host needs from a game: step it, bind slots, and
// feed it validated player messages. Handle may return a direct reply
// for the sender; state itself only goes out on ticks.
type simulation interface {
	Step(now time.Time) bool
	SetPlayerConnected(playerID int, connected bool)
	ConnectedCount() int
	OpenSlot() (int, bool)
	Snapshot() any
	Handle(playerID int, msgType string, raw []byte, now time.Time) any
}

type hostEventKind int

const (
	closeEvent hostEventKind = iota
	messageEvent
	watchEvent
	unwatchEvent
)

type watchReply struct {
	ch   chan []byte
	init []byte
	ok   bool
}

type hostEvent struct {
	kind     hostEventKind
	client   *Client
	msgType  string
	raw      []byte
	roomCode string
	watcher  chan []byte
	reply    chan watchReply
}

// Host owns every room of one game type. All room state is touched only
// from the Run loop, so ticks and messages interleave as whole units and
// nothing here needs a lock.
type Host struct {
	gameID   string
	interval time.Duration
	newSim   func(now time.Time) simulation
	rejoin   *Rejoin
	events   *EventLog
	rooms    map[string]*room
	inbox    chan hostEvent
}

func NewHost(gameID string, interval time.Duration, newSim func(now time.Time) simulation, rejoin *Rejoin, events *EventLog) *Host {
	return &Host{
		gameID:   gameID,
		interval: interval,
		newSim:   newSim,
		rejoin:   rejoin,
		events:   events,
		rooms:    make(map[string]*room),
		inbox:    make(chan hostEvent, 256),
	}
}

func (h *Host) Run() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			h.tick(now)
		case ev := <-h.inbox:
			h.dispatch(ev)
		}
	}
}

// Disconnect and Message are the transport-facing entry points; they
// defer all mutation to the Run loop.
func (h *Host) Disconnect(c *Client) {
	h.inbox <- hostEvent{kind: closeEvent, client: c}
}

func (h *Host) Message(c *Client, msgType string, raw []byte) {
	h.inbox <- hostEvent{kind: messageEvent, client: c, msgType: msgType, raw: raw}
}

// Watch attaches a spectator channel to a room and returns the current
// serialized state for the initial frame. The channel is closed when the
// room expires.
func (h *Host) Watch(roomCode string) (chan []byte, []byte, bool) {
	reply := make(chan watchReply, 1)
	h.inbox <- hostEvent{kind: watchEvent, roomCode: roomCode, reply: reply}
	res := <-reply
	return res.ch, res.init, res.ok
}

func (h *Host) Unwatch(roomCode string, watcher chan []byte) {
	h.inbox <- hostEvent{kind: unwatchEvent, roomCode: roomCode, watcher: watcher}
}

func (h *Host) dispatch(ev hostEvent) {
	now := time.Now()
	switch ev.kind {
	case closeEvent:
		h.onClose(ev.client, now)
	case messageEvent:
		h.onMessage(ev.client, ev.msgType, ev.raw, now)
	case watchEvent:
		if r, exists := h.rooms[ev.roomCode]; exists {
			watcher := make(chan []byte, 8)
			r.addWatcher(watcher)
			init, _ := json.Marshal(stateMessage{Type: "state", State: r.sim.Snapshot()})
			ev.reply <- watchReply{ch: watcher, init: init, ok: true}
		} else {
			ev.reply <- watchReply{}
		}
	case unwatchEvent:
		if r, exists := h.rooms[ev.roomCode]; exists {
			r.removeWatcher(ev.watcher)
		}
	}
}

// tick steps every room once and broadcasts the simulations that report
// a change. Clientless rooms only age toward expiry.
func (h *Host) tick(now time.Time) {
	for roomCode, r := range h.rooms {
		if len(r.clients) == 0 {
			if now.Sub(r.updatedAt) > roomExpiry {
				delete(h.rooms, roomCode)
				r.closeWatchers()
				h.events.Log(now, "room_expired", h.gameID, roomCode, 0)
				GetRoomLogger(h.gameID, roomCode).RemovingRoom()
			}
			continue
		}
		r.updatedAt = now
		if !r.sim.Step(now) {
			continue
		}
		payload, err := json.Marshal(stateMessage{Type: "state", State: r.sim.Snapshot()})
		if err != nil {
			continue
		}
		r.broadcast(payload)
	}
}

func (h *Host) onClose(c *Client, now time.Time) {
	if c.room == nil {
		return
	}
	h.detach(c, now)
}

// detach releases the client's slot but keeps the slot identity in the
// simulation so the same room code can be rejoined into it.
func (h *Host) detach(c *Client, now time.Time) {
	r := c.room
	pid := r.clients[c]
	delete(r.clients, c)
	if pid != 0 {
		r.sim.SetPlayerConnected(pid, false)
	}
	r.updatedAt = now
	h.events.Log(now, "player_left", h.gameID, r.code, pid)
	c.room = nil
	c.playerID = 0
}

func (h *Host) onMessage(c *Client, msgType string, raw []byte, now time.Time) {
	switch msgType {
	case "get_rooms":
		list := make([]roomSummary, 0, len(h.rooms))
		for roomCode, r := range h.rooms {
			list = append(list, roomSummary{ID: roomCode, Players: r.sim.ConnectedCount()})
		}
		c.sendJSON(roomListMessage{Type: "room_list", Rooms: list})

	case "create_room":
		h.createRoom(c, now)

	case "join_room":
		h.joinRoom(c, wire.Decode[joinRoomMessage](raw), now)

	default:
		// Player-addressed actions from an unbound connection are benign
		// races, dropped without a reply.
		if c.room == nil {
			return
		}
		if reply := c.room.sim.Handle(c.playerID, msgType, raw, now); reply != nil {
			c.sendJSON(reply)
		}
	}
}

func (h *Host) createRoom(c *Client, now time.Time) {
	if c.room != nil {
		h.detach(c, now)
	}

	roomCode := code.UniqueRoom(func(candidate string) bool {
		_, taken := h.rooms[candidate]
		return taken
	})
	r := newGameRoom(roomCode, h.newSim(now), now)
	h.rooms[roomCode] = r

	pid, _ := r.sim.OpenSlot()
	h.bind(c, r, pid, now)

	LogRoomCreated(h.gameID, roomCode)
	h.events.Log(now, "room_created", h.gameID, roomCode, pid)
	c.sendJSON(h.roomJoined(r, pid))
}

func (h *Host) joinRoom(c *Client, m joinRoomMessage, now time.Time) {
	normalized, formatOK := code.NormalizeRoom(m.RoomID)
	if !formatOK {
		c.sendJSON(wire.Errorf("Invalid room code (must be %d digits)", code.RoomLength))
		return
	}
	r, exists := h.rooms[normalized]
	if !exists {
		c.sendJSON(wire.Errorf("Room not found"))
		return
	}

	// Idempotent join: already bound to this room keeps its slot.
	if pid, joined := r.clients[c]; joined && pid != 0 {
		c.sendJSON(h.roomJoined(r, pid))
		return
	}

	if c.room != nil && c.room != r {
		h.detach(c, now)
	}

	pid := h.resumeSlot(r, normalized, m.ResumeToken)
	if pid == 0 {
		open, hasOpen := r.sim.OpenSlot()
		if !hasOpen {
			c.sendJSON(wire.Errorf("Room full"))
			return
		}
		pid = open
	}

	h.bind(c, r, pid, now)
	h.events.Log(now, "player_joined", h.gameID, normalized, pid)
	GetRoomLogger(h.gameID, normalized).JoinedRoom()
	c.sendJSON(h.roomJoined(r, pid))
}

// resumeSlot honors a resume token when it names this room and its slot
// has not been handed to anyone else in the meantime.
func (h *Host) resumeSlot(r *room, roomCode, token string) int {
	if token == "" || h.rejoin == nil {
		return 0
	}
	gameID, tokenRoom, pid, valid := h.rejoin.ParseResumeToken(token)
	if !valid || gameID != h.gameID || tokenRoom != roomCode {
		return 0
	}
	for _, bound := range r.clients {
		if bound == pid {
			return 0
		}
	}
	return pid
}

func (h *Host) bind(c *Client, r *room, pid int, now time.Time) {
	r.clients[c] = pid
	c.room = r
	c.playerID = pid
	r.sim.SetPlayerConnected(pid, true)
	r.updatedAt = now
}

func (h *Host) roomJoined(r *room, pid int) roomJoinedMessage {
	msg := roomJoinedMessage{
		Type:     "room_joined",
		RoomID:   r.code,
		PlayerID: pid,
		State:    r.sim.Snapshot(),
	}
	if h.rejoin != nil {
		msg.ResumeToken = h.rejoin.GenerateResumeToken(h.gameID, r.code, pid)
	}
	return msg
}
