package main

import (
	"slices"
	"time"
)

// room is one live simulation instance. Everything here is owned by its
// host's event loop; watchers receive the same serialized snapshots the
// players do, over channels drained by SSE handlers.
type room struct {
	code      string
	sim       simulation
	clients   map[*Client]int
	watchers  []chan []byte
	updatedAt time.Time
}

func newGameRoom(roomCode string, sim simulation, now time.Time) *room {
	return &room{
		code:      roomCode,
		sim:       sim,
		clients:   make(map[*Client]int),
		updatedAt: now,
	}
}

func (r *room) addWatcher(ch chan []byte) {
	r.watchers = append(r.watchers, ch)
}

func (r *room) removeWatcher(ch chan []byte) {
	for i, watcher := range r.watchers {
		if watcher == ch {
			r.watchers = slices.Delete(r.watchers, i, i+1)
			break
		}
	}
}

// broadcast fans a serialized state frame out to every player connection
// and every spectator channel. Slow watchers drop frames instead of
// stalling the tick loop.
func (r *room) broadcast(payload []byte) {
	for client := range r.clients {
		client.send(payload)
	}
	for _, watcher := range r.watchers {
		select {
		case watcher <- payload:
		default:
		}
	}
}

func (r *room) closeWatchers() {
	for _, watcher := range r.watchers {
		close(watcher)
	}
	r.watchers = nil
}
