package wallmover

import (
	"time"

	"kidgames-ws/code"
	"kidgames-ws/wire"
)

type wallEditMessage struct {
	X   int    `json:"x"`
	Y   int    `json:"y"`
	Dir string `json:"dir"`
	On  bool   `json:"on"`
}

type placeMessage struct {
	Kind string `json:"kind"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

type modeMessage struct {
	Mode string `json:"mode"`
}

type levelMessage struct {
	Level int `json:"level"`
}

type avatarMessage struct {
	Avatar string `json:"avatar"`
}

type colorMessage struct {
	Color string `json:"color"`
}

type inputMessage struct {
	Dir string `json:"dir"`
}

type loadLayoutMessage struct {
	Code string `json:"code"`
}

type saveLayoutOK struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	SavedAt int64  `json:"savedAt"`
}

type loadLayoutOK struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

type saveList struct {
	Type  string       `json:"type"`
	Saves []LayoutMeta `json:"saves"`
}

// Sim adapts the wallmover state machine to the host's room interface and
// owns the room's saved-layout shelf.
type Sim struct {
	state *State
	shelf *Shelf
}

func NewSim() *Sim {
	return &Sim{state: New(), shelf: NewShelf()}
}

func (s *Sim) Step(now time.Time) bool { return s.state.Step(now) }

func (s *Sim) SetPlayerConnected(playerID int, connected bool) {
	s.state.SetPlayerConnected(playerID, connected)
}

func (s *Sim) ConnectedCount() int { return s.state.ConnectedCount() }

func (s *Sim) OpenSlot() (int, bool) { return s.state.OpenSlot() }

func (s *Sim) Snapshot() any { return s.state }

// Handle applies one room-addressed message for a bound slot. Most
// mutations reply with nothing and surface through the next tick's state
// broadcast; the layout operations reply directly.
func (s *Sim) Handle(playerID int, msgType string, raw []byte, now time.Time) any {
	st := s.state
	switch msgType {
	case "select_vision_mode":
		st.SetVisionMode(wire.Decode[modeMessage](raw).Mode)
	case "select_avatar":
		st.SelectAvatar(playerID, wire.Decode[avatarMessage](raw).Avatar)
	case "select_color":
		st.SelectColor(playerID, wire.Decode[colorMessage](raw).Color)
	case "select_level":
		st.SetLevel(wire.Decode[levelMessage](raw).Level)
	case "set_mode":
		st.SetMode(wire.Decode[modeMessage](raw).Mode)
	case "restart":
		st.Restart()
	case "next_level":
		st.NextLevel()
	case "pause":
		st.TogglePause(playerID)
	case "resume":
		st.Resume(playerID)
	case "start_play":
		st.StartPlay(playerID)
	case "stop_test":
		st.StopTest()
	case "edit_set_wall":
		m := wire.Decode[wallEditMessage](raw)
		st.SetWallEdge(m.X, m.Y, m.Dir, m.On)
	case "edit_place":
		m := wire.Decode[placeMessage](raw)
		st.PlaceCollectible(m.Kind, m.X, m.Y)
	case "autoplay_start":
		st.AutoplayStart(playerID)
	case "autoplay_stop":
		st.AutoplayStop()
	case "solver_start":
		st.SolverStart()
	case "solver_stop":
		st.SolverStop()
	case "solver_reset":
		st.SolverReset()
	case "input":
		st.Move(playerID, wire.Decode[inputMessage](raw).Dir, now)
	case "save_layout":
		return s.saveLayout(now)
	case "load_layout":
		return s.loadLayout(wire.Decode[loadLayoutMessage](raw).Code)
	case "list_saves":
		return saveList{Type: "save_list", Saves: s.shelf.List()}
	}
	return nil
}

func (s *Sim) saveLayout(now time.Time) any {
	if s.state.Testing || s.state.Playing {
		return wire.Errorf("Cannot save during a test run")
	}
	meta := s.shelf.Save(s.state.snapshotLayout(), now)
	return saveLayoutOK{Type: "save_layout_ok", Code: meta.Code, SavedAt: meta.SavedAt}
}

func (s *Sim) loadLayout(rawCode string) any {
	c, ok := code.NormalizeSave(rawCode)
	if !ok {
		return wire.Errorf("Invalid save code (must be %d digits)", code.SaveLength)
	}
	l, ok := s.shelf.get(c)
	if !ok {
		return wire.Errorf("Save not found")
	}
	if s.state.Testing || s.state.Playing {
		return wire.Errorf("Cannot load during a test run")
	}
	s.state.restoreLayout(l.snap)
	return loadLayoutOK{Type: "load_layout_ok", Code: c}
}
