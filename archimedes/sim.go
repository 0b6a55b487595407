package archimedes

import (
	"time"

	"kidgames-ws/wire"
)

// inputMessage carries every ferry action; unused fields stay zero.
type inputMessage struct {
	Action   string  `json:"action"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	ObjectID string  `json:"objectId"`
	Level    int     `json:"level"`
}

// Sim adapts the ferry state to the room host loop.
type Sim struct {
	state *State
}

func NewSim() *Sim {
	return &Sim{state: New()}
}

func (s *Sim) Step(now time.Time) bool { return s.state.Step(now) }

func (s *Sim) SetPlayerConnected(pid int, connected bool) {
	s.state.SetPlayerConnected(pid, connected)
}

func (s *Sim) ConnectedCount() int   { return s.state.ConnectedCount() }
func (s *Sim) OpenSlot() (int, bool) { return s.state.OpenSlot() }
func (s *Sim) Snapshot() any         { return s.state }

func (s *Sim) Handle(pid int, msgType string, raw []byte, now time.Time) any {
	switch msgType {
	case "input":
		s.handleInput(pid, wire.Decode[inputMessage](raw), now)
	case "pause":
		s.state.TogglePause(pid)
	case "resume":
		s.state.Resume(pid)
	case "restart":
		s.state.FullReset()
	}
	return nil
}

func (s *Sim) handleInput(pid int, m inputMessage, now time.Time) {
	switch m.Action {
	case "cursor_move":
		s.state.CursorMove(pid, m.X, m.Y)
	case "grab":
		s.state.Grab(pid, m.ObjectID, now)
	case "release":
		s.state.Release(pid)
	case "go":
		s.state.Go()
	case "reset":
		s.state.ResetTrip()
	case "full_reset":
		s.state.FullReset()
	case "set_level":
		s.state.SetLevel(m.Level)
	case "toggle_level_select":
		s.state.ToggleLevelSelect()
	case "toggle_pause":
		s.state.TogglePauseGame()
	case "door_click":
		s.state.DoorClick()
	case "toggle_hints":
		s.state.ToggleHints()
	}
}
