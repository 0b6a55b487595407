package maze

import (
	"time"

	"kidgames-ws/wire"
)

type modeMessage struct {
	Mode string `json:"mode"`
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

// Sim adapts the maze state machine to the host's room interface.
type Sim struct {
	state *State
}

func NewSim() *Sim { return &Sim{state: New()} }

func (s *Sim) Step(now time.Time) bool { return s.state.Step(now) }

func (s *Sim) SetPlayerConnected(playerID int, connected bool) {
	s.state.SetPlayerConnected(playerID, connected)
}

func (s *Sim) ConnectedCount() int { return s.state.ConnectedCount() }

func (s *Sim) OpenSlot() (int, bool) { return s.state.OpenSlot() }

func (s *Sim) Snapshot() any { return s.state }

func (s *Sim) Handle(playerID int, msgType string, raw []byte, now time.Time) any {
	st := s.state
	switch msgType {
	case "select_vision_mode":
		st.SetVisionMode(wire.Decode[modeMessage](raw).Mode)
	case "select_avatar":
		st.SelectAvatar(playerID, wire.Decode[avatarMessage](raw).Avatar)
	case "select_color":
		st.SelectColor(playerID, wire.Decode[colorMessage](raw).Color)
	case "pause":
		st.Pause()
	case "resume":
		st.Resume()
	case "restart":
		st.Restart()
	case "input":
		st.Move(playerID, wire.Decode[inputMessage](raw).Dir, now)
	}
	return nil
}
