package snake

import (
	"time"

	"kidgames-ws/wire"
)

type inputMessage struct {
	Dir string `json:"dir"`
}

type speedMessage struct {
	Speed string `json:"speed"`
}

type wallsModeMessage struct {
	Mode string `json:"mode"`
}

type skinMessage struct {
	Skin string `json:"skin"`
}

type nameMessage struct {
	Name string `json:"name"`
}

// Sim adapts the snake state machine to the host's room interface. A
// restart swaps a fresh state in, keeping identities.
type Sim struct {
	state *State
}

func NewSim(tuning Tuning) *Sim { return &Sim{state: New(tuning)} }

func (s *Sim) Step(now time.Time) bool { return s.state.Step() }

func (s *Sim) SetPlayerConnected(playerID int, connected bool) {
	s.state.SetPlayerConnected(playerID, connected)
}

func (s *Sim) ConnectedCount() int { return s.state.ConnectedCount() }

func (s *Sim) OpenSlot() (int, bool) { return s.state.OpenSlot() }

func (s *Sim) Snapshot() any { return s.state }

func (s *Sim) Handle(playerID int, msgType string, raw []byte, now time.Time) any {
	st := s.state
	switch msgType {
	case "input":
		st.QueueInput(playerID, wire.Decode[inputMessage](raw).Dir)
	case "pause":
		st.TogglePause(playerID)
	case "resume":
		st.Resume(playerID)
	case "restart":
		s.state = st.NewGame()
	case "select_speed":
		st.SelectSpeed(wire.Decode[speedMessage](raw).Speed)
	case "select_walls_mode":
		st.SelectWallsMode(wire.Decode[wallsModeMessage](raw).Mode)
	case "select_skin":
		st.SelectSkin(playerID, wire.Decode[skinMessage](raw).Skin)
	case "set_name":
		st.SetName(playerID, wire.Decode[nameMessage](raw).Name)
	case "request_respawn":
		st.RequestRespawn(playerID)
	}
	return nil
}
