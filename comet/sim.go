package comet

import (
	"time"

	"kidgames-ws/wire"
)

type inputMessage struct {
	Turn   float64 `json:"turn"`
	Thrust bool    `json:"thrust"`
	Brake  bool    `json:"brake"`
	Shoot  bool    `json:"shoot"`
}

type topologyMessage struct {
	Mode string `json:"mode"`
}

type difficultyMessage struct {
	Difficulty string `json:"difficulty"`
}

type colorMessage struct {
	Color string `json:"color"`
}

type shapeMessage struct {
	Shape string `json:"shape"`
}

type nameMessage struct {
	Name string `json:"name"`
}

// Sim adapts the arena state to the room host loop.
type Sim struct {
	state *State
}

func NewSim(now time.Time) *Sim {
	return &Sim{state: New(now)}
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
		m := wire.Decode[inputMessage](raw)
		s.state.ApplyInput(pid, Input{Turn: m.Turn, Thrust: m.Thrust, Brake: m.Brake, Shoot: m.Shoot})
	case "pause":
		s.state.TogglePause(pid)
	case "resume":
		s.state.Resume(pid)
	case "restart":
		s.state = s.state.NewGame(now)
	case "select_topology":
		s.state.SetTopology(wire.Decode[topologyMessage](raw).Mode)
	case "select_difficulty":
		s.state.SetDifficulty(wire.Decode[difficultyMessage](raw).Difficulty)
	case "select_color":
		s.state.SelectColor(pid, wire.Decode[colorMessage](raw).Color)
	case "select_shape":
		s.state.SelectShape(pid, wire.Decode[shapeMessage](raw).Shape)
	case "set_name":
		s.state.SetName(pid, wire.Decode[nameMessage](raw).Name)
	}
	return nil
}
