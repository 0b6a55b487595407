// Package snake implements the four-player snake arena: simultaneous
// movement on a speed-gated cadence, lives with countdown respawns, and
// three wall modes including a klein-bottle wrap.
package snake

import (
	"math/rand"

	"kidgames-ws/grid"
)

const (
	// DefaultW and DefaultH size the arena slightly bigger than classic.
	DefaultW = 30
	DefaultH = 22

	startLives  = 3
	startLength = 3
	appleGrowth = 2

	// Countdown decrements every 6th tick, giving roughly one second per
	// count at the 75ms tick.
	countdownEvery = 6
)

// Tuning holds the gameplay knobs loaded from the game config file.
type Tuning struct {
	TicksPerMove map[string]int `yaml:"ticks_per_move"`
}

// DefaultTuning matches the shipped config.
func DefaultTuning() Tuning {
	return Tuning{TicksPerMove: map[string]int{"fast": 1, "medium": 2, "slow": 4}}
}

func (t Tuning) ticksPerMove(speed string) int {
	if n, ok := t.TicksPerMove[speed]; ok && n > 0 {
		return n
	}
	return 2
}

// PlayerPhase is the per-slot lifecycle.
type PlayerPhase string

const (
	PhaseWaiting   PlayerPhase = "WAITING"
	PhaseAlive     PlayerPhase = "ALIVE"
	PhaseDead      PlayerPhase = "DEAD"
	PhaseCountdown PlayerPhase = "COUNTDOWN"
)

type Player struct {
	ID          int          `json:"id"`
	Connected   bool         `json:"connected"`
	Name        string       `json:"name"`
	Skin        string       `json:"skin"`
	Lives       int          `json:"lives"`
	Phase       PlayerPhase  `json:"state"`
	Paused      bool         `json:"paused"`
	Countdown   int          `json:"countdown"`
	Dir         grid.Dir     `json:"dir"`
	PendingDir  grid.Dir     `json:"pendingDir"`
	Grow        int          `json:"grow"`
	Body        []grid.Point `json:"body"`
	DeathReason string       `json:"deathReason,omitempty"`

	lengthAtLastDeath int
}

type State struct {
	W            int             `json:"w"`
	H            int             `json:"h"`
	Tick         int             `json:"tick"`
	Paused       bool            `json:"paused"`
	ReasonPaused string          `json:"reasonPaused,omitempty"`
	Speed        string          `json:"speed"`
	SpeedLocked  bool            `json:"speedLocked"`
	WallsMode    string          `json:"wallsMode"`
	Apple        *grid.Point     `json:"apple"`
	Players      map[int]*Player `json:"players"`

	tuning Tuning
	dirty  bool
}

var startDirs = map[int]grid.Dir{
	1: grid.Right,
	2: grid.Left,
	3: grid.Right,
	4: grid.Left,
}

func newPlayer(id int) *Player {
	d := startDirs[id]
	return &Player{
		ID:                id,
		Skin:              "coral",
		Lives:             startLives,
		Phase:             PhaseWaiting,
		Paused:            true,
		Dir:               d,
		PendingDir:        d,
		Body:              []grid.Point{},
		lengthAtLastDeath: startLength,
	}
}

// New returns a fresh arena, paused in the lobby.
func New(tuning Tuning) *State {
	s := &State{
		W:            DefaultW,
		H:            DefaultH,
		Paused:       true,
		ReasonPaused: "start",
		Speed:        "slow",
		WallsMode:    "walls",
		Players:      map[int]*Player{},
		tuning:       tuning,
	}
	for pid := 1; pid <= 4; pid++ {
		s.Players[pid] = newPlayer(pid)
	}
	s.spawnApple()
	return s
}

// NewGame rebuilds the arena keeping connections, names and skins so a
// restart feels seamless.
func (s *State) NewGame() *State {
	fresh := New(s.tuning)
	fresh.Speed = s.Speed
	fresh.WallsMode = s.WallsMode
	for pid := 1; pid <= 4; pid++ {
		old := s.Players[pid]
		np := fresh.Players[pid]
		np.Name = old.Name
		np.Skin = old.Skin
		if old.Connected {
			fresh.SetPlayerConnected(pid, true)
		}
	}
	return fresh
}

func (s *State) markDirty() { s.dirty = true }

func (s *State) killPlayer(pid int, why string) {
	p := s.Players[pid]
	p.Lives--
	p.Phase = PhaseDead
	p.DeathReason = why
	p.lengthAtLastDeath = len(p.Body)
	// Clear the body so the corpse doesn't block others.
	p.Body = []grid.Point{}
}

// RequestRespawn arms the three-count respawn for a dead snake.
func (s *State) RequestRespawn(pid int) {
	p := s.Players[pid]
	if p == nil || p.Phase != PhaseDead {
		return
	}
	p.Phase = PhaseCountdown
	p.Countdown = 3
	s.markDirty()
}

func (s *State) respawnPlayer(pid int) {
	p := s.Players[pid]
	length := p.lengthAtLastDeath
	if length < startLength {
		length = startLength
	}

	p.Body = make([]grid.Point, 0, length)
	switch pid {
	case 1:
		p.Dir, p.PendingDir = grid.Right, grid.Right
		for i := 0; i < length; i++ {
			p.Body = append(p.Body, grid.Point{X: 2 - i, Y: 2})
		}
	case 2:
		p.Dir, p.PendingDir = grid.Left, grid.Left
		for i := 0; i < length; i++ {
			p.Body = append(p.Body, grid.Point{X: s.W - 3 + i, Y: s.H - 3})
		}
	case 3:
		p.Dir, p.PendingDir = grid.Right, grid.Right
		for i := 0; i < length; i++ {
			p.Body = append(p.Body, grid.Point{X: 2 - i, Y: s.H - 3})
		}
	case 4:
		p.Dir, p.PendingDir = grid.Left, grid.Left
		for i := 0; i < length; i++ {
			p.Body = append(p.Body, grid.Point{X: s.W - 3 + i, Y: 2})
		}
	}

	p.Grow = 0
	p.Phase = PhaseAlive
	p.DeathReason = ""
}

// SetName trims the display name to a sane length.
func (s *State) SetName(pid int, name string) {
	p := s.Players[pid]
	if p == nil {
		return
	}
	if len(name) > 20 {
		name = name[:20]
	}
	p.Name = name
	s.markDirty()
}

// SelectSpeed picks the movement cadence. Changeable from the setup UI.
func (s *State) SelectSpeed(speed string) bool {
	switch speed {
	case "slow", "medium", "fast":
	default:
		return false
	}
	s.Speed = speed
	s.SpeedLocked = false
	s.markDirty()
	return true
}

// SelectWallsMode picks the boundary behavior.
func (s *State) SelectWallsMode(mode string) bool {
	switch mode {
	case "walls", "no_walls", "klein":
	default:
		return false
	}
	s.WallsMode = mode
	s.markDirty()
	return true
}

// SelectSkin always succeeds; duplicate skins are allowed.
func (s *State) SelectSkin(pid int, skin string) {
	if p := s.Players[pid]; p != nil {
		p.Skin = skin
		s.markDirty()
	}
}

func (s *State) SetPlayerConnected(pid int, connected bool) {
	p := s.Players[pid]
	if p == nil {
		return
	}
	p.Connected = connected
	if connected {
		p.Paused = true
		if p.Phase == PhaseWaiting {
			s.respawnPlayer(pid)
		}
	} else {
		p.Phase = PhaseWaiting
		p.Body = []grid.Point{}
		p.Paused = true
	}
	s.markDirty()
}

func (s *State) ConnectedCount() int {
	n := 0
	for pid := 1; pid <= 4; pid++ {
		if p := s.Players[pid]; p != nil && p.Connected {
			n++
		}
	}
	return n
}

func (s *State) OpenSlot() (int, bool) {
	for pid := 1; pid <= 4; pid++ {
		if p := s.Players[pid]; p != nil && !p.Connected {
			return pid, true
		}
	}
	return 0, false
}

// TogglePause flips a player's pause; any interaction clears the lobby
// pause.
func (s *State) TogglePause(pid int) {
	p := s.Players[pid]
	if p == nil {
		return
	}
	p.Paused = !p.Paused
	if s.Paused && s.ReasonPaused == "start" {
		s.Paused = false
		s.ReasonPaused = ""
	}
	s.markDirty()
}

func (s *State) Resume(pid int) {
	p := s.Players[pid]
	if p == nil {
		return
	}
	p.Paused = false
	if s.Paused {
		s.Paused = false
		s.ReasonPaused = ""
	}
	s.markDirty()
}

// QueueInput stores the next direction, rejecting 180-degree turns
// against the direction actually travelled this tick.
func (s *State) QueueInput(pid int, dir string) {
	d, ok := grid.ParseDir(dir)
	if !ok {
		return
	}
	p := s.Players[pid]
	if p == nil {
		return
	}
	if d == p.Dir.Back() {
		return
	}
	p.PendingDir = d
}

// Step advances the arena one tick. It reports whether anything visible
// changed so idle ticks skip the broadcast.
func (s *State) Step() bool {
	changed := s.dirty
	s.dirty = false

	if s.Paused {
		return changed
	}

	s.Tick++

	for pid := 1; pid <= 4; pid++ {
		p := s.Players[pid]
		if p.Phase != PhaseCountdown {
			continue
		}
		if s.Tick%countdownEvery == 0 {
			p.Countdown--
			changed = true
			if p.Countdown <= 0 {
				s.respawnPlayer(pid)
			}
		}
	}

	if s.Tick%s.tuning.ticksPerMove(s.Speed) != 0 {
		return changed
	}

	s.moveSnakes()
	return true
}

// moveSnakes resolves one simultaneous movement round: pending turns
// commit, wraps apply per walls mode, head-to-head collisions kill both
// snakes, then body collisions and walls, then growth.
func (s *State) moveSnakes() {
	wrap := s.WallsMode == "no_walls" || s.WallsMode == "klein"

	moves := map[int]grid.Point{}
	for pid := 1; pid <= 4; pid++ {
		p := s.Players[pid]
		if p.Phase != PhaseAlive || p.Paused {
			continue
		}

		p.Dir = p.PendingDir
		dx, dy := p.Dir.Delta()
		head := p.Body[0]
		nx, ny := head.X+dx, head.Y+dy

		if wrap {
			if s.WallsMode == "klein" {
				// Klein bottle: top and bottom wrap with a mirrored x.
				if ny < 0 {
					ny = s.H - 1
					nx = (s.W - 1) - nx
				} else if ny >= s.H {
					ny = 0
					nx = (s.W - 1) - nx
				}
			}
			nx = (nx + s.W) % s.W
			ny = (ny + s.H) % s.H
		}

		moves[pid] = grid.Point{X: nx, Y: ny}
	}

	occupied := map[grid.Point]bool{}
	for pid := 1; pid <= 4; pid++ {
		p := s.Players[pid]
		if p.Phase != PhaseAlive {
			continue
		}
		for _, c := range p.Body {
			occupied[c] = true
		}
	}

	dies := map[int]bool{}
	eats := map[int]bool{}

	targets := map[grid.Point][]int{}
	for pid := 1; pid <= 4; pid++ {
		m, ok := moves[pid]
		if !ok {
			continue
		}
		targets[m] = append(targets[m], pid)
	}
	for _, pids := range targets {
		if len(pids) > 1 {
			for _, pid := range pids {
				dies[pid] = true
			}
		}
	}

	for pid := 1; pid <= 4; pid++ {
		if dies[pid] {
			continue
		}
		m, ok := moves[pid]
		if !ok {
			continue
		}

		if !wrap && (m.X < 0 || m.Y < 0 || m.X >= s.W || m.Y >= s.H) {
			dies[pid] = true
			continue
		}
		if occupied[m] {
			dies[pid] = true
			continue
		}
		if s.Apple != nil && m == *s.Apple {
			eats[pid] = true
		}
	}

	for pid := 1; pid <= 4; pid++ {
		m, ok := moves[pid]
		if !ok || dies[pid] {
			continue
		}
		p := s.Players[pid]
		p.Body = append([]grid.Point{m}, p.Body...)

		if eats[pid] {
			p.Grow += appleGrowth
		}
		if p.Grow > 0 {
			p.Grow--
		} else {
			p.Body = p.Body[:len(p.Body)-1]
		}
	}

	if len(eats) > 0 {
		s.spawnApple()
	}

	for pid := 1; pid <= 4; pid++ {
		if dies[pid] {
			s.killPlayer(pid, "collision")
		}
	}
}

func (s *State) spawnApple() {
	forbidden := map[grid.Point]bool{}
	for pid := 1; pid <= 4; pid++ {
		for _, c := range s.Players[pid].Body {
			forbidden[c] = true
		}
	}
	for tries := 0; tries < 500; tries++ {
		c := grid.Point{X: rand.Intn(s.W), Y: rand.Intn(s.H)}
		if !forbidden[c] {
			s.Apple = &c
			return
		}
	}
	s.Apple = nil
}
