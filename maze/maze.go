// Package maze implements the cooperative maze race: a generated maze
// per level, fog-of-war reveal by line of sight, shared colored path
// claims, apples to collect and a goal cell that advances the level.
package maze

import (
	"math/rand"
	"strings"
	"time"

	"kidgames-ws/grid"
)

const (
	maxSide  = 30
	baseSide = 10

	// Delay between touching the goal and rebuilding the next level, so
	// the clients get a beat to show the level-up message.
	advanceDelay = 700 * time.Millisecond
)

var playerColors = map[int]string{
	1: "#2ecc71",
	2: "#3498db",
	3: "#e67e22",
	4: "#9b59b6",
}

var allowedAvatars = map[string]bool{
	"knight": true, "mage": true, "archer": true,
	"octopus": true, "snake": true, "robot": true,
}

var allowedColors = map[string]bool{
	"#2ecc71": true, "#3498db": true, "#e67e22": true,
	"#9b59b6": true, "#e74c3c": true, "#111111": true,
}

type Player struct {
	ID        int          `json:"id"`
	Connected bool         `json:"connected"`
	Paused    bool         `json:"paused"`
	Color     string       `json:"color"`
	Avatar    string       `json:"avatar"`
	X         int          `json:"x"`
	Y         int          `json:"y"`
	Trail     []grid.Point `json:"trail"`
}

type PathSegment struct {
	A     grid.Point `json:"a"`
	B     grid.Point `json:"b"`
	Color string     `json:"color"`
}

type State struct {
	Tick         int    `json:"tick"`
	Paused       bool   `json:"paused"`
	ReasonPaused string `json:"reasonPaused,omitempty"`
	VisionMode   string `json:"visionMode"`

	Level int `json:"level"`
	W     int `json:"w"`
	H     int `json:"h"`

	Walls *grid.Grid `json:"walls"`
	Goal  grid.Point `json:"goal"`

	Apples          []grid.Point `json:"apples"`
	AppleTarget     int          `json:"appleTarget"`
	ApplesCollected int          `json:"applesCollected"`

	Revealed []int           `json:"revealed"`
	Paths    []PathSegment   `json:"paths"`
	Players  map[int]*Player `json:"players"`

	Message string `json:"message"`

	pathOwners map[[2]int]bool
	advanceAt  time.Time
	advanceTo  int
}

func levelSize(level int) (w, h int) {
	w = baseSide + (level-1)*2
	h = baseSide + (level-1)*2
	if w > maxSide {
		w = maxSide
	}
	if h > maxSide {
		h = maxSide
	}
	return w, h
}

// appleTarget scales the apple count with the maze size.
func appleTarget(w, h int) int {
	m := w
	if h > m {
		m = h
	}
	switch {
	case m >= 22:
		return 5
	case m >= 16:
		return 4
	default:
		return 3
	}
}

func startCell(w int) grid.Point {
	return grid.Point{X: w / 2, Y: 0}
}

func newPlayer(id int, start grid.Point) *Player {
	color, ok := playerColors[id]
	if !ok {
		color = "#000000"
	}
	return &Player{
		ID:     id,
		Paused: true,
		Color:  color,
		Avatar: "knight",
		X:      start.X,
		Y:      start.Y,
		Trail:  []grid.Point{},
	}
}

// New returns a level-1 room paused in the lobby.
func New() *State {
	s := &State{
		Paused:       true,
		ReasonPaused: "start",
		VisionMode:   "fog",
		Players:      map[int]*Player{},
	}
	w, _ := levelSize(1)
	start := startCell(w)
	for pid := 1; pid <= 4; pid++ {
		s.Players[pid] = newPlayer(pid, start)
	}
	s.buildLevel(1)
	return s
}

func (s *State) in(x, y int) bool {
	return x >= 0 && x < s.W && y >= 0 && y < s.H
}

func (s *State) claimPathEdge(a, b grid.Point, color string) {
	ai := a.Y*s.W + a.X
	bi := b.Y*s.W + b.X
	key := [2]int{ai, bi}
	if bi < ai {
		key = [2]int{bi, ai}
	}
	if s.pathOwners[key] {
		return
	}
	if color == "" {
		color = "#000000"
	}
	s.pathOwners[key] = true
	s.Paths = append(s.Paths, PathSegment{A: a, B: b, Color: color})
}

func (s *State) updateVisibility() {
	seen := make(map[int]bool, len(s.Revealed))
	for _, idx := range s.Revealed {
		seen[idx] = true
	}
	for pid := 1; pid <= 4; pid++ {
		p := s.Players[pid]
		if p == nil || !p.Connected {
			continue
		}
		for _, idx := range grid.VisibleFrom(s.W, s.H, s.Walls.Mask, p.X, p.Y) {
			if !seen[idx] {
				seen[idx] = true
				s.Revealed = append(s.Revealed, idx)
			}
		}
	}
}

func (s *State) resetPlayerPositionsAndTrails() {
	start := startCell(s.W)
	for pid := 1; pid <= 4; pid++ {
		p := s.Players[pid]
		if p == nil {
			continue
		}
		p.X = start.X
		p.Y = start.Y
		p.Trail = []grid.Point{start}
	}
}

func (s *State) placeApples() {
	target := appleTarget(s.W, s.H)
	s.AppleTarget = target
	s.ApplesCollected = 0

	start := startCell(s.W)
	forbidden := map[int]bool{
		start.Y*s.W + start.X:   true,
		s.Goal.Y*s.W + s.Goal.X: true,
	}

	chosen := map[int]bool{}
	var order []int
	for attempts := 0; len(chosen) < target && attempts < 20000; attempts++ {
		x, y := rand.Intn(s.W), rand.Intn(s.H)
		idx := y*s.W + x
		if forbidden[idx] || chosen[idx] {
			continue
		}
		if abs(x-start.X)+abs(y-start.Y) < 3 {
			continue
		}
		chosen[idx] = true
		order = append(order, idx)
	}
	for len(chosen) < target {
		x, y := rand.Intn(s.W), rand.Intn(s.H)
		idx := y*s.W + x
		if forbidden[idx] || chosen[idx] {
			continue
		}
		chosen[idx] = true
		order = append(order, idx)
	}

	s.Apples = make([]grid.Point, 0, len(order))
	for _, idx := range order {
		s.Apples = append(s.Apples, grid.Point{X: idx % s.W, Y: idx / s.W})
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (s *State) buildLevel(level int) {
	s.Level = level
	s.W, s.H = levelSize(level)

	s.Walls = grid.Prim(s.W, s.H)
	s.Goal = grid.Point{X: rand.Intn(s.W), Y: s.H - 1}

	s.resetPlayerPositionsAndTrails()
	s.Paths = []PathSegment{}
	s.pathOwners = map[[2]int]bool{}

	s.placeApples()

	s.Revealed = []int{}
	s.updateVisibility()
}

func (s *State) collectAppleAt(x, y int) {
	for i, a := range s.Apples {
		if a.X == x && a.Y == y {
			s.Apples = append(s.Apples[:i], s.Apples[i+1:]...)
			s.ApplesCollected++
			return
		}
	}
}

// scheduleAdvance arms the level-up deadline once, even when two players
// reach the goal on the same tick.
func (s *State) scheduleAdvance(now time.Time) {
	if !s.advanceAt.IsZero() {
		return
	}
	s.Message = "Level up!"
	s.advanceAt = now.Add(advanceDelay)
	s.advanceTo = s.Level + 1
}

// Step advances the room one tick, rebuilding the next level once the
// advance deadline passes.
func (s *State) Step(now time.Time) bool {
	s.Tick++

	if !s.advanceAt.IsZero() && !now.Before(s.advanceAt) {
		next := s.advanceTo
		if next == 0 {
			next = s.Level + 1
		}
		s.advanceAt = time.Time{}
		s.advanceTo = 0
		s.Message = ""
		s.buildLevel(next)
	}
	return true
}

func (s *State) SetPlayerConnected(playerID int, connected bool) {
	p := s.Players[playerID]
	if p == nil {
		return
	}
	p.Connected = connected

	if connected {
		start := startCell(s.W)
		p.X = start.X
		p.Y = start.Y
		p.Trail = []grid.Point{start}
		if p.Avatar == "" {
			p.Avatar = "knight"
		}
		if p.Color == "" {
			if c, ok := playerColors[playerID]; ok {
				p.Color = c
			} else {
				p.Color = "#000000"
			}
		}
	}

	s.updateVisibility()
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

func (s *State) SetVisionMode(mode string) bool {
	if mode != "fog" && mode != "glass" {
		return false
	}
	s.VisionMode = mode
	return true
}

// Pause stops the whole room.
func (s *State) Pause() {
	s.Paused = true
	s.ReasonPaused = "pause"
	for pid := 1; pid <= 4; pid++ {
		if p := s.Players[pid]; p != nil {
			p.Paused = true
		}
	}
}

func (s *State) Resume() {
	s.Paused = false
	s.ReasonPaused = ""
	for pid := 1; pid <= 4; pid++ {
		if p := s.Players[pid]; p != nil {
			p.Paused = false
		}
	}
}

// Restart rebuilds the current level keeping connections, colors and the
// vision mode, then returns to the lobby.
func (s *State) Restart() {
	s.Message = ""
	s.advanceAt = time.Time{}
	s.advanceTo = 0

	s.buildLevel(s.Level)

	s.Paused = true
	s.ReasonPaused = "start"
	for pid := 1; pid <= 4; pid++ {
		if p := s.Players[pid]; p != nil {
			p.Paused = true
		}
	}
}

func (s *State) SelectAvatar(playerID int, avatar string) bool {
	p := s.Players[playerID]
	if p == nil {
		return false
	}
	a := strings.ToLower(strings.TrimSpace(avatar))
	if !allowedAvatars[a] {
		return false
	}
	p.Avatar = a
	return true
}

func (s *State) SelectColor(playerID int, color string) bool {
	p := s.Players[playerID]
	if p == nil {
		return false
	}
	c := strings.ToLower(strings.TrimSpace(color))
	if !allowedColors[c] {
		return false
	}
	p.Color = c
	return true
}

// Move applies one step of player input.
func (s *State) Move(playerID int, dir string, now time.Time) {
	d, ok := grid.ParseDir(dir)
	if !ok {
		return
	}
	if s.Paused {
		return
	}

	p := s.Players[playerID]
	if p == nil || !p.Connected {
		return
	}

	if s.Walls.Has(p.X, p.Y, d) {
		return
	}
	dx, dy := d.Delta()
	nx, ny := p.X+dx, p.Y+dy
	if !s.in(nx, ny) {
		return
	}

	from := grid.Point{X: p.X, Y: p.Y}
	p.X = nx
	p.Y = ny

	if n := len(p.Trail); n == 0 || p.Trail[n-1].X != nx || p.Trail[n-1].Y != ny {
		p.Trail = append(p.Trail, grid.Point{X: nx, Y: ny})
	}

	s.claimPathEdge(from, grid.Point{X: nx, Y: ny}, p.Color)
	s.updateVisibility()
	s.collectAppleAt(nx, ny)

	if nx == s.Goal.X && ny == s.Goal.Y {
		s.scheduleAdvance(now)
	}
}
