// Package wallmover implements the wall-editing puzzle: a locked heavy
// maze layer, a player-editable soft layer selected by an editable mask,
// a live start-to-goal connectivity status, test runs, an automatic
// solver and a backtracking autoplay explorer.
package wallmover

import (
	"time"

	"kidgames-ws/grid"
)

// Mode selects how the board is built and which walls may be edited.
type Mode string

const (
	// ModeFreeform is the open editor canvas: border walls only, every
	// interior edge editable directly in the heavy layer.
	ModeFreeform Mode = "freeform"
	// ModePuzzle locks a generated maze as the heavy layer and restricts
	// edits to the soft layer within the editable mask.
	ModePuzzle Mode = "puzzle"
)

const (
	maxLevel = 999
	maxSide  = 30
	baseSide = 10

	minoResetDelay = 3 * time.Second
)

var playerColors = map[int]string{
	1: "#2ecc71",
	2: "#3498db",
	3: "#e67e22",
	4: "#9b59b6",
}

var allowedAvatars = map[string]bool{
	"knight": true, "mage": true, "kid": true, "archer": true,
	"octopus": true, "snake": true, "robot": true,
}

var allowedColors = map[string]bool{
	"#2ecc71": true, "#3498db": true, "#e67e22": true,
	"#9b59b6": true, "#e74c3c": true, "#111111": true,
}

var allowedVision = map[string]bool{"fog": true, "glass": true}

// Player is one of the four slots. Slot identity survives disconnects so
// the room can be rejoined into the same position.
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

// PathSegment is one claimed corridor segment. The first traversal fixes
// the color.
type PathSegment struct {
	A     grid.Point `json:"a"`
	B     grid.Point `json:"b"`
	Color string     `json:"color"`
}

// Solver is the automatic left-hand wall follower driven during test runs.
type Solver struct {
	X       int      `json:"x"`
	Y       int      `json:"y"`
	Dir     grid.Dir `json:"dir"`
	Running bool     `json:"running"`
	Steps   int      `json:"steps"`
}

// Autoplay is the exploring agent state: visited cells plus the
// backtracking stack of positions it can retreat along.
type Autoplay struct {
	Running  bool         `json:"running"`
	PlayerID int          `json:"playerId"`
	Dir      grid.Dir     `json:"dir"`
	Stack    []grid.Point `json:"stack"`
	Visited  map[int]bool `json:"visited"`
}

// State is the full per-room simulation state. It is broadcast as-is each
// tick; unexported fields stay server-side.
type State struct {
	Tick         int    `json:"tick"`
	Paused       bool   `json:"paused"`
	ReasonPaused string `json:"reasonPaused,omitempty"`

	Level int `json:"level"`
	W     int `json:"w"`
	H     int `json:"h"`

	VisionMode string `json:"visionMode"`
	Mode       Mode   `json:"mode"`

	Start grid.Point `json:"start"`
	Goal  grid.Point `json:"goal"`

	// Live start-to-goal connectivity over the effective mask. Advisory
	// only; a disconnected board is a legal editing state.
	RouteComplete bool `json:"routeComplete"`

	// Heavy layer. In freeform mode this is the only layer.
	Walls *grid.Grid `json:"walls"`
	// Soft layer and its editable mask, puzzle mode only.
	SoftWalls *grid.Grid `json:"softWalls"`
	SoftMask  *grid.Grid `json:"softMask"`

	Apples             []grid.Point `json:"apples"`
	AppleTarget        int          `json:"appleTarget"`
	ApplesCollected    int          `json:"applesCollected"`
	Treasures          []grid.Point `json:"treasures"`
	TreasureTarget     int          `json:"treasureTarget"`
	TreasuresCollected int          `json:"treasuresCollected"`
	Batteries          []grid.Point `json:"batteries"`
	BatteryTarget      int          `json:"batteryTarget"`
	BatteriesCollected int          `json:"batteriesCollected"`
	Fishes             []grid.Point `json:"fishes"`
	FishTarget         int          `json:"fishTarget"`
	FishesCollected    int          `json:"fishesCollected"`
	Ducks              []grid.Point `json:"ducks"`
	DuckTarget         int          `json:"duckTarget"`
	DucksCollected     int          `json:"ducksCollected"`

	Minotaurs []grid.Point `json:"minotaurs"`
	Revealed  []int        `json:"revealed"`

	Paths []PathSegment `json:"paths"`

	Solver *Solver `json:"solver"`

	Players map[int]*Player `json:"players"`

	Win     bool   `json:"win"`
	Message string `json:"message"`

	Testing bool `json:"testing"`
	Playing bool `json:"playing"`

	Autoplay *Autoplay `json:"autoplay"`

	pathOwners map[[2]int]bool
	minoHit    grid.Point
	minoReset  time.Time
	solvedAt   time.Time
}

func levelSize(level int) (w, h int) {
	w = baseSide + (level - 1)
	h = baseSide + (level - 1)
	if w > maxSide {
		w = maxSide
	}
	if h > maxSide {
		h = maxSide
	}
	return w, h
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > maxLevel {
		return maxLevel
	}
	return level
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

// New returns a level-1 room in puzzle mode, paused in the lobby.
func New() *State {
	s := &State{
		Paused:       true,
		ReasonPaused: "start",
		VisionMode:   "fog",
		Mode:         ModePuzzle,
		Players:      map[int]*Player{},
		Autoplay:     &Autoplay{PlayerID: 1, Dir: grid.Down},
	}
	w, _ := levelSize(1)
	start := startCell(w)
	for pid := 1; pid <= 4; pid++ {
		s.Players[pid] = newPlayer(pid, start)
	}
	s.buildLevel(1)
	return s
}

// maskAt is the effective wall mask: editable edges come from the soft
// layer, everything else from the heavy layer.
func (s *State) maskAt(x, y int) uint8 {
	heavy := s.Walls.Mask(x, y)
	if s.SoftWalls == nil || s.SoftMask == nil {
		return heavy
	}
	editable := s.SoftMask.Mask(x, y)
	soft := s.SoftWalls.Mask(x, y)
	return (heavy &^ editable) | (soft & editable)
}

func (s *State) in(x, y int) bool {
	return x >= 0 && x < s.W && y >= 0 && y < s.H
}

func (s *State) canMove(x, y int, d grid.Dir) bool {
	if s.maskAt(x, y)&d.Bit() != 0 {
		return false
	}
	dx, dy := d.Delta()
	return s.in(x+dx, y+dy)
}

func (s *State) updateRouteStatus() {
	s.RouteComplete = grid.RouteExists(s.W, s.H, s.maskAt, s.Start, s.Goal)
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
		for _, idx := range grid.VisibleFrom(s.W, s.H, s.maskAt, p.X, p.Y) {
			if !seen[idx] {
				seen[idx] = true
				s.Revealed = append(s.Revealed, idx)
			}
		}
	}
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

func (s *State) clearPaths() {
	s.Paths = []PathSegment{}
	s.pathOwners = map[[2]int]bool{}
}

// buildLevel rebuilds the board for the given level in the current mode.
func (s *State) buildLevel(level int) {
	s.Level = clampLevel(level)
	s.W, s.H = levelSize(s.Level)

	s.Start = startCell(s.W)
	s.Goal = grid.Point{X: 0, Y: s.H - 1}

	if s.Mode == ModeFreeform {
		s.Walls = grid.Open(s.W, s.H)
		s.SoftWalls = nil
		s.SoftMask = nil
	} else {
		s.Walls = grid.Prim(s.W, s.H)
		s.SoftWalls = grid.Empty(s.W, s.H)
		s.SoftMask = grid.Empty(s.W, s.H)
	}
	s.Walls.EnforceBorder()

	if s.Mode == ModePuzzle {
		s.seedEditableEdges()
		s.addPathBlockers()
		s.seedExtraSoftWalls()
	}

	s.resetPlayerPositionsAndTrails()
	s.clearPaths()

	s.clearCollectibles()
	s.placeDefaultCollectibles()

	s.Minotaurs = []grid.Point{}
	s.Revealed = []int{}
	s.updateVisibility()
	s.updateRouteStatus()

	s.Win = false
	s.Message = ""
	s.minoReset = time.Time{}
	s.resetSolver()
	if s.Autoplay != nil {
		s.Autoplay.Running = false
	}
}

func (s *State) resetSolver() {
	s.Solver = &Solver{X: s.Start.X, Y: s.Start.Y, Dir: grid.Down}
}

// markSolved ends the run without auto-advancing; the client offers the
// next level explicitly.
func (s *State) markSolved(now time.Time) {
	s.Win = true
	s.Message = "Solved!"
	s.Testing = false
	s.Playing = false
	if s.Solver != nil {
		s.Solver.Running = false
	}
	if s.Autoplay != nil {
		s.Autoplay.Running = false
	}
	s.solvedAt = now
}

// Step advances the room one tick. Wallmover never skips broadcasts, so
// it always reports a change.
func (s *State) Step(now time.Time) bool {
	s.Tick++

	if !s.minoReset.IsZero() {
		if !now.Before(s.minoReset) {
			s.resetAfterHit()
		}
		return true
	}

	s.stepAutoplay(now)
	s.stepSolver()
	return true
}

// resetAfterHit puts everyone back at the start but keeps the board,
// claimed paths and revealed fog.
func (s *State) resetAfterHit() {
	s.resetPlayerPositionsAndTrails()
	s.updateVisibility()
	s.Message = ""
	s.minoReset = time.Time{}
}

// SetPlayerConnected binds or releases a slot. A reconnect spawns back at
// the start; disconnect leaves the level running.
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

// ConnectedCount reports how many slots currently have a live connection.
func (s *State) ConnectedCount() int {
	n := 0
	for pid := 1; pid <= 4; pid++ {
		if p := s.Players[pid]; p != nil && p.Connected {
			n++
		}
	}
	return n
}

// OpenSlot returns the lowest disconnected slot id.
func (s *State) OpenSlot() (int, bool) {
	for pid := 1; pid <= 4; pid++ {
		if p := s.Players[pid]; p != nil && !p.Connected {
			return pid, true
		}
	}
	return 0, false
}

func (s *State) releaseStartPause() {
	if s.Paused && s.ReasonPaused == "start" {
		s.Paused = false
		s.ReasonPaused = ""
	}
}

// TogglePause flips the per-player pause flag.
func (s *State) TogglePause(playerID int) {
	p := s.Players[playerID]
	if p == nil {
		return
	}
	p.Paused = !p.Paused
	s.releaseStartPause()
}

// Resume clears the per-player pause flag.
func (s *State) Resume(playerID int) {
	p := s.Players[playerID]
	if p == nil {
		return
	}
	p.Paused = false
	s.releaseStartPause()
}

func (s *State) pauseAll() {
	s.Paused = true
	s.ReasonPaused = "start"
	for pid := 1; pid <= 4; pid++ {
		if p := s.Players[pid]; p != nil {
			p.Paused = true
		}
	}
}

// Restart rebuilds the current level and returns the room to the lobby.
func (s *State) Restart() {
	s.Message = ""
	s.Win = false
	s.minoReset = time.Time{}
	if s.Autoplay != nil {
		s.Autoplay.Running = false
	}
	s.buildLevel(s.Level)
	s.pauseAll()
}

// NextLevel builds the following level and returns to the lobby so
// players can edit before testing again.
func (s *State) NextLevel() {
	s.Message = ""
	s.Win = false
	s.Testing = false
	s.Playing = false
	if s.Autoplay != nil {
		s.Autoplay.Running = false
	}
	s.buildLevel(s.Level + 1)
	s.pauseAll()
}

// SetLevel jumps straight to a level, rebuilding the board.
func (s *State) SetLevel(level int) {
	s.Message = ""
	s.Win = false
	s.minoReset = time.Time{}
	s.buildLevel(level)
}

// SetMode switches between freeform and puzzle and rebuilds the board.
func (s *State) SetMode(mode string) bool {
	m := Mode(normalizeLower(mode))
	if m != ModeFreeform && m != ModePuzzle {
		return false
	}
	s.Mode = m
	s.Message = ""
	s.Win = false
	s.Testing = false
	s.Playing = false
	if s.Autoplay != nil {
		s.Autoplay.Running = false
	}
	s.buildLevel(s.Level)
	s.pauseAll()
	return true
}

// SelectAvatar picks one of the allowed avatar sprites for a slot.
func (s *State) SelectAvatar(playerID int, avatar string) bool {
	p := s.Players[playerID]
	if p == nil {
		return false
	}
	a := normalizeLower(avatar)
	if !allowedAvatars[a] {
		return false
	}
	// The archer sprite set was retired; keep accepting the name.
	if a == "archer" {
		a = "kid"
	}
	p.Avatar = a
	return true
}

// SelectColor picks one of the allowed palette colors for a slot.
func (s *State) SelectColor(playerID int, color string) bool {
	p := s.Players[playerID]
	if p == nil {
		return false
	}
	c := normalizeLower(color)
	if !allowedColors[c] {
		return false
	}
	p.Color = c
	return true
}

// SetVisionMode switches between fog and glass rendering.
func (s *State) SetVisionMode(mode string) bool {
	m := normalizeLower(mode)
	if !allowedVision[m] {
		return false
	}
	s.VisionMode = m
	return true
}

// StartPlay begins a manual test run from the start cell, keeping walls
// and items but clearing breadcrumbs.
func (s *State) StartPlay(playerID int) {
	p := s.Players[playerID]
	if p == nil || !p.Connected {
		return
	}

	s.Message = ""
	s.Win = false
	s.Testing = true
	s.Playing = true
	if s.Solver != nil {
		s.Solver.Running = false
	}
	if s.Autoplay != nil {
		s.Autoplay.Running = false
	}

	s.resetPlayerPositionsAndTrails()
	s.clearPaths()
	s.Revealed = []int{}
	s.updateVisibility()

	p.Paused = false
	s.releaseStartPause()
}

// StopTest ends a test run and returns to editing with everyone at the
// start and nobody paused.
func (s *State) StopTest() {
	s.Message = ""
	s.Win = false
	s.Testing = false
	s.Playing = false
	if s.Solver != nil {
		s.Solver.Running = false
	}
	if s.Autoplay != nil {
		s.Autoplay.Running = false
	}

	s.resetPlayerPositionsAndTrails()
	s.clearPaths()
	s.Revealed = []int{}
	s.updateVisibility()

	s.Paused = false
	s.ReasonPaused = ""
	for pid := 1; pid <= 4; pid++ {
		if p := s.Players[pid]; p != nil {
			p.Paused = false
		}
	}
}

// SetWallEdge applies one wall edit. In puzzle mode only soft-layer edges
// within the editable mask may change; in freeform mode the heavy layer
// is edited directly. Boundary edges never change. Recomputes the route
// status on success.
func (s *State) SetWallEdge(x, y int, dir string, on bool) bool {
	if s.Testing || s.Playing {
		return false
	}
	d, ok := grid.ParseDir(dir)
	if !ok {
		return false
	}
	dx, dy := d.Delta()
	nx, ny := x+dx, y+dy
	if !s.in(x, y) || !s.in(nx, ny) {
		return false
	}

	if s.Mode == ModePuzzle {
		if s.SoftWalls == nil || s.SoftMask == nil {
			return false
		}
		if s.SoftMask.Mask(x, y)&d.Bit() == 0 || s.SoftMask.Mask(nx, ny)&d.OppBit() == 0 {
			return false
		}
		s.SoftWalls.SetEdge(x, y, d, on)
		s.updateRouteStatus()
		return true
	}

	s.Walls.SetEdge(x, y, d, on)
	s.Walls.EnforceBorder()
	s.updateRouteStatus()
	return true
}

// Move applies one player-issued step. Only valid during a test run.
func (s *State) Move(playerID int, dir string, now time.Time) {
	d, ok := grid.ParseDir(dir)
	if !ok {
		return
	}
	s.movePlayer(playerID, d, now, false)
}

// movePlayer is the single movement path shared by player input and the
// autoplay explorer. force bypasses the test-run gate only.
func (s *State) movePlayer(playerID int, d grid.Dir, now time.Time, force bool) {
	if !force && !s.Testing {
		return
	}
	if !s.minoReset.IsZero() {
		return
	}
	if s.Paused {
		return
	}

	p := s.Players[playerID]
	if p == nil || !p.Connected {
		return
	}
	if p.Paused {
		return
	}

	if s.Message != "" {
		s.Message = ""
	}

	if s.maskAt(p.X, p.Y)&d.Bit() != 0 {
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

	if s.minotaurAt(nx, ny) {
		s.Message = "The Minotaur got you! Resetting..."
		s.minoReset = now.Add(minoResetDelay)
		s.minoHit = grid.Point{X: nx, Y: ny}
		return
	}

	s.collectAt(nx, ny)

	if nx == s.Goal.X && ny == s.Goal.Y {
		s.markSolved(now)
	}
}

func (s *State) minotaurAt(x, y int) bool {
	for _, m := range s.Minotaurs {
		if m.X == x && m.Y == y {
			return true
		}
	}
	return false
}
