package wallmover

import (
	"time"

	"kidgames-ws/code"
	"kidgames-ws/grid"
)

// ShelfCap bounds the saved layouts kept per room; the oldest entry is
// evicted when a save would exceed it.
const ShelfCap = 25

// LayoutMeta is what list_saves reports per saved layout.
type LayoutMeta struct {
	Code    string `json:"code"`
	SavedAt int64  `json:"savedAt"`
}

type layoutSnapshot struct {
	mode      Mode
	level     int
	w, h      int
	walls     *grid.Grid
	softWalls *grid.Grid
	softMask  *grid.Grid
	apples    []grid.Point
	treasures []grid.Point
	batteries []grid.Point
	fishes    []grid.Point
	ducks     []grid.Point
}

type layout struct {
	code    string
	savedAt int64
	snap    layoutSnapshot
}

// Shelf is the per-room saved-layout store: an insertion-ordered bounded
// list plus a code index for direct lookup.
type Shelf struct {
	order  []*layout
	byCode map[string]*layout
}

func NewShelf() *Shelf {
	return &Shelf{byCode: map[string]*layout{}}
}

func (s *Shelf) Len() int { return len(s.order) }

func (s *Shelf) taken(c string) bool {
	_, ok := s.byCode[c]
	return ok
}

// Save stores a snapshot under a fresh 8-digit code, evicting the oldest
// entry when full.
func (s *Shelf) Save(snap layoutSnapshot, now time.Time) LayoutMeta {
	if len(s.order) >= ShelfCap {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.byCode, oldest.code)
	}

	l := &layout{
		code:    code.UniqueSave(s.taken),
		savedAt: now.UnixMilli(),
		snap:    snap,
	}
	s.order = append(s.order, l)
	s.byCode[l.code] = l
	return LayoutMeta{Code: l.code, SavedAt: l.savedAt}
}

func (s *Shelf) get(c string) (*layout, bool) {
	l, ok := s.byCode[c]
	return l, ok
}

// List returns metadata for every stored layout, newest last.
func (s *Shelf) List() []LayoutMeta {
	out := make([]LayoutMeta, 0, len(s.order))
	for _, l := range s.order {
		out = append(out, LayoutMeta{Code: l.code, SavedAt: l.savedAt})
	}
	return out
}

func clonePoints(pts []grid.Point) []grid.Point {
	out := make([]grid.Point, len(pts))
	copy(out, pts)
	return out
}

func cloneGrid(g *grid.Grid) *grid.Grid {
	if g == nil {
		return nil
	}
	return g.Clone()
}

// snapshotLayout captures everything a layout save needs to rebuild the
// board later: walls, soft layers and item placements.
func (s *State) snapshotLayout() layoutSnapshot {
	return layoutSnapshot{
		mode:      s.Mode,
		level:     s.Level,
		w:         s.W,
		h:         s.H,
		walls:     cloneGrid(s.Walls),
		softWalls: cloneGrid(s.SoftWalls),
		softMask:  cloneGrid(s.SoftMask),
		apples:    clonePoints(s.Apples),
		treasures: clonePoints(s.Treasures),
		batteries: clonePoints(s.Batteries),
		fishes:    clonePoints(s.Fishes),
		ducks:     clonePoints(s.Ducks),
	}
}

// restoreLayout swaps a saved board in for the current one and returns
// the room to an editing lobby on it.
func (s *State) restoreLayout(snap layoutSnapshot) {
	s.Mode = snap.mode
	s.Level = clampLevel(snap.level)
	s.W = snap.w
	s.H = snap.h
	s.Start = startCell(s.W)
	s.Goal = grid.Point{X: 0, Y: s.H - 1}

	s.Walls = cloneGrid(snap.walls)
	s.SoftWalls = cloneGrid(snap.softWalls)
	s.SoftMask = cloneGrid(snap.softMask)

	s.Apples = clonePoints(snap.apples)
	s.Treasures = clonePoints(snap.treasures)
	s.Batteries = clonePoints(snap.batteries)
	s.Fishes = clonePoints(snap.fishes)
	s.Ducks = clonePoints(snap.ducks)
	s.ApplesCollected = 0
	s.TreasuresCollected = 0
	s.BatteriesCollected = 0
	s.FishesCollected = 0
	s.DucksCollected = 0

	s.Win = false
	s.Message = ""
	s.Testing = false
	s.Playing = false
	s.minoReset = time.Time{}
	s.resetSolver()
	if s.Autoplay != nil {
		s.Autoplay.Running = false
	}

	s.resetPlayerPositionsAndTrails()
	s.clearPaths()
	s.Revealed = []int{}
	s.updateVisibility()
	s.updateRouteStatus()
}
