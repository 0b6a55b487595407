package wallmover

import (
	"math/rand"

	"kidgames-ws/grid"
)

// Fraction of interior edges the soft layer may override. High enough
// that puzzle mode still feels close to freeform editing.
const editableFraction = 0.78

type interiorEdge struct {
	x, y int
	dir  grid.Dir
	open bool
}

// interiorEdges lists each interior edge exactly once (right and down
// from its near cell), tagged with whether the heavy layer has it open.
func (s *State) interiorEdges() []interiorEdge {
	var edges []interiorEdge
	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			if x < s.W-1 {
				edges = append(edges, interiorEdge{x, y, grid.Right, !s.Walls.Has(x, y, grid.Right)})
			}
			if y < s.H-1 {
				edges = append(edges, interiorEdge{x, y, grid.Down, !s.Walls.Has(x, y, grid.Down)})
			}
		}
	}
	return edges
}

// seedEditableEdges builds the editable mask: every corridor already open
// in the heavy layer is editable, then randomly chosen closed edges are
// added until the target fraction is met. The soft layer is initialized
// to mirror the heavy layer on each editable edge so the board starts
// consistent.
func (s *State) seedEditableEdges() {
	if s.SoftMask == nil || s.SoftWalls == nil {
		return
	}

	edges := s.interiorEdges()
	if len(edges) == 0 {
		return
	}

	target := int(float64(len(edges)) * editableFraction)
	if target < 1 {
		target = 1
	}

	editable := map[int]bool{}
	for i, e := range edges {
		if e.open {
			editable[i] = true
		}
	}

	if len(editable) < target {
		var closed []int
		for i, e := range edges {
			if !e.open {
				closed = append(closed, i)
			}
		}
		rand.Shuffle(len(closed), func(i, j int) {
			closed[i], closed[j] = closed[j], closed[i]
		})
		for _, i := range closed {
			if len(editable) >= target {
				break
			}
			editable[i] = true
		}
	}

	for i := range editable {
		e := edges[i]
		s.SoftMask.SetEdge(e.x, e.y, e.dir, true)
		s.SoftWalls.SetEdge(e.x, e.y, e.dir, !e.open)
	}
}

// addPathBlockers closes a level-scaled number of edges on the unique
// heavy-layer path from start to goal, forcing the player to reopen them.
// Those edges are made editable regardless of the earlier sampling.
func (s *State) addPathBlockers() {
	if s.SoftWalls == nil || s.SoftMask == nil {
		return
	}

	edges := grid.PathEdges(s.W, s.H, s.Walls.Mask, s.Start, s.Goal)
	if len(edges) == 0 {
		return
	}

	k := s.Level
	if k > 12 {
		k = 12
	}
	if k < 1 {
		k = 1
	}
	if k > len(edges) {
		k = len(edges)
	}

	order := rand.Perm(len(edges))
	for _, i := range order[:k] {
		e := edges[i]
		dx, dy := e.Dir.Delta()
		if !s.in(e.X, e.Y) || !s.in(e.X+dx, e.Y+dy) {
			continue
		}
		// Only block an open corridor in the heavy maze.
		if s.Walls.Has(e.X, e.Y, e.Dir) {
			continue
		}
		s.SoftMask.SetEdge(e.X, e.Y, e.Dir, true)
		s.SoftWalls.SetEdge(e.X, e.Y, e.Dir, true)
	}
}

// seedExtraSoftWalls closes some editable corridors off the critical path
// so solving takes more than erasing the blockers.
func (s *State) seedExtraSoftWalls() {
	if s.SoftWalls == nil || s.SoftMask == nil {
		return
	}

	var corridors []interiorEdge
	for _, e := range s.interiorEdges() {
		if s.SoftMask.Mask(e.x, e.y)&e.dir.Bit() == 0 {
			continue
		}
		if s.SoftWalls.Has(e.x, e.y, e.dir) {
			continue
		}
		corridors = append(corridors, e)
	}
	if len(corridors) == 0 {
		return
	}

	target := int(float64(len(corridors)) * 0.14)
	if target < 10 {
		target = 10
	}
	if target > len(corridors) {
		target = len(corridors)
	}

	rand.Shuffle(len(corridors), func(i, j int) {
		corridors[i], corridors[j] = corridors[j], corridors[i]
	})

	for _, e := range corridors[:target] {
		dx, dy := e.dir.Delta()
		if s.SoftMask.Mask(e.x, e.y)&e.dir.Bit() == 0 ||
			s.SoftMask.Mask(e.x+dx, e.y+dy)&e.dir.OppBit() == 0 {
			continue
		}
		s.SoftWalls.SetEdge(e.x, e.y, e.dir, true)
	}
}
