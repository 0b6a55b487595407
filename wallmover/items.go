package wallmover

import (
	"math/rand"
	"strings"

	"kidgames-ws/grid"
)

func normalizeLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// objectives returns the per-kind collectible counts for a level. Same
// progression as the maze game; in wallmover they are cosmetic only.
func objectives(level int) (apples, chests, batteries, fish, ducks int) {
	l := clampLevel(level)
	switch {
	case l <= 3:
		apples = l
	case l == 4:
		apples = 3
	default:
		apples = 4
	}
	if l >= 4 {
		if l <= 10 {
			chests = min(3, l-3)
		} else {
			chests = min(4, l-7)
		}
	}
	if l >= 8 {
		batteries = min(3, l-7)
	}
	if l >= 10 {
		fish = min(3, l-9)
	}
	if l >= 13 {
		ducks = min(3, l-12)
	}
	return
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func (s *State) clearCollectibles() {
	s.Apples = []grid.Point{}
	s.Treasures = []grid.Point{}
	s.Batteries = []grid.Point{}
	s.Fishes = []grid.Point{}
	s.Ducks = []grid.Point{}
	s.ApplesCollected = 0
	s.TreasuresCollected = 0
	s.BatteriesCollected = 0
	s.FishesCollected = 0
	s.DucksCollected = 0
}

func (s *State) placeDefaultCollectibles() {
	apples, chests, batteries, fish, ducks := objectives(s.Level)

	s.AppleTarget = apples
	s.TreasureTarget = chests
	s.BatteryTarget = batteries
	s.FishTarget = fish
	s.DuckTarget = ducks

	s.ApplesCollected = 0
	s.TreasuresCollected = 0
	s.BatteriesCollected = 0
	s.FishesCollected = 0
	s.DucksCollected = 0

	forbidden := map[int]bool{
		s.Start.Y*s.W + s.Start.X: true,
		s.Goal.Y*s.W + s.Goal.X:   true,
	}

	placeN := func(count int) []grid.Point {
		chosen := map[int]bool{}
		order := []int{}

		// Prefer cells a few steps away from the start, then fill the
		// remainder anywhere free.
		for attempts := 0; len(chosen) < count && attempts < 20000; attempts++ {
			x, y := rand.Intn(s.W), rand.Intn(s.H)
			idx := y*s.W + x
			if forbidden[idx] || chosen[idx] {
				continue
			}
			if abs(x-s.Start.X)+abs(y-s.Start.Y) < 3 {
				continue
			}
			chosen[idx] = true
			order = append(order, idx)
		}
		for len(chosen) < count {
			x, y := rand.Intn(s.W), rand.Intn(s.H)
			idx := y*s.W + x
			if forbidden[idx] || chosen[idx] {
				continue
			}
			chosen[idx] = true
			order = append(order, idx)
		}

		pts := make([]grid.Point, 0, len(order))
		for _, idx := range order {
			forbidden[idx] = true
			pts = append(pts, grid.Point{X: idx % s.W, Y: idx / s.W})
		}
		return pts
	}

	s.Apples = placeN(apples)
	s.Treasures = placeN(chests)
	s.Batteries = placeN(batteries)
	s.Fishes = placeN(fish)
	s.Ducks = placeN(ducks)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func removePointAt(pts []grid.Point, x, y int) ([]grid.Point, bool) {
	for i, p := range pts {
		if p.X == x && p.Y == y {
			return append(pts[:i], pts[i+1:]...), true
		}
	}
	return pts, false
}

func hasPointAt(pts []grid.Point, x, y int) bool {
	for _, p := range pts {
		if p.X == x && p.Y == y {
			return true
		}
	}
	return false
}

func (s *State) collectAt(x, y int) {
	var got bool
	if s.Apples, got = removePointAt(s.Apples, x, y); got {
		s.ApplesCollected++
	}
	if s.Treasures, got = removePointAt(s.Treasures, x, y); got {
		s.TreasuresCollected++
	}
	if s.Batteries, got = removePointAt(s.Batteries, x, y); got {
		s.BatteriesCollected++
	}
	if s.Fishes, got = removePointAt(s.Fishes, x, y); got {
		s.FishesCollected++
	}
	if s.Ducks, got = removePointAt(s.Ducks, x, y); got {
		s.DucksCollected++
	}
}

// PlaceCollectible edits the item on a cell in freeform mode: placing a
// kind replaces whatever was there, re-placing the same kind removes it,
// and "erase"/"none" clears the cell. No-op during a test run or in
// puzzle mode, and on the start or goal cell.
func (s *State) PlaceCollectible(kind string, x, y int) bool {
	if s.Testing || s.Playing {
		return false
	}
	if s.Mode == ModePuzzle {
		return false
	}
	if !s.in(x, y) {
		return false
	}
	if (x == s.Start.X && y == s.Start.Y) || (x == s.Goal.X && y == s.Goal.Y) {
		return false
	}

	removeAll := func() bool {
		removed := false
		var got bool
		if s.Apples, got = removePointAt(s.Apples, x, y); got {
			removed = true
		}
		if s.Treasures, got = removePointAt(s.Treasures, x, y); got {
			removed = true
		}
		if s.Batteries, got = removePointAt(s.Batteries, x, y); got {
			removed = true
		}
		if s.Fishes, got = removePointAt(s.Fishes, x, y); got {
			removed = true
		}
		if s.Ducks, got = removePointAt(s.Ducks, x, y); got {
			removed = true
		}
		return removed
	}

	place := func(pts *[]grid.Point) bool {
		if hasPointAt(*pts, x, y) {
			*pts, _ = removePointAt(*pts, x, y)
			return true
		}
		removeAll()
		*pts = append(*pts, grid.Point{X: x, Y: y})
		return true
	}

	switch normalizeLower(kind) {
	case "erase", "none":
		return removeAll()
	case "apple":
		return place(&s.Apples)
	case "treasure", "chest":
		return place(&s.Treasures)
	case "battery":
		return place(&s.Batteries)
	case "fish":
		return place(&s.Fishes)
	case "duck":
		return place(&s.Ducks)
	}
	return false
}
