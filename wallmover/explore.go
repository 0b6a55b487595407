package wallmover

import (
	"math/rand"
	"time"

	"kidgames-ws/grid"
)

// Both automatic agents move on every second tick, slower than the render
// tick so the motion reads as deliberate.
const moveEveryTicks = 2

// stepSolver advances the left-hand wall follower one cell. It prefers
// turning left, then straight, then right, then back, which walks the
// boundary of whatever region it is in.
func (s *State) stepSolver() {
	sol := s.Solver
	if sol == nil || !sol.Running {
		return
	}
	if s.Paused {
		return
	}
	if s.Tick%moveEveryTicks != 0 {
		return
	}

	cur := sol.Dir
	next := cur
	switch {
	case s.canMove(sol.X, sol.Y, cur.TurnLeft()):
		next = cur.TurnLeft()
	case s.canMove(sol.X, sol.Y, cur):
		next = cur
	case s.canMove(sol.X, sol.Y, cur.TurnRight()):
		next = cur.TurnRight()
	case s.canMove(sol.X, sol.Y, cur.Back()):
		next = cur.Back()
	}

	if !s.canMove(sol.X, sol.Y, next) {
		sol.Running = false
		s.Message = "Solver stuck (boxed in)."
		return
	}

	dx, dy := next.Delta()
	sol.Dir = next
	sol.X += dx
	sol.Y += dy
	sol.Steps++

	s.collectAt(sol.X, sol.Y)

	if sol.X == s.Goal.X && sol.Y == s.Goal.Y {
		s.Win = true
		s.Message = "Solved!"
		sol.Running = false
		s.Testing = false
		s.Playing = false
	}
}

// stepAutoplay advances the exploring agent: depth-first over unvisited
// neighbors with a direction preference, backtracking along its stack at
// dead ends. It visits every reachable cell at most once before giving
// up, so it always terminates.
func (s *State) stepAutoplay(now time.Time) {
	a := s.Autoplay
	if a == nil || !a.Running {
		return
	}
	if s.Paused {
		return
	}

	p := s.Players[a.PlayerID]
	if p == nil || !p.Connected {
		a.Running = false
		return
	}
	if p.Paused {
		return
	}
	if s.Tick%moveEveryTicks != 0 {
		return
	}

	if a.Visited == nil {
		a.Visited = map[int]bool{}
	}
	if len(a.Stack) == 0 {
		a.Stack = append(a.Stack, grid.Point{X: p.X, Y: p.Y})
		a.Visited[p.Y*s.W+p.X] = true
	}

	if p.X == s.Goal.X && p.Y == s.Goal.Y {
		s.markSolved(now)
		return
	}

	var valid []grid.Dir
	for _, d := range grid.Dirs {
		if s.canMove(p.X, p.Y, d) {
			valid = append(valid, d)
		}
	}
	if len(valid) == 0 {
		a.Running = false
		s.Message = "Autoplay stuck (boxed in)."
		return
	}

	cur := a.Dir

	type candidate struct {
		dir grid.Dir
		idx int
	}
	var unvisited []candidate
	for _, d := range valid {
		dx, dy := d.Delta()
		idx := (p.Y+dy)*s.W + (p.X + dx)
		if !a.Visited[idx] {
			unvisited = append(unvisited, candidate{d, idx})
		}
	}

	if len(unvisited) > 0 {
		// Directed exploration: keep going straight when possible, then
		// favor left over right, with a little jitter for variety.
		best := unvisited[0]
		bestScore := -1.0
		for _, c := range unvisited {
			score := rand.Float64() * 0.35
			switch c.dir {
			case cur:
				score += 3.0
			case cur.TurnLeft():
				score += 2.0
			case cur.TurnRight():
				score += 1.0
			}
			if score > bestScore {
				bestScore = score
				best = c
			}
		}

		a.Dir = best.dir
		s.movePlayer(a.PlayerID, best.dir, now, true)
		a.Stack = append(a.Stack, grid.Point{X: p.X, Y: p.Y})
		a.Visited[p.Y*s.W+p.X] = true
		return
	}

	// Dead end: retreat along the stack.
	if len(a.Stack) <= 1 {
		a.Running = false
		s.Message = "Explored all paths!"
		return
	}

	a.Stack = a.Stack[:len(a.Stack)-1]
	target := a.Stack[len(a.Stack)-1]
	back := valid[0]
	switch {
	case target.X-p.X == 1 && target.Y == p.Y:
		back = grid.Right
	case target.X-p.X == -1 && target.Y == p.Y:
		back = grid.Left
	case target.Y-p.Y == 1 && target.X == p.X:
		back = grid.Down
	case target.Y-p.Y == -1 && target.X == p.X:
		back = grid.Up
	}

	a.Dir = back
	s.movePlayer(a.PlayerID, back, now, true)
}

// AutoplayStart hands the slot's piece to the exploring agent, starting
// from the start cell. Editor mode only.
func (s *State) AutoplayStart(playerID int) {
	p := s.Players[playerID]
	if p == nil || !p.Connected {
		return
	}
	if s.Testing || s.Playing {
		return
	}

	s.Win = false
	s.Message = ""
	if s.Solver != nil {
		s.Solver.Running = false
	}
	s.releaseStartPause()

	p.X = s.Start.X
	p.Y = s.Start.Y
	p.Trail = []grid.Point{{X: p.X, Y: p.Y}}
	s.updateVisibility()

	if s.Autoplay == nil {
		s.Autoplay = &Autoplay{}
	}
	s.Autoplay.Running = true
	s.Autoplay.PlayerID = playerID
	s.Autoplay.Dir = grid.Down
	s.Autoplay.Stack = []grid.Point{{X: p.X, Y: p.Y}}
	s.Autoplay.Visited = map[int]bool{p.Y*s.W + p.X: true}
	p.Paused = false
}

// AutoplayStop halts the exploring agent where it stands.
func (s *State) AutoplayStop() {
	if s.Autoplay != nil {
		s.Autoplay.Running = false
	}
}

// SolverStart launches the wall follower as a test run.
func (s *State) SolverStart() {
	if s.Solver == nil {
		s.resetSolver()
	}
	s.Solver.Running = true
	s.Message = ""
	s.Win = false
	s.Testing = true
	s.Playing = false
	s.releaseStartPause()
}

// SolverStop halts the wall follower and ends the test run.
func (s *State) SolverStop() {
	if s.Solver == nil {
		return
	}
	s.Solver.Running = false
	s.Testing = false
	s.Playing = false
}

// SolverReset puts the wall follower back at the start.
func (s *State) SolverReset() {
	s.resetSolver()
	s.Win = false
	s.Testing = false
	s.Playing = false
}
