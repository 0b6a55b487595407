package maze

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidgames-ws/grid"
)

func TestNewBuildsConnectedMaze(t *testing.T) {
	s := New()
	assert.Equal(t, 1, s.Level)
	assert.Equal(t, 10, s.W)
	assert.Equal(t, 10, s.H)
	assert.Equal(t, s.H-1, s.Goal.Y)

	start := startCell(s.W)
	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			assert.True(t, grid.RouteExists(s.W, s.H, s.Walls.Mask, start, grid.Point{X: x, Y: y}))
		}
	}
}

func TestLevelSizeGrowsByTwo(t *testing.T) {
	w, h := levelSize(2)
	assert.Equal(t, 12, w)
	assert.Equal(t, 12, h)
	w, h = levelSize(100)
	assert.Equal(t, 30, w)
	assert.Equal(t, 30, h)
}

func TestAppleTargetBySize(t *testing.T) {
	assert.Equal(t, 3, appleTarget(10, 10))
	assert.Equal(t, 4, appleTarget(16, 16))
	assert.Equal(t, 5, appleTarget(22, 22))
}

func TestApplesAvoidStartAndGoal(t *testing.T) {
	for trial := 0; trial < 10; trial++ {
		s := New()
		require.Len(t, s.Apples, s.AppleTarget)
		start := startCell(s.W)
		for _, a := range s.Apples {
			assert.NotEqual(t, start, a)
			assert.NotEqual(t, s.Goal, a)
		}
	}
}

func TestMoveRespectsWallsAndPause(t *testing.T) {
	s := New()
	s.SetPlayerConnected(1, true)
	now := time.Now()
	p := s.Players[1]

	// Lobby pause blocks all movement.
	s.Move(1, "DOWN", now)
	assert.Equal(t, 0, p.Y)

	s.Resume()
	for _, d := range grid.Dirs {
		if !s.Walls.Has(p.X, p.Y, d) {
			x, y := p.X, p.Y
			dx, dy := d.Delta()
			s.Move(1, d.String(), now)
			assert.Equal(t, x+dx, p.X)
			assert.Equal(t, y+dy, p.Y)
			return
		}
	}
	t.Fatal("start cell has no open direction")
}

func TestGoalSchedulesLevelAdvance(t *testing.T) {
	s := New()
	s.SetPlayerConnected(1, true)
	s.Resume()
	now := time.Now()

	// Teleport next to the goal and step onto it.
	p := s.Players[1]
	var entry grid.Dir
	found := false
	for _, d := range grid.Dirs {
		if s.Walls.Has(s.Goal.X, s.Goal.Y, d) {
			continue
		}
		dx, dy := d.Delta()
		p.X = s.Goal.X + dx
		p.Y = s.Goal.Y + dy
		entry = d.Back()
		found = true
		break
	}
	require.True(t, found, "goal cell is sealed")

	s.Move(1, entry.String(), now)
	require.Equal(t, s.Goal.X, p.X)
	require.Equal(t, s.Goal.Y, p.Y)
	assert.NotEmpty(t, s.Message)

	// Before the deadline nothing changes.
	s.Step(now.Add(300 * time.Millisecond))
	assert.Equal(t, 1, s.Level)

	s.Step(now.Add(800 * time.Millisecond))
	assert.Equal(t, 2, s.Level)
	assert.Equal(t, 12, s.W)
	assert.Empty(t, s.Message)
	assert.Equal(t, startCell(s.W).X, p.X)
}

func TestRestartKeepsLevelReturnsToLobby(t *testing.T) {
	s := New()
	s.SetPlayerConnected(1, true)
	s.Resume()
	require.False(t, s.Paused)

	s.Restart()
	assert.Equal(t, 1, s.Level)
	assert.True(t, s.Paused)
	assert.Equal(t, "start", s.ReasonPaused)
	assert.True(t, s.Players[1].Paused)
}

func TestDisconnectKeepsSlotIdentity(t *testing.T) {
	s := New()
	s.SetPlayerConnected(1, true)
	require.True(t, s.SelectColor(1, "#e74c3c"))

	s.SetPlayerConnected(1, false)
	assert.False(t, s.Players[1].Connected)
	assert.Equal(t, "#e74c3c", s.Players[1].Color)

	pid, ok := s.OpenSlot()
	require.True(t, ok)
	assert.Equal(t, 1, pid)
}

func TestVisibilityPersistsAcrossMoves(t *testing.T) {
	s := New()
	s.SetPlayerConnected(1, true)
	s.Resume()
	before := len(s.Revealed)
	require.Greater(t, before, 0)

	now := time.Now()
	p := s.Players[1]
	for _, d := range grid.Dirs {
		if !s.Walls.Has(p.X, p.Y, d) {
			s.Move(1, d.String(), now)
			break
		}
	}
	assert.GreaterOrEqual(t, len(s.Revealed), before)
}
