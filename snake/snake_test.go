package snake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidgames-ws/grid"
)

func newRunning(t *testing.T, pids ...int) *State {
	t.Helper()
	s := New(DefaultTuning())
	require.True(t, s.SelectSpeed("fast"))
	for _, pid := range pids {
		s.SetPlayerConnected(pid, true)
		s.Resume(pid)
	}
	return s
}

func TestNewStartsInLobby(t *testing.T) {
	s := New(DefaultTuning())
	assert.True(t, s.Paused)
	assert.Equal(t, "start", s.ReasonPaused)
	assert.Equal(t, "slow", s.Speed)
	assert.Equal(t, "walls", s.WallsMode)
	assert.NotNil(t, s.Apple)
	for pid := 1; pid <= 4; pid++ {
		assert.Equal(t, PhaseWaiting, s.Players[pid].Phase)
	}
}

func TestConnectSpawnsSnake(t *testing.T) {
	s := New(DefaultTuning())
	s.SetPlayerConnected(1, true)
	p := s.Players[1]
	assert.Equal(t, PhaseAlive, p.Phase)
	require.Len(t, p.Body, 3)
	assert.Equal(t, grid.Point{X: 2, Y: 2}, p.Body[0])
	assert.Equal(t, grid.Right, p.Dir)
}

func TestStepPausedReportsNoChange(t *testing.T) {
	s := New(DefaultTuning())
	assert.False(t, s.Step())
	assert.Equal(t, 0, s.Tick)
}

func TestSpeedGatesMovement(t *testing.T) {
	s := New(DefaultTuning())
	require.True(t, s.SelectSpeed("slow"))
	s.SetPlayerConnected(1, true)
	s.Resume(1)
	s.Step() // selection made the state dirty; drain it

	head := s.Players[1].Body[0]
	moved := 0
	for i := 0; i < 4; i++ {
		if s.Step() {
			moved++
		}
	}
	// Slow speed moves every 4th tick.
	assert.Equal(t, 1, moved)
	assert.Equal(t, grid.Point{X: head.X + 1, Y: head.Y}, s.Players[1].Body[0])
}

func TestSelectionMarksStateChanged(t *testing.T) {
	s := New(DefaultTuning())
	require.True(t, s.SelectSpeed("slow"))
	s.SetPlayerConnected(1, true)
	s.Resume(1)
	s.Step() // tick 1, off-cadence; drains the pending changes

	// An idle off-cadence tick reports no change.
	assert.False(t, s.Step())

	s.SelectSkin(1, "mint")
	assert.True(t, s.Step())
}

func TestNoBackwardTurn(t *testing.T) {
	s := newRunning(t, 1)
	p := s.Players[1]
	require.Equal(t, grid.Right, p.Dir)

	s.QueueInput(1, "LEFT")
	assert.Equal(t, grid.Right, p.PendingDir)

	s.QueueInput(1, "DOWN")
	assert.Equal(t, grid.Down, p.PendingDir)
}

func TestWallKills(t *testing.T) {
	s := newRunning(t, 1)
	p := s.Players[1]
	p.Body = []grid.Point{{X: s.W - 1, Y: 5}, {X: s.W - 2, Y: 5}, {X: s.W - 3, Y: 5}}
	p.Dir, p.PendingDir = grid.Right, grid.Right

	s.Step()
	assert.Equal(t, PhaseDead, p.Phase)
	assert.Equal(t, 2, p.Lives)
	assert.Empty(t, p.Body)
}

func TestNoWallsWraps(t *testing.T) {
	s := newRunning(t, 1)
	require.True(t, s.SelectWallsMode("no_walls"))
	p := s.Players[1]
	p.Body = []grid.Point{{X: s.W - 1, Y: 5}, {X: s.W - 2, Y: 5}}
	p.Dir, p.PendingDir = grid.Right, grid.Right

	s.Step()
	assert.Equal(t, PhaseAlive, p.Phase)
	assert.Equal(t, grid.Point{X: 0, Y: 5}, p.Body[0])
}

func TestKleinWrapMirrorsX(t *testing.T) {
	s := newRunning(t, 1)
	require.True(t, s.SelectWallsMode("klein"))
	p := s.Players[1]
	p.Body = []grid.Point{{X: 4, Y: 0}, {X: 4, Y: 1}}
	p.Dir, p.PendingDir = grid.Up, grid.Up

	s.Step()
	assert.Equal(t, grid.Point{X: (s.W - 1) - 4, Y: s.H - 1}, p.Body[0])
}

func TestHeadToHeadKillsBoth(t *testing.T) {
	s := newRunning(t, 1, 2)
	p1, p2 := s.Players[1], s.Players[2]
	p1.Body = []grid.Point{{X: 5, Y: 10}, {X: 4, Y: 10}}
	p1.Dir, p1.PendingDir = grid.Right, grid.Right
	p2.Body = []grid.Point{{X: 7, Y: 10}, {X: 8, Y: 10}}
	p2.Dir, p2.PendingDir = grid.Left, grid.Left

	s.Step()
	assert.Equal(t, PhaseDead, p1.Phase)
	assert.Equal(t, PhaseDead, p2.Phase)
}

func TestBodyCollisionKills(t *testing.T) {
	s := newRunning(t, 1, 2)
	p1, p2 := s.Players[1], s.Players[2]
	p1.Body = []grid.Point{{X: 5, Y: 10}, {X: 4, Y: 10}}
	p1.Dir, p1.PendingDir = grid.Right, grid.Right
	p2.Body = []grid.Point{{X: 6, Y: 9}, {X: 6, Y: 10}, {X: 6, Y: 11}}
	p2.Dir, p2.PendingDir = grid.Up, grid.Up

	s.Step()
	assert.Equal(t, PhaseDead, p1.Phase)
	assert.Equal(t, PhaseAlive, p2.Phase)
}

func TestAppleGrowsSnake(t *testing.T) {
	s := newRunning(t, 1)
	p := s.Players[1]
	p.Body = []grid.Point{{X: 5, Y: 5}, {X: 4, Y: 5}, {X: 3, Y: 5}}
	p.Dir, p.PendingDir = grid.Right, grid.Right
	s.Apple = &grid.Point{X: 6, Y: 5}

	s.Step()
	require.Equal(t, PhaseAlive, p.Phase)
	assert.Len(t, p.Body, 4)
	assert.Equal(t, 1, p.Grow)
	// A new apple spawns somewhere else.
	require.NotNil(t, s.Apple)
	assert.NotEqual(t, grid.Point{X: 6, Y: 5}, *s.Apple)
	s.Apple = &grid.Point{X: 0, Y: 0} // park it away from the path

	s.Step()
	assert.Len(t, p.Body, 5)
	assert.Equal(t, 0, p.Grow)

	s.Step()
	assert.Len(t, p.Body, 5)
}

func TestRespawnCountdown(t *testing.T) {
	s := newRunning(t, 1)
	s.killPlayer(1, "collision")
	p := s.Players[1]
	require.Equal(t, PhaseDead, p.Phase)

	s.RequestRespawn(1)
	assert.Equal(t, PhaseCountdown, p.Phase)
	assert.Equal(t, 3, p.Countdown)

	for i := 0; i < 3*countdownEvery; i++ {
		s.Step()
	}
	assert.Equal(t, PhaseAlive, p.Phase)
	assert.Len(t, p.Body, 3)
}

func TestRespawnKeepsEarnedLength(t *testing.T) {
	s := newRunning(t, 1)
	p := s.Players[1]
	p.Body = []grid.Point{{X: 5, Y: 5}, {X: 4, Y: 5}, {X: 3, Y: 5}, {X: 2, Y: 5}, {X: 1, Y: 5}}
	s.killPlayer(1, "collision")

	s.RequestRespawn(1)
	for i := 0; i < 3*countdownEvery; i++ {
		s.Step()
	}
	assert.Len(t, p.Body, 5)
}

func TestDisconnectClearsBody(t *testing.T) {
	s := newRunning(t, 1)
	p := s.Players[1]
	require.Equal(t, PhaseAlive, p.Phase)

	s.SetPlayerConnected(1, false)
	assert.Equal(t, PhaseWaiting, p.Phase)
	assert.Empty(t, p.Body)

	pid, ok := s.OpenSlot()
	require.True(t, ok)
	assert.Equal(t, 1, pid)
}

func TestNewGamePreservesIdentities(t *testing.T) {
	s := newRunning(t, 1, 3)
	s.SetName(1, "ada")
	s.SelectSkin(1, "mint")
	require.True(t, s.SelectWallsMode("klein"))

	fresh := s.NewGame()
	assert.True(t, fresh.Players[1].Connected)
	assert.Equal(t, "ada", fresh.Players[1].Name)
	assert.Equal(t, "mint", fresh.Players[1].Skin)
	assert.True(t, fresh.Players[3].Connected)
	assert.False(t, fresh.Players[2].Connected)
	assert.Equal(t, "klein", fresh.WallsMode)
	assert.Equal(t, "fast", fresh.Speed)
	assert.True(t, fresh.Paused)
}

func TestTuningFallback(t *testing.T) {
	tn := Tuning{}
	assert.Equal(t, 2, tn.ticksPerMove("medium"))
	assert.Equal(t, 4, DefaultTuning().ticksPerMove("slow"))
}
