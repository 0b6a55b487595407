package comet

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// newRunning returns an arena with player 1 flying and the start pause
// released.
func newRunning(t *testing.T) *State {
	t.Helper()
	s := New(t0)
	s.SetPlayerConnected(1, true)
	s.Resume(1)
	require.False(t, s.Paused)
	return s
}

// run advances the arena in 50ms steps.
func run(s *State, from time.Time, steps int) time.Time {
	now := from
	for i := 0; i < steps; i++ {
		now = now.Add(50 * time.Millisecond)
		s.Step(now)
	}
	return now
}

func TestNewArenaStartsInLobby(t *testing.T) {
	s := New(t0)

	assert.True(t, s.Paused)
	assert.Equal(t, "start", s.ReasonPaused)
	assert.Equal(t, "regular", s.Topology)
	assert.Equal(t, "easy", s.Difficulty)
	assert.Empty(t, s.Comets)
	assert.Empty(t, s.Bullets)

	for pid := 1; pid <= 4; pid++ {
		p := s.Players[pid]
		require.NotNil(t, p)
		assert.Equal(t, PhaseWaiting, p.Phase)
		assert.False(t, p.Connected)
	}
	assert.Equal(t, "#ff4d4d", s.Players[1].Color)
	assert.Equal(t, "rocket", s.Players[2].Shape)
}

func TestConnectPlacesShipInCorner(t *testing.T) {
	s := New(t0)
	s.SetPlayerConnected(1, true)
	s.SetPlayerConnected(2, true)

	p1, p2 := s.Players[1], s.Players[2]
	assert.Equal(t, PhaseAlive, p1.Phase)
	assert.Equal(t, 60.0, p1.X)
	assert.Equal(t, 60.0, p1.Y)
	assert.Equal(t, 0.0, p1.Angle)

	assert.Equal(t, s.W-60, p2.X)
	assert.Equal(t, s.H-60, p2.Y)
	assert.Equal(t, math.Pi, p2.Angle)
}

func TestRegularWrapIsATorus(t *testing.T) {
	s := New(t0)

	x, y, vx, vy, a := s.W+5.0, 10.0, 30.0, 5.0, 0.3
	s.wrapBody(&x, &y, &vx, &vy, &a)

	assert.InDelta(t, 5.0, x, 1e-9)
	assert.Equal(t, 10.0, y)
	assert.Equal(t, 30.0, vx)
	assert.Equal(t, 5.0, vy)
	assert.Equal(t, 0.3, a)
}

func TestKleinWrapMirrorsAcrossTopAndBottom(t *testing.T) {
	s := New(t0)
	s.SetTopology("klein")

	x, y, vx, vy, a := 100.0, s.H+3.0, 20.0, 40.0, 0.4
	s.wrapBody(&x, &y, &vx, &vy, &a)

	assert.InDelta(t, s.W-100, x, 1e-9)
	assert.InDelta(t, 3.0, y, 1e-9)
	assert.Equal(t, -20.0, vx)
	assert.Equal(t, 40.0, vy)
	assert.InDelta(t, math.Pi-0.4, a, 1e-9)

	// Left and right edges stay a plain torus on a klein bottle.
	x, y, vx, a = -2.0, 50.0, -10.0, 0.7
	s.wrapBody(&x, &y, &vx, &vy, &a)
	assert.InDelta(t, s.W-2, x, 1e-9)
	assert.Equal(t, 50.0, y)
	assert.Equal(t, -10.0, vx)
	assert.Equal(t, 0.7, a)
}

func TestProjectiveWrapMirrorsBothAxes(t *testing.T) {
	s := New(t0)
	s.SetTopology("projective")

	x, y, vx, vy, a := -4.0, 120.0, -15.0, 25.0, 0.5
	s.wrapBody(&x, &y, &vx, &vy, &a)

	assert.InDelta(t, s.W-4, x, 1e-9)
	assert.InDelta(t, s.H-120, y, 1e-9)
	assert.Equal(t, -15.0, vx)
	assert.Equal(t, -25.0, vy)
	assert.InDelta(t, -0.5, a, 1e-9)
}

func TestThrustNeverExceedsSpeedCap(t *testing.T) {
	s := newRunning(t)
	s.ApplyInput(1, Input{Thrust: true})

	now := t0
	for i := 0; i < 300; i++ {
		now = now.Add(50 * time.Millisecond)
		s.Step(now)
		p := s.Players[1]
		assert.LessOrEqual(t, math.Hypot(p.VX, p.VY), 220.0+1e-6)
	}
	// After 15 seconds of thrust the ship is pinned at the cap.
	p := s.Players[1]
	assert.InDelta(t, 220.0, math.Hypot(p.VX, p.VY), 1e-3)
}

func TestTurnInputIsClamped(t *testing.T) {
	s := newRunning(t)
	s.ApplyInput(1, Input{Turn: 5})
	assert.Equal(t, 1.0, s.Players[1].Input.Turn)

	before := s.Players[1].Angle
	s.Step(t0.Add(50 * time.Millisecond))
	// Easy difficulty turns at 1.35 rad/s.
	assert.InDelta(t, before+1.35*0.05, s.Players[1].Angle, 1e-9)
}

func TestShootSpawnsBulletAndStartsCooldown(t *testing.T) {
	s := newRunning(t)
	s.ApplyInput(1, Input{Shoot: true})

	s.Step(t0.Add(50 * time.Millisecond))
	require.Len(t, s.Bullets, 1)

	p := s.Players[1]
	b := s.Bullets[0]
	assert.Equal(t, 1, b.Owner)
	assert.NotEmpty(t, b.ID)
	// Ship faces angle 0, so the bullet leaves 16px ahead at 240px/s
	// plus the ship velocity.
	assert.InDelta(t, p.X+16-p.VX*0.05, b.X-b.VX*0.05, 1.0)
	assert.InDelta(t, p.VX+240, b.VX, 1e-6)
	assert.Equal(t, 125.0, p.CooldownMs)

	// The next tick is still inside the cooldown window.
	s.Step(t0.Add(100 * time.Millisecond))
	assert.Len(t, s.Bullets, 1)
}

func TestBulletsExpire(t *testing.T) {
	s := newRunning(t)
	s.ApplyInput(1, Input{Shoot: true})
	s.Step(t0.Add(50 * time.Millisecond))
	require.Len(t, s.Bullets, 1)
	s.ApplyInput(1, Input{})

	// Easy bullets live 3600ms.
	now := run(s, t0.Add(50*time.Millisecond), 80)
	require.True(t, now.Sub(t0) > 3700*time.Millisecond)
	assert.Empty(t, s.Bullets)
}

func TestBulletSplitsCometIntoTwoChildren(t *testing.T) {
	s := New(t0)
	parent := &Comet{ID: "c", Size: 2, X: 400, Y: 300, VX: 60, VY: 0}
	s.Comets = []*Comet{parent}
	s.Bullets = []*Bullet{{ID: "b", X: 400, Y: 300}}

	s.resolveBulletHits()

	assert.Empty(t, s.Bullets)
	require.Len(t, s.Comets, 2)
	for _, c := range s.Comets {
		assert.Equal(t, 1, c.Size)
		assert.NotEqual(t, "c", c.ID)
		sp := math.Hypot(c.VX, c.VY)
		assert.GreaterOrEqual(t, sp, 50.0)
		assert.LessOrEqual(t, sp, 140.0)
	}
}

func TestFragmentIsDestroyedOutright(t *testing.T) {
	s := New(t0)
	s.Comets = []*Comet{{ID: "c", Size: 0, X: 100, Y: 100}}
	s.Bullets = []*Bullet{{ID: "b", X: 100, Y: 100}}

	s.resolveBulletHits()

	assert.Empty(t, s.Comets)
	assert.Empty(t, s.Bullets)
}

func TestBulletHitsOnlyOneComet(t *testing.T) {
	s := New(t0)
	s.Comets = []*Comet{
		{ID: "a", Size: 0, X: 100, Y: 100},
		{ID: "b", Size: 0, X: 102, Y: 100},
	}
	s.Bullets = []*Bullet{{ID: "x", X: 100, Y: 100}}

	s.resolveBulletHits()

	assert.Len(t, s.Comets, 1)
}

func TestHardModeCrashAndRespawn(t *testing.T) {
	s := newRunning(t)
	s.SetDifficulty("hard")

	p := s.Players[1]
	s.Comets = []*Comet{{ID: "c", Size: 2, X: p.X, Y: p.Y}}

	now := t0.Add(50 * time.Millisecond)
	s.Step(now)
	assert.Equal(t, PhaseWaiting, p.Phase)
	assert.False(t, p.respawnAt.IsZero())

	// Clear the field so any spawn spot is safe.
	s.Comets = nil

	s.Step(now.Add(time.Second))
	assert.Equal(t, PhaseWaiting, p.Phase)

	s.Step(now.Add(3100 * time.Millisecond))
	assert.Equal(t, PhaseAlive, p.Phase)
	assert.False(t, p.Paused)
	assert.True(t, p.respawnAt.IsZero())
}

func TestEasyModeShipsPassThroughComets(t *testing.T) {
	s := newRunning(t)
	p := s.Players[1]
	s.Comets = []*Comet{{ID: "c", Size: 2, X: p.X, Y: p.Y}}

	s.Step(t0.Add(50 * time.Millisecond))
	assert.Equal(t, PhaseAlive, p.Phase)
}

func TestDifficultyAndTopologyValidation(t *testing.T) {
	s := New(t0)

	assert.True(t, s.SetDifficulty("Medium"))
	assert.Equal(t, "medium", s.Difficulty)
	assert.False(t, s.SetDifficulty("brutal"))
	assert.Equal(t, "medium", s.Difficulty)

	assert.True(t, s.SetTopology("projective"))
	assert.False(t, s.SetTopology("mobius"))
	assert.Equal(t, "projective", s.Topology)
}

func TestShapeAndColorSelection(t *testing.T) {
	s := New(t0)
	s.SetPlayerConnected(1, true)

	assert.True(t, s.SelectColor(1, "#4DA6FF"))
	assert.Equal(t, "#4da6ff", s.Players[1].Color)
	assert.False(t, s.SelectColor(1, "#123456"))
	assert.Equal(t, "#4da6ff", s.Players[1].Color)

	assert.True(t, s.SelectShape(1, "tie"))
	assert.Equal(t, "tie", s.Players[1].Shape)

	// Retired shuttle names fall back to the rocket.
	assert.True(t, s.SelectShape(1, "xwing"))
	assert.Equal(t, "rocket", s.Players[1].Shape)

	assert.False(t, s.SelectShape(1, "borgcube"))
	assert.Equal(t, "rocket", s.Players[1].Shape)
}

func TestInputIgnoredWhileWaiting(t *testing.T) {
	s := New(t0)
	s.ApplyInput(1, Input{Thrust: true})
	assert.False(t, s.Players[1].Input.Thrust)
}

func TestNewGamePreservesIdentities(t *testing.T) {
	s := New(t0)
	s.SetPlayerConnected(1, true)
	s.SetDifficulty("hard")
	s.SetTopology("klein")
	s.SetName(1, "ada")
	s.SelectShape(1, "ufo")

	next := s.NewGame(t0.Add(time.Minute))

	assert.Equal(t, "hard", next.Difficulty)
	assert.Equal(t, "klein", next.Topology)
	p := next.Players[1]
	assert.True(t, p.Connected)
	assert.Equal(t, "ada", p.Name)
	assert.Equal(t, "ufo", p.Shape)
	assert.Equal(t, PhaseAlive, p.Phase)
	assert.True(t, p.Paused)
	assert.True(t, next.Paused)
	assert.Empty(t, next.Comets)
}

func TestCometsSpawnOnScheduleUpToCap(t *testing.T) {
	s := newRunning(t)
	s.nextCometAt = t0.Add(25 * time.Millisecond)

	s.Step(t0.Add(50 * time.Millisecond))
	require.Len(t, s.Comets, 1)
	assert.Equal(t, 1, s.Comets[0].Size)
	assert.True(t, s.nextCometAt.After(t0.Add(50*time.Millisecond)))

	// At the cap the spawner only reschedules.
	s.Comets = []*Comet{{}, {}, {}, {}}
	s.nextCometAt = t0.Add(75 * time.Millisecond)
	s.Step(t0.Add(100 * time.Millisecond))
	assert.Len(t, s.Comets, 4)
	assert.Equal(t, t0.Add(100*time.Millisecond).Add(2*time.Second), s.nextCometAt)
}

func TestDisconnectFreesSlot(t *testing.T) {
	s := New(t0)
	for pid := 1; pid <= 4; pid++ {
		s.SetPlayerConnected(pid, true)
	}
	_, ok := s.OpenSlot()
	assert.False(t, ok)
	assert.Equal(t, 4, s.ConnectedCount())

	s.SetPlayerConnected(2, false)
	slot, ok := s.OpenSlot()
	require.True(t, ok)
	assert.Equal(t, 2, slot)
	assert.Equal(t, PhaseWaiting, s.Players[2].Phase)
}
