// Package comet implements the asteroids-style arena: inertial ship
// physics with signed speed clamps, bullets, splitting comets, and three
// surface topologies for the screen wrap.
package comet

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultW = 800.0
	DefaultH = 600.0

	maxComets = 4

	shipRadius   = 14.0
	bulletSpeed  = 240.0
	turnRate     = 1.35
	thrustAccel  = 45.0
	reverseAccel = 45.0
	speedMax     = 220.0
	speedMin     = -220.0

	respawnDelay = 3 * time.Second

	baseCometSpawnMin = 6500 * time.Millisecond
	baseCometSpawnMax = 11000 * time.Millisecond
)

// difficulty tunes cooldowns, spawn cadence, handling and lethality.
type difficulty struct {
	bulletCooldown   time.Duration
	bulletLife       time.Duration
	cometSpawnMin    time.Duration
	cometSpawnMax    time.Duration
	initialCometSize int
	turnMult         float64
	thrustMult       float64
	reverseMult      float64
	shipCometLethal  bool
}

func difficultyParams(name string) difficulty {
	// Medium and hard spawn ~15% more comets.
	denser := func(d time.Duration) time.Duration {
		return time.Duration(float64(d) / 1.15)
	}
	switch name {
	case "medium":
		return difficulty{
			bulletCooldown:   250 * time.Millisecond,
			bulletLife:       1800 * time.Millisecond,
			cometSpawnMin:    denser(baseCometSpawnMin),
			cometSpawnMax:    denser(baseCometSpawnMax),
			initialCometSize: 2,
			turnMult:         1.56,
			thrustMult:       1.20,
			reverseMult:      1.20,
		}
	case "hard":
		return difficulty{
			bulletCooldown:   250 * time.Millisecond,
			bulletLife:       1800 * time.Millisecond,
			cometSpawnMin:    denser(baseCometSpawnMin),
			cometSpawnMax:    denser(baseCometSpawnMax),
			initialCometSize: 2,
			turnMult:         1.755,
			thrustMult:       1.35,
			reverseMult:      1.35,
			shipCometLethal:  true,
		}
	default: // easy
		return difficulty{
			bulletCooldown:   125 * time.Millisecond,
			bulletLife:       3600 * time.Millisecond,
			cometSpawnMin:    baseCometSpawnMin,
			cometSpawnMax:    baseCometSpawnMax,
			initialCometSize: 1,
			turnMult:         1.0,
			thrustMult:       1.0,
			reverseMult:      1.0,
		}
	}
}

type PlayerPhase string

const (
	PhaseWaiting PlayerPhase = "WAITING"
	PhaseAlive   PlayerPhase = "ALIVE"
)

// Input is the held control state, applied every tick until replaced.
type Input struct {
	Turn   float64 `json:"turn"`
	Thrust bool    `json:"thrust"`
	Brake  bool    `json:"brake"`
	Shoot  bool    `json:"shoot"`
}

type Player struct {
	ID         int         `json:"id"`
	Connected  bool        `json:"connected"`
	Name       string      `json:"name"`
	Color      string      `json:"color"`
	Shape      string      `json:"shape"`
	Phase      PlayerPhase `json:"state"`
	Paused     bool        `json:"paused"`
	X          float64     `json:"x"`
	Y          float64     `json:"y"`
	VX         float64     `json:"vx"`
	VY         float64     `json:"vy"`
	Angle      float64     `json:"angle"`
	Input      Input       `json:"input"`
	CooldownMs float64     `json:"shootCooldownMs"`

	respawnAt time.Time
}

type Bullet struct {
	ID    string  `json:"id"`
	Owner int     `json:"owner"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`

	bornAt time.Time
	life   time.Duration
}

// Comet sizes: 2 biggest, 1 after one hit, 0 fragments destroyed by the
// next hit.
type Comet struct {
	ID   string  `json:"id"`
	Seed int     `json:"seed"`
	Size int     `json:"size"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	VX   float64 `json:"vx"`
	VY   float64 `json:"vy"`
}

type State struct {
	W            float64         `json:"w"`
	H            float64         `json:"h"`
	Tick         int             `json:"tick"`
	Paused       bool            `json:"paused"`
	ReasonPaused string          `json:"reasonPaused,omitempty"`
	Topology     string          `json:"topology"`
	Difficulty   string          `json:"difficulty"`
	Bullets      []*Bullet       `json:"bullets"`
	Comets       []*Comet        `json:"comets"`
	Players      map[int]*Player `json:"players"`

	lastNow     time.Time
	nextCometAt time.Time
}

var defaultColors = []string{"#ff4d4d", "#4da6ff", "#a78bfa", "#ffd24d", "#4dff4d", "#ff7a18"}
var defaultShapes = []string{"triangle", "rocket", "ufo", "enterprise"}

var allowedColors = map[string]bool{
	"#ff4d4d": true, "#4da6ff": true, "#a78bfa": true,
	"#ffd24d": true, "#4dff4d": true, "#ff7a18": true,
}

var allowedShapes = map[string]bool{
	"triangle": true, "rocket": true, "ufo": true, "tie": true, "enterprise": true,
}

func newPlayer(id int) *Player {
	shape := "triangle"
	if id >= 1 && id <= len(defaultShapes) {
		shape = defaultShapes[id-1]
	}
	return &Player{
		ID:     id,
		Color:  defaultColors[(id-1)%len(defaultColors)],
		Shape:  shape,
		Phase:  PhaseWaiting,
		Paused: true,
		Angle:  -math.Pi / 2,
	}
}

// New returns a fresh arena with the first comet spawn already scheduled.
func New(now time.Time) *State {
	s := &State{
		W:            DefaultW,
		H:            DefaultH,
		Paused:       true,
		ReasonPaused: "start",
		Topology:     "regular",
		Difficulty:   "easy",
		Bullets:      []*Bullet{},
		Comets:       []*Comet{},
		Players:      map[int]*Player{},
		lastNow:      now,
		nextCometAt:  now.Add(randDuration(baseCometSpawnMin, baseCometSpawnMax)),
	}
	for pid := 1; pid <= 4; pid++ {
		s.Players[pid] = newPlayer(pid)
	}
	return s
}

// NewGame rebuilds the arena preserving connections, names, colors,
// shapes and the difficulty.
func (s *State) NewGame(now time.Time) *State {
	fresh := New(now)
	fresh.Difficulty = s.Difficulty
	fresh.Topology = s.Topology
	for pid := 1; pid <= 4; pid++ {
		old := s.Players[pid]
		np := fresh.Players[pid]
		np.Connected = old.Connected
		np.Name = old.Name
		np.Color = old.Color
		np.Shape = old.Shape
		if np.Connected {
			np.Phase = PhaseAlive
			np.Paused = true
			fresh.placePlayer(pid)
		}
	}
	return fresh
}

func randRange(lo, hi float64) float64 {
	return lo + rand.Float64()*(hi-lo)
}

func randDuration(lo, hi time.Duration) time.Duration {
	return lo + time.Duration(rand.Int63n(int64(hi-lo)))
}

func clampF(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// normAngle wraps an angle into (-pi, pi].
func normAngle(a float64) float64 {
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// wrappedDelta is the shortest separation along one wrapped axis.
func wrappedDelta(d, span float64) float64 {
	if span <= 0 {
		return d
	}
	x := math.Mod(d, span)
	if x > span/2 {
		x -= span
	}
	if x < -span/2 {
		x += span
	}
	return x
}

func cometRadius(size int) float64 {
	switch {
	case size >= 2:
		return 38
	case size == 1:
		return 28
	default:
		return 16
	}
}

// wrapBody folds a position back onto the playfield. Regular is a torus;
// klein mirrors x when crossing top/bottom; projective additionally
// mirrors y when crossing left/right.
func (s *State) wrapBody(x, y, vx, vy, angle *float64) {
	flipX := func() {
		*y = s.H - *y
		if vy != nil {
			*vy = -*vy
		}
		if angle != nil {
			*angle = normAngle(-*angle)
		}
	}
	flipY := func() {
		*x = s.W - *x
		if vx != nil {
			*vx = -*vx
		}
		if angle != nil {
			*angle = normAngle(math.Pi - *angle)
		}
	}

	if *x < 0 {
		*x += s.W
		if s.Topology == "projective" {
			flipX()
		}
	} else if *x >= s.W {
		*x -= s.W
		if s.Topology == "projective" {
			flipX()
		}
	}

	if *y < 0 {
		*y += s.H
		if s.Topology == "klein" || s.Topology == "projective" {
			flipY()
		}
	} else if *y >= s.H {
		*y -= s.H
		if s.Topology == "klein" || s.Topology == "projective" {
			flipY()
		}
	}
}

func (s *State) placePlayer(pid int) {
	p := s.Players[pid]
	const pad = 60.0
	switch pid {
	case 1:
		p.X, p.Y, p.Angle = pad, pad, 0
	case 2:
		p.X, p.Y, p.Angle = s.W-pad, s.H-pad, math.Pi
	case 3:
		p.X, p.Y, p.Angle = pad, s.H-pad, 0
	default:
		p.X, p.Y, p.Angle = s.W-pad, pad, math.Pi
	}
	p.VX = 0
	p.VY = 0
}

// tryFindSafeSpawn looks for a spot clear of every comet.
func (s *State) tryFindSafeSpawn() (x, y float64, ok bool) {
	const margin = 6.0
	for t := 0; t < 14; t++ {
		cx := randRange(0, s.W)
		cy := randRange(0, s.H)

		clear := true
		for _, c := range s.Comets {
			r := cometRadius(c.Size) + shipRadius + margin
			dx := wrappedDelta(cx-c.X, s.W)
			dy := wrappedDelta(cy-c.Y, s.H)
			if dx*dx+dy*dy <= r*r {
				clear = false
				break
			}
		}
		if clear {
			return cx, cy, true
		}
	}
	return 0, 0, false
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
			p.Phase = PhaseAlive
			s.placePlayer(pid)
		}
	} else {
		p.Phase = PhaseWaiting
		p.Paused = true
		p.VX = 0
		p.VY = 0
	}
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
}

func (s *State) SetTopology(topology string) bool {
	switch topology {
	case "regular", "klein", "projective":
		s.Topology = topology
		return true
	}
	return false
}

func (s *State) SetDifficulty(d string) bool {
	switch strings.ToLower(d) {
	case "easy", "medium", "hard":
		s.Difficulty = strings.ToLower(d)
		return true
	}
	return false
}

func (s *State) SetName(pid int, name string) {
	p := s.Players[pid]
	if p == nil {
		return
	}
	if len(name) > 20 {
		name = name[:20]
	}
	p.Name = name
}

func (s *State) SelectColor(pid int, color string) bool {
	p := s.Players[pid]
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

func (s *State) SelectShape(pid int, shape string) bool {
	p := s.Players[pid]
	if p == nil {
		return false
	}
	sh := strings.ToLower(strings.TrimSpace(shape))
	// The shuttle silhouette was retired; map its old names to rocket.
	if sh == "xwing" || sh == "sts" {
		sh = "rocket"
	}
	if !allowedShapes[sh] {
		return false
	}
	p.Shape = sh
	return true
}

// ApplyInput replaces the held control state for a live ship.
func (s *State) ApplyInput(pid int, in Input) {
	p := s.Players[pid]
	if p == nil || p.Phase != PhaseAlive {
		return
	}
	in.Turn = clampF(in.Turn, -1, 1)
	p.Input = in
}

func (s *State) spawnBullet(p *Player, dp difficulty) {
	dirX := math.Cos(p.Angle)
	dirY := math.Sin(p.Angle)
	s.Bullets = append(s.Bullets, &Bullet{
		ID:     uuid.NewString(),
		Owner:  p.ID,
		X:      p.X + dirX*16,
		Y:      p.Y + dirY*16,
		VX:     p.VX + dirX*bulletSpeed,
		VY:     p.VY + dirY*bulletSpeed,
		bornAt: s.lastNow,
		life:   dp.bulletLife,
	})
}

func (s *State) spawnComet(dp difficulty) {
	speed := randRange(55, 90)
	c := &Comet{
		ID:   uuid.NewString(),
		Seed: rand.Intn(1_000_000_000),
		Size: dp.initialCometSize,
	}

	switch rand.Intn(4) {
	case 0: // top
		c.X, c.Y = randRange(0, s.W), -10
		c.VX, c.VY = randRange(-0.4, 0.4)*speed, speed
	case 1: // bottom
		c.X, c.Y = randRange(0, s.W), s.H+10
		c.VX, c.VY = randRange(-0.4, 0.4)*speed, -speed
	case 2: // left
		c.X, c.Y = -10, randRange(0, s.H)
		c.VX, c.VY = speed, randRange(-0.4, 0.4)*speed
	default: // right
		c.X, c.Y = s.W+10, randRange(0, s.H)
		c.VX, c.VY = -speed, randRange(-0.4, 0.4)*speed
	}

	s.Comets = append(s.Comets, c)
}

// splitComet breaks a comet into two smaller, faster children fanning
// out from the parent's heading.
func (s *State) splitComet(c *Comet) []*Comet {
	nextSize := c.Size - 1
	if nextSize < 0 {
		return nil
	}

	speed := clampF(math.Hypot(c.VX, c.VY)*1.15, 50, 140)
	baseAngle := math.Atan2(c.VY, c.VX)

	child := func(sign float64) *Comet {
		a := baseAngle + sign*randRange(0.35, 0.7)
		return &Comet{
			ID:   uuid.NewString(),
			Seed: rand.Intn(1_000_000_000),
			Size: nextSize,
			X:    c.X + math.Cos(a)*6,
			Y:    c.Y + math.Sin(a)*6,
			VX:   math.Cos(a) * speed,
			VY:   math.Sin(a) * speed,
		}
	}
	return []*Comet{child(1), child(-1)}
}

// Step integrates the arena using the wall-clock delta, clamped so a
// stalled scheduler cannot teleport anything.
func (s *State) Step(now time.Time) bool {
	if s.Paused {
		s.lastNow = now
		return true
	}

	prev := s.lastNow
	if prev.IsZero() {
		prev = now
	}
	s.lastNow = now

	dt := clampF(now.Sub(prev).Seconds(), 0.01, 0.1)
	s.Tick++

	// Spawn comets on the stored deadline, capped.
	if !now.Before(s.nextCometAt) {
		dp := difficultyParams(s.Difficulty)
		if len(s.Comets) < maxComets {
			s.spawnComet(dp)
			s.nextCometAt = now.Add(randDuration(dp.cometSpawnMin, dp.cometSpawnMax))
		} else {
			s.nextCometAt = now.Add(2 * time.Second)
		}
	}

	// Hard-mode auto-respawns.
	for pid := 1; pid <= 4; pid++ {
		p := s.Players[pid]
		if p == nil || !p.Connected {
			continue
		}
		if p.Phase != PhaseWaiting || p.respawnAt.IsZero() || now.Before(p.respawnAt) {
			continue
		}

		if x, y, ok := s.tryFindSafeSpawn(); ok {
			p.X, p.Y = x, y
		} else {
			s.placePlayer(pid)
		}
		p.VX = 0
		p.VY = 0
		p.Angle = randRange(-math.Pi, math.Pi)
		p.Phase = PhaseAlive
		p.Paused = false
		p.respawnAt = time.Time{}
		p.CooldownMs = 0
	}

	dp := difficultyParams(s.Difficulty)
	turn := turnRate * dp.turnMult
	thrust := thrustAccel * dp.thrustMult
	reverse := reverseAccel * dp.reverseMult
	speedCap := math.Max(math.Abs(speedMax), math.Abs(speedMin))

	for pid := 1; pid <= 4; pid++ {
		p := s.Players[pid]
		if p == nil || p.Phase != PhaseAlive {
			continue
		}

		// Cooldown decays even while individually paused.
		p.CooldownMs = math.Max(0, p.CooldownMs-dt*1000)

		if p.Paused {
			continue
		}

		p.Angle = normAngle(p.Angle + clampF(p.Input.Turn, -1, 1)*turn*dt)

		fx := math.Cos(p.Angle)
		fy := math.Sin(p.Angle)

		var dvx, dvy float64
		if p.Input.Thrust {
			dvx += fx * thrust * dt
			dvy += fy * thrust * dt
		}
		if p.Input.Brake {
			dvx -= fx * reverse * dt
			dvy -= fy * reverse * dt
		}

		// Signed clamp along the facing direction: no accelerating past
		// the forward or reverse bound.
		signedSpeed := p.VX*fx + p.VY*fy
		dvForward := dvx*fx + dvy*fy
		if (signedSpeed >= speedMax && dvForward > 0) || (signedSpeed <= speedMin && dvForward < 0) {
			dvx -= dvForward * fx
			dvy -= dvForward * fy
		}

		// At the overall cap, allow only tangential acceleration.
		if sp := math.Hypot(p.VX, p.VY); sp >= speedCap*0.999 {
			vhatX, vhatY := p.VX/sp, p.VY/sp
			if along := dvx*vhatX + dvy*vhatY; along > 0 {
				dvx -= along * vhatX
				dvy -= along * vhatY
			}
		}

		p.VX += dvx
		p.VY += dvy

		if sp := math.Hypot(p.VX, p.VY); sp > speedCap {
			k := speedCap / sp
			p.VX *= k
			p.VY *= k
		}

		p.X += p.VX * dt
		p.Y += p.VY * dt
		s.wrapBody(&p.X, &p.Y, &p.VX, &p.VY, &p.Angle)

		if p.Input.Shoot && p.CooldownMs <= 0 {
			s.spawnBullet(p, dp)
			p.CooldownMs = float64(dp.bulletCooldown.Milliseconds())
		}
	}

	// Bullets age out, then fly.
	alive := s.Bullets[:0]
	for _, b := range s.Bullets {
		if now.Sub(b.bornAt) >= b.life {
			continue
		}
		b.X += b.VX * dt
		b.Y += b.VY * dt
		s.wrapBody(&b.X, &b.Y, &b.VX, &b.VY, nil)
		alive = append(alive, b)
	}
	s.Bullets = alive

	for _, c := range s.Comets {
		c.X += c.VX * dt
		c.Y += c.VY * dt
		s.wrapBody(&c.X, &c.Y, &c.VX, &c.VY, nil)
	}

	if dp.shipCometLethal {
		s.crashShips(now)
	}

	s.resolveBulletHits()
	return true
}

// crashShips kills any live unpaused ship touching a comet and arms its
// respawn deadline.
func (s *State) crashShips(now time.Time) {
	for pid := 1; pid <= 4; pid++ {
		p := s.Players[pid]
		if p == nil || !p.Connected || p.Phase != PhaseAlive || p.Paused {
			continue
		}

		for _, c := range s.Comets {
			r := cometRadius(c.Size) + shipRadius
			dx := wrappedDelta(p.X-c.X, s.W)
			dy := wrappedDelta(p.Y-c.Y, s.H)
			if dx*dx+dy*dy <= r*r {
				p.Phase = PhaseWaiting
				p.respawnAt = now.Add(respawnDelay)
				p.VX = 0
				p.VY = 0
				p.CooldownMs = 0
				p.Input.Shoot = false
				break
			}
		}
	}
}

// resolveBulletHits consumes each bullet on its first comet hit,
// splitting sized comets and destroying fragments.
func (s *State) resolveBulletHits() {
	comets := s.Comets
	var bullets []*Bullet

	for _, b := range s.Bullets {
		hit := -1
		for i, c := range comets {
			r := cometRadius(c.Size)
			dx := b.X - c.X
			dy := b.Y - c.Y
			if dx*dx+dy*dy <= r*r {
				hit = i
				break
			}
		}

		if hit >= 0 {
			c := comets[hit]
			comets = append(comets[:hit], comets[hit+1:]...)
			if c.Size > 0 {
				comets = append(comets, s.splitComet(c)...)
			}
			continue
		}
		bullets = append(bullets, b)
	}

	if bullets == nil {
		bullets = []*Bullet{}
	}
	s.Bullets = bullets
	s.Comets = comets
}
