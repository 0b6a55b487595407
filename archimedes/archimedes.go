// Package archimedes implements the cooperative buoyancy ferry: players
// drag cargo onto a boat and sail it across a river without capsizing.
// Balloons have negative mass, so loadout choice is the whole puzzle.
package archimedes

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

const (
	sceneWidth  = 800.0
	sceneHeight = 600.0
	waterY      = 300.0

	hullWidth  = 270.0
	hullHeight = 120.0
	boatMass   = 60.0
	maxPayload = 55.0
	deckY      = -50.0
	baseHeight = 30.0
	sailSpeed  = 4.0

	leftShoreX  = 180.0
	rightShoreX = 620.0

	leftDockX  = 220.0
	rightDockX = rightShoreX - 60

	claimTimeout = 3 * time.Second
	capsizeReset = 3 * time.Second
)

type objectDef struct {
	mass   float64
	volume float64
	size   float64
	color  string
	label  string
}

var objectTypes = map[string]objectDef{
	"duck":    {mass: 3, volume: 100, size: 32, color: "#FFD700", label: "Duck"},
	"kid":     {mass: 25, volume: 120, size: 44, color: "#FFAB91", label: "Kid"},
	"balloon": {mass: -3, volume: 250, size: 48, color: "#E1BEE7", label: "Helium Balloon"},
}

type placement struct {
	kind string
	x, y float64
}

type levelDef struct {
	id      string
	name    string
	desc    string
	objects []placement
}

var levels = map[int]levelDef{
	1: {
		id:   "river_ferry",
		name: "River Ferry",
		desc: "Get everyone across! (Hint: 2 trips needed)",
		objects: []placement{
			{"kid", 40, 280}, {"kid", 90, 285}, {"kid", 60, 270}, {"kid", 110, 275},
			{"duck", 130, 290}, {"duck", 30, 285},
			{"balloon", 75, 250}, {"balloon", 120, 245},
		},
	},
	2: {
		id:   "heavy_load",
		name: "Heavy Load",
		desc: "6 kids to transport! Use balloons wisely.",
		objects: []placement{
			{"kid", 40, 280}, {"kid", 85, 285}, {"kid", 55, 270},
			{"kid", 100, 275}, {"kid", 70, 290}, {"kid", 115, 280},
			{"balloon", 50, 245}, {"balloon", 90, 250}, {"balloon", 130, 248},
		},
	},
	3: {
		id:   "balloon_lift",
		name: "Balloon Lift",
		desc: "Can you fit 3 kids in one trip with enough balloons?",
		objects: []placement{
			{"kid", 55, 280}, {"kid", 90, 285}, {"kid", 70, 275},
			{"balloon", 40, 250}, {"balloon", 65, 245},
			{"balloon", 95, 248}, {"balloon", 120, 252},
		},
	},
}

// Object is a draggable world item. OnShore is "left", "right", or empty
// while the object is held or riding the boat.
type Object struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Mass      float64 `json:"mass"`
	Volume    float64 `json:"volume"`
	Size      float64 `json:"size"`
	Shape     string  `json:"shape"`
	Color     string  `json:"color"`
	Label     string  `json:"label"`
	OnBoat    bool    `json:"onBoat"`
	OnShore   string  `json:"onShore"`
	Delivered bool    `json:"delivered"`
	ClaimedBy int     `json:"claimedBy"`

	claimedAt time.Time
}

type Player struct {
	ID         int     `json:"id"`
	Connected  bool    `json:"connected"`
	Paused     bool    `json:"paused"`
	Color      string  `json:"color"`
	CursorX    float64 `json:"cursorX"`
	CursorY    float64 `json:"cursorY"`
	HeldObject string  `json:"heldObjectId"`
}

// Boat state. Y is the hull center, derived from the waterline and the
// cargo-dependent sink offset.
type Boat struct {
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	SinkOffset      float64 `json:"sinkOffset"`
	TargetX         float64 `json:"targetX"`
	Sailing         bool    `json:"sailing"`
	SailSpeed       float64 `json:"sailSpeed"`
	Tilt            float64 `json:"tilt"`
	Capsized        bool    `json:"capsized"`
	CapsizeRotation float64 `json:"capsizeRotation"`
	CapsizeSplash   float64 `json:"capsizeSplash"`
	AtDock          string  `json:"atDock"`
	CriticalTilt    float64 `json:"criticalTilt"`

	capsizedAt time.Time
}

type shoreArea struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type State struct {
	Tick             int     `json:"tick"`
	Paused           bool    `json:"paused"`
	GamePaused       bool    `json:"gamePaused"`
	ReasonPaused     string  `json:"reasonPaused,omitempty"`
	Level            int     `json:"level"`
	MaxLevelUnlocked int     `json:"maxLevelUnlocked"`
	LevelID          string  `json:"levelId"`
	LevelName        string  `json:"levelName"`
	SceneWidth       float64 `json:"sceneWidth"`
	SceneHeight      float64 `json:"sceneHeight"`
	WaterY           float64 `json:"waterY"`
	WaterBottom      float64 `json:"waterBottom"`
	LeftShoreX       float64 `json:"leftShoreX"`
	RightShoreX      float64 `json:"rightShoreX"`

	LeftShoreArea  shoreArea `json:"leftShoreArea"`
	RightShoreArea shoreArea `json:"rightShoreArea"`

	Boat    *Boat     `json:"boat"`
	Objects []*Object `json:"objects"`

	TotalToDeliver int `json:"totalToDeliver"`
	DeliveredCount int `json:"deliveredCount"`
	TripsCompleted int `json:"tripsCompleted"`

	Players map[int]*Player `json:"players"`

	DoorOpen bool `json:"doorOpen"`

	ComX      float64 `json:"comX"`
	ComY      float64 `json:"comY"`
	CobX      float64 `json:"cobX"`
	CobY      float64 `json:"cobY"`
	TotalMass float64 `json:"totalMass"`
	CargoMass float64 `json:"cargoMass"`

	Message         string `json:"message"`
	ShowHints       bool   `json:"showHints"`
	ShowLevelSelect bool   `json:"showLevelSelect"`
}

var playerColors = []string{"#2ecc71", "#3498db", "#e67e22", "#9b59b6"}

func newObject(kind string, x, y float64) *Object {
	def, ok := objectTypes[kind]
	if !ok {
		return nil
	}
	return &Object{
		ID:      uuid.NewString(),
		Type:    kind,
		X:       x,
		Y:       y,
		Mass:    def.mass,
		Volume:  def.volume,
		Size:    def.size,
		Shape:   "circle",
		Color:   def.color,
		Label:   def.label,
		OnShore: "left",
	}
}

func New() *State {
	s := &State{
		Paused:           true,
		ReasonPaused:     "start",
		MaxLevelUnlocked: len(levels),
		SceneWidth:       sceneWidth,
		SceneHeight:      sceneHeight,
		WaterY:           waterY,
		WaterBottom:      sceneHeight,
		LeftShoreX:       leftShoreX,
		RightShoreX:      rightShoreX,
		LeftShoreArea:    shoreArea{X: 0, Y: 240, Width: 180, Height: 80},
		RightShoreArea:   shoreArea{X: rightShoreX, Y: 240, Width: 180, Height: 80},
		Boat:             &Boat{SailSpeed: sailSpeed},
		Players:          map[int]*Player{},
		TotalMass:        boatMass,
		ShowHints:        true,
	}
	for pid := 1; pid <= 4; pid++ {
		s.Players[pid] = &Player{ID: pid, Paused: true, Color: playerColors[pid-1]}
	}
	s.initLevel(1)
	return s
}

func (s *State) initLevel(level int) {
	lvl := level
	if lvl < 1 {
		lvl = 1
	}
	if lvl > len(levels) {
		lvl = len(levels)
	}
	cfg := levels[lvl]

	s.Level = lvl
	s.LevelID = cfg.id
	s.LevelName = cfg.name
	s.Objects = nil
	s.DeliveredCount = 0
	s.TripsCompleted = 0
	s.DoorOpen = false
	s.ShowLevelSelect = false

	b := s.Boat
	b.X = leftDockX
	b.TargetX = leftDockX
	b.Y = waterY - baseHeight
	b.Sailing = false
	b.Capsized = false
	b.capsizedAt = time.Time{}
	b.CapsizeRotation = 0
	b.CapsizeSplash = 0
	b.AtDock = "left"
	b.Tilt = 0
	b.SinkOffset = 0
	b.CriticalTilt = 25

	for pid := 1; pid <= 4; pid++ {
		s.Players[pid].HeldObject = ""
	}

	s.TotalToDeliver = len(cfg.objects)
	for _, p := range cfg.objects {
		if obj := newObject(p.kind, p.x, p.y); obj != nil {
			s.Objects = append(s.Objects, obj)
		}
	}

	s.Message = fmt.Sprintf("%s: %s", cfg.name, cfg.desc)
}

func (s *State) SetLevel(level int) {
	s.initLevel(level)
}

func (s *State) findObject(id string) *Object {
	for _, o := range s.Objects {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (s *State) objectsOnBoat() []*Object {
	var out []*Object
	for _, o := range s.Objects {
		if o.OnBoat {
			out = append(out, o)
		}
	}
	return out
}

type boatReport struct {
	shouldCapsize bool
	overloaded    bool
}

// computeBoatPhysics refreshes the displayed mass, center-of-mass, tilt
// and sink values and reports whether the current load is survivable.
func (s *State) computeBoatPhysics() boatReport {
	b := s.Boat

	var cargoMass, weightedX, weightedY float64
	for _, o := range s.objectsOnBoat() {
		cargoMass += o.Mass
		weightedX += o.Mass * (o.X - b.X)
		weightedY += o.Mass * (o.Y - b.Y)
	}

	// Balloon lift reduces effective weight but cannot make the boat fly.
	totalMass := boatMass + math.Max(0, cargoMass)
	comX := weightedX / totalMass
	comY := weightedY / totalMass

	effectiveMass := boatMass + cargoMass
	waterline := math.Max(0, math.Min(hullHeight*0.95, effectiveMass/(hullWidth*0.6)))

	const maxTilt = 35.0
	const tiltFactor = 0.4
	tilt := clampF(comX*tiltFactor, -maxTilt, maxTilt)

	s.TotalMass = totalMass
	s.CargoMass = cargoMass
	s.ComX = comX
	s.ComY = comY
	s.CobX = 0
	s.CobY = waterline / 2
	b.Tilt = tilt

	b.SinkOffset = math.Min(70, math.Max(0, cargoMass))
	b.Y = waterY - baseHeight + b.SinkOffset

	// The safe tilt shrinks as cargo pushes the deck toward the water:
	// criticalTilt = asin((baseHeight + deckHeight - sinkOffset) / halfWidth).
	const halfWidth = hullWidth / 2
	const deckHeight = hullHeight * 0.4
	margin := baseHeight + deckHeight - b.SinkOffset
	criticalSin := math.Max(0.05, math.Min(0.5, margin/halfWidth))
	b.CriticalTilt = math.Asin(criticalSin) * 180 / math.Pi

	return boatReport{
		shouldCapsize: math.Abs(tilt) >= b.CriticalTilt || cargoMass > maxPayload,
		overloaded:    cargoMass > maxPayload,
	}
}

func clampF(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func (s *State) shoreAreaFor(shore string) shoreArea {
	if shore == "right" {
		return s.RightShoreArea
	}
	return s.LeftShoreArea
}

// unloadToShore drops every boat object onto the given shore and counts
// first-time right-shore deliveries.
func (s *State) unloadToShore(shore string) int {
	area := s.shoreAreaFor(shore)

	unloaded := 0
	for _, o := range s.objectsOnBoat() {
		o.OnBoat = false
		o.OnShore = shore

		margin := o.Size/2 + 10
		o.X = area.X + margin + rand.Float64()*(area.Width-margin*2)
		o.Y = area.Y + 50 + rand.Float64()*(area.Height-100)

		if shore == "right" && !o.Delivered {
			o.Delivered = true
			s.DeliveredCount++
			unloaded++
		}
	}
	return unloaded
}

// resetTrip sends the boat back to the left dock and returns its cargo
// to the left shore.
func (s *State) resetTrip() {
	b := s.Boat
	b.X = leftDockX
	b.TargetX = leftDockX
	b.Y = waterY - baseHeight
	b.Sailing = false
	b.Capsized = false
	b.capsizedAt = time.Time{}
	b.CapsizeRotation = 0
	b.CapsizeSplash = 0
	b.AtDock = "left"
	b.Tilt = 0
	b.SinkOffset = 0
	b.CriticalTilt = 25

	area := s.LeftShoreArea
	for _, o := range s.Objects {
		if o.OnBoat {
			o.OnBoat = false
			o.OnShore = "left"
			o.X = area.X + 20 + rand.Float64()*(area.Width-40)
			o.Y = area.Y + 50 + rand.Float64()*(area.Height-100)
		}
		o.ClaimedBy = 0
		o.claimedAt = time.Time{}
	}
	for pid := 1; pid <= 4; pid++ {
		s.Players[pid].HeldObject = ""
	}

	s.Message = ""
}

func (s *State) startSailing() {
	b := s.Boat
	if b.Sailing || b.Capsized {
		return
	}

	if len(s.objectsOnBoat()) == 0 {
		s.Message = "Load something onto the boat first!"
		return
	}
	if s.computeBoatPhysics().overloaded {
		s.Message = "Too heavy! Remove some items."
		return
	}

	if b.AtDock == "left" {
		b.TargetX = rightDockX
	} else {
		b.TargetX = leftShoreX + 40
	}
	b.Sailing = true
	b.AtDock = ""
	s.Message = "Sailing..."
}

func (s *State) checkWin() {
	if s.DeliveredCount >= s.TotalToDeliver && !s.DoorOpen {
		s.DoorOpen = true
		s.Message = fmt.Sprintf("All %d items delivered! Door opened!", s.TotalToDeliver)
		if s.Level >= s.MaxLevelUnlocked && s.Level < len(levels) {
			s.MaxLevelUnlocked = s.Level + 1
		}
	}
}

// CursorMove tracks a player cursor and drags any held object with it.
func (s *State) CursorMove(pid int, x, y float64) {
	p := s.Players[pid]
	if p == nil || !p.Connected {
		return
	}
	p.CursorX = clampF(x, 0, s.SceneWidth)
	p.CursorY = clampF(y, 0, s.SceneHeight)

	if p.HeldObject != "" {
		if o := s.findObject(p.HeldObject); o != nil {
			o.X = p.CursorX
			o.Y = p.CursorY
		}
	}
}

// Grab claims an unclaimed object. Only cargo reachable from the current
// dock can be grabbed, and never while the boat is underway.
func (s *State) Grab(pid int, objectID string, now time.Time) {
	p := s.Players[pid]
	if p == nil || !p.Connected {
		return
	}
	o := s.findObject(objectID)
	if o == nil || o.ClaimedBy != 0 || s.Boat.Sailing {
		return
	}

	canGrab := o.OnBoat ||
		(o.OnShore == "left" && s.Boat.AtDock == "left") ||
		(o.OnShore == "right" && s.Boat.AtDock == "right")
	if !canGrab {
		return
	}

	o.ClaimedBy = pid
	o.claimedAt = now
	o.OnShore = ""
	o.OnBoat = false
	p.HeldObject = o.ID
}

// Release drops the held object, snapping it onto the deck when it lands
// inside the boat's hit area at a dock, otherwise onto the nearest shore.
func (s *State) Release(pid int) {
	p := s.Players[pid]
	if p == nil || p.HeldObject == "" {
		return
	}
	o := s.findObject(p.HeldObject)
	p.HeldObject = ""
	if o == nil {
		return
	}
	o.ClaimedBy = 0
	o.claimedAt = time.Time{}

	b := s.Boat
	boatLeft := b.X - hullWidth/2 - 30
	boatRight := b.X + hullWidth/2 + 30
	boatTop := b.Y - hullHeight - 50
	boatBottom := b.Y + 50

	if o.X >= boatLeft && o.X <= boatRight && o.Y >= boatTop && o.Y <= boatBottom &&
		b.AtDock != "" && !b.Sailing {
		o.OnBoat = true
		o.OnShore = ""
		o.Y = b.Y + deckY
		return
	}

	o.OnBoat = false
	if b.AtDock == "left" || o.X < s.SceneWidth/2 {
		o.OnShore = "left"
		o.X = clampF(o.X, 20, leftShoreX-20)
	} else {
		o.OnShore = "right"
		o.X = clampF(o.X, rightShoreX+20, s.SceneWidth-20)
	}
	o.Y = clampF(o.Y, s.LeftShoreArea.Y+20, s.LeftShoreArea.Y+s.LeftShoreArea.Height-20)
}

func (s *State) Go() {
	if !s.Boat.Sailing && !s.Boat.Capsized && !s.GamePaused {
		s.startSailing()
	}
}

func (s *State) ResetTrip() { s.resetTrip() }

func (s *State) FullReset() { s.initLevel(s.Level) }

func (s *State) ToggleLevelSelect() { s.ShowLevelSelect = !s.ShowLevelSelect }

func (s *State) ToggleHints() { s.ShowHints = !s.ShowHints }

func (s *State) TogglePauseGame() {
	s.GamePaused = !s.GamePaused
	if s.GamePaused {
		s.Message = "PAUSED - Press P to resume"
	} else {
		s.Message = ""
	}
}

// DoorClick advances past an opened door to the next level.
func (s *State) DoorClick() {
	if !s.DoorOpen {
		return
	}
	if s.Level+1 <= len(levels) {
		s.SetLevel(s.Level + 1)
	} else {
		s.Message = "You completed all levels!"
	}
}

// Step runs one 50ms frame: stale-claim cleanup, boat physics, capsize
// animation and sailing movement.
func (s *State) Step(now time.Time) bool {
	s.Tick++

	if s.GamePaused {
		return true
	}

	for _, o := range s.Objects {
		if o.ClaimedBy != 0 && !o.claimedAt.IsZero() && now.Sub(o.claimedAt) > claimTimeout {
			if p := s.Players[o.ClaimedBy]; p != nil {
				p.HeldObject = ""
			}
			o.ClaimedBy = 0
			o.claimedAt = time.Time{}
		}
	}

	report := s.computeBoatPhysics()
	b := s.Boat

	if report.shouldCapsize && !b.Capsized && b.Sailing {
		b.Capsized = true
		b.capsizedAt = now
		b.CapsizeRotation = 0
		b.CapsizeSplash = 1
		s.Message = "SPLASH! Capsized!"
	}

	if b.Capsized {
		elapsed := now.Sub(b.capsizedAt)
		if elapsed < time.Second {
			frac := elapsed.Seconds()
			b.CapsizeRotation = frac * 180
			b.CapsizeSplash = math.Max(0, 1-frac/0.6)
		} else {
			b.CapsizeRotation = 180
			b.SinkOffset = math.Min(120, 60+float64(elapsed.Milliseconds()-1000)/15)
		}
		if elapsed > capsizeReset {
			s.resetTrip()
		}
		return true
	}

	if b.Sailing {
		dx := b.TargetX - b.X
		if math.Abs(dx) < 2 {
			b.X = b.TargetX
			b.Sailing = false

			arrivedAt := "left"
			if b.X > s.SceneWidth/2 {
				arrivedAt = "right"
			}
			b.AtDock = arrivedAt
			s.TripsCompleted++

			unloaded := s.unloadToShore(arrivedAt)
			switch {
			case arrivedAt == "right" && unloaded == 1:
				s.Message = fmt.Sprintf("Delivered 1 item! (%d/%d)", s.DeliveredCount, s.TotalToDeliver)
			case arrivedAt == "right" && unloaded > 1:
				s.Message = fmt.Sprintf("Delivered %d items! (%d/%d)", unloaded, s.DeliveredCount, s.TotalToDeliver)
			default:
				s.Message = fmt.Sprintf("Arrived at %s shore.", arrivedAt)
			}
			s.checkWin()
		} else {
			move := math.Min(math.Abs(dx), b.SailSpeed)
			step := math.Copysign(move, dx)
			b.X += step
			for _, o := range s.objectsOnBoat() {
				if o.ClaimedBy == 0 {
					o.X += step
				}
			}
		}
	}

	return true
}

func (s *State) SetPlayerConnected(pid int, connected bool) {
	p := s.Players[pid]
	if p == nil {
		return
	}
	p.Connected = connected
	if connected {
		p.Paused = true
		return
	}
	if p.HeldObject != "" {
		if o := s.findObject(p.HeldObject); o != nil {
			o.ClaimedBy = 0
			o.claimedAt = time.Time{}
		}
		p.HeldObject = ""
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
	if !p.Paused && s.ReasonPaused == "start" {
		s.ReasonPaused = ""
		s.Paused = false
	}
}

func (s *State) Resume(pid int) {
	p := s.Players[pid]
	if p == nil {
		return
	}
	p.Paused = false
	if s.ReasonPaused == "start" {
		s.ReasonPaused = ""
		s.Paused = false
	}
}
