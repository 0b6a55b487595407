// Package grid implements the cell/wall substrate shared by the maze-style
// simulations: 4-bit wall masks, a frontier maze carver, route search and
// line-of-sight visibility.
package grid

import (
	"encoding/json"
	"strings"
)

// Wall bits per cell edge. These values are part of the wire format the
// clients render from, so they must not change.
const (
	WallN uint8 = 1
	WallE uint8 = 2
	WallS uint8 = 4
	WallW uint8 = 8

	WallAll = WallN | WallE | WallS | WallW
)

// Dir is one of the four cardinal movement directions.
type Dir int

const (
	Up Dir = iota
	Right
	Down
	Left
)

// Dirs lists all directions in the fixed resolution order used everywhere
// a tie-break matters.
var Dirs = [4]Dir{Up, Right, Down, Left}

var dirNames = [4]string{"UP", "RIGHT", "DOWN", "LEFT"}

func (d Dir) String() string {
	if d < Up || d > Left {
		return "UP"
	}
	return dirNames[d]
}

// ParseDir accepts the wire spelling of a direction, case-insensitively.
func ParseDir(s string) (Dir, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UP":
		return Up, true
	case "RIGHT":
		return Right, true
	case "DOWN":
		return Down, true
	case "LEFT":
		return Left, true
	}
	return Up, false
}

// Delta returns the cell offset of one step in d.
func (d Dir) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Right:
		return 1, 0
	case Down:
		return 0, 1
	default:
		return -1, 0
	}
}

// Bit is the wall bit blocking movement in d from the near cell.
func (d Dir) Bit() uint8 {
	switch d {
	case Up:
		return WallN
	case Right:
		return WallE
	case Down:
		return WallS
	default:
		return WallW
	}
}

// OppBit is the wall bit of the same edge seen from the far cell.
func (d Dir) OppBit() uint8 { return d.Back().Bit() }

func (d Dir) TurnLeft() Dir  { return (d + 3) % 4 }
func (d Dir) TurnRight() Dir { return (d + 1) % 4 }
func (d Dir) Back() Dir      { return (d + 2) % 4 }

func (d Dir) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Dir) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseDir(s)
	if !ok {
		parsed = Up
	}
	*d = parsed
	return nil
}

// Point is a cell coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}
