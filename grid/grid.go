package grid

import (
	"encoding/json"
	"math/rand"
)

// Grid is a W×H field of per-cell wall masks. The zero value is unusable;
// construct with Open, Filled or Prim.
type Grid struct {
	W, H  int
	Cells []uint8
}

// Open returns a grid whose interior is fully open with only the outer
// boundary walled. Used as the freeform editing canvas.
func Open(w, h int) *Grid {
	g := &Grid{W: w, H: h, Cells: make([]uint8, w*h)}
	g.EnforceBorder()
	return g
}

// Filled returns a grid with every edge walled.
func Filled(w, h int) *Grid {
	g := &Grid{W: w, H: h, Cells: make([]uint8, w*h)}
	for i := range g.Cells {
		g.Cells[i] = WallAll
	}
	return g
}

// Empty returns an all-zero mask grid, used as the soft/editable overlays.
func Empty(w, h int) *Grid {
	return &Grid{W: w, H: h, Cells: make([]uint8, w*h)}
}

func (g *Grid) Clone() *Grid {
	c := &Grid{W: g.W, H: g.H, Cells: make([]uint8, len(g.Cells))}
	copy(c.Cells, g.Cells)
	return c
}

func (g *Grid) Index(x, y int) int { return y*g.W + x }

func (g *Grid) In(x, y int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.H
}

// Mask returns the wall mask at (x, y); out-of-bounds reads as fully open.
func (g *Grid) Mask(x, y int) uint8 {
	if !g.In(x, y) {
		return 0
	}
	return g.Cells[g.Index(x, y)]
}

// Has reports whether the edge leaving (x, y) toward d carries a wall bit.
func (g *Grid) Has(x, y int, d Dir) bool {
	return g.Mask(x, y)&d.Bit() != 0
}

// SetEdge sets or clears the edge between (x, y) and its d-neighbor on
// both sides. No-op when either cell is out of bounds.
func (g *Grid) SetEdge(x, y int, d Dir, on bool) {
	dx, dy := d.Delta()
	nx, ny := x+dx, y+dy
	if !g.In(x, y) || !g.In(nx, ny) {
		return
	}
	if on {
		g.Cells[g.Index(x, y)] |= d.Bit()
		g.Cells[g.Index(nx, ny)] |= d.OppBit()
	} else {
		g.Cells[g.Index(x, y)] &^= d.Bit()
		g.Cells[g.Index(nx, ny)] &^= d.OppBit()
	}
}

// Carve opens the edge between (x, y) and its d-neighbor.
func (g *Grid) Carve(x, y int, d Dir) { g.SetEdge(x, y, d, false) }

// EnforceBorder re-walls every outer boundary edge. Boundary walls hold in
// every mode regardless of edits.
func (g *Grid) EnforceBorder() {
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			mask := g.Cells[g.Index(x, y)]
			if y == 0 {
				mask |= WallN
			}
			if y == g.H-1 {
				mask |= WallS
			}
			if x == 0 {
				mask |= WallW
			}
			if x == g.W-1 {
				mask |= WallE
			}
			g.Cells[g.Index(x, y)] = mask
		}
	}
}

// OpenEdgeCount counts distinct carved edges (each shared edge once).
func (g *Grid) OpenEdgeCount() int {
	n := 0
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			if x < g.W-1 && !g.Has(x, y, Right) {
				n++
			}
			if y < g.H-1 && !g.Has(x, y, Down) {
				n++
			}
		}
	}
	return n
}

type frontierEdge struct {
	x, y int
	d    Dir
}

// Prim carves a uniform spanning tree into a fully walled grid using the
// frontier variant of Prim's algorithm: grow from a random cell, repeatedly
// pick a random frontier edge and carve it if its far cell is still outside
// the maze. The result is connected and acyclic, so exactly one path exists
// between any two cells.
func Prim(w, h int) *Grid {
	g := Filled(w, h)
	inMaze := make([]bool, w*h)
	var frontier []frontierEdge

	addFrontier := func(x, y int) {
		for _, d := range Dirs {
			dx, dy := d.Delta()
			nx, ny := x+dx, y+dy
			if g.In(nx, ny) && !inMaze[g.Index(nx, ny)] {
				frontier = append(frontier, frontierEdge{x, y, d})
			}
		}
	}

	sx, sy := rand.Intn(w), rand.Intn(h)
	inMaze[g.Index(sx, sy)] = true
	addFrontier(sx, sy)

	for len(frontier) > 0 {
		i := rand.Intn(len(frontier))
		e := frontier[i]
		frontier[i] = frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		dx, dy := e.d.Delta()
		nx, ny := e.x+dx, e.y+dy
		if !g.In(nx, ny) || inMaze[g.Index(nx, ny)] {
			continue
		}

		g.Carve(e.x, e.y, e.d)
		inMaze[g.Index(nx, ny)] = true
		addFrontier(nx, ny)
	}

	return g
}

// MarshalJSON emits the mask rows the clients expect: walls[y][x].
// Rows go out as plain numbers, not the base64 []byte encoding.
func (g *Grid) MarshalJSON() ([]byte, error) {
	rows := make([][]int, g.H)
	for y := 0; y < g.H; y++ {
		row := make([]int, g.W)
		for x := 0; x < g.W; x++ {
			row[x] = int(g.Cells[g.Index(x, y)])
		}
		rows[y] = row
	}
	return json.Marshal(rows)
}

func (g *Grid) UnmarshalJSON(data []byte) error {
	var rows [][]int
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	g.H = len(rows)
	g.W = 0
	if g.H > 0 {
		g.W = len(rows[0])
	}
	g.Cells = make([]uint8, 0, g.W*g.H)
	for _, row := range rows {
		for _, v := range row {
			g.Cells = append(g.Cells, uint8(v))
		}
	}
	return nil
}
