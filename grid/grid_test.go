package grid

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDir(t *testing.T) {
	for _, d := range Dirs {
		got, ok := ParseDir(d.String())
		require.True(t, ok)
		assert.Equal(t, d, got)
	}
	got, ok := ParseDir(" down ")
	require.True(t, ok)
	assert.Equal(t, Down, got)
	_, ok = ParseDir("NORTH")
	assert.False(t, ok)
}

func TestDirTurns(t *testing.T) {
	assert.Equal(t, Left, Up.TurnLeft())
	assert.Equal(t, Right, Up.TurnRight())
	assert.Equal(t, Down, Up.Back())
	assert.Equal(t, Up.Bit(), Down.OppBit())
}

func TestOpenHasOnlyBorder(t *testing.T) {
	g := Open(5, 4)
	assert.True(t, g.Has(0, 0, Up))
	assert.True(t, g.Has(0, 0, Left))
	assert.False(t, g.Has(0, 0, Right))
	assert.False(t, g.Has(2, 1, Up))
	assert.True(t, g.Has(4, 3, Down))
	assert.True(t, g.Has(4, 3, Right))
}

func TestSetEdgeSymmetric(t *testing.T) {
	g := Open(5, 5)
	g.SetEdge(2, 2, Right, true)
	assert.True(t, g.Has(2, 2, Right))
	assert.True(t, g.Has(3, 2, Left))

	g.SetEdge(2, 2, Right, false)
	assert.False(t, g.Has(2, 2, Right))
	assert.False(t, g.Has(3, 2, Left))

	// Edits touching out-of-bounds neighbors are dropped.
	g.SetEdge(0, 0, Left, false)
	assert.True(t, g.Has(0, 0, Left))
}

// A carved maze must be a spanning tree: every cell reachable and exactly
// n-1 open edges, which together imply a unique path between any two cells.
func TestPrimIsSpanningTree(t *testing.T) {
	for trial := 0; trial < 5; trial++ {
		g := Prim(10, 10)

		for y := 0; y < g.H; y++ {
			for x := 0; x < g.W; x++ {
				require.True(t, RouteExists(g.W, g.H, g.Mask, Point{0, 0}, Point{x, y}),
					"cell (%d,%d) unreachable", x, y)
			}
		}
		assert.Equal(t, g.W*g.H-1, g.OpenEdgeCount())
	}
}

func TestPrimKeepsBorder(t *testing.T) {
	g := Prim(8, 8)
	for x := 0; x < g.W; x++ {
		assert.True(t, g.Has(x, 0, Up))
		assert.True(t, g.Has(x, g.H-1, Down))
	}
	for y := 0; y < g.H; y++ {
		assert.True(t, g.Has(0, y, Left))
		assert.True(t, g.Has(g.W-1, y, Right))
	}
}

func TestRouteExistsBlocked(t *testing.T) {
	g := Open(4, 1)
	require.True(t, RouteExists(g.W, g.H, g.Mask, Point{0, 0}, Point{3, 0}))
	g.SetEdge(1, 0, Right, true)
	assert.False(t, RouteExists(g.W, g.H, g.Mask, Point{0, 0}, Point{3, 0}))
}

func TestPathEdgesUniquePath(t *testing.T) {
	g := Prim(10, 10)
	from := Point{5, 0}
	to := Point{0, 9}
	edges := PathEdges(g.W, g.H, g.Mask, from, to)
	require.NotNil(t, edges)

	// Walking the edges must land on the goal.
	c := from
	for _, e := range edges {
		require.Equal(t, Point{e.X, e.Y}, c)
		require.False(t, g.Has(e.X, e.Y, e.Dir))
		dx, dy := e.Dir.Delta()
		c = Point{c.X + dx, c.Y + dy}
	}
	assert.Equal(t, to, c)
}

func TestVisibleFromStopsAtWalls(t *testing.T) {
	g := Open(5, 5)
	g.SetEdge(2, 2, Right, true)
	seen := VisibleFrom(g.W, g.H, g.Mask, 2, 2)

	has := func(x, y int) bool {
		for _, idx := range seen {
			if idx == y*g.W+x {
				return true
			}
		}
		return false
	}
	assert.True(t, has(2, 2))
	assert.True(t, has(2, 0))
	assert.True(t, has(2, 4))
	assert.True(t, has(0, 2))
	assert.False(t, has(3, 2))
}

func TestGridJSONRoundTrip(t *testing.T) {
	g := Prim(6, 4)
	data, err := json.Marshal(g)
	require.NoError(t, err)

	var back Grid
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, g.W, back.W)
	assert.Equal(t, g.H, back.H)
	assert.Equal(t, g.Cells, back.Cells)
}
