package grid

// MaskFn supplies the wall mask actually in force at a cell. Simulations
// that layer editable walls over a locked maze pass their combined mask
// here; plain mazes pass Grid.Mask.
type MaskFn func(x, y int) uint8

// RouteExists reports whether a path free of wall bits connects from and
// to. Breadth-first flood fill over the supplied mask.
func RouteExists(w, h int, mask MaskFn, from, to Point) bool {
	if from.X < 0 || from.X >= w || from.Y < 0 || from.Y >= h {
		return false
	}
	if to.X < 0 || to.X >= w || to.Y < 0 || to.Y >= h {
		return false
	}
	if from == to {
		return true
	}

	visited := make([]bool, w*h)
	queue := []Point{from}
	visited[from.Y*w+from.X] = true

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]

		m := mask(c.X, c.Y)
		for _, d := range Dirs {
			if m&d.Bit() != 0 {
				continue
			}
			dx, dy := d.Delta()
			nx, ny := c.X+dx, c.Y+dy
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			if nx == to.X && ny == to.Y {
				return true
			}
			idx := ny*w + nx
			if visited[idx] {
				continue
			}
			visited[idx] = true
			queue = append(queue, Point{nx, ny})
		}
	}

	return false
}

// Edge identifies a cell edge by its near cell and direction.
type Edge struct {
	X, Y int
	Dir  Dir
}

// PathEdges returns the edges of the path from from to to, in travel
// order, via a breadth-first predecessor walk. On a spanning tree this is
// the unique path; nil when to is unreachable.
func PathEdges(w, h int, mask MaskFn, from, to Point) []Edge {
	type pred struct {
		px, py int
		d      Dir
		seen   bool
	}
	prev := make([]pred, w*h)
	prev[from.Y*w+from.X] = pred{px: from.X, py: from.Y, seen: true}
	queue := []Point{from}

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == to {
			break
		}

		m := mask(c.X, c.Y)
		for _, d := range Dirs {
			if m&d.Bit() != 0 {
				continue
			}
			dx, dy := d.Delta()
			nx, ny := c.X+dx, c.Y+dy
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			idx := ny*w + nx
			if prev[idx].seen {
				continue
			}
			prev[idx] = pred{px: c.X, py: c.Y, d: d, seen: true}
			queue = append(queue, Point{nx, ny})
		}
	}

	if !prev[to.Y*w+to.X].seen {
		return nil
	}

	var edges []Edge
	for c := to; c != from; {
		p := prev[c.Y*w+c.X]
		edges = append(edges, Edge{X: p.px, Y: p.py, Dir: p.d})
		c = Point{p.px, p.py}
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}
	return edges
}

// VisibleFrom walks each direction from (x, y) until a wall blocks and
// returns the indexes of every cell seen, the origin included. This is the
// line-of-sight reveal used by the fog-of-war games.
func VisibleFrom(w, h int, mask MaskFn, x, y int) []int {
	visible := []int{y*w + x}
	for _, d := range Dirs {
		cx, cy := x, y
		for {
			if mask(cx, cy)&d.Bit() != 0 {
				break
			}
			dx, dy := d.Delta()
			nx, ny := cx+dx, cy+dy
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				break
			}
			visible = append(visible, ny*w+nx)
			cx, cy = nx, ny
		}
	}
	return visible
}
