package sim

import "lichtenberg/internal/core"

// computeDepth assigns every broken cell the length of the longest chain of
// descendants ending at it, counting itself. Tips (broken cells no neighbor
// grew from) get 1; unbroken cells get 0.
//
// Each tip walks towards its root, raising ancestors to one more than the
// walker's depth. A walk stops at the first ancestor whose depth already
// exceeds the walker's; an ancestor that merely equals it is overwritten.
func (s *Simulator) computeDepth() {
	g := s.grid
	w, h := g.Width(), g.Height()
	var tips []core.Point
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.SetDepth(x, y, 0)
			if !g.Broken(x, y) || hasChild(g, x, y) {
				continue
			}
			g.SetDepth(x, y, 1)
			tips = append(tips, core.Point{X: x, Y: y})
		}
	}

	for _, tip := range tips {
		x, y, depth := tip.X, tip.Y, 1
		for {
			d := g.Dir(x, y)
			if d == core.DirNone {
				break
			}
			dx, dy := d.Offset()
			px, py := x+dx, y+dy
			if g.Depth(px, py) > depth {
				break
			}
			depth++
			g.SetDepth(px, py, depth)
			x, y = px, py
		}
	}
}

// hasChild reports whether some broken neighbor of (x, y) recorded it as parent.
func hasChild(g *core.Grid, x, y int) bool {
	for _, d := range core.Neighbors {
		dx, dy := d.Offset()
		nx, ny := x+dx, y+dy
		if g.In(nx, ny) && g.Broken(nx, ny) && g.Dir(nx, ny) == d.Opposite() {
			return true
		}
	}
	return false
}
