package sim

import "lichtenberg/internal/core"

// ForceBreak marks (x, y) as a broken root. Out-of-range points are ignored.
func (s *Simulator) ForceBreak(x, y int) {
	if !s.grid.In(x, y) {
		return
	}
	s.grid.SetBroken(x, y)
	s.grid.SetDir(x, y, core.DirNone)
}

// Insulate marks (x, y) as insulated. Insulated cells count as broken so
// nothing grows into them, but they never spread. Out-of-range points are
// ignored.
func (s *Simulator) Insulate(x, y int) {
	if !s.grid.In(x, y) {
		return
	}
	s.grid.SetBroken(x, y)
	s.grid.SetInsulated(x, y)
	s.grid.SetDir(x, y, core.DirNone)
}

// InsulateRect insulates the half-open rectangle [x1, x2) x [y1, y2). Corners
// may be given in any order. With fill false only the outline is insulated:
// rows y1 and y2-1 and columns x1 and x2-1. The rectangle is clipped to the
// grid.
func (s *Simulator) InsulateRect(x1, y1, x2, y2 int, fill bool) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	x1, y1 = max(x1, 0), max(y1, 0)
	x2, y2 = min(x2, s.grid.Width()), min(y2, s.grid.Height())
	if fill {
		for y := y1; y < y2; y++ {
			s.insulateSpan(x1, x2-1, y)
		}
		return
	}
	if x1 >= x2 || y1 >= y2 {
		return
	}
	s.insulateSpan(x1, x2-1, y1)
	s.insulateSpan(x1, x2-1, y2-1)
	for y := y1 + 1; y < y2-1; y++ {
		s.Insulate(x1, y)
		s.Insulate(x2-1, y)
	}
}

// InsulateCircle insulates a Michener circle of radius r around (cx, cy),
// either as an outline or filled. The decision variable and radius step are
// updated before each octant is plotted. A radius of 0 insulates only the
// centre and negative radii do nothing.
func (s *Simulator) InsulateCircle(cx, cy, r int, fill bool) {
	if r < 0 {
		return
	}
	if r == 0 {
		s.Insulate(cx, cy)
		return
	}
	dx, dy := 0, r
	d := 3 - 2*r
	for dx <= dy {
		if d < 0 {
			d += 6 + 4*dx
		} else {
			d += 10 + 4*dx - 4*dy
			dy--
		}
		if fill {
			s.insulateSpan(cx-dy, cx+dy, cy+dx)
			s.insulateSpan(cx-dy, cx+dy, cy-dx)
			s.insulateSpan(cx-dx, cx+dx, cy+dy)
			s.insulateSpan(cx-dx, cx+dx, cy-dy)
		} else {
			for _, p := range [8][2]int{
				{cx + dy, cy + dx}, {cx - dy, cy + dx}, {cx + dy, cy - dx}, {cx - dy, cy - dx},
				{cx + dx, cy + dy}, {cx - dx, cy + dy}, {cx + dx, cy - dy}, {cx - dx, cy - dy},
			} {
				s.Insulate(p[0], p[1])
			}
		}
		dx++
	}
}

// insulateSpan insulates row y from x1 to x2 inclusive.
func (s *Simulator) insulateSpan(x1, x2, y int) {
	for x := x1; x <= x2; x++ {
		s.Insulate(x, y)
	}
}
