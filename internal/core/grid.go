package core

import (
	"errors"
	"fmt"
)

// ErrInvalidSize is returned when a grid is requested with a non-positive dimension.
var ErrInvalidSize = errors.New("grid dimensions must be positive")

// Cell is the per-cell breakdown state.
//
// Depth is meaningless until the simulator's post pass has run.
type Cell struct {
	Direction Direction
	Depth     int
	Broken    bool
	Insulated bool
}

// Grid stores a 2D grid of cells in row-major order. Its dimensions are fixed at
// construction. Accessors do no bounds checking; out-of-range coordinates are a
// caller bug.
type Grid struct {
	w, h  int
	cells []Cell
}

// NewGrid allocates a zeroed grid with the given dimensions.
func NewGrid(w, h int) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	return &Grid{w: w, h: h, cells: make([]Cell, w*h)}, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.w }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.h }

// Size returns the grid dimensions.
func (g *Grid) Size() Size { return Size{W: g.w, H: g.h} }

// Cells exposes the backing slice so callers can read values directly.
func (g *Grid) Cells() []Cell { return g.cells }

// Index returns the linear slice index for coordinates (x, y).
func (g *Grid) Index(x, y int) int { return y*g.w + x }

// In reports whether (x, y) lies inside the grid.
func (g *Grid) In(x, y int) bool { return x >= 0 && x < g.w && y >= 0 && y < g.h }

// Clear resets every cell to the zero state.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = Cell{}
	}
}

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	c := &Grid{w: g.w, h: g.h, cells: make([]Cell, len(g.cells))}
	copy(c.cells, g.cells)
	return c
}

// Equal reports whether both grids have the same size and identical cells.
func (g *Grid) Equal(o *Grid) bool {
	if g.w != o.w || g.h != o.h {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Cell returns the cell at (x, y).
func (g *Grid) Cell(x, y int) Cell { return g.cells[y*g.w+x] }

// Broken reports whether (x, y) has broken down.
func (g *Grid) Broken(x, y int) bool { return g.cells[y*g.w+x].Broken }

// SetBroken marks (x, y) as broken.
func (g *Grid) SetBroken(x, y int) { g.cells[y*g.w+x].Broken = true }

// Dir returns the recorded parent direction of (x, y).
func (g *Grid) Dir(x, y int) Direction { return g.cells[y*g.w+x].Direction }

// SetDir records the parent direction of (x, y).
func (g *Grid) SetDir(x, y int, d Direction) { g.cells[y*g.w+x].Direction = d }

// Depth returns the depth metric of (x, y).
func (g *Grid) Depth(x, y int) int { return g.cells[y*g.w+x].Depth }

// SetDepth stores the depth metric of (x, y).
func (g *Grid) SetDepth(x, y, n int) { g.cells[y*g.w+x].Depth = n }

// AddDepth increments the depth metric of (x, y).
func (g *Grid) AddDepth(x, y int) { g.cells[y*g.w+x].Depth++ }

// Insulated reports whether (x, y) is masked out of growth.
func (g *Grid) Insulated(x, y int) bool { return g.cells[y*g.w+x].Insulated }

// SetInsulated marks (x, y) as insulated.
func (g *Grid) SetInsulated(x, y int) { g.cells[y*g.w+x].Insulated = true }

// MaxDepth scans the grid for the largest depth metric.
func (g *Grid) MaxDepth() int {
	maxDepth := 0
	for _, c := range g.cells {
		if c.Depth > maxDepth {
			maxDepth = c.Depth
		}
	}
	return maxDepth
}

// Count returns the number of broken cells that are not insulated.
func (g *Grid) Count() int {
	n := 0
	for _, c := range g.cells {
		if c.Broken && !c.Insulated {
			n++
		}
	}
	return n
}
