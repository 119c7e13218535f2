// Package app replays a finished discharge in a window. The replay logic is
// independent of the GUI so it builds and tests without the ebiten tag.
package app

import (
	"lichtenberg/internal/core"
	"lichtenberg/internal/lineage"
	"lichtenberg/internal/render"
)

// Replay reveals a finished grid one lineage level at a time: seeded roots
// first, then their children, and so on. Insulation is always visible and
// broken cells unreachable from any root appear with the last level.
type Replay struct {
	grid   *core.Grid
	tree   *lineage.Tree
	levels []int
	max    int
	shown  int
}

// NewReplay prepares a replay of g.
func NewReplay(g *core.Grid) *Replay {
	t := lineage.New(g)
	r := &Replay{grid: g, tree: t, levels: make([]int, len(g.Cells()))}
	for i, c := range g.Cells() {
		if !c.Broken || c.Insulated {
			continue
		}
		n := t.At(lineage.NodeID(i))
		r.levels[i] = n.Level
		if n.Level > r.max {
			r.max = n.Level
		}
	}
	for i, c := range g.Cells() {
		if c.Broken && !c.Insulated && r.levels[i] == 0 {
			r.levels[i] = r.max
		}
	}
	return r
}

// Size returns the grid dimensions.
func (r *Replay) Size() core.Size { return r.grid.Size() }

// Tree returns the lineage of the replayed grid.
func (r *Replay) Tree() *lineage.Tree { return r.tree }

// Level returns how many levels are visible.
func (r *Replay) Level() int { return r.shown }

// Levels returns the total number of levels.
func (r *Replay) Levels() int { return r.max }

// Done reports whether every level is visible.
func (r *Replay) Done() bool { return r.shown >= r.max }

// Advance reveals up to n more levels.
func (r *Replay) Advance(n int) {
	r.shown = min(r.shown+n, r.max)
}

// Restart hides every level again.
func (r *Replay) Restart() { r.shown = 0 }

// States writes the visible cell states into dst in the render.States
// encoding and returns it.
func (r *Replay) States(dst []uint8) []uint8 {
	dst = render.States(r.grid, dst)
	for i, s := range dst {
		if s == render.StateBroken && r.levels[i] > r.shown {
			dst[i] = render.StateEmpty
		}
	}
	return dst
}
