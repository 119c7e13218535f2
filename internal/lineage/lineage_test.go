package lineage

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lichtenberg/internal/core"
	"lichtenberg/internal/model"
	"lichtenberg/internal/sim"
	prng "lichtenberg/pkg/core"
)

// handGrid builds:
//
//	R . T . .
//	. I P Q T
//	. . R . .
//
// where the lower R roots P, the upper T grows from P, and Q/T extend right.
// The top-left R is a lone root and I is insulated.
func handGrid(t *testing.T) *core.Grid {
	t.Helper()
	g, err := core.NewGrid(5, 3)
	require.NoError(t, err)
	set := func(x, y int, d core.Direction) {
		g.SetBroken(x, y)
		g.SetDir(x, y, d)
	}
	set(0, 0, core.DirNone)
	set(2, 2, core.DirNone)
	set(2, 1, core.DirDown)
	set(2, 0, core.DirDown)
	set(3, 1, core.DirLeft)
	set(4, 1, core.DirLeft)
	g.SetBroken(1, 1)
	g.SetInsulated(1, 1)
	return g
}

func pts(xy ...int) []core.Point {
	out := make([]core.Point, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, core.Point{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func TestTreeStructure(t *testing.T) {
	tr := New(handGrid(t))

	assert.Equal(t, tr.ID(2, 1), tr.Parent(tr.ID(2, 0)))
	assert.Equal(t, tr.ID(2, 2), tr.Parent(tr.ID(2, 1)))
	assert.Equal(t, tr.Root(), tr.Parent(tr.ID(2, 2)))
	assert.Equal(t, NoNode, tr.Parent(tr.Root()))
	assert.ElementsMatch(t, []NodeID{tr.ID(2, 0), tr.ID(3, 1)}, tr.Children(tr.ID(2, 1)))
	assert.ElementsMatch(t, []NodeID{tr.ID(0, 0), tr.ID(2, 2)}, tr.Children(tr.Root()))

	n := tr.Node(4, 1)
	assert.True(t, n.Linked)
	assert.Equal(t, 4, n.Level)
	assert.Equal(t, 4, n.X)

	assert.False(t, tr.Node(1, 1).Linked, "insulated cells are not roots")
	assert.False(t, tr.Node(0, 2).Linked)
	assert.Equal(t, NoNode, tr.Node(0, 2).Parent)

	assert.Equal(t, tr.ID(2, 2), tr.Base(tr.ID(4, 1)))
	assert.Equal(t, NoNode, tr.Base(tr.ID(0, 2)))
}

func TestLeaves(t *testing.T) {
	tr := New(handGrid(t))
	want := []Leaf{
		{ID: tr.ID(0, 0), X: 0, Y: 0, Depth: 1},
		{ID: tr.ID(2, 0), X: 2, Y: 0, Depth: 3},
		{ID: tr.ID(4, 1), X: 4, Y: 1, Depth: 4},
	}
	assert.Empty(t, cmp.Diff(want, tr.Leaves()))
}

func TestPath(t *testing.T) {
	tr := New(handGrid(t))
	tests := []struct {
		name           string
		x1, y1, x2, y2 int
		want           []core.Point
	}{
		{"same cell", 3, 1, 3, 1, pts(3, 1)},
		{"across branches", 2, 0, 4, 1, pts(2, 0, 2, 1, 3, 1, 4, 1)},
		{"to ancestor", 4, 1, 2, 2, pts(4, 1, 3, 1, 2, 1, 2, 2)},
		{"from ancestor", 2, 2, 4, 1, pts(2, 2, 2, 1, 3, 1, 4, 1)},
		{"different roots", 0, 0, 2, 0, nil},
		{"unbroken end", 2, 0, 0, 2, nil},
		{"insulated end", 1, 1, 2, 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.Path(tt.x1, tt.y1, tt.x2, tt.y2)
			assert.Empty(t, cmp.Diff(tt.want, got))
		})
	}
}

func TestTreeMatchesGrownGrid(t *testing.T) {
	s, err := sim.New(30, 30, model.NewUniform(prng.NewRNG(8)), sim.AllDirections())
	require.NoError(t, err)
	s.ForceBreak(5, 5)
	s.ForceBreak(24, 24)
	s.InsulateRect(14, 0, 16, 30, true)
	s.Run(sim.DefaultMaxRounds, nil, nil)
	g := s.Grid()
	tr := New(g)

	var broken []core.Point
	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			c := g.Cell(x, y)
			if !c.Broken || c.Insulated {
				continue
			}
			broken = append(broken, core.Point{X: x, Y: y})
			n := tr.Node(x, y)
			require.True(t, n.Linked, "broken cell (%d,%d) unlinked", x, y)
			assert.Equal(t, c.Depth, n.Depth)
			if c.Direction == core.DirNone {
				assert.Equal(t, tr.Root(), n.Parent)
				continue
			}
			dx, dy := c.Direction.Offset()
			assert.Equal(t, tr.ID(x+dx, y+dy), n.Parent, "parent of (%d,%d)", x, y)
		}
	}

	for _, l := range tr.Leaves() {
		require.Empty(t, tr.Children(l.ID))
		require.Len(t, tr.Ancestors(l.ID), l.Depth)
	}

	rng := prng.NewRNG(1)
	for i := 0; i < 200; i++ {
		a, b := broken[rng.IntN(len(broken))], broken[rng.IntN(len(broken))]
		ab := tr.Path(a.X, a.Y, b.X, b.Y)
		ba := tr.Path(b.X, b.Y, a.X, a.Y)
		sameRoot := tr.Base(tr.ID(a.X, a.Y)) == tr.Base(tr.ID(b.X, b.Y))
		if !sameRoot {
			require.Empty(t, ab)
			require.Empty(t, ba)
			continue
		}
		require.NotEmpty(t, ab)
		require.Equal(t, a, ab[0])
		require.Equal(t, b, ab[len(ab)-1])
		for j := 1; j < len(ab); j++ {
			d := abs(ab[j].X-ab[j-1].X) + abs(ab[j].Y-ab[j-1].Y)
			require.Equal(t, 1, d, "path step %d not adjacent", j)
		}
		reversed := slices.Clone(ba)
		slices.Reverse(reversed)
		require.Empty(t, cmp.Diff(ab, reversed))
		require.Equal(t, []core.Point{a}, tr.Path(a.X, a.Y, a.X, a.Y))
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
