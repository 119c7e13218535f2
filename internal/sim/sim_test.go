package sim

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lichtenberg/internal/core"
	"lichtenberg/internal/model"
	prng "lichtenberg/pkg/core"
)

type acceptAll struct {
	tested    []core.Point
	refreshes int
	breaks    int
}

func (a *acceptAll) Test(x, y int) bool {
	a.tested = append(a.tested, core.Point{X: x, Y: y})
	return true
}

func (a *acceptAll) Refresh(*core.Grid, []core.Point) { a.refreshes++ }

func (a *acceptAll) OnBreak(int, int) { a.breaks++ }

func newSim(t *testing.T, w, h int, m model.Model, dirs Directions) *Simulator {
	t.Helper()
	s, err := New(w, h, m, dirs)
	require.NoError(t, err)
	return s
}

func TestNewValidates(t *testing.T) {
	_, err := New(4, 4, nil, AllDirections())
	assert.ErrorIs(t, err, ErrNilModel)
	_, err = New(0, 4, &acceptAll{}, AllDirections())
	assert.ErrorIs(t, err, core.ErrInvalidSize)
}

func TestSingleRoundFromCenter(t *testing.T) {
	for seed := int64(0); seed < 16; seed++ {
		s := newSim(t, 5, 5, model.NewUniform(prng.NewRNG(seed)), AllDirections())
		s.ForceBreak(2, 2)
		res := s.Run(1, nil, nil)

		flips := prng.NewRNG(seed)
		var want []core.Point
		rejected := false
		for _, d := range core.Neighbors {
			dx, dy := d.Offset()
			n := core.Point{X: 2 + dx, Y: 2 + dy}
			if flips.Bool() {
				want = append(want, n)
				assert.Equal(t, d.Opposite(), s.Grid().Dir(n.X, n.Y), "seed %d neighbor %v", seed, n)
			} else {
				rejected = true
				assert.False(t, s.Grid().Broken(n.X, n.Y))
			}
		}
		if rejected {
			want = append(want, core.Point{X: 2, Y: 2})
		}
		got := append([]core.Point{}, s.Frontier()...)
		require.Empty(t, cmp.Diff(want, got), "seed %d", seed)
		assert.Equal(t, 1, res.Rounds)
		assert.Equal(t, RoundLimit, res.Reason)
		assert.Equal(t, core.DirNone, s.Grid().Dir(2, 2))
	}
}

func TestRunTerminatesWithAcceptAll(t *testing.T) {
	m := &acceptAll{}
	s := newSim(t, 20, 20, m, AllDirections())
	s.ForceBreak(10, 10)
	res := s.Run(3, nil, nil)
	assert.Equal(t, Result{Rounds: 3, Reason: RoundLimit, Broken: 25}, res)
	assert.Equal(t, 3, m.refreshes)

	res = s.Run(DefaultMaxRounds, nil, nil)
	assert.Equal(t, Exhausted, res.Reason)
	assert.Equal(t, 400, res.Broken)
	assert.LessOrEqual(t, res.Rounds, 40)
	assert.Empty(t, s.Frontier())
}

func TestRunZeroRounds(t *testing.T) {
	m := &acceptAll{}
	s := newSim(t, 3, 3, m, AllDirections())
	s.ForceBreak(1, 1)
	res := s.Run(0, nil, nil)
	assert.Equal(t, Result{Rounds: 0, Reason: RoundLimit, Broken: 1}, res)
	assert.Zero(t, m.refreshes)

	empty := newSim(t, 3, 3, m, AllDirections())
	assert.Equal(t, Result{Reason: Exhausted}, empty.Run(10, nil, nil))
}

func TestInsulatedCellsAreNeverTested(t *testing.T) {
	m := &acceptAll{}
	s := newSim(t, 12, 12, m, AllDirections())
	s.InsulateRect(3, 3, 8, 8, false)
	s.InsulateCircle(10, 2, 1, true)
	s.ForceBreak(0, 0)
	s.ForceBreak(5, 5)
	res := s.Run(DefaultMaxRounds, nil, nil)
	require.Equal(t, Exhausted, res.Reason)

	g := s.Grid()
	for _, p := range m.tested {
		require.False(t, g.Insulated(p.X, p.Y), "insulated cell %v was tested", p)
	}
	insulated := 0
	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			c := g.Cell(x, y)
			if c.Insulated {
				insulated++
				require.True(t, c.Broken)
				require.Equal(t, core.DirNone, c.Direction)
			}
		}
	}
	assert.Equal(t, 144-insulated, res.Broken)
	assert.Equal(t, m.breaks, res.Broken-2)
}

func TestBrokenCellsNeverChange(t *testing.T) {
	s := newSim(t, 16, 16, model.NewUniform(prng.NewRNG(3)), AllDirections())
	s.ForceBreak(8, 8)
	var prev *core.Grid
	s.Run(DefaultMaxRounds, nil, func(round, _ int, g *core.Grid) bool {
		if prev != nil {
			for i, c := range prev.Cells() {
				if c.Broken {
					now := g.Cells()[i]
					require.True(t, now.Broken, "round %d cell %d unbroken", round, i)
					require.Equal(t, c.Direction, now.Direction, "round %d cell %d redirected", round, i)
				}
			}
		}
		prev = g.Clone()
		return false
	})
}

func TestDirectionMask(t *testing.T) {
	s := newSim(t, 6, 3, &acceptAll{}, Directions{Right: true})
	s.ForceBreak(0, 1)
	res := s.Run(DefaultMaxRounds, nil, nil)
	assert.Equal(t, Exhausted, res.Reason)
	assert.Equal(t, 6, res.Rounds)
	for x := 1; x < 6; x++ {
		assert.Equal(t, core.DirLeft, s.Grid().Dir(x, 1))
	}
	assert.Equal(t, 6, res.Broken)
}

func TestCancelFromBreakFinishesCell(t *testing.T) {
	s := newSim(t, 5, 5, &acceptAll{}, AllDirections())
	s.ForceBreak(2, 2)
	s.ForceBreak(0, 0)
	calls := 0
	res := s.Run(DefaultMaxRounds, func(int, int) bool {
		calls++
		return true
	}, nil)
	assert.Equal(t, Cancelled, res.Reason)
	assert.Equal(t, 1, res.Rounds)
	// (0,0) is visited first and both of its in-grid neighbors break before the abort.
	assert.Equal(t, 2, calls)
	assert.Equal(t, 4, res.Broken)
	assert.False(t, s.Grid().Broken(2, 1))
}

type recordingModel struct {
	grid *core.Grid
	log  *[]string
}

func (r *recordingModel) Test(int, int) bool { return true }

func (r *recordingModel) Refresh(*core.Grid, []core.Point) {}

func (r *recordingModel) OnBreak(x, y int) {
	*r.log = append(*r.log, fmt.Sprintf("model %d,%d broken=%t dir=%v", x, y, r.grid.Broken(x, y), r.grid.Dir(x, y)))
}

func TestBreakHooksOrder(t *testing.T) {
	var log []string
	m := &recordingModel{log: &log}
	s := newSim(t, 3, 2, m, Directions{Right: true})
	m.grid = s.Grid()
	s.ForceBreak(0, 0)
	res := s.Run(DefaultMaxRounds, func(x, y int) bool {
		log = append(log, fmt.Sprintf("break %d,%d", x, y))
		return false
	}, nil)
	require.Equal(t, Exhausted, res.Reason)

	want := []string{
		fmt.Sprintf("model 1,0 broken=true dir=%v", core.DirLeft),
		"break 1,0",
		fmt.Sprintf("model 2,0 broken=true dir=%v", core.DirLeft),
		"break 2,0",
	}
	assert.Empty(t, cmp.Diff(want, log))
}

func TestCancelFromRound(t *testing.T) {
	m := &acceptAll{}
	s := newSim(t, 5, 5, m, AllDirections())
	s.ForceBreak(2, 2)
	res := s.Run(DefaultMaxRounds, nil, func(round, maxRounds int, _ *core.Grid) bool {
		assert.Equal(t, DefaultMaxRounds, maxRounds)
		return round == 2
	})
	assert.Equal(t, Result{Rounds: 2, Reason: Cancelled, Broken: 13}, res)
	assert.Equal(t, 3, m.refreshes)
}

func TestRunIsDeterministic(t *testing.T) {
	for _, name := range []string{"uniform", "noise", "dla"} {
		run := func() *core.Grid {
			m, err := model.Build(name, core.Size{W: 24, H: 24}, prng.NewRNG(42), nil)
			require.NoError(t, err)
			s := newSim(t, 24, 24, m, AllDirections())
			s.ForceBreak(12, 12)
			s.Run(200, nil, nil)
			return s.Grid()
		}
		a, b := run(), run()
		assert.True(t, a.Equal(b), "%s runs diverged", name)
	}
}

func TestPotentialModelsGrow(t *testing.T) {
	for _, name := range []string{"dbm", "fastdbm"} {
		m, err := model.Build(name, core.Size{W: 12, H: 12}, prng.NewRNG(1), nil)
		require.NoError(t, err)
		s := newSim(t, 12, 12, m, AllDirections())
		s.ForceBreak(6, 0)
		res := s.Run(30, nil, nil)
		assert.Greater(t, res.Broken, 1, name)
	}
}

func TestDepthPass(t *testing.T) {
	s := newSim(t, 5, 3, &acceptAll{}, AllDirections())
	g := s.Grid()
	set := func(x, y int, d core.Direction) {
		g.SetBroken(x, y)
		g.SetDir(x, y, d)
	}
	set(2, 2, core.DirNone)
	set(2, 1, core.DirDown)
	set(2, 0, core.DirDown)
	set(3, 1, core.DirLeft)
	set(4, 1, core.DirLeft)
	g.SetDepth(0, 0, 9)

	s.computeDepth()
	want := [][]int{
		{0, 0, 1, 0, 0},
		{0, 0, 3, 2, 1},
		{0, 0, 4, 0, 0},
	}
	for y, row := range want {
		for x, d := range row {
			assert.Equal(t, d, g.Depth(x, y), "depth at (%d,%d)", x, y)
		}
	}
	assert.Equal(t, 4, g.MaxDepth())
}

func TestDepthAfterStraightRun(t *testing.T) {
	s := newSim(t, 5, 1, &acceptAll{}, Directions{Right: true})
	s.ForceBreak(0, 0)
	s.Run(DefaultMaxRounds, nil, nil)
	for x := 0; x < 5; x++ {
		assert.Equal(t, 5-x, s.Grid().Depth(x, 0))
	}
}

func insulatedCells(g *core.Grid, cx, cy int) []core.Point {
	var out []core.Point
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			if g.Insulated(x, y) {
				out = append(out, core.Point{X: x - cx, Y: y - cy})
			}
		}
	}
	return out
}

func TestSeeding(t *testing.T) {
	s := newSim(t, 7, 7, &acceptAll{}, AllDirections())
	s.ForceBreak(-1, 3)
	s.ForceBreak(3, 7)
	assert.Zero(t, s.Grid().Count())

	s.InsulateRect(5, 5, 1, 1, false)
	assert.Len(t, insulatedCells(s.Grid(), 0, 0), 12)
	assert.True(t, s.Grid().Insulated(1, 1))
	assert.True(t, s.Grid().Insulated(4, 4))
	assert.True(t, s.Grid().Insulated(1, 3))
	assert.False(t, s.Grid().Insulated(3, 3))
	assert.False(t, s.Grid().Insulated(5, 5))
	assert.False(t, s.Grid().Insulated(5, 1))

	s.InsulateRect(-3, -3, 1, 1, true)
	assert.True(t, s.Grid().Insulated(0, 0))
	assert.False(t, s.Grid().Insulated(1, 0))
	assert.False(t, s.Grid().Insulated(0, 1))

	r := newSim(t, 7, 7, &acceptAll{}, AllDirections())
	r.InsulateRect(2, 2, 5, 5, true)
	r.InsulateRect(6, 6, 6, 9, false)
	var want []core.Point
	for y := 2; y < 5; y++ {
		for x := 2; x < 5; x++ {
			want = append(want, core.Point{X: x, Y: y})
		}
	}
	assert.Empty(t, cmp.Diff(want, insulatedCells(r.Grid(), 0, 0)))
}

func TestInsulateCircleCells(t *testing.T) {
	ring3 := []core.Point{
		{X: 0, Y: -3},
		{X: -1, Y: -2}, {X: 1, Y: -2},
		{X: -2, Y: -1}, {X: 2, Y: -1},
		{X: -3, Y: 0}, {X: 3, Y: 0},
		{X: -2, Y: 1}, {X: 2, Y: 1},
		{X: -1, Y: 2}, {X: 1, Y: 2},
		{X: 0, Y: 3},
	}
	var disc3 []core.Point
	for y := -3; y <= 3; y++ {
		half := 3 - max(y, -y)
		for x := -half; x <= half; x++ {
			disc3 = append(disc3, core.Point{X: x, Y: y})
		}
	}
	centre := []core.Point{{X: 0, Y: 0}}

	tests := []struct {
		name string
		r    int
		fill bool
		want []core.Point
	}{
		{"r0", 0, false, centre},
		{"r1 outline", 1, false, centre},
		{"r1 filled", 1, true, centre},
		{"r3 outline", 3, false, ring3},
		{"r3 filled", 3, true, disc3},
		{"negative", -2, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSim(t, 9, 9, &acceptAll{}, AllDirections())
			s.InsulateCircle(4, 4, tt.r, tt.fill)
			assert.Empty(t, cmp.Diff(tt.want, insulatedCells(s.Grid(), 4, 4)))
		})
	}
	assert.Len(t, disc3, 25)

	clipped := newSim(t, 4, 4, &acceptAll{}, AllDirections())
	clipped.InsulateCircle(0, 0, 3, true)
	assert.True(t, clipped.Grid().Insulated(3, 0))
	assert.True(t, clipped.Grid().Insulated(2, 1))
	assert.False(t, clipped.Grid().Insulated(3, 1))
}

func TestReasonString(t *testing.T) {
	assert.Equal(t, "round-limit", RoundLimit.String())
	assert.Equal(t, "Reason(9)", Reason(9).String())
}
