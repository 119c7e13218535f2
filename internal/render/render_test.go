package render

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lichtenberg/internal/core"
	"lichtenberg/internal/field"
	"lichtenberg/internal/lineage"
)

// chain grid: root at (0,0), growing right to (3,0) with a side leaf at (1,1).
func chainGrid(t *testing.T) *core.Grid {
	t.Helper()
	g, err := core.NewGrid(4, 3)
	require.NoError(t, err)
	g.SetBroken(0, 0)
	for x := 1; x < 4; x++ {
		g.SetBroken(x, 0)
		g.SetDir(x, 0, core.DirLeft)
	}
	g.SetBroken(1, 1)
	g.SetDir(1, 1, core.DirUp)
	g.SetBroken(3, 2)
	g.SetInsulated(3, 2)
	g.SetDepth(0, 0, 4)
	g.SetDepth(1, 0, 3)
	g.SetDepth(2, 0, 2)
	g.SetDepth(3, 0, 1)
	g.SetDepth(1, 1, 1)
	return g
}

func TestStatesAndPalette(t *testing.T) {
	g := chainGrid(t)
	states := States(g, make([]uint8, 2))
	require.Len(t, states, 12)
	assert.Equal(t, StateBroken, states[0])
	assert.Equal(t, StateEmpty, states[4])
	assert.Equal(t, StateInsulated, states[11])

	mono := Mono(g)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, mono.RGBAAt(2, 0))
	assert.Equal(t, color.RGBA{A: 0xff}, mono.RGBAAt(3, 2), "mono hides insulation")

	ins := Insulation(g)
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, ins.RGBAAt(3, 2))
	assert.Equal(t, color.RGBA{A: 0xff}, ins.RGBAAt(0, 2))

	buf := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	FillPaletteRGBA(buf, []uint8{0, 1}, nil)
	assert.Equal(t, make([]byte, 8), buf)
}

func TestGray(t *testing.T) {
	g := chainGrid(t)
	img := Gray(g, 1, 1)
	assert.Equal(t, uint8(255), img.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(127), img.GrayAt(2, 0).Y)
	assert.Equal(t, uint8(0), img.GrayAt(3, 2).Y)

	dim := Gray(g, 2, 0.5)
	assert.Equal(t, uint8(31), dim.GrayAt(2, 0).Y)

	empty, err := core.NewGrid(2, 2)
	require.NoError(t, err)
	assert.Equal(t, make([]uint8, 4), Gray(empty, 1, 1).Pix)
}

func TestBranches(t *testing.T) {
	tr := lineage.New(chainGrid(t))
	leaves := LongestLeaves(tr, 1)
	require.Len(t, leaves, 1)
	assert.Equal(t, 3, leaves[0].X)
	assert.Equal(t, 4, leaves[0].Depth)
	assert.Len(t, LongestLeaves(tr, -1), 2)

	img := Branches(tr, 1, 0)
	for x := 0; x < 4; x++ {
		assert.Equal(t, uint8(0xff), img.GrayAt(x, 0).Y)
	}
	assert.Equal(t, uint8(0), img.GrayAt(1, 1).Y)

	trimmed := Branches(tr, 2, 2)
	assert.Equal(t, uint8(0), trimmed.GrayAt(3, 0).Y)
	assert.Equal(t, uint8(0), trimmed.GrayAt(1, 1).Y)
	assert.Equal(t, uint8(0xff), trimmed.GrayAt(2, 0).Y)
}

func TestFieldImages(t *testing.T) {
	f, err := field.New(5, 5)
	require.NoError(t, err)
	f.Fix(2, 2, 1)
	f.Solve(field.DefaultConfig())
	f.Normalize()

	img := Field(f)
	assert.Equal(t, uint8(255), img.GrayAt(2, 2).Y)
	assert.Equal(t, uint8(0), img.GrayAt(0, 0).Y)
	assert.Greater(t, img.GrayAt(2, 1).Y, img.GrayAt(1, 1).Y)
}

func TestWriters(t *testing.T) {
	dir := t.TempDir()
	g := chainGrid(t)

	require.NoError(t, SavePNG(filepath.Join(dir, "mono.png"), Mono(g)))

	v, err := NewVideoRecorder(filepath.Join(dir, "run.avi"), 4, 3, 8, 10)
	require.NoError(t, err)
	require.NoError(t, v.AddFrame(g, 0))
	require.NoError(t, v.AddFrame(g, 1))
	assert.Equal(t, 2, v.Frames())
	require.NoError(t, v.Close())

	var log GrowthLog
	for r := 0; r < 5; r++ {
		log.Record(r, r*r)
	}
	require.NoError(t, GrowthChart(filepath.Join(dir, "growth.png"), log))
	assert.Error(t, GrowthChart(filepath.Join(dir, "short.png"), GrowthLog{}))

	tr := lineage.New(g)
	require.NoError(t, LeafHistogram(filepath.Join(dir, "leaves.png"), tr.Leaves(), 4))
	assert.Error(t, LeafHistogram(filepath.Join(dir, "none.png"), nil, 4))

	for _, name := range []string{"mono.png", "run.avi", "growth.png", "leaves.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}
}
