package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lichtenberg/internal/sim"
)

const sampleRun = `
width: 40
height: 30
seed: 7
model:
  name: dla
  params:
    particles: "120"
directions: [down, left, right]
max_rounds: 500
seeds:
  - {x: 20, y: 0}
insulation:
  rects:
    - {x1: 5, y1: 10, x2: 12, y2: 14, fill: true}
  circles:
    - {x: 30, y: 20, r: 4}
output:
  prefix: out/dla
  images: [mono, gray]
  gamma: 0.6
`

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(writeFile(t, sampleRun))
	require.NoError(t, err)
	assert.Equal(t, 40, c.Width)
	assert.Equal(t, int64(7), c.Seed)
	assert.Equal(t, "dla", c.Model.Name)
	assert.Equal(t, "120", c.Model.Params["particles"])
	assert.Equal(t, []Point{{X: 20, Y: 0}}, c.Seeds)
	assert.Equal(t, 0.6, c.Output.Gamma)
	assert.Equal(t, 10, c.Output.Branches, "unset fields keep defaults")

	dirs, err := c.SimDirections()
	require.NoError(t, err)
	assert.Equal(t, sim.Directions{Down: true, Left: true, Right: true}, dirs)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LICHTENBERG_SEED", "99")
	c, err := Load(writeFile(t, sampleRun))
	require.NoError(t, err)
	assert.Equal(t, int64(99), c.Seed)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LICHTENBERG_SEED", "41")
	t.Setenv("LICHTENBERG_MAX_ROUNDS", "12")
	c := FromEnv()
	assert.Equal(t, int64(41), c.Seed)
	assert.Equal(t, 12, c.MaxRounds)
	assert.Equal(t, Default().Width, c.Width)

	t.Setenv("LICHTENBERG_SEED", "not-a-number")
	assert.Equal(t, Default().Seed, FromEnv().Seed)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, "width: [1"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "model: {name: lightning}"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"negative rounds", func(c *Config) { c.MaxRounds = -1 }},
		{"bad direction", func(c *Config) { c.Directions = []string{"sideways"} }},
		{"no seeds", func(c *Config) { c.Seeds = nil }},
		{"seed outside", func(c *Config) { c.Seeds = []Point{{X: 200, Y: 0}} }},
		{"negative radius", func(c *Config) { c.Insulation.Circles = []Circle{{R: -2}} }},
		{"image kind", func(c *Config) { c.Output.Images = []string{"sepia"} }},
		{"gamma", func(c *Config) { c.Output.Gamma = 0 }},
		{"stop edge", func(c *Config) { c.StopWhen.Edge = "middle" }},
		{"stop row", func(c *Config) { row := 200; c.StopWhen.Row = &row }},
		{"stop column", func(c *Config) { col := -1; c.StopWhen.Column = &col }},
	}
	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalid)
		})
	}
}

func TestSetParams(t *testing.T) {
	c := Default()
	require.NoError(t, c.SetParams(map[string]string{
		"octaves":        "3",
		"run.seed":       "12",
		"run.width":      "64",
		"run.max_rounds": "10",
	}))
	assert.Equal(t, "3", c.Model.Params["octaves"])
	assert.Equal(t, int64(12), c.Seed)
	assert.Equal(t, 64, c.Width)
	assert.Equal(t, 10, c.MaxRounds)

	assert.ErrorIs(t, c.SetParams(map[string]string{"run.colour": "1"}), ErrInvalid)
	assert.ErrorIs(t, c.SetParams(map[string]string{"run.height": "tall"}), ErrInvalid)
}

func TestStopFunc(t *testing.T) {
	c := Default()
	c.Width, c.Height = 10, 8
	assert.Nil(t, c.StopFunc())

	c.StopWhen.Edge = EdgeBottom
	stop := c.StopFunc()
	require.NotNil(t, stop)
	assert.True(t, stop(3, 7))
	assert.False(t, stop(3, 6))
	assert.False(t, stop(9, 0))

	row, col := 2, 5
	c.StopWhen = StopConfig{Row: &row, Column: &col}
	stop = c.StopFunc()
	assert.True(t, stop(0, 2))
	assert.True(t, stop(5, 7))
	assert.False(t, stop(4, 3))

	c.StopWhen = StopConfig{Edge: EdgeAny}
	stop = c.StopFunc()
	for _, p := range []Point{{0, 4}, {9, 4}, {4, 0}, {4, 7}} {
		assert.True(t, stop(p.X, p.Y), "%v", p)
	}
	assert.False(t, stop(4, 4))
}

func TestStopWhenLoadsAndSets(t *testing.T) {
	c, err := Load(writeFile(t, sampleRun+"stop_when: {edge: bottom, row: 12}\n"))
	require.NoError(t, err)
	assert.Equal(t, EdgeBottom, c.StopWhen.Edge)
	require.NotNil(t, c.StopWhen.Row)
	assert.Equal(t, 12, *c.StopWhen.Row)

	c = Default()
	require.NoError(t, c.SetParams(map[string]string{"run.stop_row": "40", "run.stop_edge": "left"}))
	require.NotNil(t, c.StopWhen.Row)
	assert.Equal(t, 40, *c.StopWhen.Row)
	assert.Equal(t, EdgeLeft, c.StopWhen.Edge)
	assert.ErrorIs(t, c.SetParams(map[string]string{"run.stop_column": "x"}), ErrInvalid)
}

func TestStopEndsRunEarly(t *testing.T) {
	c := Default()
	c.Width, c.Height = 20, 20
	c.Model.Name = "uniform"
	c.Seeds = []Point{{X: 10, Y: 0}}
	c.StopWhen.Edge = EdgeBottom
	s, err := c.NewSimulator()
	require.NoError(t, err)
	res := s.Run(c.MaxRounds, c.StopFunc(), nil)
	assert.Equal(t, sim.Cancelled, res.Reason)
	reached := false
	for x := 0; x < c.Width; x++ {
		reached = reached || s.Grid().Broken(x, c.Height-1)
	}
	assert.True(t, reached)
	assert.Less(t, res.Broken, c.Width*c.Height)
}

func TestNewSimulatorAppliesShapes(t *testing.T) {
	c, err := Load(writeFile(t, sampleRun))
	require.NoError(t, err)
	s, err := c.NewSimulator()
	require.NoError(t, err)
	g := s.Grid()
	assert.True(t, g.Broken(20, 0))
	assert.True(t, g.Insulated(8, 12))
	assert.True(t, g.Insulated(34, 20))
	assert.False(t, g.Insulated(30, 20))
	assert.Equal(t, sim.Directions{Down: true, Left: true, Right: true}, s.Directions())

	res := s.Run(c.MaxRounds, nil, nil)
	assert.LessOrEqual(t, res.Rounds, c.MaxRounds)
}

func TestSaveRoundTrip(t *testing.T) {
	c := Default()
	c.Model.Params = map[string]string{"scale": "4"}
	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, c.Save(path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}
