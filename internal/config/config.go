// Package config loads run descriptions: grid size, seed, growth model, seeding
// shapes and outputs. Files are YAML; any field left out keeps its default.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"lichtenberg/internal/core"
	"lichtenberg/internal/model"
	"lichtenberg/internal/sim"
	prng "lichtenberg/pkg/core"
)

// ErrInvalid reports a configuration that cannot describe a run.
var ErrInvalid = errors.New("invalid run config")

// Config describes one simulation run.
type Config struct {
	Width      int              `yaml:"width"`
	Height     int              `yaml:"height"`
	Seed       int64            `yaml:"seed"`
	Model      ModelConfig      `yaml:"model"`
	Directions []string         `yaml:"directions,omitempty"`
	MaxRounds  int              `yaml:"max_rounds"`
	Seeds      []Point          `yaml:"seeds"`
	Insulation InsulationConfig `yaml:"insulation"`
	StopWhen   StopConfig       `yaml:"stop_when,omitempty"`
	Output     OutputConfig     `yaml:"output"`
}

// ModelConfig names a registered growth model and its parameters.
type ModelConfig struct {
	Name   string            `yaml:"name"`
	Params map[string]string `yaml:"params,omitempty"`
}

// Point is a grid coordinate.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Rect is the half-open rectangle [X1, X2) x [Y1, Y2).
type Rect struct {
	X1   int  `yaml:"x1"`
	Y1   int  `yaml:"y1"`
	X2   int  `yaml:"x2"`
	Y2   int  `yaml:"y2"`
	Fill bool `yaml:"fill"`
}

// Circle is a rasterised circle.
type Circle struct {
	X    int  `yaml:"x"`
	Y    int  `yaml:"y"`
	R    int  `yaml:"r"`
	Fill bool `yaml:"fill"`
}

// InsulationConfig lists the regions masked out of growth.
type InsulationConfig struct {
	Points  []Point  `yaml:"points,omitempty"`
	Rects   []Rect   `yaml:"rects,omitempty"`
	Circles []Circle `yaml:"circles,omitempty"`
}

// StopConfig ends a run as soon as a newly broken cell meets any of its
// conditions. The zero value never stops a run.
type StopConfig struct {
	Edge   string `yaml:"edge,omitempty"`
	Row    *int   `yaml:"row,omitempty"`
	Column *int   `yaml:"column,omitempty"`
}

// Edges understood by StopConfig.Edge.
const (
	EdgeTop    = "top"
	EdgeBottom = "bottom"
	EdgeLeft   = "left"
	EdgeRight  = "right"
	EdgeAny    = "any"
)

var edges = map[string]bool{EdgeTop: true, EdgeBottom: true, EdgeLeft: true, EdgeRight: true, EdgeAny: true}

// IsZero reports whether no condition is set.
func (s StopConfig) IsZero() bool { return s.Edge == "" && s.Row == nil && s.Column == nil }

// OutputConfig controls what a run writes.
type OutputConfig struct {
	Prefix        string   `yaml:"prefix"`
	Images        []string `yaml:"images,omitempty"`
	Gamma         float64  `yaml:"gamma"`
	Branches      int      `yaml:"branches"`
	Video         string   `yaml:"video,omitempty"`
	VideoEvery    int      `yaml:"video_every"`
	Chart         string   `yaml:"chart,omitempty"`
	Histogram     string   `yaml:"histogram,omitempty"`
	ProgressEvery int      `yaml:"progress_every"`
}

// Image kinds understood by OutputConfig.Images.
const (
	ImageMono       = "mono"
	ImageGray       = "gray"
	ImageInsulation = "insulation"
	ImageBranches   = "branches"
)

var imageKinds = map[string]bool{ImageMono: true, ImageGray: true, ImageInsulation: true, ImageBranches: true}

// Default returns a 200x200 noise run seeded at the top centre.
func Default() Config {
	return Config{
		Width:     200,
		Height:    200,
		Seed:      1,
		Model:     ModelConfig{Name: "noise"},
		MaxRounds: sim.DefaultMaxRounds,
		Seeds:     []Point{{X: 100, Y: 0}},
		Output: OutputConfig{
			Prefix:        "lichtenberg",
			Images:        []string{ImageMono},
			Gamma:         1,
			Branches:      10,
			VideoEvery:    1,
			ProgressEvery: 100,
		},
	}
}

// FromEnv returns Default with the environment overrides applied.
func FromEnv() Config {
	c := Default()
	loadFromEnv(&c)
	return c
}

// Load reads path over the defaults, applies environment overrides and
// validates the result.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse %s: %w", path, err)
	}
	loadFromEnv(&c)
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func loadFromEnv(c *Config) {
	if v := os.Getenv("LICHTENBERG_SEED"); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = i
		}
	}
	if v := os.Getenv("LICHTENBERG_MAX_ROUNDS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			c.MaxRounds = i
		}
	}
}

// Save writes c as YAML.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d must be positive", ErrInvalid, c.Width, c.Height)
	}
	if c.MaxRounds < 0 {
		return fmt.Errorf("%w: max_rounds %d is negative", ErrInvalid, c.MaxRounds)
	}
	if _, ok := model.Defaults(c.Model.Name); !ok {
		return fmt.Errorf("%w: unknown model %q (have %s)", ErrInvalid, c.Model.Name, strings.Join(model.Names(), ", "))
	}
	if _, err := c.SimDirections(); err != nil {
		return err
	}
	if len(c.Seeds) == 0 {
		return fmt.Errorf("%w: no seeds", ErrInvalid)
	}
	for _, p := range c.Seeds {
		if p.X < 0 || p.X >= c.Width || p.Y < 0 || p.Y >= c.Height {
			return fmt.Errorf("%w: seed (%d,%d) outside %dx%d", ErrInvalid, p.X, p.Y, c.Width, c.Height)
		}
	}
	for _, circle := range c.Insulation.Circles {
		if circle.R < 0 {
			return fmt.Errorf("%w: circle radius %d is negative", ErrInvalid, circle.R)
		}
	}
	if err := c.validateStop(); err != nil {
		return err
	}
	for _, kind := range c.Output.Images {
		if !imageKinds[kind] {
			return fmt.Errorf("%w: unknown image kind %q", ErrInvalid, kind)
		}
	}
	if c.Output.Gamma <= 0 {
		return fmt.Errorf("%w: gamma %g must be positive", ErrInvalid, c.Output.Gamma)
	}
	return nil
}

func (c Config) validateStop() error {
	st := c.StopWhen
	if st.Edge != "" && !edges[st.Edge] {
		return fmt.Errorf("%w: unknown stop edge %q", ErrInvalid, st.Edge)
	}
	if st.Row != nil && (*st.Row < 0 || *st.Row >= c.Height) {
		return fmt.Errorf("%w: stop row %d outside 0..%d", ErrInvalid, *st.Row, c.Height-1)
	}
	if st.Column != nil && (*st.Column < 0 || *st.Column >= c.Width) {
		return fmt.Errorf("%w: stop column %d outside 0..%d", ErrInvalid, *st.Column, c.Width-1)
	}
	return nil
}

// StopFunc returns a sim.BreakFunc that asks the run to stop once a broken
// cell meets StopWhen, or nil when no condition is set.
func (c Config) StopFunc() sim.BreakFunc {
	st := c.StopWhen
	if st.IsZero() {
		return nil
	}
	w, h := c.Width, c.Height
	return func(x, y int) bool {
		if st.Row != nil && y == *st.Row {
			return true
		}
		if st.Column != nil && x == *st.Column {
			return true
		}
		switch st.Edge {
		case EdgeTop:
			return y == 0
		case EdgeBottom:
			return y == h-1
		case EdgeLeft:
			return x == 0
		case EdgeRight:
			return x == w-1
		case EdgeAny:
			return x == 0 || y == 0 || x == w-1 || y == h-1
		}
		return false
	}
}

// SimDirections converts the direction names into a mask. An empty list
// enables every direction.
func (c Config) SimDirections() (sim.Directions, error) {
	if len(c.Directions) == 0 {
		return sim.AllDirections(), nil
	}
	var d sim.Directions
	for _, name := range c.Directions {
		switch strings.ToLower(name) {
		case "up":
			d.Up = true
		case "down":
			d.Down = true
		case "left":
			d.Left = true
		case "right":
			d.Right = true
		default:
			return d, fmt.Errorf("%w: unknown direction %q", ErrInvalid, name)
		}
	}
	return d, nil
}

// SetParams overlays key=value pairs onto the model parameters. Keys of the
// form "run.<field>" change run fields instead: run.seed, run.width,
// run.height, run.max_rounds, run.stop_edge, run.stop_row and
// run.stop_column.
func (c *Config) SetParams(kv map[string]string) error {
	for k, v := range kv {
		field, ok := strings.CutPrefix(k, "run.")
		if !ok {
			if c.Model.Params == nil {
				c.Model.Params = map[string]string{}
			}
			c.Model.Params[k] = v
			continue
		}
		var dst *int
		switch field {
		case "seed":
			i, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: %s=%q", ErrInvalid, k, v)
			}
			c.Seed = i
			continue
		case "stop_edge":
			c.StopWhen.Edge = v
			continue
		case "stop_row":
			c.StopWhen.Row = new(int)
			dst = c.StopWhen.Row
		case "stop_column":
			c.StopWhen.Column = new(int)
			dst = c.StopWhen.Column
		case "width":
			dst = &c.Width
		case "height":
			dst = &c.Height
		case "max_rounds":
			dst = &c.MaxRounds
		default:
			return fmt.Errorf("%w: unknown run field %q", ErrInvalid, k)
		}
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalid, k, v)
		}
		*dst = i
	}
	return nil
}

// Size returns the grid size.
func (c Config) Size() core.Size { return core.Size{W: c.Width, H: c.Height} }

// NewSimulator builds the configured model and simulator and applies every
// seed and insulation shape.
func (c Config) NewSimulator() (*sim.Simulator, error) {
	dirs, err := c.SimDirections()
	if err != nil {
		return nil, err
	}
	m, err := model.Build(c.Model.Name, c.Size(), prng.NewRNG(c.Seed), c.Model.Params)
	if err != nil {
		return nil, err
	}
	s, err := sim.New(c.Width, c.Height, m, dirs)
	if err != nil {
		return nil, err
	}
	c.Apply(s)
	return s, nil
}

// Apply insulates every configured shape and then breaks the seeds. A seed on
// an insulated cell stays insulated and never grows.
func (c Config) Apply(s *sim.Simulator) {
	for _, p := range c.Insulation.Points {
		s.Insulate(p.X, p.Y)
	}
	for _, r := range c.Insulation.Rects {
		s.InsulateRect(r.X1, r.Y1, r.X2, r.Y2, r.Fill)
	}
	for _, circle := range c.Insulation.Circles {
		s.InsulateCircle(circle.X, circle.Y, circle.R, circle.Fill)
	}
	for _, p := range c.Seeds {
		s.ForceBreak(p.X, p.Y)
	}
}
