package model

import (
	"fmt"
	"strconv"

	"lichtenberg/internal/core"
	"lichtenberg/internal/noise"
	prng "lichtenberg/pkg/core"
)

// DefaultMinGuarantee is the floor applied to every threshold so no cell is
// completely resistant to breakdown.
const DefaultMinGuarantee = 0.05

// thresholds holds a fixed per-cell acceptance probability.
type thresholds struct {
	Hooks
	w, h int
	th   []float64
	rng  *prng.RNG
}

// Test accepts with the probability precomputed for (x, y).
func (t *thresholds) Test(x, y int) bool {
	return t.rng.Float64() < t.th[y*t.w+x]
}

// Threshold returns the acceptance probability of (x, y).
func (t *thresholds) Threshold(x, y int) float64 { return t.th[y*t.w+x] }

// NoiseConfig parameterises the value-noise threshold map.
type NoiseConfig struct {
	MinGuarantee float64 `yaml:"min_guarantee"`
	Seed         int32   `yaml:"seed"`
	Scale        float64 `yaml:"scale"`
	Persistence  float64 `yaml:"persistence"`
	Octaves      int     `yaml:"octaves"`
}

// DefaultNoiseConfig returns the stock value-noise parameters.
func DefaultNoiseConfig() NoiseConfig {
	return NoiseConfig{
		MinGuarantee: DefaultMinGuarantee,
		Seed:         0,
		Scale:        10,
		Persistence:  0.5,
		Octaves:      5,
	}
}

// NoiseConfigFromMap overlays string values onto the defaults.
func NoiseConfigFromMap(cfg map[string]string) (NoiseConfig, error) {
	c := DefaultNoiseConfig()
	if err := floatOpt(cfg, "min_guarantee", &c.MinGuarantee); err != nil {
		return c, err
	}
	if v, ok := cfg["noise_seed"]; ok {
		parsed, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return c, fmt.Errorf("%w: noise_seed=%q: %v", ErrInvalidArgument, v, err)
		}
		c.Seed = int32(parsed)
	}
	if err := floatOpt(cfg, "scale", &c.Scale); err != nil {
		return c, err
	}
	if err := floatOpt(cfg, "persistence", &c.Persistence); err != nil {
		return c, err
	}
	if err := intOpt(cfg, "octaves", &c.Octaves); err != nil {
		return c, err
	}
	return c, nil
}

// Validate rejects parameters that cannot produce a threshold map.
func (c NoiseConfig) Validate() error {
	if err := checkMinGuarantee(c.MinGuarantee); err != nil {
		return err
	}
	if c.Scale <= 0 {
		return fmt.Errorf("%w: scale %g must be positive", ErrInvalidArgument, c.Scale)
	}
	if c.Octaves < 1 || c.Octaves > noise.MaxOctaves {
		return fmt.Errorf("%w: octaves %d outside [1, %d]", ErrInvalidArgument, c.Octaves, noise.MaxOctaves)
	}
	return nil
}

// NoiseThreshold precomputes one threshold per cell from fractal value noise.
type NoiseThreshold struct {
	thresholds
	cfg NoiseConfig
}

// NewNoiseThreshold samples cfg's noise over a w x h grid. Noise is clamped to
// [-1,1], mapped to [0,1], then rescaled into [MinGuarantee,1].
func NewNoiseThreshold(w, h int, rng *prng.RNG, cfg NoiseConfig) (*NoiseThreshold, error) {
	if err := checkSize(w, h); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newNoiseThreshold(w, h, rng, cfg, noise.New(cfg.Seed)), nil
}

func newNoiseThreshold(w, h int, rng *prng.RNG, cfg NoiseConfig, src noise.Source) *NoiseThreshold {
	m := &NoiseThreshold{
		thresholds: thresholds{w: w, h: h, th: make([]float64, w*h), rng: rng},
		cfg:        cfg,
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f := src.At(float64(x)/cfg.Scale, float64(y)/cfg.Scale, cfg.Persistence, cfg.Octaves)
			m.th[y*w+x] = rescale((f+1)/2, cfg.MinGuarantee)
		}
	}
	return m
}

// Parameters describes the noise configuration in use.
func (m *NoiseThreshold) Parameters() core.ParameterSnapshot { return noiseParams(m.cfg) }

func noiseParams(c NoiseConfig) core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{{
		Name:    "Noise threshold",
		Summary: "per-cell threshold from fractal value noise",
		Params: []core.Parameter{
			core.FloatParam("min_guarantee", "Min guarantee", c.MinGuarantee),
			core.IntParam("noise_seed", "Noise seed", int(c.Seed)),
			core.FloatParam("scale", "Scale", c.Scale),
			core.FloatParam("persistence", "Persistence", c.Persistence),
			core.IntParam("octaves", "Octaves", c.Octaves),
		},
	}}}
}

// ManualThreshold uses caller-supplied weights as thresholds.
type ManualThreshold struct {
	thresholds
	minGuarantee float64
}

// NewManualThreshold rescales weights, indexed [y][x] with values in [0,1], into
// [minGuarantee,1]. weights must have exactly h rows of w entries.
func NewManualThreshold(w, h int, weights [][]float64, rng *prng.RNG, minGuarantee float64) (*ManualThreshold, error) {
	if err := checkSize(w, h); err != nil {
		return nil, err
	}
	if err := checkMinGuarantee(minGuarantee); err != nil {
		return nil, err
	}
	if len(weights) != h {
		return nil, fmt.Errorf("%w: weights have %d rows, want %d", ErrInvalidArgument, len(weights), h)
	}
	m := &ManualThreshold{
		thresholds:   thresholds{w: w, h: h, th: make([]float64, w*h), rng: rng},
		minGuarantee: minGuarantee,
	}
	for y, row := range weights {
		if len(row) != w {
			return nil, fmt.Errorf("%w: weights row %d has %d columns, want %d", ErrInvalidArgument, y, len(row), w)
		}
		for x, v := range row {
			m.th[y*w+x] = rescale(v, minGuarantee)
		}
	}
	return m, nil
}

// Parameters describes the manual threshold configuration.
func (m *ManualThreshold) Parameters() core.ParameterSnapshot { return manualParams("", m.minGuarantee) }

func manualParams(path string, minGuarantee float64) core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{{
		Name:    "Manual threshold",
		Summary: "per-cell threshold from a grayscale weight image",
		Params: []core.Parameter{
			core.StringParam("weights", "Weight image", path),
			core.FloatParam("min_guarantee", "Min guarantee", minGuarantee),
		},
	}}}
}

func init() {
	Register("noise", func(size core.Size, rng *prng.RNG, cfg map[string]string) (Model, error) {
		c, err := NoiseConfigFromMap(cfg)
		if err != nil {
			return nil, err
		}
		return NewNoiseThreshold(size.W, size.H, rng, c)
	}, noiseParams(DefaultNoiseConfig()))

	Register("manual", func(size core.Size, rng *prng.RNG, cfg map[string]string) (Model, error) {
		mg := DefaultMinGuarantee
		if err := floatOpt(cfg, "min_guarantee", &mg); err != nil {
			return nil, err
		}
		path := cfg["weights"]
		if path == "" {
			return nil, fmt.Errorf("%w: manual model requires weights=<image>", ErrInvalidArgument)
		}
		weights, err := LoadWeights(path, size.W, size.H)
		if err != nil {
			return nil, err
		}
		return NewManualThreshold(size.W, size.H, weights, rng, mg)
	}, manualParams("", DefaultMinGuarantee))
}
