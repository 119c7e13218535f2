// Package field relaxes a static scalar field around fixed-potential points. It
// is used to paint a glow around a finished discharge and never feeds back into
// growth.
package field

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"lichtenberg/internal/core"
)

// Config controls the relaxation.
type Config struct {
	MaxIterations int     `yaml:"max_iterations"`
	Epsilon       float64 `yaml:"epsilon"`
	Relaxation    float64 `yaml:"relaxation"`
}

// DefaultConfig returns the stock solver settings.
func DefaultConfig() Config {
	return Config{MaxIterations: 1000, Epsilon: 1e-6, Relaxation: 1.5}
}

// FromMap overlays string values onto the defaults. Unparseable or
// out-of-range values are ignored.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["max_iterations"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.MaxIterations = parsed
		}
	}
	if v, ok := cfg["epsilon"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			c.Epsilon = parsed
		}
	}
	if v, ok := cfg["relaxation"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 && parsed < 2 {
			c.Relaxation = parsed
		}
	}
	return c
}

// Field is a w x h scalar grid. The outermost ring of cells is never relaxed.
type Field struct {
	w, h   int
	values []float64
	fixed  []bool
}

// New returns a zero field.
func New(w, h int) (*Field, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", core.ErrInvalidSize, w, h)
	}
	return &Field{w: w, h: h, values: make([]float64, w*h), fixed: make([]bool, w*h)}, nil
}

// Width returns the number of columns.
func (f *Field) Width() int { return f.w }

// Height returns the number of rows.
func (f *Field) Height() int { return f.h }

// Fix pins (x, y) to v. Out-of-range points are ignored.
func (f *Field) Fix(x, y int, v float64) {
	if x < 0 || x >= f.w || y < 0 || y >= f.h {
		return
	}
	i := y*f.w + x
	f.values[i] = v
	f.fixed[i] = true
}

// At returns the value at (x, y).
func (f *Field) At(x, y int) float64 { return f.values[y*f.w+x] }

// Values exposes the row-major backing slice.
func (f *Field) Values() []float64 { return f.values }

// Solve runs successive over-relaxation over the free interior cells until the
// summed absolute update falls below cfg.Epsilon or cfg.MaxIterations sweeps
// have run.
func (f *Field) Solve(cfg Config) (iterations int, converged bool) {
	w := f.w
	for i := 0; i < cfg.MaxIterations; i++ {
		total := 0.0
		for y := 1; y < f.h-1; y++ {
			for x := 1; x < w-1; x++ {
				k := y*w + x
				if f.fixed[k] {
					continue
				}
				next := (f.values[k-1] + f.values[k+1] + f.values[k-w] + f.values[k+w]) / 4
				diff := next - f.values[k]
				f.values[k] += cfg.Relaxation * diff
				total += math.Abs(diff)
			}
		}
		if total < cfg.Epsilon {
			return i + 1, true
		}
	}
	return cfg.MaxIterations, false
}

// Normalize rescales the field into [0, 1]. A flat field becomes all zeros.
func (f *Field) Normalize() {
	lo, hi := floats.Min(f.values), floats.Max(f.values)
	if hi == lo {
		for i := range f.values {
			f.values[i] = 0
		}
		return
	}
	floats.AddConst(-lo, f.values)
	floats.Scale(1/(hi-lo), f.values)
}
