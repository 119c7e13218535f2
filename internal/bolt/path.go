// Package bolt paints lightning onto images. Each bolt is a chain of zig-zag
// segments grown by a noise discharge between control points, then shaded
// either by relaxing a potential field around the chain or by stacking
// blurred strokes along it.
package bolt

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/interp"

	"lichtenberg/internal/core"
	"lichtenberg/internal/lineage"
	"lichtenberg/internal/model"
	"lichtenberg/internal/sim"
	prng "lichtenberg/pkg/core"
)

// ErrUnreached is returned when a segment's discharge never reaches its end.
var ErrUnreached = errors.New("segment end never broke")

// PathConfig controls how one segment is grown.
type PathConfig struct {
	Margin     int
	Randomness float64
	Seed       int64
	MaxRounds  int
}

// DefaultPathConfig returns the stock segment settings.
func DefaultPathConfig() PathConfig {
	return PathConfig{Margin: 50, Randomness: 50, Seed: 1, MaxRounds: 100000}
}

// ControlPoint is a bolt vertex and the potential the bolt carries through it.
type ControlPoint struct {
	X, Y      int
	Intensity float64
}

// Segment grows a noise discharge from start inside the bounding box of start
// and end padded by cfg.Margin, and returns the lineage path from start to end
// in the caller's coordinates. Randomness is the noise scale: larger values
// give smoother segments.
func Segment(start, end core.Point, cfg PathConfig) ([]core.Point, error) {
	if start == end {
		return []core.Point{start}, nil
	}
	w := abs(end.X-start.X) + 1
	h := abs(end.Y-start.Y) + 1
	ww, wh := w+2*cfg.Margin, h+2*cfg.Margin

	sx, ex := 0, w-1
	if start.X > end.X {
		sx, ex = ex, sx
	}
	sy, ey := 0, h-1
	if start.Y > end.Y {
		sy, ey = ey, sy
	}
	sx, sy = sx+cfg.Margin, sy+cfg.Margin
	ex, ey = ex+cfg.Margin, ey+cfg.Margin

	ncfg := model.DefaultNoiseConfig()
	ncfg.Scale = cfg.Randomness
	ncfg.Seed = int32(cfg.Seed)
	m, err := model.NewNoiseThreshold(ww, wh, prng.NewRNG(cfg.Seed), ncfg)
	if err != nil {
		return nil, err
	}
	s, err := sim.New(ww, wh, m, sim.AllDirections())
	if err != nil {
		return nil, err
	}
	s.ForceBreak(sx, sy)
	// Directions are fixed once a cell breaks, so the path to the end cell is
	// final as soon as it breaks.
	s.Run(cfg.MaxRounds, func(x, y int) bool { return x == ex && y == ey }, nil)
	if !s.Grid().Broken(ex, ey) {
		return nil, fmt.Errorf("%w: (%d,%d) to (%d,%d) within %d rounds", ErrUnreached, start.X, start.Y, end.X, end.Y, cfg.MaxRounds)
	}

	pts := lineage.New(s.Grid()).Path(sx, sy, ex, ey)
	ox, oy := start.X-sx, start.Y-sy
	for i := range pts {
		pts[i].X += ox
		pts[i].Y += oy
	}
	return pts, nil
}

// Trace joins consecutive control points with segments. Each segment drops
// its end point so the next one continues from it without repeating a cell,
// which also leaves the final control point out. Intensities ramp linearly
// from one control point towards the next.
func Trace(cps []ControlPoint, cfg PathConfig) ([]core.Point, []float64, error) {
	if len(cps) < 2 {
		return nil, nil, fmt.Errorf("need at least two control points, have %d", len(cps))
	}
	var pts []core.Point
	var levels []float64
	for i := 1; i < len(cps); i++ {
		a, b := cps[i-1], cps[i]
		seg, err := Segment(core.Point{X: a.X, Y: a.Y}, core.Point{X: b.X, Y: b.Y}, cfg)
		if err != nil {
			return nil, nil, err
		}
		seg = seg[:len(seg)-1]
		if len(seg) == 0 {
			continue
		}
		var ramp interp.PiecewiseLinear
		if err := ramp.Fit([]float64{0, float64(len(seg))}, []float64{a.Intensity, b.Intensity}); err != nil {
			return nil, nil, err
		}
		for j := range seg {
			levels = append(levels, ramp.Predict(float64(j)))
		}
		pts = append(pts, seg...)
	}
	if len(pts) == 0 {
		return nil, nil, errors.New("control points trace an empty bolt")
	}
	return pts, levels, nil
}

func bounds(pts []core.Point) (lo, hi core.Point) {
	lo, hi = pts[0], pts[0]
	for _, p := range pts[1:] {
		lo.X, lo.Y = min(lo.X, p.X), min(lo.Y, p.Y)
		hi.X, hi.Y = max(hi.X, p.X), max(hi.Y, p.Y)
	}
	return lo, hi
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
