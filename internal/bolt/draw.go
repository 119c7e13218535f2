package bolt

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/floats"

	"lichtenberg/internal/core"
	"lichtenberg/internal/field"
)

// blurMargin pads the stroke canvas so blurred light is not cut off.
const blurMargin = 20

// Shade maps a light level to colour. Color holds one exponent per channel:
// {1, 1, 1} is white and raising a channel's exponent tints towards it.
type Shade struct {
	Multiply float64
	Color    [3]float64
}

// DefaultShade is plain white at full strength.
func DefaultShade() Shade {
	return Shade{Multiply: 1, Color: [3]float64{1, 1, 1}}
}

// Validate rejects exponents that cannot be inverted.
func (s Shade) Validate() error {
	for i, c := range s.Color {
		if c <= 0 {
			return fmt.Errorf("colour exponent %d is %g, must be positive", i, c)
		}
	}
	return nil
}

// add brightens dst at (x, y) by level f with saturation. Points outside dst
// are ignored.
func (s Shade) add(dst *image.RGBA, x, y int, f float64) {
	if !image.Pt(x, y).In(dst.Rect) || f <= 0 {
		return
	}
	off := dst.PixOffset(x, y)
	for c := 0; c < 3; c++ {
		lum := math.Floor(math.Pow(f, 1/s.Color[c]) * 255)
		dst.Pix[off+c] = clampByte(float64(dst.Pix[off+c]) + lum)
	}
}

// PotentialConfig controls Potential.
type PotentialConfig struct {
	Margin int
	Gamma  float64
	Solver field.Config
}

// DefaultPotentialConfig returns the stock settings.
func DefaultPotentialConfig() PotentialConfig {
	return PotentialConfig{Margin: 50, Gamma: 1, Solver: field.DefaultConfig()}
}

// Potential fixes every traced point at its level, relaxes the field over the
// bolt's bounding box padded by cfg.Margin and adds level^Gamma * Multiply to
// dst. The relaxed field is returned with its top-left corner at origin in
// dst coordinates.
func Potential(dst *image.RGBA, pts []core.Point, levels []float64, cfg PotentialConfig, shade Shade) (f *field.Field, origin core.Point, err error) {
	if len(pts) == 0 || len(pts) != len(levels) {
		return nil, origin, fmt.Errorf("have %d points and %d levels", len(pts), len(levels))
	}
	if err := shade.Validate(); err != nil {
		return nil, origin, err
	}
	lo, hi := bounds(pts)
	origin = core.Point{X: lo.X - cfg.Margin, Y: lo.Y - cfg.Margin}
	f, err = field.New(hi.X-lo.X+1+2*cfg.Margin, hi.Y-lo.Y+1+2*cfg.Margin)
	if err != nil {
		return nil, origin, err
	}
	for i, p := range pts {
		f.Fix(p.X-origin.X, p.Y-origin.Y, levels[i])
	}
	f.Solve(cfg.Solver)

	for y := 0; y < f.Height(); y++ {
		for x := 0; x < f.Width(); x++ {
			c := math.Max(f.At(x, y), 0)
			shade.add(dst, x+origin.X, y+origin.Y, math.Pow(c, cfg.Gamma)*shade.Multiply)
		}
	}
	return f, origin, nil
}

// Stroke is one blurred pass: discs of radius Weight on every point, then a
// Gaussian blur of standard deviation Radius.
type Stroke struct {
	Weight int
	Radius float64
}

// DefaultStrokes is a thin sharp core inside two wider halos.
func DefaultStrokes() []Stroke {
	return []Stroke{{Weight: 0, Radius: 1}, {Weight: 1, Radius: 4}, {Weight: 2, Radius: 8}}
}

// Blur sums every stroke over the bolt and adds sum * Multiply / 255 to dst.
func Blur(dst *image.RGBA, pts []core.Point, strokes []Stroke, shade Shade) error {
	if len(pts) == 0 {
		return fmt.Errorf("no points to draw")
	}
	if err := shade.Validate(); err != nil {
		return err
	}
	lo, hi := bounds(pts)
	w := hi.X - lo.X + 1 + 2*blurMargin
	h := hi.Y - lo.Y + 1 + 2*blurMargin
	ox, oy := lo.X-blurMargin, lo.Y-blurMargin

	work := make([]float64, w*h)
	layer := make([]float64, w*h)
	for _, st := range strokes {
		clear(layer)
		for _, p := range pts {
			disc(layer, w, h, p.X-ox, p.Y-oy, st.Weight)
		}
		floats.Add(work, gaussianBlur(layer, w, h, st.Radius))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			shade.add(dst, x+ox, y+oy, work[y*w+x]*shade.Multiply/255)
		}
	}
	return nil
}

// disc sets every cell within r of (cx, cy) to 255. A radius of 0 sets the
// centre only.
func disc(dst []float64, w, h, cx, cy, r int) {
	for y := max(cy-r, 0); y <= min(cy+r, h-1); y++ {
		for x := max(cx-r, 0); x <= min(cx+r, w-1); x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r+r {
				dst[y*w+x] = 255
			}
		}
	}
}

// gaussianBlur convolves src with a separable Gaussian of standard deviation
// sigma, treating cells outside the w x h canvas as zero. The kernel spans
// three standard deviations each way.
func gaussianBlur(src []float64, w, h int, sigma float64) []float64 {
	out := make([]float64, len(src))
	if sigma <= 0 {
		copy(out, src)
		return out
	}
	k := int(math.Ceil(3 * sigma))
	kernel := make([]float64, 2*k+1)
	for i := range kernel {
		x := float64(i - k)
		kernel[i] = math.Exp(-x * x / (2 * sigma * sigma))
	}
	floats.Scale(1/floats.Sum(kernel), kernel)

	tmp := make([]float64, len(src))
	buf := make([]float64, max(w, h)+2*k)
	for y := 0; y < h; y++ {
		clear(buf)
		copy(buf[k:], src[y*w:(y+1)*w])
		for x := 0; x < w; x++ {
			tmp[y*w+x] = floats.Dot(kernel, buf[x:x+2*k+1])
		}
	}
	for x := 0; x < w; x++ {
		clear(buf)
		for y := 0; y < h; y++ {
			buf[k+y] = tmp[y*w+x]
		}
		for y := 0; y < h; y++ {
			out[y*w+x] = floats.Dot(kernel, buf[y:y+2*k+1])
		}
	}
	return out
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}
