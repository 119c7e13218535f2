// Package noise implements seeded fractal value noise: an integer lattice hash,
// 3x3 smoothing, cosine interpolation and an octave sum. Each Value carries its
// own seed, so independent generators never interfere.
package noise

import "math"

// Source produces coherent noise for continuous coordinates.
type Source interface {
	At(x, y, persistence float64, octaves int) float64
}

// Value is a seeded value-noise generator. The zero value uses seed 0.
type Value struct {
	Seed int32
}

// MaxOctaves bounds the octave count so every frequency fits in an int32.
const MaxOctaves = 30

// New returns a generator for the given seed.
func New(seed int32) Value { return Value{Seed: seed} }

// At sums octaves of interpolated lattice noise. Octave i samples at frequency
// 2^i with amplitude persistence^i. A single octave returns values in [-1, 1].
// Octaves beyond MaxOctaves are ignored.
func (v Value) At(x, y, persistence float64, octaves int) float64 {
	total := 0.0
	octaves = min(octaves, MaxOctaves)
	for i := 0; i < octaves; i++ {
		frequency := float64(int32(1) << i)
		amplitude := math.Pow(persistence, float64(i))
		total += v.interpolate(x*frequency, y*frequency) * amplitude
	}
	return total
}

func (v Value) lattice(x, y int32) float64 {
	n := x + y*57 + v.Seed
	n = (n << 13) ^ n
	return 1.0 - float64((n*(n*n*15731+789221)+1376312589)&0x7fffffff)/1073741824.0
}

func (v Value) smooth(x, y int32) float64 {
	corners := (v.lattice(x-1, y-1) + v.lattice(x+1, y-1) + v.lattice(x-1, y+1) + v.lattice(x+1, y+1)) / 16
	sides := (v.lattice(x-1, y) + v.lattice(x+1, y) + v.lattice(x, y-1) + v.lattice(x, y+1)) / 8
	center := v.lattice(x, y) / 4
	return corners + sides + center
}

func (v Value) interpolate(x, y float64) float64 {
	fx, fy := math.Floor(x), math.Floor(y)
	xi, xf := int32(fx), x-fx
	yi, yf := int32(fy), y-fy

	v1 := v.smooth(xi, yi)
	v2 := v.smooth(xi+1, yi)
	v3 := v.smooth(xi, yi+1)
	v4 := v.smooth(xi+1, yi+1)

	u1 := cosineInterpolate(v1, v2, xf)
	u2 := cosineInterpolate(v3, v4, xf)
	return cosineInterpolate(u1, u2, yf)
}

func cosineInterpolate(a, b, t float64) float64 {
	f := (1 - math.Cos(t*math.Pi)) * 0.5
	return a*(1-f) + b*f
}
