package core

import (
	"math"
	"testing"
)

func TestRNGDeterministic(t *testing.T) {
	a := NewRNG(42)
	b := NewRNG(42)
	for i := 0; i < 64; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("draw %d differs between equal seeds", i)
		}
		if a.Bool() != b.Bool() {
			t.Fatalf("bool draw %d differs between equal seeds", i)
		}
	}
}

func TestRNGRanges(t *testing.T) {
	r := NewRNG(7)
	for i := 0; i < 1000; i++ {
		if v := r.Between(0.25, 1); v < 0.25 || v >= 1 {
			t.Fatalf("Between out of range: %f", v)
		}
		if a := r.Angle(); a < 0 || a >= 2*math.Pi {
			t.Fatalf("Angle out of range: %f", a)
		}
		if n := r.IntN(3); n < 0 || n >= 3 {
			t.Fatalf("IntN out of range: %d", n)
		}
	}
	if r.IntN(0) != 0 {
		t.Fatal("IntN(0) should return 0")
	}
}
