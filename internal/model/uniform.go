package model

import (
	"lichtenberg/internal/core"
	prng "lichtenberg/pkg/core"
)

// Uniform breaks any candidate with probability one half.
type Uniform struct {
	Hooks
	rng *prng.RNG
}

// NewUniform returns a coin-flip model drawing from rng.
func NewUniform(rng *prng.RNG) *Uniform {
	return &Uniform{rng: rng}
}

// Test flips a fair coin; the coordinates are ignored.
func (u *Uniform) Test(int, int) bool { return u.rng.Bool() }

// Parameters reports that the model has no tunables.
func (u *Uniform) Parameters() core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{{Name: "Uniform", Summary: "fair coin flip per candidate"}}}
}

func init() {
	Register("uniform", func(size core.Size, rng *prng.RNG, _ map[string]string) (Model, error) {
		if err := checkSize(size.W, size.H); err != nil {
			return nil, err
		}
		return NewUniform(rng), nil
	}, (&Uniform{}).Parameters())
}
