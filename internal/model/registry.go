package model

import (
	"fmt"
	"sort"
	"strconv"

	"lichtenberg/internal/core"
	prng "lichtenberg/pkg/core"
)

// Factory constructs a Model for a grid of the given size using an optional
// key/value configuration map.
type Factory func(size core.Size, rng *prng.RNG, cfg map[string]string) (Model, error)

type entry struct {
	factory  Factory
	defaults core.ParameterSnapshot
}

var models = map[string]entry{}

// Register adds a model factory under the provided name together with the
// parameters it accepts and their defaults.
func Register(name string, f Factory, defaults core.ParameterSnapshot) {
	if name == "" || f == nil {
		return
	}
	models[name] = entry{factory: f, defaults: defaults}
}

// Names lists the registered models in sorted order.
func Names() []string {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Defaults returns the default parameters registered for name.
func Defaults(name string) (core.ParameterSnapshot, bool) {
	e, ok := models[name]
	return e.defaults, ok
}

// Build constructs the named model.
func Build(name string, size core.Size, rng *prng.RNG, cfg map[string]string) (Model, error) {
	e, ok := models[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown model %q", ErrInvalidArgument, name)
	}
	return e.factory(size, rng, cfg)
}

func floatOpt(cfg map[string]string, key string, dst *float64) error {
	v, ok := cfg[key]
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%w: %s=%q: %v", ErrInvalidArgument, key, v, err)
	}
	*dst = parsed
	return nil
}

func intOpt(cfg map[string]string, key string, dst *int) error {
	v, ok := cfg[key]
	if !ok {
		return nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s=%q: %v", ErrInvalidArgument, key, v, err)
	}
	*dst = parsed
	return nil
}
