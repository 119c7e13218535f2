// Package model holds the growth models that decide whether a candidate cell
// breaks down. A model is owned by a single simulator run; none of them are safe
// for concurrent use.
package model

import (
	"errors"
	"fmt"

	"lichtenberg/internal/core"
)

var (
	// ErrInvalidArgument reports a construction parameter that cannot be used.
	ErrInvalidArgument = errors.New("invalid model argument")
	// ErrNotImplemented is the panic value raised by Unimplemented.
	ErrNotImplemented = errors.New("growth model not implemented")
)

// Model decides, cell by cell, whether breakdown propagates.
//
// Refresh is called once per round before any Test, with the current grid and
// the frontier of active broken cells. Test is called for each unbroken
// neighbor of a frontier cell. OnBreak is called once for each cell that Test
// accepted, after the simulator has marked it broken.
type Model interface {
	Test(x, y int) bool
	Refresh(g *core.Grid, frontier []core.Point)
	OnBreak(x, y int)
}

// Hooks provides no-op Refresh and OnBreak for models without per-round state.
type Hooks struct{}

// Refresh does nothing.
func (Hooks) Refresh(*core.Grid, []core.Point) {}

// OnBreak does nothing.
func (Hooks) OnBreak(int, int) {}

// Unimplemented stands in for a missing model. Test and Refresh panic with
// ErrNotImplemented since reaching them means the caller never configured a
// real model.
type Unimplemented struct{}

// Test panics.
func (Unimplemented) Test(x, y int) bool {
	panic(fmt.Errorf("%w: Test(%d, %d)", ErrNotImplemented, x, y))
}

// Refresh panics.
func (Unimplemented) Refresh(*core.Grid, []core.Point) {
	panic(fmt.Errorf("%w: Refresh", ErrNotImplemented))
}

// OnBreak does nothing.
func (Unimplemented) OnBreak(int, int) {}

func checkSize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: size %dx%d must be positive", ErrInvalidArgument, w, h)
	}
	return nil
}

func checkMinGuarantee(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: min_guarantee %g outside [0,1]", ErrInvalidArgument, v)
	}
	return nil
}

// rescale maps a weight in [0,1] into [minGuarantee,1], clamping out-of-range weights.
func rescale(v, minGuarantee float64) float64 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v*(1-minGuarantee) + minGuarantee
}
