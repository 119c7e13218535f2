package store

import (
	"gonum.org/v1/gonum/stat"

	"lichtenberg/internal/core"
	"lichtenberg/internal/lineage"
	"lichtenberg/internal/sim"
)

// Summarize fills the outcome columns of a Run from a finished simulation.
// The caller sets the identifying fields (model, params, seed, sweep).
func Summarize(res sim.Result, g *core.Grid) Run {
	r := Run{
		Width:    g.Width(),
		Height:   g.Height(),
		Rounds:   res.Rounds,
		Reason:   res.Reason.String(),
		Broken:   res.Broken,
		MaxDepth: g.MaxDepth(),
	}
	leaves := lineage.New(g).Leaves()
	r.Leaves = len(leaves)
	if len(leaves) > 0 {
		depths := make([]float64, len(leaves))
		for i, l := range leaves {
			depths[i] = float64(l.Depth)
		}
		r.MeanLeafDepth = stat.Mean(depths, nil)
	}
	return r
}
