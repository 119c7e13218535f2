package model

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"lichtenberg/internal/core"
	prng "lichtenberg/pkg/core"
)

// chargeRadius is the R1 of the point-charge approximation.
const chargeRadius = 0.5

// FastPotentialField approximates the dielectric breakdown model without a
// Laplace solve: every broken cell is a point charge contributing 1 - R1/r to
// each candidate at distance r. Candidate potentials are kept incrementally;
// each one remembers how many broken cells it has already summed.
type FastPotentialField struct {
	w, h int
	cfg  PotentialConfig
	rng  *prng.RNG

	potential []float64
	summed    []int
	charged   []bool
	charges   []core.Point

	candidates []core.Point
	values     []float64
	mark       []int
	stamp      int

	lo, hi, denom float64
}

// NewFastPotentialField returns an empty field for a w x h grid.
func NewFastPotentialField(w, h int, rng *prng.RNG, cfg PotentialConfig) (*FastPotentialField, error) {
	if err := checkSize(w, h); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := w * h
	return &FastPotentialField{
		w: w, h: h, cfg: cfg, rng: rng,
		potential: make([]float64, n),
		summed:    make([]int, n),
		charged:   make([]bool, n),
		mark:      make([]int, n),
	}, nil
}

// Test normalises the candidate's potential into [0,1] over the current
// candidate range and accepts when its weighted share reaches a threshold
// drawn from [MinGuarantee,1].
func (m *FastPotentialField) Test(x, y int) bool {
	threshold := m.rng.Between(m.cfg.MinGuarantee, 1)
	p := m.potential[y*m.w+x]
	if m.hi != m.lo {
		p = (p - m.lo) / (m.hi - m.lo)
	}
	return math.Pow(p, m.cfg.Eta)/m.denom >= threshold
}

// Refresh adds newly broken frontier cells as charges, brings every candidate
// up to date and recomputes the normalisation.
func (m *FastPotentialField) Refresh(g *core.Grid, frontier []core.Point) {
	for _, p := range frontier {
		i := p.Y*m.w + p.X
		if !m.charged[i] {
			m.charged[i] = true
			m.charges = append(m.charges, p)
		}
	}

	m.stamp++
	m.candidates = m.candidates[:0]
	for _, p := range frontier {
		for _, d := range core.Neighbors {
			dx, dy := d.Offset()
			nx, ny := p.X+dx, p.Y+dy
			if !g.In(nx, ny) || g.Broken(nx, ny) {
				continue
			}
			i := ny*m.w + nx
			if m.mark[i] == m.stamp {
				continue
			}
			m.mark[i] = m.stamp
			m.candidates = append(m.candidates, core.Point{X: nx, Y: ny})
		}
	}

	m.values = m.values[:0]
	for _, c := range m.candidates {
		i := c.Y*m.w + c.X
		for _, b := range m.charges[m.summed[i]:] {
			m.potential[i] += contribution(c, b)
		}
		m.summed[i] = len(m.charges)
		m.values = append(m.values, m.potential[i])
	}

	m.lo, m.hi, m.denom = 0, 0, 0
	if len(m.values) == 0 {
		return
	}
	m.lo, m.hi = floats.Min(m.values), floats.Max(m.values)
	span, base := m.hi-m.lo, m.lo
	if span == 0 {
		span, base = 1, 0
	}
	for i, v := range m.values {
		m.values[i] = math.Pow((v-base)/span, m.cfg.Eta)
	}
	m.denom = floats.Sum(m.values)
}

// OnBreak does nothing; charges are collected on the next Refresh.
func (m *FastPotentialField) OnBreak(int, int) {}

func contribution(c, b core.Point) float64 {
	dx, dy := float64(c.X-b.X), float64(c.Y-b.Y)
	return 1 - chargeRadius/math.Hypot(dx, dy)
}

// Potential returns the accumulated potential of grid cell (x, y). Cells that
// were never candidates read 0.
func (m *FastPotentialField) Potential(x, y int) float64 { return m.potential[y*m.w+x] }

// Candidates returns the candidate cells collected by the last Refresh. The
// slice is reused by the next Refresh.
func (m *FastPotentialField) Candidates() []core.Point { return m.candidates }

// Range returns the candidate potential bounds from the last Refresh.
func (m *FastPotentialField) Range() (lo, hi float64) { return m.lo, m.hi }

// Denominator returns the normaliser computed by the last Refresh.
func (m *FastPotentialField) Denominator() float64 { return m.denom }

// Parameters describes the acceptance configuration.
func (m *FastPotentialField) Parameters() core.ParameterSnapshot {
	return potentialParams("Fast potential field", m.cfg, "")
}

func init() {
	Register("fastdbm", func(size core.Size, rng *prng.RNG, cfg map[string]string) (Model, error) {
		c, err := PotentialConfigFromMap(cfg)
		if err != nil {
			return nil, err
		}
		return NewFastPotentialField(size.W, size.H, rng, c)
	}, potentialParams("Fast potential field", DefaultPotentialConfig(), ""))
}
