package model

import (
	"fmt"
	"math"

	"lichtenberg/internal/core"
	prng "lichtenberg/pkg/core"
)

const noParticle = -1

type particle struct {
	x, y       float64
	prev, next int32
	live       bool
}

// ParticleAggregation is diffusion-limited aggregation: particles random-walk
// over the grid and a candidate breaks when any live particle sits on it. The
// particles on a broken cell are absorbed.
//
// Each cell owns a doubly linked bucket of the particles whose rounded position
// falls in it. Links are indices into the particle slice.
type ParticleAggregation struct {
	Hooks
	w, h      int
	rng       *prng.RNG
	particles []particle
	heads     []int32
	live      int
}

// DefaultParticleCount returns the particle count used when none is configured:
// one particle per six cells.
func DefaultParticleCount(w, h int) int {
	n := w * h / 6
	if n < 1 {
		n = 1
	}
	return n
}

// NewParticleAggregation scatters n particles uniformly over the grid.
func NewParticleAggregation(w, h, n int, rng *prng.RNG) (*ParticleAggregation, error) {
	if err := checkSize(w, h); err != nil {
		return nil, err
	}
	if n < 0 || n > math.MaxInt32 {
		return nil, fmt.Errorf("%w: particle count %d", ErrInvalidArgument, n)
	}
	m := &ParticleAggregation{
		w: w, h: h, rng: rng,
		particles: make([]particle, n),
		heads:     make([]int32, w*h),
		live:      n,
	}
	for i := range m.heads {
		m.heads[i] = noParticle
	}
	for i := range m.particles {
		p := &m.particles[i]
		p.x = rng.Between(0, float64(w-1))
		p.y = rng.Between(0, float64(h-1))
		p.live = true
		m.link(int32(i), m.cellOf(p.x, p.y))
	}
	return m, nil
}

// Test reports whether any particle occupies (x, y), absorbing all of them.
func (m *ParticleAggregation) Test(x, y int) bool {
	cell := y*m.w + x
	head := m.heads[cell]
	if head == noParticle {
		return false
	}
	for i := head; i != noParticle; i = m.particles[i].next {
		m.particles[i].live = false
		m.live--
	}
	m.heads[cell] = noParticle
	return true
}

// Refresh moves every live particle one step of random length in [0,1) and
// random direction. Steps that would leave the grid are discarded.
func (m *ParticleAggregation) Refresh(*core.Grid, []core.Point) {
	for i := range m.particles {
		p := &m.particles[i]
		if !p.live {
			continue
		}
		r := m.rng.Float64()
		t := m.rng.Angle()
		nx, ny := p.x+r*math.Cos(t), p.y+r*math.Sin(t)
		cx, cy := round(nx), round(ny)
		if cx < 0 || cx >= m.w || cy < 0 || cy >= m.h {
			continue
		}
		from := m.cellOf(p.x, p.y)
		p.x, p.y = nx, ny
		if to := cy*m.w + cx; to != from {
			m.unlink(int32(i), from)
			m.link(int32(i), to)
		}
	}
}

// Live returns the number of particles not yet absorbed.
func (m *ParticleAggregation) Live() int { return m.live }

// Occupancy returns how many live particles sit on (x, y).
func (m *ParticleAggregation) Occupancy(x, y int) int {
	n := 0
	for i := m.heads[y*m.w+x]; i != noParticle; i = m.particles[i].next {
		n++
	}
	return n
}

// Parameters describes the particle count.
func (m *ParticleAggregation) Parameters() core.ParameterSnapshot {
	return aggregationParams(len(m.particles))
}

func aggregationParams(n int) core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{{
		Name:    "Particle aggregation",
		Summary: "random-walking particles absorbed on contact",
		Params:  []core.Parameter{core.IntParam("particles", "Particles (0 = one per six cells)", n)},
	}}}
}

func (m *ParticleAggregation) cellOf(x, y float64) int { return round(y)*m.w + round(x) }

func (m *ParticleAggregation) link(i int32, cell int) {
	p := &m.particles[i]
	p.prev = noParticle
	p.next = m.heads[cell]
	if p.next != noParticle {
		m.particles[p.next].prev = i
	}
	m.heads[cell] = i
}

func (m *ParticleAggregation) unlink(i int32, cell int) {
	p := &m.particles[i]
	if p.prev != noParticle {
		m.particles[p.prev].next = p.next
	} else {
		m.heads[cell] = p.next
	}
	if p.next != noParticle {
		m.particles[p.next].prev = p.prev
	}
	p.prev, p.next = noParticle, noParticle
}

func round(v float64) int { return int(v + 0.5) }

func init() {
	Register("dla", func(size core.Size, rng *prng.RNG, cfg map[string]string) (Model, error) {
		if err := checkSize(size.W, size.H); err != nil {
			return nil, err
		}
		n := 0
		if err := intOpt(cfg, "particles", &n); err != nil {
			return nil, err
		}
		if n == 0 {
			n = DefaultParticleCount(size.W, size.H)
		}
		return NewParticleAggregation(size.W, size.H, n, rng)
	}, aggregationParams(0))
}
