package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"lichtenberg/internal/core"
	prng "lichtenberg/pkg/core"
)

const (
	// PotentialSink is the potential assigned to broken cells.
	PotentialSink = 0.0
	// PotentialSource is the potential preset electrodes are held at.
	PotentialSource = 1.0

	sorFactor          = 1.9
	solveEpsilon       = 1e-3
	solveMaxIterations = 10000
)

// FieldCell is one sample of the padded potential grid. Locked cells keep
// their potential while the solver relaxes the rest.
type FieldCell struct {
	Potential float64
	Locked    bool
}

// PotentialConfig holds the acceptance parameters shared by the field models.
type PotentialConfig struct {
	MinGuarantee float64 `yaml:"min_guarantee"`
	Eta          float64 `yaml:"eta"`
}

// DefaultPotentialConfig accepts on the raw potential with no floor.
func DefaultPotentialConfig() PotentialConfig {
	return PotentialConfig{MinGuarantee: 0, Eta: 1}
}

// PotentialConfigFromMap overlays string values onto the defaults.
func PotentialConfigFromMap(cfg map[string]string) (PotentialConfig, error) {
	c := DefaultPotentialConfig()
	if err := floatOpt(cfg, "min_guarantee", &c.MinGuarantee); err != nil {
		return c, err
	}
	if err := floatOpt(cfg, "eta", &c.Eta); err != nil {
		return c, err
	}
	return c, nil
}

// Validate rejects unusable acceptance parameters.
func (c PotentialConfig) Validate() error {
	if err := checkMinGuarantee(c.MinGuarantee); err != nil {
		return err
	}
	if c.Eta <= 0 || math.IsNaN(c.Eta) {
		return fmt.Errorf("%w: eta %g must be positive", ErrInvalidArgument, c.Eta)
	}
	return nil
}

// PotentialField is the dielectric breakdown model: candidates break with a
// probability proportional to the electric potential, which is re-solved each
// round with broken cells acting as a sink.
//
// The field is stored on a (w+2) x (h+2) grid. The outer ring is never relaxed,
// so whatever potential the caller put there acts as a fixed boundary.
type PotentialField struct {
	w, h   int
	stride int
	cfg    PotentialConfig
	field  []FieldCell
	rng    *prng.RNG

	denom      float64
	iterations int
	converged  bool
}

// NewPotentialField copies initial, indexed [y][x] over the padded grid, which
// must be exactly (h+2) rows of (w+2) cells.
func NewPotentialField(w, h int, initial [][]FieldCell, rng *prng.RNG, cfg PotentialConfig) (*PotentialField, error) {
	if err := checkSize(w, h); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(initial) != h+2 {
		return nil, fmt.Errorf("%w: field has %d rows, want %d", ErrInvalidArgument, len(initial), h+2)
	}
	m := &PotentialField{w: w, h: h, stride: w + 2, cfg: cfg, rng: rng, field: make([]FieldCell, (w+2)*(h+2))}
	for y, row := range initial {
		if len(row) != w+2 {
			return nil, fmt.Errorf("%w: field row %d has %d cells, want %d", ErrInvalidArgument, y, len(row), w+2)
		}
		copy(m.field[y*m.stride:], row)
	}
	return m, nil
}

// Test draws a threshold in [MinGuarantee,1] and accepts when the candidate's
// share of the frontier potential reaches it.
func (m *PotentialField) Test(x, y int) bool {
	threshold := m.rng.Between(m.cfg.MinGuarantee, 1)
	p := m.field[(y+1)*m.stride+x+1].Potential
	var prob float64
	if m.cfg.Eta == 1 {
		prob = p / m.denom
	} else {
		prob = math.Pow(p, m.cfg.Eta) / m.denom
	}
	return prob >= threshold
}

// Refresh sinks newly broken frontier cells, relaxes the field and recomputes
// the acceptance denominator.
func (m *PotentialField) Refresh(g *core.Grid, frontier []core.Point) {
	for _, p := range frontier {
		c := &m.field[(p.Y+1)*m.stride+p.X+1]
		if c.Locked {
			continue
		}
		c.Locked = true
		c.Potential = PotentialSink
	}
	m.iterations, m.converged = m.solve()
	m.denom = m.denominator(g, frontier)
}

// OnBreak does nothing; broken cells are sunk on the next Refresh.
func (m *PotentialField) OnBreak(int, int) {}

func (m *PotentialField) solve() (int, bool) {
	f, s := m.field, m.stride
	for i := 0; i < solveMaxIterations; i++ {
		total := 0.0
		for y := 1; y <= m.h; y++ {
			row := y * s
			for x := 1; x <= m.w; x++ {
				c := &f[row+x]
				if c.Locked {
					continue
				}
				next := (f[row+x-1].Potential + f[row+x+1].Potential + f[row-s+x].Potential + f[row+s+x].Potential) / 4
				diff := next - c.Potential
				c.Potential += sorFactor * diff
				total += math.Abs(diff)
			}
		}
		if total < solveEpsilon {
			return i + 1, true
		}
	}
	return solveMaxIterations, false
}

func (m *PotentialField) denominator(g *core.Grid, frontier []core.Point) float64 {
	seen := make(map[int]struct{})
	var terms []float64
	for _, p := range frontier {
		for _, d := range core.Neighbors {
			dx, dy := d.Offset()
			nx, ny := p.X+dx, p.Y+dy
			if !g.In(nx, ny) || g.Broken(nx, ny) {
				continue
			}
			i := g.Index(nx, ny)
			if _, ok := seen[i]; ok {
				continue
			}
			seen[i] = struct{}{}
			terms = append(terms, math.Pow(m.field[(ny+1)*m.stride+nx+1].Potential, m.cfg.Eta))
		}
	}
	if len(terms) == 0 {
		return 0
	}
	return floats.Sum(terms)
}

// Potential returns the field value at padded coordinates (px, py), where
// (1, 1) is grid cell (0, 0).
func (m *PotentialField) Potential(px, py int) float64 { return m.field[py*m.stride+px].Potential }

// Denominator returns the normaliser computed by the last Refresh.
func (m *PotentialField) Denominator() float64 { return m.denom }

// SolveStats reports how many relaxation sweeps the last Refresh ran and
// whether they converged before the iteration cap.
func (m *PotentialField) SolveStats() (iterations int, converged bool) {
	return m.iterations, m.converged
}

// FieldStats returns the minimum, mean and maximum potential over the interior.
func (m *PotentialField) FieldStats() (lo, mean, hi float64) {
	interior := make([]float64, 0, m.w*m.h)
	for y := 1; y <= m.h; y++ {
		for x := 1; x <= m.w; x++ {
			interior = append(interior, m.field[y*m.stride+x].Potential)
		}
	}
	return floats.Min(interior), stat.Mean(interior, nil), floats.Max(interior)
}

// Parameters describes the acceptance configuration.
func (m *PotentialField) Parameters() core.ParameterSnapshot {
	return potentialParams("Potential field", m.cfg, "")
}

func potentialParams(name string, c PotentialConfig, preset string) core.ParameterSnapshot {
	params := []core.Parameter{
		core.FloatParam("min_guarantee", "Min guarantee", c.MinGuarantee),
		core.FloatParam("eta", "Eta", c.Eta),
	}
	if preset != "" {
		params = append(params,
			core.StringParam("preset", "Preset", preset),
			core.FloatParam("radius", "Ring radius (0 = auto)", 0),
		)
	}
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{{Name: name, Params: params}}}
}

func init() {
	Register("dbm", func(size core.Size, rng *prng.RNG, cfg map[string]string) (Model, error) {
		c, err := PotentialConfigFromMap(cfg)
		if err != nil {
			return nil, err
		}
		if err := checkSize(size.W, size.H); err != nil {
			return nil, err
		}
		radius := 0.0
		if err := floatOpt(cfg, "radius", &radius); err != nil {
			return nil, err
		}
		var initial [][]FieldCell
		switch preset := cfg["preset"]; preset {
		case "", "plates":
			initial = PlatesField(size.W, size.H)
		case "ring":
			initial = RingField(size.W, size.H, radius)
		default:
			return nil, fmt.Errorf("%w: unknown preset %q", ErrInvalidArgument, preset)
		}
		return NewPotentialField(size.W, size.H, initial, rng, c)
	}, potentialParams("Potential field", DefaultPotentialConfig(), "plates"))
}
