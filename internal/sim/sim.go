// Package sim runs breakdown propagation over a grid. A Simulator owns its grid
// and drives a growth model round by round: every active broken cell offers its
// unbroken neighbors to the model, accepted neighbors break and point back at
// their parent, and the round's new cells become the next frontier.
package sim

import (
	"errors"
	"fmt"

	"lichtenberg/internal/core"
	"lichtenberg/internal/model"
)

// DefaultMaxRounds is the round cap used by callers that have no better bound.
const DefaultMaxRounds = 50000

// ErrNilModel is returned by New when no growth model is supplied.
var ErrNilModel = errors.New("sim: nil growth model")

// Directions selects which sides growth may spread to.
type Directions struct {
	Up, Down, Left, Right bool
}

// AllDirections enables growth on every side.
func AllDirections() Directions {
	return Directions{Up: true, Down: true, Left: true, Right: true}
}

// Enabled reports whether growth towards side d is allowed.
func (ds Directions) Enabled(d core.Direction) bool {
	switch d {
	case core.DirUp:
		return ds.Up
	case core.DirDown:
		return ds.Down
	case core.DirLeft:
		return ds.Left
	case core.DirRight:
		return ds.Right
	}
	return false
}

// BreakFunc is called once per newly broken cell. Returning true cancels the
// run once the current frontier cell has been fully processed.
type BreakFunc func(x, y int) (stop bool)

// RoundFunc is called at the start of every round, after the model refresh.
// Returning true cancels the run before the round does any work.
type RoundFunc func(round, maxRounds int, g *core.Grid) (stop bool)

// Reason says why Run returned.
type Reason int

const (
	// Exhausted means the frontier emptied.
	Exhausted Reason = iota
	// RoundLimit means maxRounds rounds ran with cells still active.
	RoundLimit
	// Cancelled means a callback asked to stop.
	Cancelled
)

func (r Reason) String() string {
	switch r {
	case Exhausted:
		return "exhausted"
	case RoundLimit:
		return "round-limit"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// Result summarises a finished run.
type Result struct {
	Rounds int
	Reason Reason
	Broken int
}

// Simulator is the propagation engine. It is not safe for concurrent use.
type Simulator struct {
	grid  *core.Grid
	model model.Model
	dirs  Directions

	front, back []core.Point
}

// New creates a simulator over a fresh w x h grid.
func New(w, h int, m model.Model, dirs Directions) (*Simulator, error) {
	if m == nil {
		return nil, ErrNilModel
	}
	g, err := core.NewGrid(w, h)
	if err != nil {
		return nil, err
	}
	return &Simulator{grid: g, model: m, dirs: dirs}, nil
}

// Grid returns the simulator's grid.
func (s *Simulator) Grid() *core.Grid { return s.grid }

// Model returns the growth model driving the run.
func (s *Simulator) Model() model.Model { return s.model }

// Directions returns the enabled growth directions.
func (s *Simulator) Directions() Directions { return s.dirs }

// Frontier returns the active cells left after the last Run. The slice is
// reused by the next Run.
func (s *Simulator) Frontier() []core.Point { return s.front }

// Run propagates breakdown for at most maxRounds rounds and then recomputes
// the depth metric of every cell. Either callback may be nil.
func (s *Simulator) Run(maxRounds int, onBreak BreakFunc, onRound RoundFunc) Result {
	g := s.grid
	s.front = s.front[:0]
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			if c := g.Cell(x, y); c.Broken && !c.Insulated {
				s.front = append(s.front, core.Point{X: x, Y: y})
			}
		}
	}

	round := 0
	reason := Exhausted
	for len(s.front) > 0 {
		if round >= maxRounds {
			reason = RoundLimit
			break
		}
		s.model.Refresh(g, s.front)
		if onRound != nil && onRound(round, maxRounds, g) {
			reason = Cancelled
			break
		}

		cancelled := false
		s.back = s.back[:0]
		for _, c := range s.front {
			if s.spread(c, onBreak) {
				cancelled = true
				break
			}
		}
		s.front, s.back = s.back, s.front
		round++
		if cancelled {
			reason = Cancelled
			break
		}
	}

	s.computeDepth()
	return Result{Rounds: round, Reason: reason, Broken: g.Count()}
}

// spread offers every enabled unbroken neighbor of c to the model. Accepted
// neighbors go to the back buffer, followed by c itself if any neighbor is
// still unbroken.
func (s *Simulator) spread(c core.Point, onBreak BreakFunc) (stop bool) {
	g := s.grid
	open := false
	for _, d := range core.Neighbors {
		if !s.dirs.Enabled(d) {
			continue
		}
		dx, dy := d.Offset()
		nx, ny := c.X+dx, c.Y+dy
		if !g.In(nx, ny) || g.Broken(nx, ny) {
			continue
		}
		if !s.model.Test(nx, ny) {
			open = true
			continue
		}
		g.SetBroken(nx, ny)
		g.SetDir(nx, ny, d.Opposite())
		s.back = append(s.back, core.Point{X: nx, Y: ny})
		s.model.OnBreak(nx, ny)
		if onBreak != nil && onBreak(nx, ny) {
			stop = true
		}
	}
	if open {
		s.back = append(s.back, c)
	}
	return stop
}
