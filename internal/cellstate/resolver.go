// Package cellstate derives the rendered state of grid cells from the
// agent's coverage history and the sparse occupancy log.
package cellstate

import (
	"fmt"
	"sort"

	"github.com/san-kum/covplay/internal/coverage"
)

// Update is a recomputed cell state.
type Update struct {
	Cell  coverage.Cell
	State coverage.ColorState
}

// Resolver tracks per-cell state as timesteps are applied in order. A cell
// absent from a timestep's occupancy report keeps its last reported
// occupancy; its coverage flag always reflects the agent's history. Cells
// never reported are FREE.
type Resolver struct {
	visited coverage.VisitedPath
	dyn     coverage.MapDynamics

	t         int // last applied timestep, -1 before the first
	covered   map[coverage.Cell]struct{}
	occupancy map[coverage.Cell]coverage.Occupancy
	states    map[coverage.Cell]coverage.ColorState
}

func New(visited coverage.VisitedPath, dyn coverage.MapDynamics) *Resolver {
	r := &Resolver{visited: visited, dyn: dyn}
	r.Reset()
	return r
}

// Reset returns the resolver to its state before timestep 0.
func (r *Resolver) Reset() {
	r.t = -1
	r.covered = make(map[coverage.Cell]struct{})
	r.occupancy = make(map[coverage.Cell]coverage.Occupancy)
	r.states = make(map[coverage.Cell]coverage.ColorState)
}

// Timestep returns the last applied timestep, or -1.
func (r *Resolver) Timestep() int { return r.t }

// Advance applies every timestep up to and including t and returns the
// states of the cells reported at t, plus the agent's cell at t when its
// occupancy is known, ordered by column then row. Moving backwards replays
// from timestep 0.
func (r *Resolver) Advance(t int) ([]Update, error) {
	if err := r.seek(t); err != nil {
		return nil, err
	}

	report := r.dyn[t]
	updates := make([]Update, 0, len(report)+1)
	for c := range report {
		updates = append(updates, Update{Cell: c, State: r.states[c]})
	}
	if agent := r.visited[t]; !r.reported(t, agent) {
		if _, known := r.occupancy[agent]; known {
			updates = append(updates, Update{Cell: agent, State: r.states[agent]})
		}
	}
	sort.Slice(updates, func(i, j int) bool {
		a, b := updates[i].Cell, updates[j].Cell
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
	return updates, nil
}

// ColorOf returns the state of c at timestep t.
func (r *Resolver) ColorOf(c coverage.Cell, t int) (coverage.ColorState, error) {
	if err := r.seek(t); err != nil {
		return coverage.StateFree, err
	}
	return r.states[c], nil
}

// Covered reports whether the agent visited c at or before timestep t.
func (r *Resolver) Covered(c coverage.Cell, t int) (bool, error) {
	if err := r.seek(t); err != nil {
		return false, err
	}
	_, ok := r.covered[c]
	return ok, nil
}

// CoveredCount returns the number of distinct cells visited so far.
func (r *Resolver) CoveredCount() int { return len(r.covered) }

// Snapshot returns a copy of every cell state resolved so far.
func (r *Resolver) Snapshot() map[coverage.Cell]coverage.ColorState {
	out := make(map[coverage.Cell]coverage.ColorState, len(r.states))
	for c, s := range r.states {
		out[c] = s
	}
	return out
}

func (r *Resolver) seek(t int) error {
	n := len(r.visited)
	if len(r.dyn) < n {
		n = len(r.dyn)
	}
	if t < 0 || t >= n {
		return fmt.Errorf("%w: timestep %d not in [0,%d)", coverage.ErrFrameOutOfRange, t, n)
	}
	if t < r.t {
		r.Reset()
	}
	for r.t < t {
		r.apply(r.t + 1)
	}
	return nil
}

func (r *Resolver) apply(t int) {
	agent := r.visited[t]
	r.covered[agent] = struct{}{}
	if occ, known := r.occupancy[agent]; known {
		r.states[agent] = Resolve(occ, true)
	}
	for c, occ := range r.dyn[t] {
		r.occupancy[c] = occ
		r.states[c] = Resolve(occ, r.isCovered(c))
	}
	r.t = t
}

func (r *Resolver) reported(t int, c coverage.Cell) bool {
	_, ok := r.dyn[t][c]
	return ok
}

func (r *Resolver) isCovered(c coverage.Cell) bool {
	_, ok := r.covered[c]
	return ok
}

// Resolve maps a reported occupancy and the coverage flag to a state.
func Resolve(occ coverage.Occupancy, covered bool) coverage.ColorState {
	switch {
	case occ == coverage.Occupied && covered:
		return coverage.StateCoveredOccupied
	case occ == coverage.Occupied:
		return coverage.StateOccupied
	case covered:
		return coverage.StateCoveredFree
	default:
		return coverage.StateFree
	}
}
