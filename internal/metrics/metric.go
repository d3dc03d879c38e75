package metrics

import (
	"github.com/san-kum/covplay/internal/coverage"
)

// Sample is the grid as resolved at one timestep.
type Sample struct {
	Timestep int
	Grid     coverage.Grid
	States   map[coverage.Cell]coverage.ColorState
	Covered  int // distinct cells visited so far
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

func countStates(states map[coverage.Cell]coverage.ColorState, match func(coverage.ColorState) bool) int {
	n := 0
	for _, st := range states {
		if match(st) {
			n++
		}
	}
	return n
}
