package coverage

import "fmt"

// Cell is a grid coordinate.
type Cell struct {
	X, Y int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Occupancy is the binary flag reported by the map log.
type Occupancy uint8

const (
	Free     Occupancy = 0
	Occupied Occupancy = 1
)

// VisitedPath holds the agent's cell at each timestep. Row index is the
// timestep.
type VisitedPath []Cell

// Len returns the number of timesteps T.
func (p VisitedPath) Len() int { return len(p) }

// MapDynamics holds one sparse occupancy report per timestep. A cell missing
// from a report carries its last known state forward.
type MapDynamics []map[Cell]Occupancy

// Len returns the number of timesteps T.
func (d MapDynamics) Len() int { return len(d) }

// Grid is the static size of the environment.
type Grid struct {
	XLen int `json:"x_len" yaml:"x_len"`
	YLen int `json:"y_len" yaml:"y_len"`
}

// Contains reports whether c lies in [0,XLen) x [0,YLen).
func (g Grid) Contains(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.XLen && c.Y < g.YLen
}

// Cells returns every cell of the grid in x-major order.
func (g Grid) Cells() []Cell {
	cells := make([]Cell, 0, g.XLen*g.YLen)
	for x := 0; x < g.XLen; x++ {
		for y := 0; y < g.YLen; y++ {
			cells = append(cells, Cell{X: x, Y: y})
		}
	}
	return cells
}

// Size returns the number of cells.
func (g Grid) Size() int { return g.XLen * g.YLen }

// ColorState is the rendered state of a grid cell.
type ColorState uint8

const (
	StateFree ColorState = iota
	StateOccupied
	StateCoveredFree
	StateCoveredOccupied
)

var colorStateNames = [...]string{
	StateFree:            "FREE",
	StateOccupied:        "OCCUPIED",
	StateCoveredFree:     "COVERED_FREE",
	StateCoveredOccupied: "COVERED_OCCUPIED",
}

func (s ColorState) String() string {
	if int(s) < len(colorStateNames) {
		return colorStateNames[s]
	}
	return fmt.Sprintf("ColorState(%d)", s)
}

// Covered reports whether the state belongs to a visited cell.
func (s ColorState) Covered() bool {
	return s == StateCoveredFree || s == StateCoveredOccupied
}

// IsOccupied reports whether the state belongs to an occupied cell.
func (s ColorState) IsOccupied() bool {
	return s == StateOccupied || s == StateCoveredOccupied
}

// Run bundles the two logs of one coverage run with the grid they were
// recorded on.
type Run struct {
	Grid    Grid
	Visited VisitedPath
	Map     MapDynamics
}

// Timesteps returns T.
func (r *Run) Timesteps() int { return len(r.Visited) }
