// Package interp turns a continuous frame counter into the agent's
// sub-cell position along a visited path.
package interp

import (
	"fmt"

	"github.com/san-kum/covplay/internal/coverage"
)

// DefaultSubsteps is the number of frames rendered per timestep.
const DefaultSubsteps = 10

// Point is a real-valued position.
type Point struct {
	X, Y float64
}

type Engine struct {
	path     coverage.VisitedPath
	substeps int
}

// New returns an engine over path with the given frames per timestep. A
// non-positive substeps falls back to DefaultSubsteps.
func New(path coverage.VisitedPath, substeps int) *Engine {
	if substeps <= 0 {
		substeps = DefaultSubsteps
	}
	return &Engine{path: path, substeps: substeps}
}

func (e *Engine) Substeps() int { return e.substeps }

// TotalFrames returns S*T.
func (e *Engine) TotalFrames() int {
	return e.substeps * len(e.path)
}

// Timestep returns the discrete timestep owning frame f.
func (e *Engine) Timestep(f int) int {
	return f / e.substeps
}

// Fraction returns the progress through the current timestep, in [0, 1).
func (e *Engine) Fraction(f int) float64 {
	return float64(f%e.substeps) / float64(e.substeps)
}

// Position returns the agent's grid-space position at frame f, linearly
// interpolated between the current and next visited cells. During the last
// timestep the agent holds on the final cell.
func (e *Engine) Position(f int) (Point, error) {
	if err := e.check(f); err != nil {
		return Point{}, err
	}

	t := e.Timestep(f)
	prev := e.path[t]
	next := prev
	if t+1 < len(e.path) {
		next = e.path[t+1]
	}

	frac := e.Fraction(f)
	return Point{
		X: float64(prev.X) + frac*float64(next.X-prev.X),
		Y: float64(prev.Y) + frac*float64(next.Y-prev.Y),
	}, nil
}

func (e *Engine) check(f int) error {
	if f < 0 || f >= e.TotalFrames() {
		return fmt.Errorf("%w: %d not in [0,%d)", coverage.ErrFrameOutOfRange, f, e.TotalFrames())
	}
	return nil
}

// ToRenderPosition maps a grid position to render space: the agent is
// centred on its cell and the vertical axis is flipped.
func ToRenderPosition(x, y float64, yLen int) Point {
	return Point{X: x + 0.5, Y: float64(yLen) - (y + 0.5)}
}

// FromRenderPosition inverts ToRenderPosition.
func FromRenderPosition(rx, ry float64, yLen int) Point {
	return Point{X: rx - 0.5, Y: float64(yLen) - ry - 0.5}
}
