package playback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/covplay/internal/cellstate"
	"github.com/san-kum/covplay/internal/coverage"
	"github.com/san-kum/covplay/internal/interp"
	"github.com/san-kum/covplay/internal/logging"
)

// DefaultFrameRate is the nominal playback rate in frames per second.
const DefaultFrameRate = 25

// ErrNoSurface is returned by Step and Seek before Attach.
var ErrNoSurface = errors.New("playback: no surface attached")

// Surface is the drawing target mutated by the driver. Positions passed to
// MoveAgent are in render space (see interp.ToRenderPosition).
type Surface interface {
	Setup(grid coverage.Grid) error
	SetCell(c coverage.Cell, s coverage.ColorState)
	MoveAgent(p interp.Point)
	SetLabel(text string)
}

// Discard is a Surface that draws nothing, for runs that only need the
// resolved states (statistics, tests).
var Discard Surface = discard{}

type discard struct{}

func (discard) Setup(coverage.Grid) error                  { return nil }
func (discard) SetCell(coverage.Cell, coverage.ColorState) {}
func (discard) MoveAgent(interp.Point)                     {}
func (discard) SetLabel(string)                            {}

// State is the playback state after a frame has been applied.
type State struct {
	Frame    int
	Timestep int
	Position interp.Point // grid space
	Render   interp.Point // render space
}

// FrameFunc is called after every frame with the mutated surface.
// Returning an error aborts the run.
type FrameFunc func(State) error

type Option func(*Driver)

func WithSubsteps(n int) Option {
	return func(d *Driver) { d.substeps = n }
}

func WithFrameRate(fps int) Option {
	return func(d *Driver) { d.frameRate = fps }
}

type Driver struct {
	grid      coverage.Grid
	visited   coverage.VisitedPath
	dyn       coverage.MapDynamics
	substeps  int
	frameRate int

	engine   *interp.Engine
	resolver *cellstate.Resolver
	surface  Surface
	state    State
	lastT    int
}

// New validates a run and returns a driver for it. The logs must have the
// same number of timesteps and every cell they mention must lie on grid.
func New(visited coverage.VisitedPath, dyn coverage.MapDynamics, grid coverage.Grid, opts ...Option) (*Driver, error) {
	d := &Driver{
		grid:      grid,
		visited:   visited,
		dyn:       dyn,
		substeps:  interp.DefaultSubsteps,
		frameRate: DefaultFrameRate,
		lastT:     -1,
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := d.validate(); err != nil {
		return nil, err
	}

	d.engine = interp.New(visited, d.substeps)
	d.resolver = cellstate.New(visited, dyn)
	return d, nil
}

func (d *Driver) validate() error {
	if d.grid.XLen <= 0 || d.grid.YLen <= 0 {
		return fmt.Errorf("%w: grid %dx%d", coverage.ErrInvalidConfig, d.grid.XLen, d.grid.YLen)
	}
	if d.substeps <= 0 {
		return fmt.Errorf("%w: substeps must be positive, got %d", coverage.ErrInvalidConfig, d.substeps)
	}
	if d.frameRate <= 0 {
		return fmt.Errorf("%w: frame rate must be positive, got %d", coverage.ErrInvalidConfig, d.frameRate)
	}
	if len(d.visited) == 0 {
		return coverage.ErrEmptyPath
	}
	if len(d.visited) != len(d.dyn) {
		return fmt.Errorf("%w: %d visited rows, %d map rows", coverage.ErrLengthMismatch, len(d.visited), len(d.dyn))
	}

	for t, c := range d.visited {
		if !d.grid.Contains(c) {
			return fmt.Errorf("%w: visited %v at t=%d on %dx%d grid", coverage.ErrCellOutOfRange, c, t, d.grid.XLen, d.grid.YLen)
		}
	}
	for t, report := range d.dyn {
		for c := range report {
			if !d.grid.Contains(c) {
				return fmt.Errorf("%w: map %v at t=%d on %dx%d grid", coverage.ErrCellOutOfRange, c, t, d.grid.XLen, d.grid.YLen)
			}
		}
	}
	return nil
}

func (d *Driver) Grid() coverage.Grid           { return d.grid }
func (d *Driver) Visited() coverage.VisitedPath { return d.visited }
func (d *Driver) Timesteps() int                { return len(d.visited) }
func (d *Driver) Substeps() int                 { return d.substeps }
func (d *Driver) FrameRate() int                { return d.frameRate }
func (d *Driver) State() State                  { return d.state }

// Frames returns the total number of frames, S*T.
func (d *Driver) Frames() int { return d.engine.TotalFrames() }

// Interval is the nominal time between frames.
func (d *Driver) Interval() time.Duration {
	return time.Second / time.Duration(d.frameRate)
}

// Label is the time-step caption shown for timestep t.
func Label(t int) string {
	return fmt.Sprintf("Time: %d", t)
}

// Attach sets up surface for the driver's grid and rewinds to before the
// first frame.
func (d *Driver) Attach(surface Surface) error {
	if err := surface.Setup(d.grid); err != nil {
		return err
	}
	d.surface = surface
	d.resolver.Reset()
	d.lastT = -1
	d.state = State{}
	return nil
}

// Step applies frame f to the attached surface. Cell colors are recomputed
// only when f enters a new timestep; stepping to any frame yields the same
// surface as playing every frame up to it.
func (d *Driver) Step(f int) (State, error) {
	if d.surface == nil {
		return d.state, ErrNoSurface
	}

	pos, err := d.engine.Position(f)
	if err != nil {
		return d.state, err
	}
	t := d.engine.Timestep(f)
	render := interp.ToRenderPosition(pos.X, pos.Y, d.grid.YLen)

	d.surface.MoveAgent(render)
	d.surface.SetLabel(Label(t))

	if t != d.lastT {
		if err := d.recolor(t); err != nil {
			return d.state, &coverage.PlaybackError{Frame: f, Timestep: t, Wrapped: err}
		}
	}

	d.state = State{Frame: f, Timestep: t, Position: pos, Render: render}
	return d.state, nil
}

// Seek repositions playback at frame f, forwards or backwards.
func (d *Driver) Seek(f int) (State, error) {
	if f < 0 || f >= d.Frames() {
		return d.state, fmt.Errorf("%w: frame %d not in [0,%d)", coverage.ErrFrameOutOfRange, f, d.Frames())
	}
	return d.Step(f)
}

func (d *Driver) recolor(t int) error {
	sequential := t == d.lastT+1
	updates, err := d.resolver.Advance(t)
	if err != nil {
		return err
	}
	d.lastT = t

	if sequential {
		for _, u := range updates {
			if err := d.paint(u.Cell, u.State); err != nil {
				return err
			}
		}
		return nil
	}

	// Jumped: repaint the whole grid from the resolver.
	states := d.resolver.Snapshot()
	for _, c := range d.grid.Cells() {
		if err := d.paint(c, states[c]); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) paint(c coverage.Cell, s coverage.ColorState) error {
	if !d.grid.Contains(c) {
		return fmt.Errorf("%w: %v on %dx%d grid", coverage.ErrCellOutOfRange, c, d.grid.XLen, d.grid.YLen)
	}
	d.surface.SetCell(c, s)
	return nil
}

// CellStates returns the resolved state of every cell reported so far.
func (d *Driver) CellStates() map[coverage.Cell]coverage.ColorState {
	return d.resolver.Snapshot()
}

// CoveredCount returns the number of distinct cells visited up to the
// current timestep.
func (d *Driver) CoveredCount() int { return d.resolver.CoveredCount() }

// Run attaches surface and plays every frame in order, calling onFrame
// after each one. It stops early when ctx is done or onFrame fails.
func (d *Driver) Run(ctx context.Context, surface Surface, onFrame FrameFunc) error {
	if err := d.Attach(surface); err != nil {
		return err
	}

	total := d.Frames()
	logging.Logf("playback: %d timesteps, %d frames at %d fps", d.Timesteps(), total, d.frameRate)

	for f := 0; f < total; f++ {
		select {
		case <-ctx.Done():
			return &coverage.PlaybackError{
				Frame:    f,
				Timestep: d.engine.Timestep(f),
				Wrapped:  fmt.Errorf("%w: %w", coverage.ErrCanceled, ctx.Err()),
			}
		default:
		}

		state, err := d.Step(f)
		if err != nil {
			return err
		}
		if onFrame != nil {
			if err := onFrame(state); err != nil {
				return &coverage.PlaybackError{Frame: f, Timestep: state.Timestep, Wrapped: err}
			}
		}
	}

	logging.Logf("playback: finished after %d frames", total)
	return nil
}
