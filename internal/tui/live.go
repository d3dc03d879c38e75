// Package tui renders playback as plain ANSI text, for pipes and terminals
// where the interactive player is not wanted.
package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/san-kum/covplay/internal/coverage"
	"github.com/san-kum/covplay/internal/interp"
	"github.com/san-kum/covplay/internal/playback"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"

	agentRune = '@'
)

var stateRunes = [...]rune{
	coverage.StateFree:            '.',
	coverage.StateOccupied:        '#',
	coverage.StateCoveredFree:     '+',
	coverage.StateCoveredOccupied: '%',
}

// LiveRenderer is a playback.Surface that redraws the whole grid to w on
// every frame.
type LiveRenderer struct {
	w         io.Writer
	interval  time.Duration
	clear     bool
	lastFrame time.Time
	sleep     func(time.Duration)

	grid   coverage.Grid
	canvas [][]rune
	agent  interp.Point
	label  string
	frames int
}

// NewLiveRenderer paces output at one frame per interval. A zero interval
// writes frames as fast as they arrive.
func NewLiveRenderer(w io.Writer, interval time.Duration) *LiveRenderer {
	return &LiveRenderer{
		w:        w,
		interval: interval,
		clear:    true,
		sleep:    time.Sleep,
	}
}

// NoClear disables the clear-screen prefix so frames are appended.
func (r *LiveRenderer) NoClear() *LiveRenderer {
	r.clear = false
	return r
}

func (r *LiveRenderer) Setup(grid coverage.Grid) error {
	if grid.XLen <= 0 || grid.YLen <= 0 {
		return fmt.Errorf("%w: grid %dx%d", coverage.ErrInvalidConfig, grid.XLen, grid.YLen)
	}
	r.grid = grid
	r.canvas = make([][]rune, grid.YLen)
	for i := range r.canvas {
		r.canvas[i] = []rune(strings.Repeat(string(stateRunes[coverage.StateFree]), grid.XLen))
	}
	r.frames = 0
	return nil
}

// SetCell stores the rune for c. Row y=0 is the top line.
func (r *LiveRenderer) SetCell(c coverage.Cell, s coverage.ColorState) {
	if !r.grid.Contains(c) || int(s) >= len(stateRunes) {
		return
	}
	r.canvas[c.Y][c.X] = stateRunes[s]
}

func (r *LiveRenderer) MoveAgent(p interp.Point) { r.agent = p }
func (r *LiveRenderer) SetLabel(text string)     { r.label = text }
func (r *LiveRenderer) Frames() int              { return r.frames }

// agentCell maps the render-space agent position back to a canvas cell.
func (r *LiveRenderer) agentCell() (col, row int) {
	col = clamp(int(math.Floor(r.agent.X)), 0, r.grid.XLen-1)
	row = clamp(int(math.Floor(float64(r.grid.YLen)-r.agent.Y)), 0, r.grid.YLen-1)
	return col, row
}

// String renders the current frame without any escape codes.
func (r *LiveRenderer) String() string {
	if r.canvas == nil {
		return ""
	}
	col, row := r.agentCell()

	var b strings.Builder
	b.WriteString("  " + r.label + "\n")
	b.WriteString("  +" + strings.Repeat("-", r.grid.XLen) + "+\n")
	for y, line := range r.canvas {
		b.WriteString("  |")
		if y == row {
			out := make([]rune, len(line))
			copy(out, line)
			out[col] = agentRune
			b.WriteString(string(out))
		} else {
			b.WriteString(string(line))
		}
		b.WriteString("|\n")
	}
	b.WriteString("  +" + strings.Repeat("-", r.grid.XLen) + "+\n")
	return b.String()
}

// OnFrame writes the frame, sleeping first if the previous one was written
// less than an interval ago.
func (r *LiveRenderer) OnFrame(state playback.State) error {
	if r.interval > 0 && !r.lastFrame.IsZero() {
		if wait := r.interval - time.Since(r.lastFrame); wait > 0 {
			r.sleep(wait)
		}
	}
	r.lastFrame = time.Now()

	var b strings.Builder
	if r.clear {
		b.WriteString(clearScreen)
	}
	b.WriteString(r.String())
	fmt.Fprintf(&b, "  frame %d  pos=(%.2f,%.2f)\n", state.Frame, state.Position.X, state.Position.Y)

	if _, err := io.WriteString(r.w, b.String()); err != nil {
		return err
	}
	r.frames++
	return nil
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.w, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.w, showCursor) }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
