package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/covplay/internal/coverage"
	"github.com/san-kum/covplay/internal/interp"
)

// Each grid cell is drawn as a cellCols x cellRows block of characters, so
// the agent moves in quarter-cell steps horizontally and half-cell steps
// vertically.
const (
	cellCols  = 4
	cellRows  = 2
	agentRune = "●"
)

// Terminal is a playback surface drawn with lipgloss background colors.
// Row y=0 is printed at the top, matching the raster output.
type Terminal struct {
	grid  coverage.Grid
	cells [][]coverage.ColorState // [y][x]
	agent interp.Point
	label string
	theme Theme
}

func NewTerminal(theme Theme) *Terminal {
	return &Terminal{theme: theme}
}

func (t *Terminal) Setup(grid coverage.Grid) error {
	if grid.XLen <= 0 || grid.YLen <= 0 {
		return coverage.ErrInvalidConfig
	}
	t.grid = grid
	t.cells = make([][]coverage.ColorState, grid.YLen)
	for y := range t.cells {
		t.cells[y] = make([]coverage.ColorState, grid.XLen)
	}
	t.label = ""
	return nil
}

func (t *Terminal) SetCell(c coverage.Cell, s coverage.ColorState) {
	if !t.grid.Contains(c) {
		return
	}
	t.cells[c.Y][c.X] = s
}

func (t *Terminal) MoveAgent(p interp.Point) { t.agent = p }
func (t *Terminal) SetLabel(text string)     { t.label = text }

func (t *Terminal) Label() string        { return t.label }
func (t *Terminal) Theme() Theme         { return t.theme }
func (t *Terminal) SetTheme(theme Theme) { t.theme = theme }
func (t *Terminal) Agent() interp.Point  { return t.agent }
func (t *Terminal) Grid() coverage.Grid  { return t.grid }

// Cell returns the state last painted on c.
func (t *Terminal) Cell(c coverage.Cell) coverage.ColorState {
	if !t.grid.Contains(c) {
		return coverage.StateFree
	}
	return t.cells[c.Y][c.X]
}

// AgentChar returns the character column and row of the agent marker.
func (t *Terminal) AgentChar() (col, row int) {
	col = int(math.Floor(t.agent.X * cellCols))
	row = int(math.Floor((float64(t.grid.YLen) - t.agent.Y) * cellRows))
	col = clamp(col, 0, t.grid.XLen*cellCols-1)
	row = clamp(row, 0, t.grid.YLen*cellRows-1)
	return col, row
}

// Render draws the grid with the label above it.
func (t *Terminal) Render() string {
	if t.cells == nil {
		return ""
	}
	agentCol, agentRow := t.AgentChar()
	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(t.theme.Accent)

	var b strings.Builder
	width := t.grid.XLen * cellCols
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, labelStyle.Render(t.label)))
	b.WriteString("\n")

	blank := strings.Repeat(" ", cellCols)
	for row := 0; row < t.grid.YLen*cellRows; row++ {
		y := row / cellRows
		for x := 0; x < t.grid.XLen; x++ {
			style := lipgloss.NewStyle().Background(t.theme.Color(t.cells[y][x]))
			if row != agentRow || agentCol/cellCols != x {
				b.WriteString(style.Render(blank))
				continue
			}
			off := agentCol % cellCols
			b.WriteString(style.Render(strings.Repeat(" ", off)))
			b.WriteString(style.Foreground(t.theme.Agent).Render(agentRune))
			b.WriteString(style.Render(strings.Repeat(" ", cellCols-off-1)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
