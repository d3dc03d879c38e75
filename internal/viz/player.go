package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/covplay/internal/metrics"
	"github.com/san-kum/covplay/internal/playback"
)

type TickMsg time.Time

// Model is the interactive player. Each tick advances playback by one frame.
type Model struct {
	driver    *playback.Driver
	term      *Terminal
	series    *metrics.Series
	frame     int
	running   bool
	finished  bool
	showHelp  bool
	quitAtEnd bool
	err       error
}

// NewModel attaches a terminal surface to d and positions it on frame 0.
// series, when non-nil, feeds the coverage chart.
func NewModel(d *playback.Driver, theme Theme, series *metrics.Series) (Model, error) {
	term := NewTerminal(theme)
	if err := d.Attach(term); err != nil {
		return Model{}, err
	}
	m := Model{driver: d, term: term, series: series, running: true}
	m.seek(0)
	if m.err != nil {
		return Model{}, m.err
	}
	return m, nil
}

// QuitAtEnd makes the program exit after the last frame.
func (m Model) QuitAtEnd(v bool) Model {
	m.quitAtEnd = v
	return m
}

func (m Model) Frame() int     { return m.frame }
func (m Model) Running() bool  { return m.running }
func (m Model) Finished() bool { return m.finished }
func (m Model) Err() error     { return m.err }
func (m Model) Theme() Theme   { return m.term.Theme() }

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.driver.Interval(), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles keys and advances playback on ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			if m.finished {
				m.seek(0)
				m.running = true
			} else {
				m.running = !m.running
			}
		case "r":
			m.seek(0)
			m.running = true
		case "[":
			m.running = false
			m.seek(m.frame - m.driver.Substeps())
		case "]":
			m.running = false
			m.seek(m.frame + m.driver.Substeps())
		case "left", "h":
			m.running = false
			m.seek(m.frame - 1)
		case "right", "l":
			m.running = false
			m.seek(m.frame + 1)
		case "home":
			m.seek(0)
		case "end":
			m.seek(m.driver.Frames() - 1)
		case "t":
			m.term.SetTheme(NextTheme(m.term.Theme().Name))
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.seek(m.frame + 1)
			if m.finished && m.quitAtEnd {
				return m, tea.Quit
			}
		}
		return m, m.tick()
	}
	return m, nil
}

// seek clamps f to the run and repositions the driver.
func (m *Model) seek(f int) {
	last := m.driver.Frames() - 1
	f = clamp(f, 0, last)
	if _, err := m.driver.Seek(f); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.frame = f
	m.finished = f == last
	if m.finished {
		m.running = false
	}
}

// View renders the grid next to the stats panel.
func (m Model) View() string {
	st := m.driver.State()
	grid := m.driver.Grid()

	var s strings.Builder
	s.WriteString(headerStyle.Render("COVERAGE PLAYBACK") + "\n")

	switch {
	case m.err != nil:
		s.WriteString(statusPaused.Render("ERROR: "+m.err.Error()) + "\n\n")
	case m.finished:
		s.WriteString(statusFinished.Render("FINISHED") + "\n\n")
	case m.running:
		s.WriteString(statusPlaying.Render("PLAYING") + "\n\n")
	default:
		s.WriteString(statusPaused.Render("PAUSED") + "\n\n")
	}

	covered := m.driver.CoveredCount()
	frac := float64(covered) / float64(grid.Size())
	s.WriteString(labelStyle.Render("Frame") + valueStyle.Render(fmt.Sprintf("%d/%d", st.Frame+1, m.driver.Frames())) + "\n")
	s.WriteString(labelStyle.Render("Timestep") + valueStyle.Render(fmt.Sprintf("%d/%d", st.Timestep, m.driver.Timesteps()-1)) + "\n")
	s.WriteString(labelStyle.Render("Covered") + valueStyle.Render(fmt.Sprintf("%d/%d (%.1f%%)", covered, grid.Size(), 100*frac)) + "\n")
	s.WriteString(labelStyle.Render("Agent") + valueStyle.Render(fmt.Sprintf("(%.2f, %.2f)", st.Position.X, st.Position.Y)) + "\n")
	s.WriteString(labelStyle.Render("Theme") + valueStyle.Render(m.term.Theme().Name) + "\n\n")
	s.WriteString(ProgressBar(float64(st.Frame+1)/float64(m.driver.Frames()), 30) + "\n")

	if m.series != nil {
		if cov := m.series.Values("coverage"); len(cov) > 1 {
			n := clamp(st.Timestep+1, 2, len(cov))
			chart := asciigraph.Plot(cov[:n], asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("Coverage"))
			s.WriteString(graphStyle.Render(chart) + "\n")
		}
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Restart Q:Quit\n[ ]:Timestep ←→:Frame T:Theme ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, lipgloss.NewStyle().Padding(1, 2).Render(m.term.Render()), statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + main
	}
	return main
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume playback    ║
║  R        - Restart from frame 0     ║
║  Q        - Quit                     ║
║  [ / ]    - Previous/next timestep   ║
║  ← / →    - Previous/next frame      ║
║  Home/End - First/last frame         ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`
