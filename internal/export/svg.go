// Package export writes single playback frames as SVG documents.
package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/san-kum/covplay/internal/coverage"
	"github.com/san-kum/covplay/internal/interp"
	"github.com/san-kum/covplay/internal/logging"
	"github.com/san-kum/covplay/internal/playback"
	"github.com/san-kum/covplay/internal/viz"
)

// labelBand is the height, in cells, of the strip above the grid that holds
// the time label.
const labelBand = 1.0

// SVG is a playback surface that records the frame for vector output. One
// SVG unit is Scale pixels; the grid itself is laid out in cell units.
type SVG struct {
	Scale       float64
	AgentRadius float64
	Theme       viz.Theme
	Trail       bool // draw the visited path up to the current timestep

	grid  coverage.Grid
	cells [][]coverage.ColorState
	agent interp.Point
	label string
	path  []interp.Point
}

func NewSVG(theme viz.Theme, scale float64) *SVG {
	if scale <= 0 {
		scale = 32
	}
	return &SVG{Scale: scale, AgentRadius: 0.45, Theme: theme}
}

func (s *SVG) Setup(grid coverage.Grid) error {
	if grid.XLen <= 0 || grid.YLen <= 0 {
		return coverage.ErrInvalidConfig
	}
	s.grid = grid
	s.cells = make([][]coverage.ColorState, grid.YLen)
	for y := range s.cells {
		s.cells[y] = make([]coverage.ColorState, grid.XLen)
	}
	s.path = s.path[:0]
	return nil
}

func (s *SVG) SetCell(c coverage.Cell, st coverage.ColorState) {
	if s.grid.Contains(c) {
		s.cells[c.Y][c.X] = st
	}
}

func (s *SVG) MoveAgent(p interp.Point) { s.agent = p }
func (s *SVG) SetLabel(text string)     { s.label = text }

// SetTrail records the render-space centers of the cells visited so far.
func (s *SVG) SetTrail(visited coverage.VisitedPath, t int) {
	s.path = s.path[:0]
	for i := 0; i <= t && i < len(visited); i++ {
		c := visited[i]
		s.path = append(s.path, interp.ToRenderPosition(float64(c.X), float64(c.Y), s.grid.YLen))
	}
}

// String renders the recorded frame.
func (s *SVG) String() string {
	if s.cells == nil {
		return ""
	}
	w := float64(s.grid.XLen)
	h := float64(s.grid.YLen) + labelBand

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %g %g">
<rect width="100%%" height="100%%" fill="%s"/>
`, w*s.Scale, h*s.Scale, w, h, s.Theme.Free))

	sb.WriteString(fmt.Sprintf(`<g stroke="%s" stroke-width="0.0625">
`, s.Theme.Edge))
	for y := 0; y < s.grid.YLen; y++ {
		for x := 0; x < s.grid.XLen; x++ {
			sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%g" width="1" height="1" fill="%s"/>
`, x, float64(y)+labelBand, s.Theme.Color(s.cells[y][x])))
		}
	}
	sb.WriteString("</g>\n")

	if s.Trail && len(s.path) > 1 {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="0.08" stroke-opacity="0.6" d="M`, s.Theme.Agent))
		for i, p := range s.path {
			x, y := s.toSVG(p)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%g,%g", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%g,%g", x, y))
			}
		}
		sb.WriteString(`"/>
`)
	}

	ax, ay := s.toSVG(s.agent)
	sb.WriteString(fmt.Sprintf(`<circle cx="%g" cy="%g" r="%g" fill="%s"/>
`, ax, ay, s.AgentRadius, s.Theme.Agent))

	if s.label != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%g" y="%g" font-family="monospace" font-size="0.5" text-anchor="middle" fill="%s">%s</text>
`, w/2, labelBand*0.7, s.Theme.Text, escape(s.label)))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// toSVG maps a render-space point (y up from the bottom of the grid) to SVG
// coordinates (y down, below the label band).
func (s *SVG) toSVG(p interp.Point) (float64, float64) {
	return p.X, labelBand + float64(s.grid.YLen) - p.Y
}

func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}

// Snapshot seeks d to frame f on a fresh SVG surface and writes it to path.
func Snapshot(d *playback.Driver, s *SVG, f int, path string) error {
	if err := d.Attach(s); err != nil {
		return err
	}
	st, err := d.Seek(f)
	if err != nil {
		return err
	}
	if s.Trail {
		s.SetTrail(d.Visited(), st.Timestep)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := s.WriteTo(file); err != nil {
		return err
	}
	logging.Logf("export: frame %d written to %s", f, path)
	return file.Close()
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return escaper.Replace(s) }
