// Package raster draws playback frames into images and encodes them as an
// animated GIF or a PNG sequence.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/san-kum/covplay/internal/coverage"
	"github.com/san-kum/covplay/internal/interp"
	"github.com/san-kum/covplay/internal/viz"
)

const (
	DefaultCellSize    = 32
	DefaultAgentRadius = 0.45

	// labelBand is the strip above the grid holding the time label.
	labelBand = 24
	glyphW    = 7 // basicfont.Face7x13 advance
)

type Options struct {
	CellSize    int
	AgentRadius float64 // fraction of a cell
	Theme       viz.Theme
}

// Surface is a playback surface backed by an RGBA image. Row y=0 is drawn at
// the top of the grid.
type Surface struct {
	opts  Options
	grid  coverage.Grid
	cells [][]coverage.ColorState
	agent interp.Point
	label string
	img   *image.RGBA
}

func New(opts Options) *Surface {
	if opts.CellSize <= 0 {
		opts.CellSize = DefaultCellSize
	}
	if opts.AgentRadius <= 0 {
		opts.AgentRadius = DefaultAgentRadius
	}
	if opts.Theme.Name == "" {
		opts.Theme = viz.ThemeClassic
	}
	return &Surface{opts: opts}
}

func (s *Surface) Setup(grid coverage.Grid) error {
	if grid.XLen <= 0 || grid.YLen <= 0 {
		return coverage.ErrInvalidConfig
	}
	s.grid = grid
	s.cells = make([][]coverage.ColorState, grid.YLen)
	for y := range s.cells {
		s.cells[y] = make([]coverage.ColorState, grid.XLen)
	}
	cs := s.opts.CellSize
	s.img = image.NewRGBA(image.Rect(0, 0, grid.XLen*cs, labelBand+grid.YLen*cs))
	s.label = ""
	return nil
}

func (s *Surface) SetCell(c coverage.Cell, st coverage.ColorState) {
	if !s.grid.Contains(c) {
		return
	}
	s.cells[c.Y][c.X] = st
}

func (s *Surface) MoveAgent(p interp.Point) { s.agent = p }
func (s *Surface) SetLabel(text string)     { s.label = text }

// Bounds returns the frame size, or the empty rectangle before Setup.
func (s *Surface) Bounds() image.Rectangle {
	if s.img == nil {
		return image.Rectangle{}
	}
	return s.img.Bounds()
}

// Palette returns every color the surface can draw, without duplicates.
func (s *Surface) Palette() color.Palette {
	th := s.opts.Theme
	var p color.Palette
	seen := make(map[color.RGBA]bool)
	for _, c := range []color.RGBA{
		viz.RGBA(th.Free),
		viz.RGBA(th.Occupied),
		viz.RGBA(th.CoveredFree),
		viz.RGBA(th.CoveredOccupied),
		viz.RGBA(th.Agent),
		viz.RGBA(th.Edge),
		viz.RGBA(th.Text),
	} {
		if !seen[c] {
			seen[c] = true
			p = append(p, c)
		}
	}
	return p
}

// Image draws the current state. The returned image is reused by the next
// call.
func (s *Surface) Image() *image.RGBA {
	if s.img == nil {
		return nil
	}
	th := s.opts.Theme
	cs := s.opts.CellSize

	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(viz.RGBA(th.Free)), image.Point{}, draw.Src)

	edge := image.NewUniform(viz.RGBA(th.Edge))
	for y := 0; y < s.grid.YLen; y++ {
		for x := 0; x < s.grid.XLen; x++ {
			r := s.cellRect(x, y)
			draw.Draw(s.img, r, image.NewUniform(viz.RGBA(th.Color(s.cells[y][x]))), image.Point{}, draw.Src)
			// 1px inside each cell, so shared borders come out 2px wide.
			draw.Draw(s.img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), edge, image.Point{}, draw.Src)
			draw.Draw(s.img, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), edge, image.Point{}, draw.Src)
			draw.Draw(s.img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), edge, image.Point{}, draw.Src)
			draw.Draw(s.img, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), edge, image.Point{}, draw.Src)
		}
	}

	cx, cy := s.AgentPixel()
	s.fillDisk(cx, cy, s.opts.AgentRadius*float64(cs), viz.RGBA(th.Agent))
	s.drawLabel(viz.RGBA(th.Text))
	return s.img
}

func (s *Surface) cellRect(x, y int) image.Rectangle {
	cs := s.opts.CellSize
	return image.Rect(x*cs, labelBand+y*cs, (x+1)*cs, labelBand+(y+1)*cs)
}

// AgentPixel maps the render-space agent position to image coordinates.
func (s *Surface) AgentPixel() (float64, float64) {
	cs := float64(s.opts.CellSize)
	return s.agent.X * cs, labelBand + (float64(s.grid.YLen)-s.agent.Y)*cs
}

func (s *Surface) fillDisk(cx, cy, r float64, c color.RGBA) {
	b := s.img.Bounds()
	x0 := int(math.Floor(cx - r))
	x1 := int(math.Ceil(cx + r))
	y0 := int(math.Floor(cy - r))
	y1 := int(math.Ceil(cy + r))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy > r*r {
				continue
			}
			if image.Pt(x, y).In(b) {
				s.img.SetRGBA(x, y, c)
			}
		}
	}
}

func (s *Surface) drawLabel(c color.RGBA) {
	if s.label == "" {
		return
	}
	x := (s.img.Bounds().Dx() - len(s.label)*glyphW) / 2
	if x < 2 {
		x = 2
	}
	d := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(labelBand - 7)},
	}
	d.DrawString(s.label)
}
