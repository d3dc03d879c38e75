// Package report renders coverage series as a PNG plot or an HTML chart.
package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/covplay/internal/logging"
	"github.com/san-kum/covplay/internal/metrics"
)

var (
	coverageColor = color.RGBA{R: 0x00, G: 0x75, B: 0x00, A: 255}
	occupiedColor = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 255}
	bothColor     = color.RGBA{R: 0x00, G: 0x00, B: 0xff, A: 255}
)

// SavePlot writes the coverage curve, together with the occupied and
// covered-occupied shares of the grid, as a PNG (or any format plot.Save
// infers from the extension).
func SavePlot(path string, s *metrics.Series, gridSize int) error {
	if s.Len() == 0 {
		return fmt.Errorf("report: empty series")
	}
	if gridSize <= 0 {
		return fmt.Errorf("report: grid size must be positive, got %d", gridSize)
	}

	p := plot.New()
	p.Title.Text = "Coverage over time"
	p.X.Label.Text = "Timestep"
	p.Y.Label.Text = "Share of grid (%)"
	p.Y.Min = 0
	p.Y.Max = 100

	lines := []struct {
		name  string
		scale float64
		color color.Color
	}{
		{"coverage", 100, coverageColor},
		{"occupied", 100 / float64(gridSize), occupiedColor},
		{"covered_occupied", 100 / float64(gridSize), bothColor},
	}

	ts := s.Timesteps()
	for _, l := range lines {
		values := s.Values(l.name)
		if len(values) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(values))
		for i, v := range values {
			pts[i] = plotter.XY{X: float64(ts[i]), Y: v * l.scale}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("%s line: %w", l.name, err)
		}
		line.Color = l.color
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(l.name, line)
	}

	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.XOffs = 10
	p.Legend.YOffs = -10
	p.Add(plotter.NewGrid())

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save coverage plot: %w", err)
	}
	logging.Logf("report: plot written to %s", path)
	return nil
}
