package report

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/san-kum/covplay/internal/logging"
	"github.com/san-kum/covplay/internal/metrics"
)

// RenderHTML writes an HTML page with the coverage line chart and a bar
// chart of the summary figures.
func RenderHTML(w io.Writer, title string, s *metrics.Series, sum metrics.Summary) error {
	if s.Len() == 0 {
		return fmt.Errorf("report: empty series")
	}

	x := make([]int, s.Len())
	copy(x, s.Timesteps())

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "520px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("timesteps=%d final=%.1f%%", sum.Timesteps, 100*sum.FinalCoverage)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Timestep", NameLocation: "middle", NameGap: 25}),
	)
	line.SetXAxis(x)
	for _, name := range s.Names() {
		values := s.Values(name)
		data := make([]opts.LineData, len(values))
		for i, v := range values {
			if name == "coverage" {
				v *= 100
			}
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(name, data)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Summary"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis([]string{"Final coverage (%)", "Mean occupied", "Max occupied", "Max covered occupied"}).
		AddSeries("summary", []opts.BarData{
			{Value: 100 * sum.FinalCoverage},
			{Value: sum.MeanOccupied},
			{Value: sum.MaxOccupied},
			{Value: sum.MaxCoveredOcc},
		},
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.AddCharts(line, bar)
	return page.Render(w)
}

// SaveHTML renders the report to path.
func SaveHTML(path, title string, s *metrics.Series, sum metrics.Summary) error {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, title, s, sum); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return err
	}
	logging.Logf("report: html written to %s", path)
	return nil
}
