package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/covplay/internal/coverage"
	"github.com/san-kum/covplay/internal/metrics"
)

func scenarioSeries(t *testing.T) *metrics.Series {
	t.Helper()
	visited := coverage.VisitedPath{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}
	dyn := coverage.MapDynamics{
		{{X: 1, Y: 1}: coverage.Occupied},
		{},
		{{X: 0, Y: 0}: coverage.Free},
	}
	s, err := metrics.Collect(context.Background(), visited, dyn, coverage.Grid{XLen: 2, YLen: 2})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	return s
}

func TestSavePlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coverage.png")
	if err := SavePlot(path, scenarioSeries(t), 4); err != nil {
		t.Fatalf("SavePlot: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("expected a PNG file")
	}
}

func TestSavePlotRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coverage.png")
	if err := SavePlot(path, metrics.NewSeries(), 4); err == nil {
		t.Error("expected error for empty series")
	}
	if err := SavePlot(path, scenarioSeries(t), 0); err == nil {
		t.Error("expected error for zero grid size")
	}
}

func TestRenderHTML(t *testing.T) {
	s := scenarioSeries(t)
	var buf bytes.Buffer
	if err := RenderHTML(&buf, "run 42", s, metrics.Summarize(s)); err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"echarts", "run 42", "coverage", "covered_occupied", "Summary"} {
		if !strings.Contains(out, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestSaveHTML(t *testing.T) {
	s := scenarioSeries(t)
	path := filepath.Join(t.TempDir(), "coverage.html")
	if err := SaveHTML(path, "coverage", s, metrics.Summarize(s)); err != nil {
		t.Fatalf("SaveHTML: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("expected non-empty html, err=%v", err)
	}
}
