package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/covplay/internal/coverage"
)

func scenario() (coverage.VisitedPath, coverage.MapDynamics, coverage.Grid) {
	visited := coverage.VisitedPath{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}
	dyn := coverage.MapDynamics{
		{{X: 1, Y: 1}: coverage.Occupied},
		{},
		{{X: 0, Y: 0}: coverage.Free},
	}
	return visited, dyn, coverage.Grid{XLen: 2, YLen: 2}
}

func TestCoveredFraction(t *testing.T) {
	m := NewCoveredFraction()
	m.Observe(Sample{Grid: coverage.Grid{XLen: 4, YLen: 5}, Covered: 5})
	if m.Value() != 0.25 {
		t.Errorf("expected 0.25, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}

	m.Observe(Sample{Grid: coverage.Grid{}, Covered: 3})
	if m.Value() != 0 {
		t.Errorf("empty grid should give zero coverage, got %f", m.Value())
	}
}

func TestOccupiedCounts(t *testing.T) {
	states := map[coverage.Cell]coverage.ColorState{
		{X: 0, Y: 0}: coverage.StateOccupied,
		{X: 1, Y: 0}: coverage.StateCoveredOccupied,
		{X: 2, Y: 0}: coverage.StateCoveredFree,
		{X: 3, Y: 0}: coverage.StateFree,
		{X: 4, Y: 0}: coverage.StateCoveredOccupied,
	}
	s := Sample{States: states}

	occ := NewOccupied()
	occ.Observe(s)
	if occ.Value() != 3 {
		t.Errorf("expected 3 occupied, got %f", occ.Value())
	}

	co := NewCoveredOccupied()
	co.Observe(s)
	if co.Value() != 2 {
		t.Errorf("expected 2 covered occupied, got %f", co.Value())
	}
}

func TestMeanOccupied(t *testing.T) {
	m := NewMeanOccupied()
	if m.Value() != 0 {
		t.Error("expected zero before any sample")
	}
	m.Observe(Sample{States: map[coverage.Cell]coverage.ColorState{{X: 0, Y: 0}: coverage.StateOccupied}})
	m.Observe(Sample{})
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestCollectScenario(t *testing.T) {
	visited, dyn, grid := scenario()

	s, err := Collect(context.Background(), visited, dyn, grid)
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}

	if diff := cmp.Diff([]int{0, 1, 2}, s.Timesteps()); diff != "" {
		t.Errorf("timesteps mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"coverage", "occupied", "covered_occupied", "mean_occupied"}, s.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	want := map[string][]float64{
		"coverage":         {0.25, 0.5, 0.75},
		"occupied":         {1, 1, 1},
		"covered_occupied": {0, 0, 1},
		"mean_occupied":    {1, 1, 1},
	}
	for name, w := range want {
		if diff := cmp.Diff(w, s.Values(name)); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestCollectCoverageMonotonic(t *testing.T) {
	visited := coverage.VisitedPath{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}}
	dyn := make(coverage.MapDynamics, len(visited))

	s, err := Collect(context.Background(), visited, dyn, coverage.Grid{XLen: 2, YLen: 2})
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	cov := s.Values("coverage")
	for i := 1; i < len(cov); i++ {
		if cov[i] < cov[i-1] {
			t.Errorf("coverage decreased at t=%d: %f -> %f", i, cov[i-1], cov[i])
		}
	}
	if cov[len(cov)-1] != 1 {
		t.Errorf("expected full coverage, got %f", cov[len(cov)-1])
	}
}

func TestCollectRejectsMismatch(t *testing.T) {
	visited, dyn, grid := scenario()
	if _, err := Collect(context.Background(), visited, dyn[:1], grid); err == nil {
		t.Error("expected error for mismatched logs")
	}
}

func TestSummarize(t *testing.T) {
	visited, dyn, grid := scenario()
	s, err := Collect(context.Background(), visited, dyn, grid)
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}

	sum := Summarize(s)
	if sum.Timesteps != 3 {
		t.Errorf("expected 3 timesteps, got %d", sum.Timesteps)
	}
	if sum.FinalCoverage != 0.75 {
		t.Errorf("expected final coverage 0.75, got %f", sum.FinalCoverage)
	}
	if sum.TimeTo50 != 1 {
		t.Errorf("expected 50%% at t=1, got %d", sum.TimeTo50)
	}
	if sum.TimeTo90 != -1 {
		t.Errorf("expected 90%% never reached, got %d", sum.TimeTo90)
	}
	if math.Abs(sum.MeanOccupied-1) > 1e-12 || sum.StdOccupied != 0 {
		t.Errorf("expected mean 1 std 0, got %f %f", sum.MeanOccupied, sum.StdOccupied)
	}
	if sum.MaxCoveredOcc != 1 {
		t.Errorf("expected max covered occupied 1, got %f", sum.MaxCoveredOcc)
	}
}

func TestSummarizeUsesRunningMean(t *testing.T) {
	s := NewSeries(NewOccupied(), NewMeanOccupied())
	occupied := map[coverage.Cell]coverage.ColorState{{X: 0, Y: 0}: coverage.StateOccupied}
	s.Observe(Sample{Timestep: 0, States: occupied})
	s.Observe(Sample{Timestep: 1})
	s.Observe(Sample{Timestep: 2})
	s.Observe(Sample{Timestep: 3})

	if diff := cmp.Diff([]float64{1, 0.5, 1.0 / 3, 0.25}, s.Values("mean_occupied")); diff != "" {
		t.Errorf("running mean mismatch (-want +got):\n%s", diff)
	}
	sum := Summarize(s)
	if sum.MeanOccupied != 0.25 {
		t.Errorf("expected summary mean 0.25 from the running mean, got %f", sum.MeanOccupied)
	}
	if sum.MaxOccupied != 1 || sum.StdOccupied <= 0 {
		t.Errorf("unexpected max/std: %f %f", sum.MaxOccupied, sum.StdOccupied)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(NewSeries())
	if sum.TimeTo50 != -1 || sum.TimeTo90 != -1 || sum.FinalCoverage != 0 {
		t.Errorf("unexpected summary for empty series: %+v", sum)
	}
}
