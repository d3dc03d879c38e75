package interp

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/covplay/internal/coverage"
)

var testPath = coverage.VisitedPath{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}}

func TestTotalFrames(t *testing.T) {
	tests := []struct {
		substeps int
		expected int
	}{
		{1, 4},
		{10, 40},
		{25, 100},
		{0, 40}, // falls back to the default
	}

	for _, tt := range tests {
		e := New(testPath, tt.substeps)
		if got := e.TotalFrames(); got != tt.expected {
			t.Errorf("substeps %d: expected %d frames, got %d", tt.substeps, tt.expected, got)
		}
	}
}

func TestTimestepAndFraction(t *testing.T) {
	e := New(testPath, 10)

	if e.Timestep(0) != 0 || e.Timestep(9) != 0 || e.Timestep(10) != 1 || e.Timestep(39) != 3 {
		t.Error("timestep must be floor(f / S)")
	}
	if e.Fraction(0) != 0 {
		t.Errorf("expected fraction 0, got %f", e.Fraction(0))
	}
	if e.Fraction(13) != 0.3 {
		t.Errorf("expected fraction 0.3, got %f", e.Fraction(13))
	}
	for f := 0; f < e.TotalFrames(); f++ {
		if fr := e.Fraction(f); fr < 0 || fr >= 1 {
			t.Fatalf("frame %d: fraction %f outside [0,1)", f, fr)
		}
	}
}

func TestPositionAtBoundaries(t *testing.T) {
	e := New(testPath, 10)
	for k, cell := range testPath {
		p, err := e.Position(k * 10)
		if err != nil {
			t.Fatalf("position failed: %v", err)
		}
		if p.X != float64(cell.X) || p.Y != float64(cell.Y) {
			t.Errorf("frame %d: expected %v, got %+v", k*10, cell, p)
		}
	}
}

func TestPositionInterpolates(t *testing.T) {
	e := New(testPath, 10)

	p, err := e.Position(5)
	if err != nil {
		t.Fatal(err)
	}
	if p.X != 0 || p.Y != 0.5 {
		t.Errorf("expected (0, 0.5), got %+v", p)
	}

	p, _ = e.Position(27)
	if math.Abs(p.X-1.7) > 1e-12 || p.Y != 1 {
		t.Errorf("expected (1.7, 1), got %+v", p)
	}
}

func TestPositionHoldsOnFinalTimestep(t *testing.T) {
	e := New(testPath, 10)
	last := testPath[len(testPath)-1]

	for f := 30; f < 40; f++ {
		p, err := e.Position(f)
		if err != nil {
			t.Fatal(err)
		}
		if p.X != float64(last.X) || p.Y != float64(last.Y) {
			t.Errorf("frame %d: agent moved to %+v", f, p)
		}
	}
}

func TestPositionSingleTimestep(t *testing.T) {
	e := New(coverage.VisitedPath{{X: 3, Y: 2}}, 10)
	for f := 0; f < 10; f++ {
		p, _ := e.Position(f)
		if p != (Point{3, 2}) {
			t.Errorf("frame %d: expected (3,2), got %+v", f, p)
		}
	}
}

func TestPositionOutOfRange(t *testing.T) {
	e := New(testPath, 10)
	for _, f := range []int{-1, 40, 100} {
		if _, err := e.Position(f); !errors.Is(err, coverage.ErrFrameOutOfRange) {
			t.Errorf("frame %d: expected ErrFrameOutOfRange, got %v", f, err)
		}
	}
}

func TestRenderPosition(t *testing.T) {
	p := ToRenderPosition(0, 0, 10)
	if p.X != 0.5 || p.Y != 9.5 {
		t.Errorf("expected (0.5, 9.5), got %+v", p)
	}

	p = ToRenderPosition(3, 9, 10)
	if p.X != 3.5 || p.Y != 0.5 {
		t.Errorf("expected (3.5, 0.5), got %+v", p)
	}
}

func TestRenderPositionRoundTrip(t *testing.T) {
	yLen := 7
	for x := 0; x < 5; x++ {
		for y := 0; y < yLen; y++ {
			r := ToRenderPosition(float64(x), float64(y), yLen)
			back := FromRenderPosition(r.X, r.Y, yLen)
			if back.X != float64(x) || back.Y != float64(y) {
				t.Errorf("(%d,%d) round-tripped to %+v", x, y, back)
			}
		}
	}
}
