package raster

import (
	"context"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/covplay/internal/coverage"
	"github.com/san-kum/covplay/internal/interp"
	"github.com/san-kum/covplay/internal/playback"
	"github.com/san-kum/covplay/internal/viz"
)

var (
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	black = color.RGBA{A: 0xff}
	lime  = color.RGBA{G: 0xff, A: 0xff}
	green = color.RGBA{G: 0x75, A: 0xff}
	blue  = color.RGBA{B: 0xff, A: 0xff}
)

func scenario(t *testing.T) *playback.Driver {
	t.Helper()
	visited := coverage.VisitedPath{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}
	dyn := coverage.MapDynamics{
		{{X: 1, Y: 1}: coverage.Occupied},
		{},
		{{X: 0, Y: 0}: coverage.Free},
	}
	d, err := playback.New(visited, dyn, coverage.Grid{XLen: 2, YLen: 2})
	if err != nil {
		t.Fatalf("driver: %v", err)
	}
	return d
}

func TestSurfaceDraw(t *testing.T) {
	s := New(Options{CellSize: 20})
	if s.Image() != nil {
		t.Error("expected nil image before setup")
	}
	if err := s.Setup(coverage.Grid{XLen: 2, YLen: 2}); err != nil {
		t.Fatal(err)
	}
	if b := s.Bounds(); b.Dx() != 40 || b.Dy() != labelBand+40 {
		t.Fatalf("unexpected bounds %v", b)
	}

	s.SetCell(coverage.Cell{X: 0, Y: 0}, coverage.StateCoveredFree)
	s.SetCell(coverage.Cell{X: 0, Y: 1}, coverage.StateCoveredOccupied)
	s.SetCell(coverage.Cell{X: 1, Y: 0}, coverage.StateOccupied)
	s.MoveAgent(interp.ToRenderPosition(1, 1, 2))
	img := s.Image()

	tests := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{"cell (0,0) at top left", 10, labelBand + 10, lime},
		{"cell (0,1) below it", 10, labelBand + 30, green},
		{"cell (1,0) top right", 30, labelBand + 10, black},
		{"agent on (1,1)", 30, labelBand + 30, blue},
		{"corner of agent cell outside disk", 23, labelBand + 23, white},
		{"grid edge", 0, labelBand + 5, black},
		{"shared border", 10, labelBand + 19, black},
		{"label band background", 1, 1, white},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("%s: expected %v at (%d,%d), got %v", tt.name, tt.want, tt.x, tt.y, got)
		}
	}
}

func TestSurfaceAgentPixel(t *testing.T) {
	s := New(Options{CellSize: 10})
	if err := s.Setup(coverage.Grid{XLen: 3, YLen: 3}); err != nil {
		t.Fatal(err)
	}
	s.MoveAgent(interp.ToRenderPosition(2, 0, 3))
	x, y := s.AgentPixel()
	if x != 25 || y != labelBand+5 {
		t.Errorf("expected (25,%d), got (%v,%v)", labelBand+5, x, y)
	}
}

func TestSurfaceLabel(t *testing.T) {
	s := New(Options{CellSize: 40})
	if err := s.Setup(coverage.Grid{XLen: 3, YLen: 1}); err != nil {
		t.Fatal(err)
	}
	s.SetLabel("Time: 7")
	img := s.Image()

	text := 0
	for y := 0; y < labelBand; y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			if img.RGBAAt(x, y) == black {
				text++
			}
		}
	}
	if text == 0 {
		t.Error("expected label pixels in the band above the grid")
	}
}

func TestPaletteDeduplicates(t *testing.T) {
	p := New(Options{Theme: viz.ThemeClassic}).Palette()
	// classic: white, black, lime, #007500, blue; edge and text repeat black
	if len(p) != 5 {
		t.Errorf("expected 5 colors, got %d", len(p))
	}
}

func TestDelay(t *testing.T) {
	tests := []struct{ fps, want int }{
		{25, 4},
		{10, 10},
		{30, 3},
		{200, 1},
		{0, 4},
	}
	for _, tt := range tests {
		if got := Delay(tt.fps); got != tt.want {
			t.Errorf("Delay(%d) = %d, want %d", tt.fps, got, tt.want)
		}
	}
}

func TestWriteGIF(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "run.gif")
	frames := filepath.Join(dir, "frames")

	if err := WriteGIF(context.Background(), scenario(t), Options{CellSize: 16}, out, frames); err != nil {
		t.Fatalf("WriteGIF: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(anim.Image) != 30 {
		t.Errorf("expected 30 frames, got %d", len(anim.Image))
	}
	if anim.Delay[0] != 4 {
		t.Errorf("expected delay 4, got %d", anim.Delay[0])
	}

	// Frame 20: (1,1) covered and occupied, agent sits on it; (0,0) covered free.
	last := anim.Image[20]
	if got := color.RGBAModel.Convert(last.At(8, labelBand+8)); got != lime {
		t.Errorf("expected (0,0) lime at frame 20, got %v", got)
	}
	if got := color.RGBAModel.Convert(last.At(18, labelBand+18)); got != green {
		t.Errorf("expected (1,1) dark green outside the agent, got %v", got)
	}

	entries, err := os.ReadDir(frames)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 30 {
		t.Errorf("expected 30 png frames, got %d", len(entries))
	}
}

func TestSnapshotPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := SnapshotPNG(scenario(t), Options{}, 15, path); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("expected non-empty png, err=%v", err)
	}

	if err := SnapshotPNG(scenario(t), Options{}, 30, path); err == nil {
		t.Error("expected error for frame past the end")
	}
}
