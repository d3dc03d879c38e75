package raster

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/san-kum/covplay/internal/logging"
	"github.com/san-kum/covplay/internal/playback"
)

// Recorder turns every played frame into a GIF frame and, optionally, a
// numbered PNG file for an external video encoder.
type Recorder struct {
	surface   *Surface
	gif       *GIFEncoder
	framesDir string
	written   int
}

func NewRecorder(surface *Surface, fps int, framesDir string) *Recorder {
	return &Recorder{
		surface:   surface,
		gif:       NewGIFEncoder(surface.Palette(), fps),
		framesDir: framesDir,
	}
}

// OnFrame is a playback.FrameFunc.
func (r *Recorder) OnFrame(st playback.State) error {
	img := r.surface.Image()
	if img == nil {
		return fmt.Errorf("raster: surface not set up")
	}
	r.gif.Add(img)
	if r.framesDir != "" {
		path := filepath.Join(r.framesDir, fmt.Sprintf("frame_%05d.png", st.Frame))
		if err := SavePNG(path, img); err != nil {
			return err
		}
		r.written++
	}
	return nil
}

func (r *Recorder) Frames() int { return r.gif.Len() }

// Save writes the collected GIF to path.
func (r *Recorder) Save(path string) error {
	if err := r.gif.Save(path); err != nil {
		return err
	}
	logging.Logf("raster: wrote %d frames to %s", r.gif.Len(), path)
	if r.framesDir != "" {
		logging.Logf("raster: wrote %d png frames to %s", r.written, r.framesDir)
	}
	return nil
}

// WriteGIF plays d on a new surface and saves the animation to path.
// framesDir, when set, also receives one PNG per frame.
func WriteGIF(ctx context.Context, d *playback.Driver, opts Options, path, framesDir string) error {
	if framesDir != "" {
		if err := os.MkdirAll(framesDir, 0755); err != nil {
			return err
		}
	}
	surface := New(opts)
	rec := NewRecorder(surface, d.FrameRate(), framesDir)
	if err := d.Run(ctx, surface, rec.OnFrame); err != nil {
		return err
	}
	return rec.Save(path)
}

// SnapshotPNG renders frame f of d to a PNG file.
func SnapshotPNG(d *playback.Driver, opts Options, f int, path string) error {
	surface := New(opts)
	if err := d.Attach(surface); err != nil {
		return err
	}
	if _, err := d.Seek(f); err != nil {
		return err
	}
	return SavePNG(path, surface.Image())
}

func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return err
	}
	return f.Close()
}
