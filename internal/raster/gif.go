package raster

import (
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"os"
)

// GIFEncoder collects frames for an animated GIF.
type GIFEncoder struct {
	palette color.Palette
	delay   int // centiseconds
	anim    gif.GIF
}

// NewGIFEncoder returns an encoder quantizing frames to palette and playing
// them at fps frames per second.
func NewGIFEncoder(palette color.Palette, fps int) *GIFEncoder {
	return &GIFEncoder{
		palette: palette,
		delay:   Delay(fps),
		anim:    gif.GIF{LoopCount: 0},
	}
}

// Delay converts a frame rate to a GIF frame delay in centiseconds.
func Delay(fps int) int {
	if fps <= 0 {
		return 4
	}
	d := 100 / fps
	if d < 1 {
		d = 1
	}
	return d
}

// Add copies img as the next frame.
func (e *GIFEncoder) Add(img image.Image) {
	b := img.Bounds()
	frame := image.NewPaletted(b, e.palette)
	draw.Draw(frame, b, img, b.Min, draw.Src)
	e.anim.Image = append(e.anim.Image, frame)
	e.anim.Delay = append(e.anim.Delay, e.delay)
}

func (e *GIFEncoder) Len() int { return len(e.anim.Image) }

func (e *GIFEncoder) Encode(w io.Writer) error {
	return gif.EncodeAll(w, &e.anim)
}

func (e *GIFEncoder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := e.Encode(f); err != nil {
		return err
	}
	return f.Close()
}
