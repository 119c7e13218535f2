package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/icza/mjpeg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"lichtenberg/internal/core"
)

// VideoRecorder writes one MJPEG frame per recorded round.
type VideoRecorder struct {
	writer  mjpeg.AviWriter
	scale   int
	frame   *image.RGBA
	cells   *image.RGBA
	states  []uint8
	buf     bytes.Buffer
	options *jpeg.Options
	frames  int
}

// NewVideoRecorder creates an AVI file at path for a w x h grid, scaling each
// cell to scale x scale pixels.
func NewVideoRecorder(path string, w, h, scale, fps int) (*VideoRecorder, error) {
	if scale < 1 {
		scale = 1
	}
	if fps < 1 {
		fps = 1
	}
	writer, err := mjpeg.New(path, int32(w*scale), int32(h*scale), int32(fps))
	if err != nil {
		return nil, fmt.Errorf("create video %s: %w", path, err)
	}
	return &VideoRecorder{
		writer:  writer,
		scale:   scale,
		frame:   image.NewRGBA(image.Rect(0, 0, w*scale, h*scale)),
		cells:   image.NewRGBA(image.Rect(0, 0, w, h)),
		options: &jpeg.Options{Quality: 90},
	}, nil
}

// AddFrame renders g with the round number in the corner.
func (v *VideoRecorder) AddFrame(g *core.Grid, round int) error {
	v.states = States(g, v.states)
	FillPaletteRGBA(v.cells.Pix, v.states, Palette)
	draw.NearestNeighbor.Scale(v.frame, v.frame.Bounds(), v.cells, v.cells.Bounds(), draw.Src, nil)
	addLabel(v.frame, 4, 14, fmt.Sprintf("round %d", round), color.RGBA{G: 0xff, A: 0xff})

	v.buf.Reset()
	if err := jpeg.Encode(&v.buf, v.frame, v.options); err != nil {
		return err
	}
	if err := v.writer.AddFrame(v.buf.Bytes()); err != nil {
		return err
	}
	v.frames++
	return nil
}

// Frames returns how many frames have been written.
func (v *VideoRecorder) Frames() int { return v.frames }

// Close finalises the AVI index.
func (v *VideoRecorder) Close() error { return v.writer.Close() }

func addLabel(img *image.RGBA, x, y int, label string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(label)
}
