// Package paint provides the raster drawing primitives used to compose a poster:
// a canvas with a circular clip stack, image-in-circle compositing with zoom,
// circle borders and styled text.
package paint

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
)

// Canvas is an RGBA pixel buffer plus drawing state. It is not safe for
// concurrent use; the render controller owns it exclusively.
type Canvas struct {
	img   *image.RGBA
	clips []*image.Alpha // clip stack, top is the active clip

	// Interpolator scales rasters drawn into circles.
	Interpolator xdraw.Interpolator

	fonts *FontBook
	face  font.Face
	fill  image.Image
}

// NewCanvas allocates a transparent canvas of the given size.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		img:          image.NewRGBA(image.Rect(0, 0, width, height)),
		Interpolator: xdraw.CatmullRom,
		fonts:        DefaultFontBook(),
		fill:         image.NewUniform(color.Black),
	}
}

// Resize replaces the pixel buffer with a transparent one of the new size and
// drops any active clip, like resizing an HTML canvas element.
func (c *Canvas) Resize(width, height int) {
	c.img = image.NewRGBA(image.Rect(0, 0, width, height))
	c.clips = nil
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Bounds().Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Bounds().Dy() }

// Bounds returns the canvas rectangle.
func (c *Canvas) Bounds() image.Rectangle { return c.img.Bounds() }

// Image returns the live pixel buffer. Callers must not retain it across renders.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Snapshot returns a copy of the current pixels.
func (c *Canvas) Snapshot() *image.RGBA {
	out := image.NewRGBA(c.img.Bounds())
	copy(out.Pix, c.img.Pix)
	return out
}

// Clear fills the whole canvas with bg, replacing whatever was there.
func (c *Canvas) Clear(bg color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
}

// ClipDepth returns the number of active clips.
func (c *Canvas) ClipDepth() int { return len(c.clips) }

func (c *Canvas) activeClip() *image.Alpha {
	if len(c.clips) == 0 {
		return nil
	}
	return c.clips[len(c.clips)-1]
}

// Restore pops the most recent clip pushed with PushCircleClip.
// Calling Restore with no active clip is a programming error and panics.
func (c *Canvas) Restore() {
	if len(c.clips) == 0 {
		panic("paint: Restore called without a matching PushCircleClip")
	}
	c.clips[len(c.clips)-1] = nil
	c.clips = c.clips[:len(c.clips)-1]
}
