package paint

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"starmap/pkg/geometry"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Zoom limits for DrawImageInCircle, in percent. 100% makes the raster's
// shorter side exactly span the circle diameter.
const (
	MinZoomPercent = 50.0
	MaxZoomPercent = 1000.0
)

// ClampZoom limits a requested zoom to [MinZoomPercent, MaxZoomPercent].
func ClampZoom(percent float64) float64 {
	if math.IsNaN(percent) || percent < MinZoomPercent {
		return MinZoomPercent
	}
	if percent > MaxZoomPercent {
		return MaxZoomPercent
	}
	return percent
}

// coverage returns the antialiased coverage (0-1) of a pixel whose center is d
// pixels from the circle center, for a disc of radius r.
func coverage(d, r float64) float64 {
	v := r - d + 0.5
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 1
	}
	return v
}

// pixelArea returns the integer pixel rectangle touched by a disc of radius
// r around circle's center, clipped to bounds.
func pixelArea(c geometry.Circle, r float64, bounds image.Rectangle) image.Rectangle {
	area := image.Rect(
		int(math.Floor(c.CenterX-r-1)),
		int(math.Floor(c.CenterY-r-1)),
		int(math.Ceil(c.CenterX+r+1)),
		int(math.Ceil(c.CenterY+r+1)),
	)
	return area.Intersect(bounds)
}

// eachPixel calls fn with the distance from the circle center to the center of
// every pixel in area.
func eachPixel(c geometry.Circle, area image.Rectangle, fn func(x, y int, d float64)) {
	for y := area.Min.Y; y < area.Max.Y; y++ {
		dy := float64(y) + 0.5 - c.CenterY
		for x := area.Min.X; x < area.Max.X; x++ {
			dx := float64(x) + 0.5 - c.CenterX
			fn(x, y, math.Hypot(dx, dy))
		}
	}
}

// PushCircleClip saves the current clip and intersects it with the circle's
// disc. Until the matching Restore, image drawing through the canvas is
// invisible outside the disc.
func (c *Canvas) PushCircleClip(circle geometry.Circle) {
	bounds := c.img.Bounds()
	mask := image.NewAlpha(bounds)
	parent := c.activeClip()

	if circle.Radius > 0 {
		area := pixelArea(circle, circle.Radius, bounds)
		eachPixel(circle, area, func(x, y int, d float64) {
			a := coverage(d, circle.Radius)
			if a == 0 {
				return
			}
			v := uint8(math.Round(a * 0xff))
			if parent != nil {
				v = uint8(uint16(v) * uint16(parent.AlphaAt(x, y).A) / 0xff)
			}
			mask.SetAlpha(x, y, color.Alpha{A: v})
		})
	}
	c.clips = append(c.clips, mask)
}

// CoverTransform returns the transform that scales a raster of the given size
// so that, at zoom 100%, its shorter side spans the circle diameter, centered
// on the circle. zoomPercent is clamped with ClampZoom.
func CoverTransform(src geometry.Size, circle geometry.Circle, zoomPercent float64) geometry.AffineTransform {
	s := circle.Diameter() / src.Min() * ClampZoom(zoomPercent) / 100
	return geometry.Translation(
		circle.CenterX-src.Width*s/2,
		circle.CenterY-src.Height*s/2,
	).Compose(geometry.Scale(s, s))
}

// DrawImageInCircle scales src with CoverTransform and draws it into the
// circle. It always pushes its own clip for the circle (intersected with any
// active clip) and restores it before returning, so no pixel outside the disc
// is written.
func (c *Canvas) DrawImageInCircle(src image.Image, circle geometry.Circle, zoomPercent float64) error {
	if src == nil {
		return fmt.Errorf("%w: nil image", geometry.ErrInvalidParameter)
	}
	sb := src.Bounds()
	if sb.Empty() {
		return fmt.Errorf("%w: empty image", geometry.ErrInvalidParameter)
	}
	if circle.Radius <= 0 {
		return fmt.Errorf("%w: radius %g", geometry.ErrInvalidParameter, circle.Radius)
	}

	area := pixelArea(circle, circle.Radius, c.img.Bounds())
	if area.Empty() {
		return nil
	}

	size := geometry.NewSize(float64(sb.Dx()), float64(sb.Dy()))
	t := CoverTransform(size, circle, zoomPercent).
		Compose(geometry.Translation(-float64(sb.Min.X), -float64(sb.Min.Y)))

	c.PushCircleClip(circle)
	defer c.Restore()

	// Scale into a scratch buffer covering only the circle, then composite it
	// through the clip mask.
	scratch := image.NewRGBA(area)
	c.Interpolator.Transform(scratch, f64.Aff3(t.Matrix()), src, sb, xdraw.Src, nil)
	draw.DrawMask(c.img, area, scratch, area.Min, c.activeClip(), area.Min, draw.Over)
	return nil
}

// StrokeCircle draws a ring of the given width centered on the circle's edge.
// It ignores the clip stack so borders are never cut by an active clip.
// A zero width draws nothing.
func (c *Canvas) StrokeCircle(circle geometry.Circle, width float64, col color.Color) error {
	if width < 0 || math.IsNaN(width) {
		return fmt.Errorf("%w: border width %g", geometry.ErrInvalidParameter, width)
	}
	if width == 0 || circle.Radius <= 0 {
		return nil
	}

	outer := circle.Radius + width/2
	inner := math.Max(circle.Radius-width/2, 0)

	area := pixelArea(circle, outer, c.img.Bounds())
	if area.Empty() {
		return nil
	}
	mask := image.NewAlpha(area)
	eachPixel(circle, area, func(x, y int, d float64) {
		a := coverage(d, outer)
		if inner > 0 {
			a = math.Min(a, 1-coverage(d, inner))
		}
		if a > 0 {
			mask.SetAlpha(x, y, color.Alpha{A: uint8(math.Round(a * 0xff))})
		}
	})
	draw.DrawMask(c.img, area, image.NewUniform(col), image.Point{}, mask, area.Min, draw.Over)
	return nil
}

// FillCircle paints a solid antialiased disc. Like StrokeCircle it ignores the
// clip stack.
func (c *Canvas) FillCircle(circle geometry.Circle, col color.Color) {
	if circle.Radius <= 0 {
		return
	}
	area := pixelArea(circle, circle.Radius, c.img.Bounds())
	if area.Empty() {
		return
	}
	mask := image.NewAlpha(area)
	eachPixel(circle, area, func(x, y int, d float64) {
		if a := coverage(d, circle.Radius); a > 0 {
			mask.SetAlpha(x, y, color.Alpha{A: uint8(math.Round(a * 0xff))})
		}
	})
	draw.DrawMask(c.img, area, image.NewUniform(col), image.Point{}, mask, area.Min, draw.Over)
}
