package image

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Fit scales src to cover a width x height rectangle, preserving aspect ratio
// and cropping the overflow evenly from both sides.
func Fit(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	sb := src.Bounds()
	if sb.Empty() || width <= 0 || height <= 0 {
		return dst
	}

	// Pick the source window with the destination's aspect ratio.
	sw, sh := sb.Dx(), sb.Dy()
	if sw*height > sh*width {
		cw := sh * width / height
		sb.Min.X += (sw - cw) / 2
		sb.Max.X = sb.Min.X + cw
	} else {
		ch := sw * height / width
		sb.Min.Y += (sh - ch) / 2
		sb.Max.Y = sb.Min.Y + ch
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, xdraw.Src, nil)
	return dst
}
