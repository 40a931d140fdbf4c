package canvas

import (
	"image"
	"image/color"
	"math"
)

// DrawOverlay draws ov onto output, with poster coordinates multiplied by
// scale.
func DrawOverlay(output *image.RGBA, ov *Overlay, scale float64) {
	if ov == nil {
		return
	}
	for _, c := range ov.Circles {
		drawCircle(output, c.CenterX*scale, c.CenterY*scale, c.Radius*scale, ov.Color)
		drawCross(output, int(c.CenterX*scale), int(c.CenterY*scale), 4, ov.Color)
	}
	for _, b := range ov.Baselines {
		half := b.Width * scale / 2
		y := int(b.Y * scale)
		drawLine(output, int(b.X*scale-half), y, int(b.X*scale+half), y, ov.Color)
	}
}

// drawCircle outlines a circle one pixel wide.
func drawCircle(output *image.RGBA, cx, cy, r float64, col color.RGBA) {
	if r <= 0 {
		return
	}
	steps := int(2*math.Pi*r) + 8
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		setPixel(output, int(math.Round(cx+r*math.Cos(a))), int(math.Round(cy+r*math.Sin(a))), col)
	}
}

func drawCross(output *image.RGBA, x, y, arm int, col color.RGBA) {
	drawLine(output, x-arm, y, x+arm, y, col)
	drawLine(output, x, y-arm, x, y+arm, col)
}

// drawLine draws a line using Bresenham's algorithm.
func drawLine(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	e := dx + dy
	for {
		setPixel(output, x1, y1, col)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x1 += sx
		}
		if e2 <= dx {
			e += dx
			y1 += sy
		}
	}
}

func setPixel(output *image.RGBA, x, y int, col color.RGBA) {
	if (image.Point{X: x, Y: y}).In(output.Rect) {
		output.SetRGBA(x, y, col)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
