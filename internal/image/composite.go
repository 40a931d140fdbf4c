package image

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
)

// BlendMode specifies how layers are composited.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDifference
)

var blendNames = [...]string{"Normal", "Multiply", "Screen", "Overlay", "Difference"}

func (m BlendMode) String() string {
	if m < 0 || int(m) >= len(blendNames) {
		return "Unknown"
	}
	return blendNames[m]
}

// ParseBlendMode maps a case-insensitive mode name to a BlendMode.
func ParseBlendMode(s string) (BlendMode, error) {
	for i, name := range blendNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return BlendMode(i), nil
		}
	}
	return BlendNormal, fmt.Errorf("unknown blend mode %q", s)
}

// Composite combines layers of equal output size into a single image.
type Composite struct {
	Width     int
	Height    int
	Layers    []*CompositeLayer
	BackColor color.Color
}

// CompositeLayer wraps a Layer with compositing settings.
type CompositeLayer struct {
	Layer     *Layer
	BlendMode BlendMode
	OffsetX   int
	OffsetY   int
}

// NewComposite creates a transparent Composite with the specified dimensions.
func NewComposite(width, height int) *Composite {
	return &Composite{
		Width:     width,
		Height:    height,
		BackColor: color.Transparent,
	}
}

// AddLayer adds a layer to the composite.
func (c *Composite) AddLayer(layer *Layer, mode BlendMode, offsetX, offsetY int) {
	c.Layers = append(c.Layers, &CompositeLayer{
		Layer:     layer,
		BlendMode: mode,
		OffsetX:   offsetX,
		OffsetY:   offsetY,
	})
}

// Render produces the final composited image.
func (c *Composite) Render() *image.RGBA {
	result := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	draw.Draw(result, result.Bounds(), image.NewUniform(c.BackColor), image.Point{}, draw.Src)

	for _, cl := range c.Layers {
		if cl.Layer == nil || cl.Layer.Image == nil || !cl.Layer.Visible {
			continue
		}
		src := cl.Layer.Image
		dr := src.Bounds().Sub(src.Bounds().Min).Add(image.Pt(cl.OffsetX, cl.OffsetY))
		Blend(result, dr, src, src.Bounds().Min, cl.BlendMode, cl.Layer.Opacity)
	}
	return result
}

// Blend composites src onto the dr rectangle of dst with the given mode and
// opacity. sp is the source point aligned with dr.Min.
func Blend(dst *image.RGBA, dr image.Rectangle, src image.Image, sp image.Point, mode BlendMode, opacity float64) {
	clipped := dr.Intersect(dst.Bounds())
	if clipped.Empty() || opacity <= 0 {
		return
	}
	sp = sp.Add(clipped.Min.Sub(dr.Min))

	// Normalize the source to RGBA once instead of calling At per pixel.
	s := image.NewRGBA(image.Rect(0, 0, clipped.Dx(), clipped.Dy()))
	draw.Draw(s, s.Bounds(), src, sp, draw.Src)

	opacity = clamp(opacity, 0, 1)
	for y := 0; y < clipped.Dy(); y++ {
		si := s.PixOffset(0, y)
		di := dst.PixOffset(clipped.Min.X, clipped.Min.Y+y)
		for x := 0; x < clipped.Dx(); x, si, di = x+1, si+4, di+4 {
			blendPixel(dst.Pix[di:di+4:di+4], s.Pix[si:si+4:si+4], mode, opacity)
		}
	}
}

// blendPixel blends one premultiplied source pixel into d in place.
func blendPixel(d, s []uint8, mode BlendMode, opacity float64) {
	var sf, df [4]float64
	for i := 0; i < 4; i++ {
		sf[i] = float64(s[i]) / 255
		df[i] = float64(d[i]) / 255
	}

	var rf [3]float64
	for i := 0; i < 3; i++ {
		switch mode {
		case BlendMultiply:
			rf[i] = sf[i] * df[i]
		case BlendScreen:
			rf[i] = 1 - (1-sf[i])*(1-df[i])
		case BlendOverlay:
			if df[i] < 0.5 {
				rf[i] = 2 * sf[i] * df[i]
			} else {
				rf[i] = 1 - 2*(1-sf[i])*(1-df[i])
			}
		case BlendDifference:
			rf[i] = math.Abs(sf[i] - df[i])
		default:
			rf[i] = sf[i]
		}
	}

	alpha := sf[3] * opacity
	for i := 0; i < 3; i++ {
		d[i] = uint8(math.Round(clamp(rf[i]*alpha+df[i]*(1-alpha), 0, 1) * 255))
	}
	d[3] = uint8(math.Round(clamp(alpha+df[3]*(1-alpha), 0, 1) * 255))
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
