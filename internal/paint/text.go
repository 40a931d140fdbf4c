package paint

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"starmap/pkg/geometry"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// LineSpacing is the line height as a multiple of the font size.
const LineSpacing = 1.2

// TextStyle selects the face and color used by FillText.
type TextStyle struct {
	Family string      `json:"family" yaml:"family"`
	Size   float64     `json:"size" yaml:"size"`
	Color  color.Color `json:"-" yaml:"-"`
	Bold   bool        `json:"bold" yaml:"bold"`
	Italic bool        `json:"italic" yaml:"italic"`
}

// LineHeight returns the vertical advance for one line in this style.
func (s TextStyle) LineHeight() float64 {
	return s.Size * LineSpacing
}

// Align is the horizontal anchor of drawn text.
type Align int

const (
	AlignCenter Align = iota
	AlignLeft
	AlignRight
)

// Baseline is the vertical anchor of drawn text.
type Baseline int

const (
	BaselineAlphabetic Baseline = iota
	BaselineTop                 // y is the top of the ascent
	BaselineBottom              // y is the bottom of the descent
	BaselineMiddle
)

// ApplyTextStyle selects the face and fill for subsequent FillText calls and
// returns the effective line height.
func (c *Canvas) ApplyTextStyle(style TextStyle) (float64, error) {
	if style.Size <= 0 || math.IsNaN(style.Size) {
		return 0, fmt.Errorf("%w: font size %g", geometry.ErrInvalidParameter, style.Size)
	}
	face, err := c.fonts.Face(style.Family, style.Bold, style.Italic, style.Size)
	if err != nil {
		return 0, err
	}
	fill := style.Color
	if fill == nil {
		fill = color.Black
	}
	c.face = face
	c.fill = image.NewUniform(fill)
	return style.LineHeight(), nil
}

func (c *Canvas) ensureFace() {
	if c.face != nil {
		return
	}
	if _, err := c.ApplyTextStyle(TextStyle{Family: FamilySans, Size: 16}); err != nil {
		panic(err) // embedded Go fonts always parse
	}
}

// FontMetrics returns the ascent and descent of the current face in pixels.
func (c *Canvas) FontMetrics() (ascent, descent float64) {
	c.ensureFace()
	m := c.face.Metrics()
	return fixedToFloat(m.Ascent), fixedToFloat(m.Descent)
}

// MeasureText returns the advance width of text in the current face.
func (c *Canvas) MeasureText(text string) float64 {
	c.ensureFace()
	return fixedToFloat(font.MeasureString(c.face, text))
}

// BaselineY converts an anchored y coordinate into the alphabetic baseline.
func (c *Canvas) BaselineY(y float64, baseline Baseline) float64 {
	ascent, descent := c.FontMetrics()
	switch baseline {
	case BaselineTop:
		return y + ascent
	case BaselineBottom:
		return y - descent
	case BaselineMiddle:
		return y + (ascent-descent)/2
	default:
		return y
	}
}

// FillText draws text anchored at (x, y) in the current style. Text is drawn
// outside the clip stack.
func (c *Canvas) FillText(text string, x, y float64, align Align, baseline Baseline) {
	c.ensureFace()
	width := c.MeasureText(text)
	switch align {
	case AlignCenter:
		x -= width / 2
	case AlignRight:
		x -= width
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  c.fill,
		Face: c.face,
		Dot: fixed.Point26_6{
			X: floatToFixed(x),
			Y: floatToFixed(c.BaselineY(y, baseline)),
		},
	}
	d.DrawString(text)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
