package paint

import (
	"image"
	"image/color"
	"math"
	"testing"

	"starmap/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testBackground = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	testFill       = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		r, g, b, a := c.RGBA()
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8)
	}
	return img
}

// assertOutsideUntouched checks every pixel whose center is at least one pixel
// outside the circle still holds the background color.
func assertOutsideUntouched(t *testing.T, c *Canvas, circle geometry.Circle) {
	t.Helper()
	img := c.Image()
	b := img.Bounds()
	bad := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			d := math.Hypot(float64(x)+0.5-circle.CenterX, float64(y)+0.5-circle.CenterY)
			if d < circle.Radius+1 {
				continue
			}
			if img.RGBAAt(x, y) != testBackground {
				bad++
			}
		}
	}
	assert.Zero(t, bad, "pixels written outside %v", circle)
}

func TestClear(t *testing.T) {
	c := NewCanvas(20, 10)
	c.Clear(testBackground)
	assert.Equal(t, testBackground, c.Image().RGBAAt(0, 0))
	assert.Equal(t, testBackground, c.Image().RGBAAt(19, 9))
}

func TestResizeDropsClipsAndPixels(t *testing.T) {
	c := NewCanvas(20, 10)
	c.Clear(testBackground)
	c.PushCircleClip(geometry.Circle{CenterX: 5, CenterY: 5, Radius: 3})
	c.Resize(30, 40)
	assert.Equal(t, 0, c.ClipDepth())
	assert.Equal(t, 30, c.Width())
	assert.Equal(t, 40, c.Height())
	assert.Equal(t, color.RGBA{}, c.Image().RGBAAt(0, 0))
}

func TestDrawImageInCircleStaysInsideDisc(t *testing.T) {
	circle := geometry.Circle{CenterX: 60, CenterY: 45, Radius: 30}
	src := solidImage(80, 50, testFill)
	for _, zoom := range []float64{MinZoomPercent, 100, 300} {
		c := NewCanvas(120, 90)
		c.Clear(testBackground)
		require.NoError(t, c.DrawImageInCircle(src, circle, zoom))
		assert.Equal(t, 0, c.ClipDepth(), "clip restored at zoom %v", zoom)
		assertOutsideUntouched(t, c, circle)
		assert.Equal(t, testFill, c.Image().RGBAAt(60, 45), "center filled at zoom %v", zoom)
	}
}

func TestDrawImageInCircleCoversDiscAt100(t *testing.T) {
	circle := geometry.Circle{CenterX: 50, CenterY: 50, Radius: 40}
	c := NewCanvas(100, 100)
	c.Clear(testBackground)
	require.NoError(t, c.DrawImageInCircle(solidImage(200, 100, testFill), circle, 100))
	// Well inside the disc everything comes from the raster.
	for _, p := range [][2]int{{50, 15}, {50, 84}, {15, 50}, {84, 50}} {
		assert.Equal(t, testFill, c.Image().RGBAAt(p[0], p[1]), "%v", p)
	}
}

func TestDrawImageInCircleErrors(t *testing.T) {
	c := NewCanvas(10, 10)
	circle := geometry.Circle{CenterX: 5, CenterY: 5, Radius: 4}
	assert.ErrorIs(t, c.DrawImageInCircle(nil, circle, 100), geometry.ErrInvalidParameter)
	assert.ErrorIs(t, c.DrawImageInCircle(image.NewRGBA(image.Rectangle{}), circle, 100), geometry.ErrInvalidParameter)
	assert.ErrorIs(t, c.DrawImageInCircle(solidImage(4, 4, testFill), geometry.Circle{}, 100), geometry.ErrInvalidParameter)
}

func TestClampZoom(t *testing.T) {
	assert.Equal(t, MinZoomPercent, ClampZoom(40))
	assert.Equal(t, 50.0, ClampZoom(40))
	assert.Equal(t, 100.0, ClampZoom(100))
	assert.Equal(t, MaxZoomPercent, ClampZoom(5000))
	assert.Equal(t, MinZoomPercent, ClampZoom(math.NaN()))
}

func TestCoverTransform(t *testing.T) {
	circle := geometry.Circle{CenterX: 100, CenterY: 100, Radius: 50}
	tr := CoverTransform(geometry.NewSize(400, 200), circle, 100)
	r := tr.ApplyRect(geometry.NewRect(0, 0, 400, 200))
	assert.InDelta(t, 100, r.Height, 1e-9)
	assert.InDelta(t, 200, r.Width, 1e-9)
	assert.InDelta(t, 100, r.Center().X, 1e-9)
	assert.InDelta(t, 100, r.Center().Y, 1e-9)

	// Below the minimum the transform uses the clamped zoom.
	assert.Equal(t, CoverTransform(geometry.NewSize(400, 200), circle, 50),
		CoverTransform(geometry.NewSize(400, 200), circle, 40))
}

func TestNestedClipIntersects(t *testing.T) {
	c := NewCanvas(100, 50)
	c.Clear(testBackground)
	left := geometry.Circle{CenterX: 35, CenterY: 25, Radius: 20}
	right := geometry.Circle{CenterX: 65, CenterY: 25, Radius: 20}
	c.PushCircleClip(left)
	require.NoError(t, c.DrawImageInCircle(solidImage(10, 10, testFill), right, 100))
	c.Restore()

	img := c.Image()
	assert.Equal(t, testFill, img.RGBAAt(50, 25), "lens between the circles")
	assert.Equal(t, testBackground, img.RGBAAt(75, 25), "right circle outside left clip")
	assert.Equal(t, testBackground, img.RGBAAt(25, 25), "left circle outside right disc")
}

func TestRestoreWithoutClipPanics(t *testing.T) {
	c := NewCanvas(10, 10)
	assert.Panics(t, func() { c.Restore() })
}

func TestStrokeCircleIgnoresClip(t *testing.T) {
	c := NewCanvas(100, 100)
	c.Clear(testBackground)
	circle := geometry.Circle{CenterX: 50, CenterY: 50, Radius: 30}
	c.PushCircleClip(geometry.Circle{CenterX: 10, CenterY: 10, Radius: 2})
	require.NoError(t, c.StrokeCircle(circle, 6, testFill))
	c.Restore()

	img := c.Image()
	assert.Equal(t, testFill, img.RGBAAt(50, 20), "top of ring")
	assert.Equal(t, testFill, img.RGBAAt(80, 50), "right of ring")
	assert.Equal(t, testBackground, img.RGBAAt(50, 50), "center untouched")
	assert.Equal(t, testBackground, img.RGBAAt(50, 10), "outside ring untouched")
}

func TestStrokeCircleWidth(t *testing.T) {
	c := NewCanvas(10, 10)
	circle := geometry.Circle{CenterX: 5, CenterY: 5, Radius: 4}
	assert.NoError(t, c.StrokeCircle(circle, 0, testFill))
	assert.Equal(t, color.RGBA{}, c.Image().RGBAAt(5, 1))
	assert.ErrorIs(t, c.StrokeCircle(circle, -1, testFill), geometry.ErrInvalidParameter)
}

func TestApplyTextStyle(t *testing.T) {
	c := NewCanvas(200, 60)
	lh, err := c.ApplyTextStyle(TextStyle{Family: "sans", Size: 20, Color: testFill, Bold: true})
	require.NoError(t, err)
	assert.InDelta(t, 24, lh, 1e-9)

	_, err = c.ApplyTextStyle(TextStyle{Size: 0})
	assert.ErrorIs(t, err, geometry.ErrInvalidParameter)

	for _, fam := range append(Families, "Georgia", "unknown") {
		for _, bold := range []bool{false, true} {
			for _, italic := range []bool{false, true} {
				_, err := c.ApplyTextStyle(TextStyle{Family: fam, Size: 12, Bold: bold, Italic: italic})
				assert.NoError(t, err, "%s bold=%v italic=%v", fam, bold, italic)
			}
		}
	}
}

func TestFillTextDrawsCentered(t *testing.T) {
	c := NewCanvas(200, 60)
	c.Clear(color.White)
	_, err := c.ApplyTextStyle(TextStyle{Size: 24, Color: color.Black})
	require.NoError(t, err)
	c.FillText("WWWW", 100, 10, AlignCenter, BaselineTop)

	minX, maxX := 200, 0
	img := c.Image()
	for y := 0; y < 60; y++ {
		for x := 0; x < 200; x++ {
			if img.RGBAAt(x, y).R < 128 {
				minX = min(minX, x)
				maxX = max(maxX, x)
			}
		}
	}
	require.Less(t, minX, maxX, "text was drawn")
	assert.InDelta(t, 100, float64(minX+maxX)/2, 4)
}

func TestNormalizeFamily(t *testing.T) {
	assert.Equal(t, FamilyMono, NormalizeFamily(" Monospace "))
	assert.Equal(t, FamilySans, NormalizeFamily("Comic Sans"))
	assert.Equal(t, FamilySmallCaps, NormalizeFamily("smallcaps"))
}
