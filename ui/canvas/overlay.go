package canvas

import (
	"image/color"

	"starmap/internal/render"
	"starmap/pkg/geometry"
)

// Overlay marks layout guides on top of the preview. Coordinates are in
// poster pixels.
type Overlay struct {
	Circles   []geometry.Circle
	Baselines []Baseline
	Color     color.RGBA
}

// Baseline marks where a text line sits.
type Baseline struct {
	X, Y  float64
	Width float64
}

// GuideColor is the default overlay color.
var GuideColor = color.RGBA{R: 0x00, G: 0xe5, B: 0xff, A: 0xff}

// GuidesFromScene builds an overlay showing the circles and text baselines
// of a finished render.
func GuidesFromScene(sc render.Scene) *Overlay {
	ov := &Overlay{Color: GuideColor}
	ov.Circles = append(ov.Circles, sc.Circles...)
	for _, p := range sc.Texts {
		ov.Baselines = append(ov.Baselines, Baseline{X: p.X, Y: p.BaselineY, Width: p.LineHeight})
	}
	return ov
}
