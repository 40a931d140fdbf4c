package render

import (
	"image"
	"image/color"

	simage "starmap/internal/image"
	"starmap/internal/layout"
	"starmap/pkg/geometry"
)

// Scene describes a finished poster in drawing order, so exporters can
// rebuild it without re-reading pixels.
type Scene struct {
	Width, Height int
	Background    color.Color
	Zoom          float64 // effective zoom percent
	Circles       []geometry.Circle
	Rasters       []RasterPlacement
	BorderWidth   float64
	BorderColor   color.Color
	Texts         []layout.Placement
}

// RasterPlacement is one raster composited into a circle.
type RasterPlacement struct {
	Circle geometry.Circle
	Layer  *simage.Layer
}

// Result is a completed render.
type Result struct {
	Mode       Mode
	Generation uint64
	Scene      Scene
	Label      string      // dimensions label
	Image      *image.RGBA // snapshot of the canvas
}
