package render

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"starmap/internal/geocode"
	"starmap/internal/layout"
	"starmap/internal/paint"
	"starmap/pkg/colorutil"
	"starmap/pkg/geometry"
)

// Settings is everything one render reads. It is copied into the render, so
// callers may reuse or modify it afterwards.
type Settings struct {
	Width, Height  int     // requested canvas size in pixels
	FillPercent    float64 // circle diameter as a percentage of the shorter side
	OverlapPercent float64 // pair closeness, 0 = touching
	ZoomPercent    float64 // raster zoom, clamped to [50, 1000]

	BorderWidth float64
	BorderColor color.Color
	Background  color.Color

	Location *geocode.Location // nil when the user has not resolved one
	Date     time.Time         // zero when unset

	Texts    []layout.TextItem
	MapOrder MapOrder

	StreetOpacity float64 // CanvasLayout street overlay strength, 0-1
	StreetZoom    int     // slippy-map zoom level, 0 = default

	DPI int // print resolution for the dimensions label, 0 = unknown
}

// DefaultSettings returns an 8.5x11in poster at 300 DPI.
func DefaultSettings() Settings {
	return Settings{
		Width:          2550,
		Height:         3300,
		FillPercent:    60,
		OverlapPercent: 20,
		ZoomPercent:    100,
		BorderWidth:    8,
		BorderColor:    colorutil.Gold,
		Background:     colorutil.Midnight,
		MapOrder:       StarFirst,
		StreetOpacity:  0.35,
		DPI:            300,
	}
}

// Validate reports the first problem that prevents rendering, wrapped in
// ErrValidation.
func (s Settings) Validate() error {
	switch {
	case s.Location == nil:
		return fmt.Errorf("%w: location is required", ErrValidation)
	case !s.Location.Valid():
		return fmt.Errorf("%w: location %.4f, %.4f is off the globe", ErrValidation, s.Location.Latitude, s.Location.Longitude)
	case s.Date.IsZero():
		return fmt.Errorf("%w: date is required", ErrValidation)
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("%w: canvas size %dx%d", ErrValidation, s.Width, s.Height)
	case !(s.FillPercent > 0 && s.FillPercent <= 100):
		return fmt.Errorf("%w: circle size %g%% must be in 1-100", ErrValidation, s.FillPercent)
	case !(s.OverlapPercent >= 0 && s.OverlapPercent <= geometry.MaxOverlapPercent):
		return fmt.Errorf("%w: overlap %g%% must be in 0-50", ErrValidation, s.OverlapPercent)
	case s.BorderWidth < 0 || math.IsNaN(s.BorderWidth):
		return fmt.Errorf("%w: border width %g", ErrValidation, s.BorderWidth)
	}
	for _, t := range s.Texts {
		if t.Text != "" && !(t.Style.Size > 0) {
			return fmt.Errorf("%w: font size %g for %q", ErrValidation, t.Style.Size, t.Text)
		}
	}
	return nil
}

// EffectiveZoom is the zoom actually applied to rasters.
func (s Settings) EffectiveZoom() float64 {
	return paint.ClampZoom(s.ZoomPercent)
}

func (s Settings) background() color.Color {
	if s.Background == nil {
		return colorutil.Midnight
	}
	return s.Background
}

func (s Settings) borderColor() color.Color {
	if s.BorderColor == nil {
		return colorutil.White
	}
	return s.BorderColor
}
