package render

import (
	"context"
	"time"

	simage "starmap/internal/image"
	"starmap/internal/starchart"
	"starmap/internal/starfield"
	"starmap/internal/streetmap"
)

// SourceRequest asks a raster source for a picture of the sky or streets over
// a location.
type SourceRequest struct {
	Width, Height int
	Latitude      float64
	Longitude     float64
	Time          time.Time
	StreetZoom    int
}

// Source produces a raster for a request. Fetch is the only place a render
// waits; implementations must honor ctx.
type Source interface {
	Fetch(ctx context.Context, req SourceRequest) (*simage.Layer, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, req SourceRequest) (*simage.Layer, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context, req SourceRequest) (*simage.Layer, error) {
	return f(ctx, req)
}

// StarChartSource fetches skies from the star chart service.
func StarChartSource(c *starchart.Client) Source {
	return SourceFunc(func(ctx context.Context, req SourceRequest) (*simage.Layer, error) {
		return c.Fetch(ctx, starchart.Request{
			Width:     req.Width,
			Height:    req.Height,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			Time:      req.Time,
		})
	})
}

// StarFieldSource draws an offline procedural sky seeded by date and place.
func StarFieldSource(g *starfield.Generator) Source {
	return SourceFunc(func(ctx context.Context, req SourceRequest) (*simage.Layer, error) {
		return g.Generate(ctx, req.Width, req.Height, starfield.Seed(req.Time, req.Latitude, req.Longitude))
	})
}

// StreetMapSource stitches street tiles around the location.
func StreetMapSource(r *streetmap.Renderer) Source {
	return SourceFunc(func(ctx context.Context, req SourceRequest) (*simage.Layer, error) {
		return r.Render(ctx, streetmap.Request{
			Width:     req.Width,
			Height:    req.Height,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			Zoom:      req.StreetZoom,
		})
	})
}

// FileSource serves a local raster, such as a pre-rendered sky, for every
// request.
func FileSource(path string) Source {
	return SourceFunc(func(ctx context.Context, req SourceRequest) (*simage.Layer, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return simage.Load(path)
	})
}
