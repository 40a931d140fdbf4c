package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"starmap/internal/geocode"
	simage "starmap/internal/image"
	"starmap/internal/history"
	"starmap/internal/project"
	"starmap/internal/render"
	"starmap/internal/starchart"
	"starmap/internal/starfield"
	"starmap/internal/streetmap"
	"starmap/internal/version"
	"starmap/pkg/colorutil"
)

// Environment variables overriding the service endpoints.
const (
	EnvChartURL    = "STARMAP_CHART_URL"
	EnvChartStyle  = "STARMAP_CHART_STYLE"
	EnvTileURL     = "STARMAP_TILE_URL"
	EnvGeocoderURL = "STARMAP_GEOCODER_URL"
)

// Endpoints locates the external services. An empty ChartURL selects the
// offline star field.
type Endpoints struct {
	ChartURL    string
	ChartStyle  string
	TileURL     string
	GeocoderURL string
	Timeout     time.Duration
}

// EndpointsFromEnv reads Endpoints from the environment.
func EndpointsFromEnv() Endpoints {
	return Endpoints{
		ChartURL:    strings.TrimSpace(os.Getenv(EnvChartURL)),
		ChartStyle:  strings.TrimSpace(os.Getenv(EnvChartStyle)),
		TileURL:     strings.TrimSpace(os.Getenv(EnvTileURL)),
		GeocoderURL: strings.TrimSpace(os.Getenv(EnvGeocoderURL)),
	}
}

// Services are the raster sources and location resolver shared by the GUI
// and the command line renderer.
type Services struct {
	Stars    render.Source
	Streets  render.Source
	Resolver project.Resolver
}

// NewServices builds the sources for e. hist, when non-nil, caches geocoder
// answers.
func NewServices(e Endpoints, hist *history.Store) (*Services, error) {
	agent := version.UserAgent()

	var stars render.Source
	if e.ChartURL != "" {
		log.Printf("Star chart service: %s", e.ChartURL)
		stars = render.StarChartSource(starchart.NewClient(starchart.Config{
			URL:       e.ChartURL,
			Style:     e.ChartStyle,
			Timeout:   e.Timeout,
			UserAgent: agent,
		}))
	} else {
		log.Printf("No %s set, using the offline star field", EnvChartURL)
		stars = render.StarFieldSource(starfield.New(starfield.DefaultOptions()))
	}

	tiles, err := streetmap.NewRenderer(streetmap.Config{
		TileURL:    e.TileURL,
		UserAgent:  agent,
		Timeout:    e.Timeout,
		Background: colorutil.Midnight,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create street map renderer: %w", err)
	}

	var resolver project.Resolver = geocode.NewClient(geocode.Config{
		BaseURL:   e.GeocoderURL,
		UserAgent: agent,
		Timeout:   e.Timeout,
	})
	if hist != nil {
		resolver = history.CachingResolver{Store: hist, Geocoder: resolver}
	}

	return &Services{
		Stars:    stars,
		Streets:  render.StreetMapSource(tiles),
		Resolver: resolver,
	}, nil
}

// StarsFor serves the project's own star image when it names one, and the
// shared star source otherwise. current is consulted on every fetch.
func (sv *Services) StarsFor(current func() (p *project.File, path string)) render.Source {
	return render.SourceFunc(func(ctx context.Context, req render.SourceRequest) (*simage.Layer, error) {
		if p, path := current(); p != nil {
			if img := p.GetStarImagePath(path); img != "" {
				return render.FileSource(img).Fetch(ctx, req)
			}
		}
		return sv.Stars.Fetch(ctx, req)
	})
}

// StarSource is sv.StarsFor bound to the open project of s.
func (s *State) StarSource(sv *Services) render.Source {
	return sv.StarsFor(func() (*project.File, string) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.Project, s.ProjectPath
	})
}
