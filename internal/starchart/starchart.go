// Package starchart requests rendered star-chart rasters from an external
// image service reached through a proxy.
package starchart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	simage "starmap/internal/image"
)

// SourceName labels star-chart errors and layers.
const SourceName = "star chart"

// DefaultStyle is the chart style sent when none is configured.
const DefaultStyle = "navy"

// maxBody caps the response size accepted from the service.
const maxBody = 64 << 20

// Config holds the service endpoint and transport options.
type Config struct {
	URL       string
	Style     string
	Timeout   time.Duration
	UserAgent string
}

// Client posts chart requests and decodes the returned raster.
type Client struct {
	url        string
	style      string
	userAgent  string
	httpClient *http.Client
}

// NewClient builds a Client, filling defaults for empty fields.
func NewClient(cfg Config) *Client {
	style := strings.TrimSpace(cfg.Style)
	if style == "" {
		style = DefaultStyle
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	agent := strings.TrimSpace(cfg.UserAgent)
	if agent == "" {
		agent = "starmap/1.0"
	}
	return &Client{
		url:        strings.TrimSpace(cfg.URL),
		style:      style,
		userAgent:  agent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Request describes the sky to render.
type Request struct {
	Width, Height int
	Latitude      float64
	Longitude     float64
	Time          time.Time
	Zoom          float64 // service-side zoom; 0 leaves the service default
}

type payload struct {
	Style    string   `json:"style"`
	Output   output   `json:"output"`
	Observer observer `json:"observer"`
	View     view     `json:"view"`
}

type output struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type observer struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Date      string  `json:"date"`
}

type view struct {
	Type       string         `json:"type"`
	Parameters viewParameters `json:"parameters"`
}

type viewParameters struct {
	Position position `json:"position"`
	Zoom     float64  `json:"zoom,omitempty"`
}

type position struct {
	Equatorial equatorial `json:"equatorial"`
}

type equatorial struct {
	RightAscension float64 `json:"rightAscension"` // hours
	Declination    float64 `json:"declination"`    // degrees
}

// body builds the JSON payload. The view is centered on the observer's zenith:
// right ascension is the local sidereal time and declination the latitude.
func (c *Client) body(req Request) payload {
	return payload{
		Style:  c.style,
		Output: output{Width: req.Width, Height: req.Height},
		Observer: observer{
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			Date:      req.Time.UTC().Format("2006-01-02"),
		},
		View: view{
			Type: "area",
			Parameters: viewParameters{
				Position: position{Equatorial: equatorial{
					RightAscension: LocalSiderealTime(req.Time, req.Longitude),
					Declination:    req.Latitude,
				}},
				Zoom: req.Zoom,
			},
		},
	}
}

// Fetch requests a chart and decodes it. Transport failures and non-2xx
// responses return *image.FetchError; undecodable bodies *image.DecodeError.
func (c *Client) Fetch(ctx context.Context, req Request) (*simage.Layer, error) {
	if c.url == "" {
		return nil, &simage.FetchError{Source: SourceName, Err: fmt.Errorf("no star chart service configured")}
	}
	if req.Width <= 0 || req.Height <= 0 {
		return nil, fmt.Errorf("invalid chart size %dx%d", req.Width, req.Height)
	}

	data, err := json.Marshal(c.body(req))
	if err != nil {
		return nil, fmt.Errorf("failed to encode chart request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create chart request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "image/png")
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &simage.FetchError{Source: SourceName, URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &simage.FetchError{
			Source:     SourceName,
			URL:        c.url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", resp.Status),
		}
	}

	layer, err := simage.Decode(SourceName, io.LimitReader(resp.Body, maxBody))
	if err != nil {
		// A body cut short by a cancelled context is a fetch failure, not a
		// malformed image.
		if ctx.Err() != nil {
			return nil, &simage.FetchError{Source: SourceName, URL: c.url, Err: ctx.Err()}
		}
		return nil, err
	}
	return layer, nil
}

// LocalSiderealTime returns the local mean sidereal time in hours [0, 24) at
// longitude lon (degrees east) for instant t.
func LocalSiderealTime(t time.Time, lon float64) float64 {
	j2000 := time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)
	days := t.UTC().Sub(j2000).Hours() / 24
	gmst := 18.697374558 + 24.06570982441908*days
	lst := math.Mod(gmst+lon/15, 24)
	if lst < 0 {
		lst += 24
	}
	return lst
}
