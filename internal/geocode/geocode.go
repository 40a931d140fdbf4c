// Package geocode resolves a ZIP code, address or literal "lat, lon" pair to
// decimal degrees.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"starmap/internal/format"
)

// ErrNotFound is returned when the geocoder has no match for a query.
var ErrNotFound = errors.New("location not found")

// DefaultURL is the Nominatim-compatible search endpoint base.
const DefaultURL = "https://nominatim.openstreetmap.org"

// Location is a resolved position.
type Location struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Label     string  `json:"label" yaml:"label"`
}

// Coordinates returns the formatted position, e.g. "40.7128° N, 74.0060° W".
func (l Location) Coordinates() string {
	return format.Coordinates(l.Latitude, l.Longitude)
}

// Valid reports whether the position is on the globe.
func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}

// Config holds the geocoder endpoint and transport options.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client resolves queries against a Nominatim-compatible API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient builds a Client, filling defaults for empty fields.
func NewClient(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultURL
	}
	agent := strings.TrimSpace(cfg.UserAgent)
	if agent == "" {
		agent = "starmap/1.0"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{baseURL: base, userAgent: agent, httpClient: &http.Client{Timeout: timeout}}
}

var latLonPattern = regexp.MustCompile(`^\s*([-+]?\d+(?:\.\d+)?)\s*[, ]\s*([-+]?\d+(?:\.\d+)?)\s*$`)

// ParseLatLon parses a literal "lat, lon" pair. ok is false when s is not of
// that form; a well-formed pair off the globe is an error.
func ParseLatLon(s string) (loc Location, ok bool, err error) {
	m := latLonPattern.FindStringSubmatch(s)
	if m == nil {
		return Location{}, false, nil
	}
	lat, _ := strconv.ParseFloat(m[1], 64)
	lon, _ := strconv.ParseFloat(m[2], 64)
	loc = Location{Latitude: lat, Longitude: lon}
	if !loc.Valid() {
		return Location{}, true, fmt.Errorf("coordinates out of range: %s", strings.TrimSpace(s))
	}
	loc.Label = loc.Coordinates()
	return loc, true, nil
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve returns the location for query. Literal coordinates are parsed
// locally; anything else goes to the search API.
func (c *Client) Resolve(ctx context.Context, query string) (Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Location{}, fmt.Errorf("%w: empty query", ErrNotFound)
	}
	if loc, ok, err := ParseLatLon(query); ok {
		return loc, err
	}

	endpoint, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return Location{}, fmt.Errorf("failed to parse geocoder url: %w", err)
	}
	q := endpoint.Query()
	q.Set("q", query)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Location{}, fmt.Errorf("failed to create geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("failed to geocode %q: %w", query, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("failed to geocode %q: HTTP %d", query, resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Location{}, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return Location{}, fmt.Errorf("%w: %q", ErrNotFound, query)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Location{}, fmt.Errorf("failed to parse latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Location{}, fmt.Errorf("failed to parse longitude %q: %w", results[0].Lon, err)
	}
	label := strings.TrimSpace(results[0].DisplayName)
	if label == "" {
		label = query
	}
	return Location{Latitude: lat, Longitude: lon, Label: label}, nil
}
