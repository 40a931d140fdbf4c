// Package project reads and writes poster documents (.starmap JSON or YAML)
// and turns them into render settings.
package project

import (
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"starmap/internal/format"
	"starmap/internal/geocode"
	"starmap/internal/layout"
	"starmap/internal/paint"
	"starmap/internal/render"
	"starmap/pkg/colorutil"

	"gopkg.in/yaml.v3"
)

// Extension is the native project file extension.
const Extension = ".starmap"

// File is a poster document.
type File struct {
	Version  int       `json:"version" yaml:"version"`
	Name     string    `json:"name" yaml:"name"`
	Created  time.Time `json:"created" yaml:"created"`
	Modified time.Time `json:"modified" yaml:"modified"`

	Mode     render.Mode     `json:"mode" yaml:"mode"`
	Occasion string          `json:"occasion" yaml:"occasion"`
	Location LocationSpec    `json:"location" yaml:"location"`
	Date     string          `json:"date" yaml:"date"`                             // e.g. 2026-07-04T21:30
	Timezone string          `json:"timezone,omitempty" yaml:"timezone,omitempty"` // IANA name, default local
	MapOrder render.MapOrder `json:"map_order" yaml:"map_order"`

	Canvas CanvasSpec `json:"canvas" yaml:"canvas"`
	Circle CircleSpec `json:"circle" yaml:"circle"`
	Street StreetSpec `json:"street" yaml:"street"`
	Texts  []TextSpec `json:"texts" yaml:"texts"`

	// StarImage replaces the star chart with a local raster (relative to the
	// project file).
	StarImage string `json:"star_image,omitempty" yaml:"star_image,omitempty"`
}

// LocationSpec is either a query to geocode or explicit coordinates.
type LocationSpec struct {
	Query     string   `json:"query,omitempty" yaml:"query,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Label     string   `json:"label,omitempty" yaml:"label,omitempty"`
}

// CanvasSpec is the output size and background.
type CanvasSpec struct {
	Width      int    `json:"width" yaml:"width"`
	Height     int    `json:"height" yaml:"height"`
	DPI        int    `json:"dpi,omitempty" yaml:"dpi,omitempty"`
	Background string `json:"background" yaml:"background"`
}

// CircleSpec sizes the circles and their borders.
type CircleSpec struct {
	Size        float64 `json:"size" yaml:"size"`       // percent of the shorter side
	Overlap     float64 `json:"overlap" yaml:"overlap"` // percent, pairs only
	Zoom        float64 `json:"zoom" yaml:"zoom"`       // percent
	BorderWidth float64 `json:"border_width" yaml:"border_width"`
	BorderColor string  `json:"border_color" yaml:"border_color"`
}

// StreetSpec tunes the street map.
type StreetSpec struct {
	Opacity float64 `json:"opacity" yaml:"opacity"`
	Zoom    int     `json:"zoom,omitempty" yaml:"zoom,omitempty"`
}

// TextSpec is one text line. Text may contain {occasion}, {date}, {datetime},
// {coordinates} and {location} placeholders.
type TextSpec struct {
	Text     string          `json:"text" yaml:"text"`
	Font     string          `json:"font" yaml:"font"`
	Size     float64         `json:"size" yaml:"size"`
	Color    string          `json:"color" yaml:"color"`
	Bold     bool            `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic   bool            `json:"italic,omitempty" yaml:"italic,omitempty"`
	Position layout.Position `json:"position" yaml:"position"`
	Order    int             `json:"order" yaml:"order"`
}

// New creates a project with the default letter-size poster.
func New(name string) *File {
	now := time.Now()
	d := render.DefaultSettings()
	return &File{
		Version:  1,
		Name:     name,
		Created:  now,
		Modified: now,
		Mode:     render.StarMapOnly,
		Date:     now.Format("2006-01-02T15:04"),
		Canvas: CanvasSpec{
			Width:      d.Width,
			Height:     d.Height,
			DPI:        d.DPI,
			Background: colorutil.Hex(d.Background),
		},
		Circle: CircleSpec{
			Size:        d.FillPercent,
			Overlap:     d.OverlapPercent,
			Zoom:        d.ZoomPercent,
			BorderWidth: d.BorderWidth,
			BorderColor: colorutil.Hex(d.BorderColor),
		},
		Street: StreetSpec{Opacity: d.StreetOpacity},
		Texts:  DefaultTexts(),
	}
}

// Clone returns a deep copy, safe to read while the original is edited.
func (p *File) Clone() *File {
	c := *p
	if p.Location.Latitude != nil {
		lat := *p.Location.Latitude
		c.Location.Latitude = &lat
	}
	if p.Location.Longitude != nil {
		lon := *p.Location.Longitude
		c.Location.Longitude = &lon
	}
	c.Texts = append([]TextSpec(nil), p.Texts...)
	return &c
}

// DefaultTexts is the classic layout: occasion, date and coordinates under
// the circle.
func DefaultTexts() []TextSpec {
	return []TextSpec{
		{Text: "{occasion}", Font: paint.FamilyMedium, Size: 96, Color: "#ffffff", Bold: true, Position: layout.Below, Order: 1},
		{Text: "{date}", Font: paint.FamilySans, Size: 54, Color: "#d4af37", Position: layout.Below, Order: 2},
		{Text: "{coordinates}", Font: paint.FamilyMono, Size: 42, Color: "#ffffff", Position: layout.Below, Order: 3},
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load loads a project. .yaml and .yml files are YAML, anything else JSON.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if isYAML(path) {
		err = yaml.Unmarshal(data, &proj)
	} else {
		err = json.Unmarshal(data, &proj)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse project %s: %w", filepath.Base(path), err)
	}
	return &proj, nil
}

// Save writes the project in the format implied by the extension.
func (p *File) Save(path string) error {
	p.Modified = time.Now()

	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(p)
	} else {
		data, err = json.MarshalIndent(p, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SetStarImage stores imagePath relative to the project when possible.
func (p *File) SetStarImage(projectPath, imagePath string) {
	rel, err := filepath.Rel(filepath.Dir(projectPath), imagePath)
	if err != nil {
		p.StarImage = imagePath
	} else {
		p.StarImage = rel
	}
	p.Modified = time.Now()
}

// GetStarImagePath returns the absolute path to the star image, or "".
func (p *File) GetStarImagePath(projectPath string) string {
	if p.StarImage == "" {
		return ""
	}
	if filepath.IsAbs(p.StarImage) {
		return p.StarImage
	}
	return filepath.Join(filepath.Dir(projectPath), p.StarImage)
}

// Resolver turns a location query into coordinates.
type Resolver interface {
	Resolve(ctx context.Context, query string) (geocode.Location, error)
}

// ResolveLocation returns the project's location. Explicit coordinates win;
// otherwise the query is resolved with r. A nil result means no location is
// set, which render validation reports.
func (p *File) ResolveLocation(ctx context.Context, r Resolver) (*geocode.Location, error) {
	spec := p.Location
	if spec.Latitude != nil && spec.Longitude != nil {
		loc := geocode.Location{Latitude: *spec.Latitude, Longitude: *spec.Longitude, Label: spec.Label}
		if loc.Label == "" {
			loc.Label = spec.Query
		}
		return &loc, nil
	}
	if strings.TrimSpace(spec.Query) == "" {
		return nil, nil
	}
	if r == nil {
		return nil, fmt.Errorf("no geocoder available for %q", spec.Query)
	}
	loc, err := r.Resolve(ctx, spec.Query)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// Time parses the project date in its timezone. A zero time means unset.
func (p *File) Time() (time.Time, error) {
	if strings.TrimSpace(p.Date) == "" {
		return time.Time{}, nil
	}
	loc := time.Local
	if p.Timezone != "" {
		tz, err := time.LoadLocation(p.Timezone)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to load timezone %q: %w", p.Timezone, err)
		}
		loc = tz
	}
	return format.ParseDateTime(p.Date, loc)
}

// Settings converts the project into render settings, resolving the location
// with r.
func (p *File) Settings(ctx context.Context, r Resolver) (render.Settings, error) {
	s := render.DefaultSettings()
	if p.Canvas.Width > 0 {
		s.Width = p.Canvas.Width
	}
	if p.Canvas.Height > 0 {
		s.Height = p.Canvas.Height
	}
	s.DPI = p.Canvas.DPI
	if p.Circle.Size != 0 {
		s.FillPercent = p.Circle.Size
	}
	if p.Circle.Zoom != 0 {
		s.ZoomPercent = p.Circle.Zoom
	}
	s.OverlapPercent = p.Circle.Overlap
	s.BorderWidth = p.Circle.BorderWidth
	s.MapOrder = p.MapOrder
	s.StreetOpacity = p.Street.Opacity
	s.StreetZoom = p.Street.Zoom

	var err error
	if s.Background, err = parseColor(p.Canvas.Background, colorutil.Midnight); err != nil {
		return s, fmt.Errorf("background: %w", err)
	}
	if s.BorderColor, err = parseColor(p.Circle.BorderColor, colorutil.Gold); err != nil {
		return s, fmt.Errorf("border color: %w", err)
	}

	if s.Date, err = p.Time(); err != nil {
		return s, err
	}
	if s.Location, err = p.ResolveLocation(ctx, r); err != nil {
		return s, fmt.Errorf("failed to resolve location: %w", err)
	}

	vars := p.placeholders(s.Location, s.Date)
	for _, t := range p.Texts {
		col, err := parseColor(t.Color, colorutil.White)
		if err != nil {
			return s, fmt.Errorf("text %q: %w", t.Text, err)
		}
		s.Texts = append(s.Texts, layout.TextItem{
			Text: vars.Replace(t.Text),
			Style: paint.TextStyle{
				Family: paint.NormalizeFamily(t.Font),
				Size:   t.Size,
				Color:  col,
				Bold:   t.Bold,
				Italic: t.Italic,
			},
			Position: t.Position,
			Order:    t.Order,
		})
	}
	return s, nil
}

func (p *File) placeholders(loc *geocode.Location, date time.Time) *strings.Replacer {
	var coords, label, day, dayTime string
	if loc != nil {
		coords = loc.Coordinates()
		label = loc.Label
	}
	if !date.IsZero() {
		day = format.Date(date)
		dayTime = format.DateTime(date)
	}
	return strings.NewReplacer(
		"{occasion}", p.Occasion,
		"{date}", day,
		"{datetime}", dayTime,
		"{coordinates}", coords,
		"{location}", label,
	)
}

func parseColor(s string, fallback color.RGBA) (color.RGBA, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	return colorutil.Parse(s)
}
