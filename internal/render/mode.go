package render

import (
	"fmt"
	"strings"
)

// Mode selects what is drawn and how many circles the poster has.
type Mode int

const (
	StarMapOnly Mode = iota
	StreetMapOnly
	CanvasLayout // one circle, street map screened over the star chart
	CombinedLandscape
	CombinedPortrait
)

// Modes lists every mode in menu order.
var Modes = []Mode{StarMapOnly, StreetMapOnly, CanvasLayout, CombinedLandscape, CombinedPortrait}

var modeNames = map[Mode]string{
	StarMapOnly:       "star",
	StreetMapOnly:     "street",
	CanvasLayout:      "canvas",
	CombinedLandscape: "landscape",
	CombinedPortrait:  "portrait",
}

var modeTitles = map[Mode]string{
	StarMapOnly:       "Star Map",
	StreetMapOnly:     "Street Map",
	CanvasLayout:      "Canvas Layout",
	CombinedLandscape: "Combined Landscape",
	CombinedPortrait:  "Combined Portrait",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Title is the label shown on view buttons.
func (m Mode) Title() string {
	return modeTitles[m]
}

// Paired reports whether the mode draws two circles.
func (m Mode) Paired() bool {
	return m == CombinedLandscape || m == CombinedPortrait
}

// NeedsStars reports whether the mode composites a star raster.
func (m Mode) NeedsStars() bool {
	return m != StreetMapOnly
}

// NeedsStreets reports whether the mode composites a street raster.
func (m Mode) NeedsStreets() bool {
	return m != StarMapOnly
}

// ParseMode accepts a mode name or title, case-insensitively.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	for _, m := range Modes {
		if strings.EqualFold(s, modeNames[m]) || strings.EqualFold(s, modeTitles[m]) {
			return m, nil
		}
	}
	return StarMapOnly, fmt.Errorf("unknown view mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// MapOrder decides which raster fills the first circle of a pair.
type MapOrder int

const (
	StarFirst MapOrder = iota
	StreetFirst
)

func (o MapOrder) String() string {
	if o == StreetFirst {
		return "street-first"
	}
	return "star-first"
}

// MarshalText implements encoding.TextMarshaler.
func (o MapOrder) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *MapOrder) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "star-first", "star", "":
		*o = StarFirst
	case "street-first", "street":
		*o = StreetFirst
	default:
		return fmt.Errorf("unknown map order %q", string(b))
	}
	return nil
}
