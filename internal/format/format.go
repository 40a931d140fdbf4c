// Package format produces the human-readable coordinate and date strings
// printed under a star map.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Coordinates formats a position as decimal degrees with hemisphere letters,
// e.g. "40.7128° N, 74.0060° W".
func Coordinates(lat, lon float64) string {
	return fmt.Sprintf("%.4f° %s, %.4f° %s",
		math.Abs(lat), hemisphere(lat, "N", "S"),
		math.Abs(lon), hemisphere(lon, "E", "W"))
}

// CoordinatesDMS formats a position in degrees, minutes and seconds,
// e.g. "40°42'46\" N, 74°00'22\" W".
func CoordinatesDMS(lat, lon float64) string {
	return fmt.Sprintf("%s %s, %s %s",
		dms(lat), hemisphere(lat, "N", "S"),
		dms(lon), hemisphere(lon, "E", "W"))
}

func hemisphere(v float64, pos, neg string) string {
	if v < 0 {
		return neg
	}
	return pos
}

func dms(v float64) string {
	total := int(math.Round(math.Abs(v) * 3600))
	return fmt.Sprintf("%d°%02d'%02d\"", total/3600, total/60%60, total%60)
}

// Date formats a date the way it is printed on a poster: "July 4, 2026".
func Date(t time.Time) string {
	return t.Format("January 2, 2006")
}

// DateTime adds the local time of day: "July 4, 2026 at 9:30 PM".
func DateTime(t time.Time) string {
	return t.Format("January 2, 2006 at 3:04 PM")
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
	"January 2, 2006",
}

// ParseDateTime accepts the date and time forms a user or project file is
// likely to contain. Strings without a zone are interpreted in loc.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
