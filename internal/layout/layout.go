// Package layout stacks text lines outward from a circle's edge.
package layout

import (
	"fmt"
	"sort"
	"strings"

	"starmap/internal/paint"
	"starmap/pkg/geometry"
)

// MarginFraction is the gap between the circle border and the nearest text
// line, as a fraction of the radius.
const MarginFraction = 0.10

// Position says which side of the circle a text item is stacked on.
type Position int

const (
	Below Position = iota
	Above
)

func (p Position) String() string {
	if p == Above {
		return "above"
	}
	return "below"
}

// ParsePosition accepts "above" or "below" (case-insensitive).
func ParsePosition(s string) (Position, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "above":
		return Above, nil
	case "below", "":
		return Below, nil
	}
	return Below, fmt.Errorf("%w: text position %q", geometry.ErrInvalidParameter, s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Position) UnmarshalText(b []byte) error {
	v, err := ParsePosition(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// TextItem is one line of text placed around a circle.
type TextItem struct {
	Text     string          `json:"text" yaml:"text"`
	Style    paint.TextStyle `json:"style" yaml:"style"`
	Position Position        `json:"position" yaml:"position"`
	Order    int             `json:"order" yaml:"order"`
}

// Placement records where an item was drawn. BaselineY is the alphabetic
// baseline, so exporters can reproduce the line without font metrics.
type Placement struct {
	Item       TextItem
	X          float64
	BaselineY  float64
	LineHeight float64
}

// partition splits items by position, each side sorted by Order. Items with
// equal Order keep their input order.
func partition(items []TextItem) (above, below []TextItem) {
	for _, it := range items {
		if it.Text == "" {
			continue
		}
		if it.Position == Above {
			above = append(above, it)
		} else {
			below = append(below, it)
		}
	}
	byOrder := func(s []TextItem) {
		sort.SliceStable(s, func(i, j int) bool { return s[i].Order < s[j].Order })
	}
	byOrder(above)
	byOrder(below)
	return above, below
}

// Layout draws items around circle and returns their placements.
//
// Below items start one margin under the border and advance downward, drawn
// top-aligned in ascending order. Above items start one margin over the border
// and advance upward, drawn bottom-aligned in descending order so the highest
// order sits nearest the circle.
func Layout(c *paint.Canvas, circle geometry.Circle, borderWidth float64, items []TextItem) ([]Placement, error) {
	if circle.Radius <= 0 {
		return nil, fmt.Errorf("%w: radius %g", geometry.ErrInvalidParameter, circle.Radius)
	}
	if borderWidth < 0 {
		return nil, fmt.Errorf("%w: border width %g", geometry.ErrInvalidParameter, borderWidth)
	}

	above, below := partition(items)
	margin := circle.Radius * MarginFraction
	placements := make([]Placement, 0, len(above)+len(below))

	y := circle.CenterY + circle.Radius + borderWidth + margin
	for _, it := range below {
		lh, err := c.ApplyTextStyle(it.Style)
		if err != nil {
			return placements, fmt.Errorf("failed to style %q: %w", it.Text, err)
		}
		base := c.BaselineY(y, paint.BaselineTop)
		c.FillText(it.Text, circle.CenterX, base, paint.AlignCenter, paint.BaselineAlphabetic)
		placements = append(placements, Placement{Item: it, X: circle.CenterX, BaselineY: base, LineHeight: lh})
		y += lh
	}

	y = circle.CenterY - circle.Radius - borderWidth - margin
	for i := len(above) - 1; i >= 0; i-- {
		it := above[i]
		lh, err := c.ApplyTextStyle(it.Style)
		if err != nil {
			return placements, fmt.Errorf("failed to style %q: %w", it.Text, err)
		}
		base := c.BaselineY(y, paint.BaselineBottom)
		c.FillText(it.Text, circle.CenterX, base, paint.AlignCenter, paint.BaselineAlphabetic)
		placements = append(placements, Placement{Item: it, X: circle.CenterX, BaselineY: base, LineHeight: lh})
		y -= lh
	}
	return placements, nil
}
