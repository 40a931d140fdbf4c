package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrInvalidDimensions is returned when a canvas width or height is not positive.
	ErrInvalidDimensions = errors.New("invalid canvas dimensions")

	// ErrInvalidParameter is returned when a fill, overlap or stroke parameter is
	// outside its accepted range.
	ErrInvalidParameter = errors.New("invalid geometry parameter")
)

// MaxOverlapPercent is the largest overlap accepted for a circle pair.
const MaxOverlapPercent = 50.0

// Circle describes a drawable disc in canvas pixel space.
type Circle struct {
	CenterX float64 `json:"centerX"`
	CenterY float64 `json:"centerY"`
	Radius  float64 `json:"radius"`
}

// Center returns the circle center.
func (c Circle) Center() Point2D {
	return Point2D{X: c.CenterX, Y: c.CenterY}
}

// Diameter returns twice the radius.
func (c Circle) Diameter() float64 {
	return 2 * c.Radius
}

// Bounds returns the axis-aligned bounding box of the disc.
func (c Circle) Bounds() Rect {
	return Rect{
		X:      c.CenterX - c.Radius,
		Y:      c.CenterY - c.Radius,
		Width:  2 * c.Radius,
		Height: 2 * c.Radius,
	}
}

// Contains reports whether (x, y) lies inside or on the disc.
func (c Circle) Contains(x, y float64) bool {
	return c.Center().Distance(NewPoint2D(x, y)) <= c.Radius
}

// Within reports whether the whole disc fits inside a width x height canvas.
func (c Circle) Within(width, height float64) bool {
	return NewRect(0, 0, width, height).ContainsRect(c.Bounds())
}

func (c Circle) String() string {
	return fmt.Sprintf("circle(%.1f,%.1f r=%.1f)", c.CenterX, c.CenterY, c.Radius)
}

// Orientation selects the primary axis of a circle pair.
type Orientation int

const (
	Landscape Orientation = iota // circles side by side
	Portrait                     // circles stacked
)

func (o Orientation) String() string {
	switch o {
	case Landscape:
		return "landscape"
	case Portrait:
		return "portrait"
	default:
		return "unknown"
	}
}

// CirclePair is two equal circles offset along one axis.
// First is the left circle in landscape and the top circle in portrait.
type CirclePair struct {
	First          Circle
	Second         Circle
	Orientation    Orientation
	OverlapPercent float64
}

// Circles returns both circles in order.
func (p CirclePair) Circles() [2]Circle {
	return [2]Circle{p.First, p.Second}
}

// Envelope returns the circle that text is laid out around. Its vertical extent
// matches the pair's: in landscape that is one circle's height, in portrait it
// spans from the top of the first circle to the bottom of the second.
func (p CirclePair) Envelope() Circle {
	mid := r2.Scale(0.5, r2.Add(
		r2.Vec{X: p.First.CenterX, Y: p.First.CenterY},
		r2.Vec{X: p.Second.CenterX, Y: p.Second.CenterY},
	))
	radius := p.First.Radius
	if p.Orientation == Portrait {
		radius += math.Abs(p.Second.CenterY-p.First.CenterY) / 2
	}
	return Circle{CenterX: mid.X, CenterY: mid.Y, Radius: radius}
}

func validateCanvas(width, height, fillPercent float64) error {
	if width <= 0 || height <= 0 || math.IsNaN(width) || math.IsNaN(height) {
		return fmt.Errorf("%w: %gx%g", ErrInvalidDimensions, width, height)
	}
	if fillPercent <= 0 || fillPercent > 100 || math.IsNaN(fillPercent) {
		return fmt.Errorf("%w: fill percent %g not in (0, 100]", ErrInvalidParameter, fillPercent)
	}
	return nil
}

// CalculateSingleCircle returns the circle centered on the canvas whose diameter
// is fillPercent of the shorter canvas side. The result is a true circle for any
// aspect ratio.
func CalculateSingleCircle(width, height, fillPercent float64) (Circle, error) {
	if err := validateCanvas(width, height, fillPercent); err != nil {
		return Circle{}, err
	}
	return Circle{
		CenterX: width / 2,
		CenterY: height / 2,
		Radius:  math.Min(width, height) * fillPercent / 200,
	}, nil
}

// CalculateOverlappingPair returns two equal circles offset along the primary
// axis of the orientation. With overlap o (as a fraction) and radius r the
// centers sit 2r(1-o) apart, so the pair spans 2r(2-o) along the primary axis.
// The radius is the largest that fits both that span and the secondary axis,
// scaled by fillPercent, so both discs always stay inside the canvas.
func CalculateOverlappingPair(width, height, fillPercent, overlapPercent float64, orientation Orientation) (CirclePair, error) {
	if err := validateCanvas(width, height, fillPercent); err != nil {
		return CirclePair{}, err
	}
	if overlapPercent < 0 || overlapPercent > MaxOverlapPercent || math.IsNaN(overlapPercent) {
		return CirclePair{}, fmt.Errorf("%w: overlap percent %g not in [0, %g]",
			ErrInvalidParameter, overlapPercent, MaxOverlapPercent)
	}

	primary, secondary := width, height
	if orientation == Portrait {
		primary, secondary = height, width
	}

	o := overlapPercent / 100
	radius := fillPercent / 100 * math.Min(primary/(2*(2-o)), secondary/2)
	offset := radius * (1 - o)

	first := r2.Vec{X: primary/2 - offset, Y: secondary / 2}
	second := r2.Vec{X: primary/2 + offset, Y: secondary / 2}
	if orientation == Portrait {
		first = r2.Vec{X: first.Y, Y: first.X}
		second = r2.Vec{X: second.Y, Y: second.X}
	}

	return CirclePair{
		First:          Circle{CenterX: first.X, CenterY: first.Y, Radius: radius},
		Second:         Circle{CenterX: second.X, CenterY: second.Y, Radius: radius},
		Orientation:    orientation,
		OverlapPercent: overlapPercent,
	}, nil
}
