package render

import (
	"fmt"
	"math"
	"strconv"
)

// TargetSize returns the canvas size for mode. Landscape pairs need the long
// side horizontal and portrait pairs vertical, so the requested dimensions
// are swapped when they disagree. Single-circle modes use them as given.
func TargetSize(mode Mode, width, height int) (int, int) {
	switch mode {
	case CombinedLandscape:
		if width < height {
			return height, width
		}
	case CombinedPortrait:
		if height < width {
			return height, width
		}
	}
	return width, height
}

// Paper is a named print size in inches, portrait orientation.
type Paper struct {
	Name          string
	Width, Height float64
}

// Papers lists the print sizes recognised in dimension labels.
var Papers = []Paper{
	{"Letter", 8.5, 11},
	{"Legal", 8.5, 14},
	{"Tabloid", 11, 17},
	{"A4", 8.27, 11.69},
	{"A3", 11.69, 16.54},
	{"8x10", 8, 10},
	{"11x14", 11, 14},
	{"16x20", 16, 20},
	{"18x24", 18, 24},
	{"24x36", 24, 36},
}

// MatchPaper finds the paper whose size, in either orientation, matches
// w x h inches within 0.02in.
func MatchPaper(w, h float64) (Paper, bool) {
	const tol = 0.02
	near := func(a, b float64) bool { return math.Abs(a-b) <= tol }
	for _, p := range Papers {
		if (near(w, p.Width) && near(h, p.Height)) || (near(w, p.Height) && near(h, p.Width)) {
			return p, true
		}
	}
	return Paper{}, false
}

// DimensionsLabel returns "Dimensions: {W}w x {H}h pixels", followed by the
// print size when dpi is known, e.g.
// "Dimensions: 3300w x 2550h pixels (11in x 8.5in @ 300 DPI, Letter)".
func DimensionsLabel(width, height, dpi int) string {
	label := fmt.Sprintf("Dimensions: %dw x %dh pixels", width, height)
	if dpi <= 0 {
		return label
	}
	wi := float64(width) / float64(dpi)
	hi := float64(height) / float64(dpi)
	label += fmt.Sprintf(" (%sin x %sin @ %d DPI", inches(wi), inches(hi), dpi)
	if p, ok := MatchPaper(wi, hi); ok {
		label += ", " + p.Name
	}
	return label + ")"
}

func inches(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
