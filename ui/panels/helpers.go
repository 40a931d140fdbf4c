package panels

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"starmap/internal/history"
)

// History supplies autocomplete and the recent renders list. *history.Store
// implements it.
type History interface {
	Suggest(ctx context.Context, field history.Field, prefix string, limit int) ([]string, error)
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

const suggestLimit = 8

func parseFloatField(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: %q is not a number", name, s)
	}
	return v, nil
}

func parseIntField(name, s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a whole number", name, s)
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// paperPixels converts a portrait paper size to pixels at dpi.
func paperPixels(w, h float64, dpi int) (int, int) {
	return int(math.Round(w * float64(dpi))), int(math.Round(h * float64(dpi)))
}
