package paint

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"
	"golang.org/x/image/font/opentype"
)

// Font family names understood by FontBook. Anything else maps to FamilySans.
const (
	FamilySans      = "sans"
	FamilyMono      = "mono"
	FamilyMedium    = "medium"
	FamilySmallCaps = "smallcaps"
)

// Families lists the selectable font families in display order.
var Families = []string{FamilySans, FamilyMedium, FamilyMono, FamilySmallCaps}

// variants holds TTF data indexed by bold<<1 | italic.
type variants [4][]byte

var familyTTF = map[string]variants{
	FamilySans:      {goregular.TTF, goitalic.TTF, gobold.TTF, gobolditalic.TTF},
	FamilyMono:      {gomono.TTF, gomonoitalic.TTF, gomonobold.TTF, gomonobolditalic.TTF},
	FamilyMedium:    {gomedium.TTF, gomediumitalic.TTF, gobold.TTF, gobolditalic.TTF},
	FamilySmallCaps: {gosmallcaps.TTF, gosmallcapsitalic.TTF, gosmallcaps.TTF, gosmallcapsitalic.TTF},
}

var familyAliases = map[string]string{
	"":           FamilySans,
	"go":         FamilySans,
	"sans-serif": FamilySans,
	"arial":      FamilySans,
	"helvetica":  FamilySans,
	"serif":      FamilySans,
	"georgia":    FamilySans,
	"times":      FamilySans,
	"monospace":  FamilyMono,
	"courier":    FamilyMono,
	"go mono":    FamilyMono,
	"go medium":  FamilyMedium,
	"small caps": FamilySmallCaps,
}

// NormalizeFamily maps a user supplied family name onto one of Families.
func NormalizeFamily(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if _, ok := familyTTF[n]; ok {
		return n
	}
	if a, ok := familyAliases[n]; ok {
		return a
	}
	return FamilySans
}

// Parsed fonts are shared process wide; faces are not, because a face keeps
// scratch buffers and must not be used from two goroutines at once.
var (
	parsedMu sync.Mutex
	parsed   = map[string]*opentype.Font{}
)

func parseVariant(family string, idx int) (*opentype.Font, error) {
	key := fmt.Sprintf("%s/%d", family, idx)
	parsedMu.Lock()
	defer parsedMu.Unlock()
	if f, ok := parsed[key]; ok {
		return f, nil
	}
	f, err := opentype.Parse(familyTTF[family][idx])
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", key, err)
	}
	parsed[key] = f
	return f, nil
}

type faceKey struct {
	family       string
	bold, italic bool
	size         float64
}

// FontBook caches font faces by family, weight, slant and size.
type FontBook struct {
	faces map[faceKey]font.Face
}

// DefaultFontBook returns an empty book backed by the Go font family.
func DefaultFontBook() *FontBook {
	return &FontBook{faces: make(map[faceKey]font.Face)}
}

// Face returns the face for the given style, creating it on first use.
func (b *FontBook) Face(family string, bold, italic bool, size float64) (font.Face, error) {
	key := faceKey{family: NormalizeFamily(family), bold: bold, italic: italic, size: size}
	if f, ok := b.faces[key]; ok {
		return f, nil
	}

	idx := 0
	if bold {
		idx |= 2
	}
	if italic {
		idx |= 1
	}
	otf, err := parseVariant(key.family, idx)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s face at %.1fpx: %w", key.family, size, err)
	}
	b.faces[key] = face
	return face, nil
}
