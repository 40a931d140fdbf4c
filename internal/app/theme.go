package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"starmap/pkg/colorutil"
)

// StarmapTheme tints the default theme with the poster palette.
type StarmapTheme struct{}

var _ fyne.Theme = (*StarmapTheme)(nil)

func (t *StarmapTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return colorutil.Gold
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0xd4, G: 0xaf, B: 0x37, A: 0x60}
	case theme.ColorNameBackground:
		if variant == theme.VariantDark {
			return colorutil.Midnight
		}
	case theme.ColorNameScrollBar:
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (t *StarmapTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *StarmapTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *StarmapTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameScrollBar:
		return 16
	case theme.SizeNameScrollBarSmall:
		return 12
	default:
		return theme.DefaultTheme().Size(name)
	}
}
