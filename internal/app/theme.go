package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// RegionTheme provides a custom theme for the application.
type RegionTheme struct{}

var _ fyne.Theme = (*RegionTheme)(nil)

func (t *RegionTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 0x1E, G: 0x63, B: 0x8C, A: 0xFF} // Lake blue
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0xFF, G: 0x00, B: 0xFF, A: 0x60} // Matches selected markers
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *RegionTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *RegionTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *RegionTheme) Size(name fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}
