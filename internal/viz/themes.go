package viz

import (
	"image/color"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/covplay/internal/coverage"
)

// Theme colors the four cell states and the player chrome. Colors are
// #rrggbb so they can also be used for raster and SVG output.
type Theme struct {
	Name            string
	Free            lipgloss.Color
	Occupied        lipgloss.Color
	CoveredFree     lipgloss.Color
	CoveredOccupied lipgloss.Color
	Agent           lipgloss.Color
	Edge            lipgloss.Color
	Text            lipgloss.Color
	Muted           lipgloss.Color
	Accent          lipgloss.Color
}

var (
	ThemeClassic = Theme{
		Name:            "classic",
		Free:            lipgloss.Color("#ffffff"),
		Occupied:        lipgloss.Color("#000000"),
		CoveredFree:     lipgloss.Color("#00ff00"), // lime
		CoveredOccupied: lipgloss.Color("#007500"),
		Agent:           lipgloss.Color("#0000ff"),
		Edge:            lipgloss.Color("#000000"),
		Text:            lipgloss.Color("#000000"),
		Muted:           lipgloss.Color("#888888"),
		Accent:          lipgloss.Color("#0000ff"),
	}

	ThemeDark = Theme{
		Name:            "dark",
		Free:            lipgloss.Color("#1e1e2e"),
		Occupied:        lipgloss.Color("#f38ba8"),
		CoveredFree:     lipgloss.Color("#a6e3a1"),
		CoveredOccupied: lipgloss.Color("#40a02b"),
		Agent:           lipgloss.Color("#89b4fa"),
		Edge:            lipgloss.Color("#45475a"),
		Text:            lipgloss.Color("#cdd6f4"),
		Muted:           lipgloss.Color("#6c7086"),
		Accent:          lipgloss.Color("#f9e2af"),
	}

	ThemeOcean = Theme{
		Name:            "ocean",
		Free:            lipgloss.Color("#e0f0ff"),
		Occupied:        lipgloss.Color("#001a33"),
		CoveredFree:     lipgloss.Color("#00a8cc"),
		CoveredOccupied: lipgloss.Color("#0077be"),
		Agent:           lipgloss.Color("#ffd700"),
		Edge:            lipgloss.Color("#4488aa"),
		Text:            lipgloss.Color("#001a33"),
		Muted:           lipgloss.Color("#4488aa"),
		Accent:          lipgloss.Color("#ffd700"),
	}

	ThemeMono = Theme{
		Name:            "mono",
		Free:            lipgloss.Color("#ffffff"),
		Occupied:        lipgloss.Color("#000000"),
		CoveredFree:     lipgloss.Color("#bbbbbb"),
		CoveredOccupied: lipgloss.Color("#555555"),
		Agent:           lipgloss.Color("#ff0000"),
		Edge:            lipgloss.Color("#000000"),
		Text:            lipgloss.Color("#000000"),
		Muted:           lipgloss.Color("#888888"),
		Accent:          lipgloss.Color("#ff0000"),
	}

	Themes = []Theme{
		ThemeClassic,
		ThemeDark,
		ThemeOcean,
		ThemeMono,
	}
)

// GetTheme returns a theme by name, falling back to classic.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeClassic
}

// NextTheme returns the theme after name in Themes, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Color returns the fill color of a cell state.
func (t Theme) Color(s coverage.ColorState) lipgloss.Color {
	switch s {
	case coverage.StateOccupied:
		return t.Occupied
	case coverage.StateCoveredFree:
		return t.CoveredFree
	case coverage.StateCoveredOccupied:
		return t.CoveredOccupied
	default:
		return t.Free
	}
}

// RGBA converts a #rrggbb theme color. Anything else maps to opaque white.
func RGBA(c lipgloss.Color) color.RGBA {
	r, g, b := parseHex(string(c))
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}
}

func parseHex(hex string) (r, g, b int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 255, 255, 255
	}
	r = parseHexByte(hex[1:3])
	g = parseHexByte(hex[3:5])
	b = parseHexByte(hex[5:7])
	return
}

func parseHexByte(s string) int {
	var val int
	for _, c := range s {
		val *= 16
		switch {
		case c >= '0' && c <= '9':
			val += int(c - '0')
		case c >= 'a' && c <= 'f':
			val += int(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			val += int(c - 'A' + 10)
		}
	}
	return val
}
