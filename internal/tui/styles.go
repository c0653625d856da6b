// Package tui provides a bubbletea + lipgloss terminal UI for watch mode.
package tui

import "github.com/charmbracelet/lipgloss"

// defaultAccentColor is the default accent color (indigo).
const defaultAccentColor = "#7D56F4"

var (
	colorWhite = lipgloss.Color("#FAFAFA")
	colorGray  = lipgloss.Color("#888888")
	colorGreen = lipgloss.Color("#6BCB77")
	colorRed   = lipgloss.Color("#FF6B6B")
)

var (
	footerStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	passStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)
)

// Theme holds accent-color-derived styles. Non-accent styles are
// package-level.
type Theme struct {
	headerStyle  lipgloss.Style
	runningStyle lipgloss.Style
}

// NewTheme creates a Theme from a hex accent color string (e.g.
// "#7D56F4"). If accentColor is empty, the default accent color is used.
func NewTheme(accentColor string) Theme {
	color := defaultAccentColor
	if accentColor != "" {
		color = accentColor
	}
	c := lipgloss.Color(color)
	return Theme{
		headerStyle: lipgloss.NewStyle().
			Background(c).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true),
		runningStyle: lipgloss.NewStyle().
			Foreground(c).
			Bold(true),
	}
}
