// Package tui renders tuya-pip's terminal output: status lines, the
// blocked panel, and the validation spinner.
package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TermTheme holds the color values for a terminal theme.
type TermTheme struct {
	Name string

	Accent  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Dim       lipgloss.Color

	Border lipgloss.Color
}

// DarkTheme is the default dark terminal theme.
var DarkTheme = TermTheme{
	Name:      "dark",
	Accent:    lipgloss.Color("#f97316"),
	Success:   lipgloss.Color("#22c55e"),
	Warning:   lipgloss.Color("#eab308"),
	Error:     lipgloss.Color("#ef4444"),
	Primary:   lipgloss.Color("#e0e0e8"),
	Secondary: lipgloss.Color("#888888"),
	Dim:       lipgloss.Color("#5a5a70"),
	Border:    lipgloss.Color("#2a2a3a"),
}

// LightTheme is the light terminal theme.
var LightTheme = TermTheme{
	Name:      "light",
	Accent:    lipgloss.Color("#c2410c"),
	Success:   lipgloss.Color("#15803d"),
	Warning:   lipgloss.Color("#a16207"),
	Error:     lipgloss.Color("#b91c1c"),
	Primary:   lipgloss.Color("#0f172a"),
	Secondary: lipgloss.Color("#374151"),
	Dim:       lipgloss.Color("#4b5563"),
	Border:    lipgloss.Color("#d1d5db"),
}

// DetectTheme returns the appropriate theme based on flag, env, or detection.
func DetectTheme(flagVal string) TermTheme {
	// 1. --theme flag
	switch strings.ToLower(flagVal) {
	case "dark":
		return DarkTheme
	case "light":
		return LightTheme
	}

	// 2. TUYA_PIP_THEME env
	if env := os.Getenv("TUYA_PIP_THEME"); env != "" {
		switch strings.ToLower(env) {
		case "dark":
			return DarkTheme
		case "light":
			return LightTheme
		}
	}

	// 3. COLORFGBG heuristic (format: "fg;bg")
	if colorfgbg := os.Getenv("COLORFGBG"); colorfgbg != "" {
		parts := strings.Split(colorfgbg, ";")
		if len(parts) >= 2 {
			bg := parts[len(parts)-1]
			if bg == "15" || bg == "7" {
				return LightTheme
			}
		}
	}

	// 4. Default to dark
	return DarkTheme
}

// StyleSet contains pre-computed lipgloss styles derived from a theme.
type StyleSet struct {
	Theme TermTheme

	SuccessTxt lipgloss.Style
	WarningTxt lipgloss.Style
	ErrorTxt   lipgloss.Style
	InfoTxt    lipgloss.Style
	DimTxt     lipgloss.Style

	PanelBorder lipgloss.Style
	PanelTitle  lipgloss.Style
	PanelKey    lipgloss.Style
	PanelValue  lipgloss.Style
}

// NewStyleSet builds the styles for a theme.
func NewStyleSet(theme TermTheme) *StyleSet {
	return &StyleSet{
		Theme: theme,

		SuccessTxt: lipgloss.NewStyle().Foreground(theme.Success),
		WarningTxt: lipgloss.NewStyle().Foreground(theme.Warning),
		ErrorTxt:   lipgloss.NewStyle().Foreground(theme.Error),
		InfoTxt:    lipgloss.NewStyle().Foreground(theme.Accent),
		DimTxt:     lipgloss.NewStyle().Foreground(theme.Dim),

		PanelBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Error).
			Padding(0, 1),
		PanelTitle: lipgloss.NewStyle().Foreground(theme.Error).Bold(true),
		PanelKey:   lipgloss.NewStyle().Foreground(theme.Secondary).Width(9),
		PanelValue: lipgloss.NewStyle().Foreground(theme.Primary),
	}
}
