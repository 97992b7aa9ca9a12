// Package tui provides terminal output for devloop: styled messages, item
// tables, change-set confirmation and markdown rendering.
//
// Colors use lipgloss AdaptiveColor for light and dark terminals. Call
// CheckNoColor before styled output to honor NO_COLOR and TERM=dumb.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wliublackruvy/agent-based-dev/internal/constants"
)

//nolint:gochecknoglobals // Package-level style palette
var (
	// ColorPrimary marks active states and headings.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess marks completed items.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning marks items waiting for review.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError marks failures.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted marks secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	titleCaser = cases.Title(language.English)
)

// OutputStyles holds message styles.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles creates message styles.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(ColorWarning),
		Info:    lipgloss.NewStyle().Foreground(ColorPrimary),
		Dim:     lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// TableStyles holds table styles.
type TableStyles struct {
	Header lipgloss.Style
	Cell   lipgloss.Style
	Dim    lipgloss.Style
}

// NewTableStyles creates table styles.
func NewTableStyles() *TableStyles {
	return &TableStyles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}),
		Cell: lipgloss.NewStyle(),
		Dim:  lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// StatusColor returns the color of a work-item status.
func StatusColor(s constants.ItemStatus) lipgloss.AdaptiveColor {
	switch s {
	case constants.StatusTodo:
		return ColorPrimary
	case constants.StatusInReview:
		return ColorWarning
	case constants.StatusDone:
		return ColorSuccess
	default:
		return ColorMuted
	}
}

// StatusIcon returns the icon shown next to a status.
func StatusIcon(s constants.ItemStatus) string {
	switch s {
	case constants.StatusTodo:
		return "○"
	case constants.StatusInReview:
		return "◐"
	case constants.StatusDone:
		return "✓"
	default:
		return "?"
	}
}

// StatusLabel returns the display label of a status, e.g. "Review".
func StatusLabel(s constants.ItemStatus) string {
	return titleCaser.String(string(s))
}

// RenderStatus returns icon and label in the status color.
func RenderStatus(s constants.ItemStatus) string {
	text := StatusIcon(s) + " " + StatusLabel(s)
	if !HasColorSupport() {
		return text
	}
	return lipgloss.NewStyle().Foreground(StatusColor(s)).Render(text)
}

// CheckNoColor switches lipgloss to plain ASCII when colors are disabled.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport reports false when NO_COLOR is set (to any value) or
// TERM is dumb.
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}
