package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StatusStyle returns the style for a Jira status category key
// ("new", "indeterminate", "done").
func StatusStyle(categoryKey string) lipgloss.Style {
	switch categoryKey {
	case "done":
		return StyleGreen
	case "indeterminate":
		return StyleYellow
	case "new":
		return StyleBlue
	default:
		return StyleDim
	}
}

// StatusPill returns a colored status indicator such as "● In Progress".
func StatusPill(name, categoryKey string) string {
	if name == "" {
		return StyleDim.Render("● Unknown")
	}
	return StatusStyle(categoryKey).Render("● " + name)
}

// PriorityIndicator returns a colored priority marker.
func PriorityIndicator(name string) string {
	switch strings.ToLower(name) {
	case "highest", "blocker", "critical":
		return StyleRed.Render("▲ " + name)
	case "high":
		return StyleYellow.Render("▲ " + name)
	case "low", "lowest", "minor", "trivial":
		return StyleDim.Render("▽ " + name)
	case "":
		return StyleDim.Render("--")
	default:
		return StyleFg.Render("● " + name)
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
