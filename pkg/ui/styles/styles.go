// Package styles defines the visual styling for phazer's terminal
// output.
//
// All styles use semantic names and adaptive colors that automatically
// adjust to light and dark terminal themes.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// StyleRegistry maps semantic names to lipgloss styles
var StyleRegistry = map[string]lipgloss.Style{
	"Error": lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#B00020", Dark: "#FF5555"}),
	"Success": lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#50FA7B"}),
	"Winner": lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#50FA7B"}),
	"Path": lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#0550AE", Dark: "#8BE9FD"}),
	"Muted": lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#6E7781", Dark: "#6272A4"}),
}

// GetStyle returns the style registered under name, or a zero style so
// callers can render unconditionally.
func GetStyle(name string) lipgloss.Style {
	if s, ok := StyleRegistry[name]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
