package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/omrisk/internal/theme"
)

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, right string) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Active.TextMuted).
		Width(width)

	left := " [?]help  [r]escore  [n/p]seed  [q]uit"
	if right != "" {
		right += " "
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}
	return style.Render(left + strings.Repeat(" ", padding) + right)
}
