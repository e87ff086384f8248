package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/omrisk/internal/theme"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', KeyPos: 0},
	{Name: "Drivers", Key: 'd', KeyPos: 0},
	{Name: "Monthly", Key: 'm', KeyPos: 0},
	{Name: "Histogram", Key: 'h', KeyPos: 0},
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int) string {
	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		parts = append(parts, renderTab(tab, i == activeIdx))
	}
	return strings.Join(parts, " ")
}

func renderTab(tab Tab, active bool) string {
	t := theme.Active
	if active {
		return lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Padding(0, 1).Render(tab.Name)
	}

	inactive := lipgloss.NewStyle().Foreground(t.TextMuted)
	key := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim)

	before := tab.Name[:tab.KeyPos]
	after := tab.Name[tab.KeyPos+1:]
	body := inactive.Render(before) +
		dim.Render("[") + key.Render(string(tab.Name[tab.KeyPos])) + dim.Render("]") +
		inactive.Render(after)
	return lipgloss.NewStyle().Padding(0, 1).Render(body)
}

// TabVisualWidth returns the rendered width of a tab, matching RenderTabBar.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(renderTab(tab, active))
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
