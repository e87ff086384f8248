// Package theme defines the color palettes used by omrisk terminal output.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme maps output roles to colors.
type Theme struct {
	Name        string
	Border      lipgloss.Color // table borders and separators
	TextDim     lipgloss.Color // hints, empty bars
	TextMuted   lipgloss.Color // labels and headers
	TextPrimary lipgloss.Color
	Accent      lipgloss.Color // titles and histogram bars
	Safe        lipgloss.Color // scenarios within budget
	Warn        lipgloss.Color // tail percentiles
	Over        lipgloss.Color // scenarios over budget
	Budget      lipgloss.Color // the budget marker
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default warm, paper-inspired dark palette.
var FlexokiDark = Theme{
	Name:        "flexoki-dark",
	Border:      lipgloss.Color("#403E3C"),
	TextDim:     lipgloss.Color("#575653"),
	TextMuted:   lipgloss.Color("#878580"),
	TextPrimary: lipgloss.Color("#FFFCF0"),
	Accent:      lipgloss.Color("#3AA99F"),
	Safe:        lipgloss.Color("#879A39"),
	Warn:        lipgloss.Color("#D0A215"),
	Over:        lipgloss.Color("#D14D41"),
	Budget:      lipgloss.Color("#DA702C"),
}

// CatppuccinMocha is a soft pastel palette.
var CatppuccinMocha = Theme{
	Name:        "catppuccin-mocha",
	Border:      lipgloss.Color("#585B70"),
	TextDim:     lipgloss.Color("#6C7086"),
	TextMuted:   lipgloss.Color("#A6ADC8"),
	TextPrimary: lipgloss.Color("#CDD6F4"),
	Accent:      lipgloss.Color("#89B4FA"),
	Safe:        lipgloss.Color("#A6E3A1"),
	Warn:        lipgloss.Color("#F9E2AF"),
	Over:        lipgloss.Color("#F38BA8"),
	Budget:      lipgloss.Color("#FAB387"),
}

// TokyoNight is a cool blue and purple palette.
var TokyoNight = Theme{
	Name:        "tokyo-night",
	Border:      lipgloss.Color("#565F89"),
	TextDim:     lipgloss.Color("#565F89"),
	TextMuted:   lipgloss.Color("#A9B1D6"),
	TextPrimary: lipgloss.Color("#C0CAF5"),
	Accent:      lipgloss.Color("#7AA2F7"),
	Safe:        lipgloss.Color("#9ECE6A"),
	Warn:        lipgloss.Color("#E0AF68"),
	Over:        lipgloss.Color("#F7768E"),
	Budget:      lipgloss.Color("#FF9E64"),
}

// Terminal uses ANSI 16 colors only.
var Terminal = Theme{
	Name:        "terminal",
	Border:      lipgloss.Color("8"),
	TextDim:     lipgloss.Color("8"),
	TextMuted:   lipgloss.Color("7"),
	TextPrimary: lipgloss.Color("15"),
	Accent:      lipgloss.Color("6"),
	Safe:        lipgloss.Color("2"),
	Warn:        lipgloss.Color("3"),
	Over:        lipgloss.Color("1"),
	Budget:      lipgloss.Color("11"),
}

// All available themes.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// Names returns the names of All in order.
func Names() []string {
	out := make([]string, len(All))
	for i, t := range All {
		out[i] = t.Name
	}
	return out
}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name and reports whether the name was
// known. Unknown names select FlexokiDark.
func SetActive(name string) bool {
	Active = ByName(name)
	return Active.Name == name
}
