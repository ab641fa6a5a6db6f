// Package theme defines color themes for the safedrive TUI dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme maps dashboard roles to colors.
type Theme struct {
	Name string

	Background lipgloss.Color
	Surface    lipgloss.Color // cards and panels
	Selected   lipgloss.Color // active tab, highlighted row
	Border     lipgloss.Color
	BorderHot  lipgloss.Color // focused panel

	TextDim     lipgloss.Color
	TextMuted   lipgloss.Color
	TextPrimary lipgloss.Color
	Accent      lipgloss.Color

	// Data roles.
	Fatigue  lipgloss.Color // fatigue alert bars
	Alarm    lipgloss.Color // alarms and load failures
	Emotion  lipgloss.Color // emotion bars
	Positive lipgloss.Color // positive share gauge
	Warning  lipgloss.Color // empty-section notices
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme.
var FlexokiDark = Theme{
	Name:        "flexoki-dark",
	Background:  lipgloss.Color("#100F0F"),
	Surface:     lipgloss.Color("#1C1B1A"),
	Selected:    lipgloss.Color("#282726"),
	Border:      lipgloss.Color("#403E3C"),
	BorderHot:   lipgloss.Color("#3AA99F"),
	TextDim:     lipgloss.Color("#575653"),
	TextMuted:   lipgloss.Color("#878580"),
	TextPrimary: lipgloss.Color("#FFFCF0"),
	Accent:      lipgloss.Color("#3AA99F"),
	Fatigue:     lipgloss.Color("#DA702C"),
	Alarm:       lipgloss.Color("#D14D41"),
	Emotion:     lipgloss.Color("#4385BE"),
	Positive:    lipgloss.Color("#879A39"),
	Warning:     lipgloss.Color("#D0A215"),
}

// TokyoNight is a cool blue theme.
var TokyoNight = Theme{
	Name:        "tokyo-night",
	Background:  lipgloss.Color("#1A1B26"),
	Surface:     lipgloss.Color("#24283B"),
	Selected:    lipgloss.Color("#292E42"),
	Border:      lipgloss.Color("#3B4261"),
	BorderHot:   lipgloss.Color("#7AA2F7"),
	TextDim:     lipgloss.Color("#565F89"),
	TextMuted:   lipgloss.Color("#737AA2"),
	TextPrimary: lipgloss.Color("#C0CAF5"),
	Accent:      lipgloss.Color("#7AA2F7"),
	Fatigue:     lipgloss.Color("#FF9E64"),
	Alarm:       lipgloss.Color("#F7768E"),
	Emotion:     lipgloss.Color("#7DCFFF"),
	Positive:    lipgloss.Color("#9ECE6A"),
	Warning:     lipgloss.Color("#E0AF68"),
}

// Terminal uses the 16 ANSI colors so it follows the terminal palette.
var Terminal = Theme{
	Name:        "terminal",
	Background:  lipgloss.Color("0"),
	Surface:     lipgloss.Color("0"),
	Selected:    lipgloss.Color("8"),
	Border:      lipgloss.Color("8"),
	BorderHot:   lipgloss.Color("6"),
	TextDim:     lipgloss.Color("8"),
	TextMuted:   lipgloss.Color("7"),
	TextPrimary: lipgloss.Color("15"),
	Accent:      lipgloss.Color("6"),
	Fatigue:     lipgloss.Color("3"),
	Alarm:       lipgloss.Color("1"),
	Emotion:     lipgloss.Color("4"),
	Positive:    lipgloss.Color("2"),
	Warning:     lipgloss.Color("11"),
}

// All available themes.
var All = []Theme{FlexokiDark, TokyoNight, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}
