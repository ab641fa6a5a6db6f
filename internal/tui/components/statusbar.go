package components

import (
	"strings"

	"github.com/safedrive-ia/safedrive/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is what the bottom bar reports about the data.
type StatusInfo struct {
	Loading     bool
	Spinner     string // rendered spinner frame shown while loading
	Updated     string // time of the last applied load
	AutoRefresh bool
	Watching    bool
	Problem     string // last load or watch failure
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	alarm := lipgloss.NewStyle().Foreground(t.Alarm).Background(t.Surface)

	left := base.Render(" [?]help  [/]search  [+/-]days  [r]efresh  [q]uit")

	var right []string
	switch {
	case info.Loading:
		right = append(right, info.Spinner+accent.Render(" loading"))
	case info.Problem != "":
		right = append(right, alarm.Render("✗ "+info.Problem))
	case info.Updated != "":
		right = append(right, base.Render("updated "+info.Updated))
	}
	if info.Watching {
		right = append(right, accent.Render("◉ watch"))
	}
	if info.AutoRefresh {
		right = append(right, accent.Render("↻ auto"))
	}
	r := strings.Join(right, base.Render("  ")) + base.Render(" ")

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(r), 0)
	return left + base.Render(strings.Repeat(" ", padding)) + r
}
