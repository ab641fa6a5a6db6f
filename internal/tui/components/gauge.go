package components

import (
	"fmt"

	"github.com/safedrive-ia/safedrive/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForShare grades a positive-emotion share (0-100): high is good.
func ColorForShare(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 60:
		return t.Positive
	case pct >= 40:
		return t.Warning
	case pct >= 20:
		return t.Fatigue
	default:
		return t.Alarm
	}
}

// ShareGauge renders a labeled gauge for a percentage in 0-100.
func ShareGauge(label string, pct float64, labelW, barWidth int) string {
	t := theme.Active
	pct = min(max(pct, 0), 100)
	color := ColorForShare(pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(max(barWidth, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	out := bar.ViewAs(pct/100) + space + pctStyle.Render(fmt.Sprintf("%5.1f%%", pct))
	if label != "" {
		out = labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) + space + out
	}
	return out
}
