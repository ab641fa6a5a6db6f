package tui

import (
	"strings"

	"github.com/safedrive-ia/safedrive/internal/cli"
	"github.com/safedrive-ia/safedrive/internal/model"
	"github.com/safedrive-ia/safedrive/internal/tui/components"
	"github.com/safedrive-ia/safedrive/internal/tui/theme"
	"github.com/safedrive-ia/safedrive/internal/view"

	"github.com/charmbracelet/lipgloss"
)

const chartHeight = 8

func (a App) renderDashboardTab(cw int) string {
	t := theme.Active
	d := a.dashboard
	if d == nil {
		return components.EmptyNotice("Loading dashboard...")
	}

	drivers := cli.FormatCount(d.DriverCount)
	if d.DriversSection.Status == view.StatusFailed {
		drivers = "—"
	}
	stats := []components.Stat{
		{Label: "Drivers", Value: drivers, Note: sectionNote(d.DriversSection)},
		{Label: "Fatigue alerts", Value: cli.FormatCount(d.FatigueTotal), Note: sectionNote(d.FatigueSection), Color: t.Fatigue},
		{Label: "Emotion readings", Value: cli.FormatCount(d.EmotionTotal), Note: sectionNote(d.EmotionsSection), Color: t.Emotion},
		{Label: "Positive share", Value: cli.FormatPercent(d.PositiveShare), Color: components.ColorForShare(d.PositiveShare)},
	}

	var b strings.Builder
	b.WriteString(components.StatRow(stats, cw))
	b.WriteString("\n")

	inner := components.PanelInnerWidth(cw)
	chart := sectionBody(d.FatigueSection, "fatigue events", "No fatigue alerts in this window.", func() string {
		return components.DayBars(d.Fatigue.Counts, d.Fatigue.Labels, t.Fatigue, inner, chartHeight)
	})
	b.WriteString(components.Panel("Fatigue alerts per day  "+windowLabel(d.Window), chart, cw, false))
	b.WriteString("\n")

	widths := components.LayoutRow(cw, 2)
	emotions := sectionBody(d.EmotionsSection, "emotions", "No emotion readings in this window.", func() string {
		in := components.PanelInnerWidth(widths[0])
		return components.HBars(categoryBars(d.TopEmotions), 12, in, t.Emotion) + "\n\n" +
			components.ShareGauge("Positive", d.PositiveShare, 9, in-17)
	})
	recent := sectionBody(d.FatigueSection, "fatigue events", "No recent alerts.", func() string {
		body := a.recentAlerts(d.Recent, components.PanelInnerWidth(widths[1]))
		if d.RecentNames.Status == view.StatusFailed {
			body += "\n" + components.FailedNotice("driver names", d.RecentNames.Error)
		}
		return body
	})
	b.WriteString(components.CardRow([]string{
		components.Panel("Top emotions", emotions, widths[0], false),
		components.Panel("Latest alerts", recent, widths[1], false),
	}))
	return b.String()
}

// recentAlerts lists the newest alerts, one per line.
func (a App) recentAlerts(rows []view.EventRow, width int) string {
	t := theme.Active
	timeStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	alertStyle := lipgloss.NewStyle().Foreground(t.Fatigue).Background(t.Surface)
	alarmStyle := lipgloss.NewStyle().Foreground(t.Alarm).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	nameW := max(width-16-14-4, 8)
	lines := make([]string, len(rows))
	for i, r := range rows {
		mark := space
		if r.AlarmTriggered {
			mark = alarmStyle.Render("!")
		}
		lines[i] = timeStyle.Render(cli.FormatTime(r.Time, a.loc)) + space +
			mark + space +
			nameStyle.Render(padRight(cli.Truncate(r.DriverName, nameW), nameW)) + space +
			alertStyle.Render(cli.Truncate(r.AlertType, 14))
	}
	return strings.Join(lines, "\n")
}

func categoryBars(entries []model.CategoryCount) []components.Bar {
	bars := make([]components.Bar, len(entries))
	for i, e := range entries {
		bars[i] = components.Bar{Label: e.Label, Count: e.Count}
	}
	return bars
}

func sectionNote(s view.Section) string {
	switch s.Status {
	case view.StatusFailed:
		return "load failed"
	case view.StatusEmpty:
		return "no data"
	}
	return ""
}

func padRight(s string, w int) string {
	if n := lipgloss.Width(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}
