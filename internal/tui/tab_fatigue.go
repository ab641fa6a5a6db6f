package tui

import (
	"strings"

	"github.com/safedrive-ia/safedrive/internal/cli"
	"github.com/safedrive-ia/safedrive/internal/tui/components"
	"github.com/safedrive-ia/safedrive/internal/tui/theme"
	"github.com/safedrive-ia/safedrive/internal/view"
)

func (a App) renderFatigueTab(cw, h int) string {
	t := theme.Active
	f := a.fatigue
	if f == nil {
		return components.EmptyNotice("Loading fatigue events...")
	}

	stats := []components.Stat{
		{Label: "Fatigue alerts", Value: cli.FormatCount(f.Summary.Total), Note: windowLabel(f.Window), Color: t.Fatigue},
		{Label: "Mean eyes closed", Value: cli.FormatMean(f.Summary.Mean) + " s"},
		{Label: "Alarms triggered", Value: cli.FormatCount(f.Summary.CountWhere), Color: t.Alarm},
	}

	var b strings.Builder
	b.WriteString(components.StatRow(stats, cw))
	b.WriteString("\n")

	chart := sectionBody(f.Section, "fatigue events", "No fatigue alerts in this window.", func() string {
		return components.DayBars(f.Series.Counts, f.Series.Labels, t.Fatigue, components.PanelInnerWidth(cw), chartHeight)
	})
	b.WriteString(components.Panel("Alerts per day", chart, cw, false))
	b.WriteString("\n")

	// Stat row (3) + chart panel + the two panel borders and title below.
	used := 5 + chartHeight + 5
	listRows := max(h-used-4, 3)

	widths := components.LayoutRow(cw, 2)
	byAlert := sectionBody(f.Section, "fatigue events", "No alerts.", func() string {
		return components.HBars(categoryBars(f.ByAlert), 14, components.PanelInnerWidth(widths[0]), t.Fatigue)
	})
	events := sectionBody(f.Section, "fatigue events", "No alerts.", func() string {
		rows := f.Events
		if len(rows) > listRows {
			rows = rows[:listRows]
		}
		body := a.recentAlerts(rows, components.PanelInnerWidth(widths[1]))
		if f.DriversSection.Status == view.StatusFailed {
			body += "\n" + components.FailedNotice("driver names", f.DriversSection.Error)
		}
		return body
	})
	b.WriteString(components.CardRow([]string{
		components.Panel("By alert type", byAlert, widths[0], false),
		components.Panel("Latest alerts", events, widths[1], false),
	}))
	return b.String()
}
