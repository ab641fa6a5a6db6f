package tui

import (
	"fmt"
	"strings"

	"github.com/safedrive-ia/safedrive/internal/cli"
	"github.com/safedrive-ia/safedrive/internal/model"
	"github.com/safedrive-ia/safedrive/internal/pipeline"
	"github.com/safedrive-ia/safedrive/internal/tui/components"
	"github.com/safedrive-ia/safedrive/internal/tui/theme"
	"github.com/safedrive-ia/safedrive/internal/view"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderEmotionsTab(cw int) string {
	t := theme.Active
	e := a.emotions
	if e == nil {
		return components.EmptyNotice("Loading emotions...")
	}

	stats := []components.Stat{
		{Label: "Emotion readings", Value: cli.FormatCount(e.Distribution.Total), Note: windowLabel(e.Window), Color: t.Emotion},
		{Label: "Most common", Value: e.MostCommon},
		{Label: "Positive share", Value: cli.FormatPercent(e.PositiveShare), Color: components.ColorForShare(e.PositiveShare)},
	}

	var b strings.Builder
	b.WriteString(components.StatRow(stats, cw))
	b.WriteString("\n")

	chart := sectionBody(e.Section, "emotions", "No emotion readings in this window.", func() string {
		return components.DayBars(e.Series.Counts, e.Series.Labels, t.Emotion, components.PanelInnerWidth(cw), chartHeight)
	})
	b.WriteString(components.Panel("Readings per day", chart, cw, false))
	b.WriteString("\n")

	widths := components.LayoutRow(cw, 3)
	dist := sectionBody(e.Section, "emotions", "No readings.", func() string {
		in := components.PanelInnerWidth(widths[0])
		return components.HBars(categoryBars(e.Distribution.Entries), 12, in, t.Emotion) + "\n\n" +
			components.ShareGauge("", e.PositiveShare, 0, in-8)
	})
	byDriver := sectionBody(e.Section, "emotions", "No readings.", func() string {
		return driverTopEmotion(e.ByDriver, components.PanelInnerWidth(widths[1]))
	})
	log := sectionBody(e.Section, "emotions", "No readings.", func() string {
		return a.emotionLog(e.Rows, components.PanelInnerWidth(widths[2]), e.DriversSection)
	})
	b.WriteString(components.CardRow([]string{
		components.Panel("Distribution", dist, widths[0], false),
		components.Panel("By driver", byDriver, widths[1], false),
		components.Panel(fmt.Sprintf("Readings  page %d/%d  [n/p]", e.Rows.PageNumber, max(e.Rows.TotalPages, 1)), log, widths[2], false),
	}))
	return b.String()
}

// driverTopEmotion shows each driver's most common emotion and reading count.
func driverTopEmotion(groups []model.GroupDistribution, width int) string {
	t := theme.Active
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	valStyle := lipgloss.NewStyle().Foreground(t.Emotion).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	nameW := max(width-12-7, 8)
	lines := make([]string, len(groups))
	for i, g := range groups {
		lines[i] = nameStyle.Render(padRight(cli.Truncate(g.Group, nameW), nameW)) + space +
			valStyle.Render(padRight(cli.Truncate(pipeline.MostCommon(g.Distribution, view.NoEmotion), 11), 11)) + space +
			dim.Render(fmt.Sprintf("%5d", g.Distribution.Total))
	}
	return strings.Join(lines, "\n")
}

func (a App) emotionLog(page model.Page[view.EmotionRow], width int, drivers view.Section) string {
	t := theme.Active
	timeStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	valStyle := lipgloss.NewStyle().Foreground(t.Emotion).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	nameW := max(width-16-12-2, 6)
	lines := make([]string, 0, len(page.Items)+1)
	for _, r := range page.Items {
		lines = append(lines, timeStyle.Render(cli.FormatTime(r.Time, a.loc))+space+
			nameStyle.Render(padRight(cli.Truncate(r.DriverName, nameW), nameW))+space+
			valStyle.Render(cli.Truncate(r.Emotion, 12)))
	}
	if drivers.Status == view.StatusFailed {
		lines = append(lines, components.FailedNotice("driver names", drivers.Error))
	}
	return strings.Join(lines, "\n")
}
