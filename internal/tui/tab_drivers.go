package tui

import (
	"fmt"
	"strings"

	"github.com/safedrive-ia/safedrive/internal/cli"
	"github.com/safedrive-ia/safedrive/internal/tui/components"
	"github.com/safedrive-ia/safedrive/internal/tui/theme"
	"github.com/safedrive-ia/safedrive/internal/view"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderDriversTab(cw, h int) string {
	t := theme.Active
	l := a.drivers
	if l == nil {
		return components.EmptyNotice("Loading drivers...")
	}

	title := fmt.Sprintf("Drivers (%d)", l.Total)
	if a.filter.Search != "" {
		title = fmt.Sprintf("Drivers matching %q (%d of %d)", a.filter.Search, len(l.Drivers), l.Total)
	}
	empty := "No drivers registered."
	if a.filter.Search != "" {
		empty = "No drivers match the search. [esc] clears it."
	}

	body := sectionBody(l.Section, "drivers", empty, func() string {
		if len(l.Drivers) == 0 {
			return components.EmptyNotice(empty)
		}
		inner := components.PanelInnerWidth(cw)
		nameW := max((inner-8)/2, 10)
		emailW := max(inner-8-nameW-2, 10)

		headStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Bold(true)
		rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
		selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Selected).Bold(true)

		visible := max(h-4, 3)
		offset := 0
		if a.cursor >= visible {
			offset = a.cursor - visible + 1
		}
		end := min(offset+visible, len(l.Drivers))

		lines := []string{headStyle.Render(fmt.Sprintf("%6s  %-*s  %s", "ID", nameW, "Name", "Email"))}
		for i := offset; i < end; i++ {
			d := l.Drivers[i]
			line := fmt.Sprintf("%6d  %s  %s", d.ID,
				padRight(cli.Truncate(d.Name, nameW), nameW),
				padRight(cli.Truncate(d.Email, emailW), emailW))
			if i == a.cursor {
				lines = append(lines, selStyle.Render(line))
			} else {
				lines = append(lines, rowStyle.Render(line))
			}
		}
		return strings.Join(lines, "\n")
	})
	return components.Panel(title+"  [j/k] select  [enter] open  [/] search", body, cw, true)
}

func (a App) renderDriverDetail(cw int) string {
	t := theme.Active
	d := a.driver
	if d == nil {
		return components.EmptyNotice("Loading driver...")
	}

	if d.DriverSection.Status == view.StatusFailed {
		return components.Panel("Driver", components.FailedNotice("driver", d.DriverSection.Error), cw, true)
	}

	header := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true).
		Render(fmt.Sprintf("%s  <%s>", d.Driver.Name, d.Driver.Email))
	sub := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).
		Render(fmt.Sprintf("id %d  ·  %s  ·  [esc] back", d.Driver.ID, windowLabel(d.Window)))

	var b strings.Builder
	b.WriteString(components.Panel("", header+"\n"+sub, cw, true))
	b.WriteString("\n")

	if d.SessionsSection.Status == view.StatusFailed {
		b.WriteString(components.Panel("Sessions", components.FailedNotice("sessions", d.SessionsSection.Error), cw, false))
		return b.String()
	}
	if d.NoSessions {
		b.WriteString(components.Panel("Sessions", components.EmptyNotice("This driver has no recorded driving sessions."), cw, false))
		return b.String()
	}

	b.WriteString(components.StatRow([]components.Stat{
		{Label: "Sessions", Value: cli.FormatCount(d.Sessions)},
		{Label: "Fatigue alerts", Value: cli.FormatCount(d.FatigueSummary.Total), Note: sectionNote(d.FatigueSection), Color: t.Fatigue},
		{Label: "Mean eyes closed", Value: cli.FormatMean(d.FatigueSummary.Mean) + " s"},
		{Label: "Most common emotion", Value: d.MostCommon, Note: sectionNote(d.EmotionsSection), Color: t.Emotion},
		{Label: "Positive share", Value: cli.FormatPercent(d.PositiveShare), Color: components.ColorForShare(d.PositiveShare)},
	}, cw))
	b.WriteString("\n")

	widths := components.LayoutRow(cw, 2)
	fatigue := sectionBody(d.FatigueSection, "fatigue events", "No fatigue alerts in this window.", func() string {
		return components.DayBars(d.FatigueSeries.Counts, d.FatigueSeries.Labels, t.Fatigue, components.PanelInnerWidth(widths[0]), chartHeight)
	})
	emotions := sectionBody(d.EmotionsSection, "emotions", "No emotion readings in this window.", func() string {
		in := components.PanelInnerWidth(widths[1])
		return components.DayBars(d.EmotionSeries.Counts, d.EmotionSeries.Labels, t.Emotion, in, chartHeight-2) + "\n" +
			components.HBars(categoryBars(d.Emotions.Entries), 12, in, t.Emotion)
	})
	b.WriteString(components.CardRow([]string{
		components.Panel("Fatigue alerts per day", fatigue, widths[0], false),
		components.Panel("Emotions", emotions, widths[1], false),
	}))
	return b.String()
}
