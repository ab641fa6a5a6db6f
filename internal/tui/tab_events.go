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

func (a App) renderEventsTab(cw, h int) string {
	t := theme.Active
	ev := a.events
	if ev == nil {
		return components.EmptyNotice("Loading events...")
	}

	p := ev.Page
	title := fmt.Sprintf("Fatigue event log  page %d/%d  (%d events)  [n/p]", p.PageNumber, max(p.TotalPages, 1), p.TotalItems)
	if ev.Window != nil {
		title += "  " + windowLabel(*ev.Window)
	}

	body := sectionBody(ev.Section, "fatigue events", "No fatigue events recorded.", func() string {
		inner := components.PanelInnerWidth(cw)
		nameW := max(inner-16-8-16-10-6-10, 10)

		head := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Bold(true)
		row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
		alarm := lipgloss.NewStyle().Foreground(t.Alarm).Background(t.Surface).Bold(true)

		format := "%-16s  %6s  %-*s  %-16s  %10s  %s"
		lines := []string{head.Render(fmt.Sprintf(format, "Time", "ID", nameW, "Driver", "Alert", "Eyes", "Alarm"))}
		for i, r := range p.Items {
			if i >= max(h-4, 3) {
				break
			}
			line := fmt.Sprintf(format,
				cli.FormatTime(r.Time, a.loc),
				fmt.Sprint(r.ID),
				nameW, cli.Truncate(r.DriverName, nameW),
				cli.Truncate(r.AlertType, 16),
				cli.FormatSeconds(r.EyeClosedSeconds),
				cli.FormatYesNo(r.AlarmTriggered))
			if r.AlarmTriggered {
				lines = append(lines, alarm.Render(line))
			} else {
				lines = append(lines, row.Render(line))
			}
		}
		if ev.DriversSection.Status == view.StatusFailed {
			lines = append(lines, components.FailedNotice("driver names", ev.DriversSection.Error))
		}
		return strings.Join(lines, "\n")
	})
	return components.Panel(title, body, cw, true)
}
