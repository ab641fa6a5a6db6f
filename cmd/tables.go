package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/safedrive-ia/safedrive/internal/cli"
	"github.com/safedrive-ia/safedrive/internal/model"
	"github.com/safedrive-ia/safedrive/internal/view"
)

const barWidth = 40

func windowTitle(prefix string, w view.WindowInfo) string {
	return fmt.Sprintf("%s  %s .. %s (%dd)", prefix, w.From, w.To, w.Days)
}

// printSeries renders a per-day count series as horizontal bars.
func printSeries(s model.DayBucketSeries) {
	peak := 0
	for _, c := range s.Counts {
		peak = max(peak, c)
	}
	labelWidth := 0
	for _, l := range s.Labels {
		labelWidth = max(labelWidth, len([]rune(l)))
	}
	for i, c := range s.Counts {
		fmt.Println(cli.RenderHorizontalBar(s.Labels[i], labelWidth, c, peak, barWidth))
	}
	fmt.Printf("  %s %s\n", cli.RenderMuted("trend"), cli.RenderSparkline(s.Counts))
}

func printCounts(title, header string, counts []model.CategoryCount) {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Label, cli.FormatCount(c.Count)})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{header, "Count"},
		Rows:    rows,
	}))
}

func eventTable(title string, rows []view.EventRow, loc *time.Location) cli.Table {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			strconv.FormatInt(r.ID, 10),
			cli.FormatTime(r.Time, loc),
			cli.Truncate(r.DriverName, 24),
			r.AlertType,
			cli.FormatSeconds(r.EyeClosedSeconds),
			cli.FormatYesNo(r.AlarmTriggered),
		})
	}
	return cli.Table{
		Title:    title,
		Headers:  []string{"ID", "Time", "Driver", "Alert", "Eyes closed", "Alarm"},
		Rows:     out,
		LeftCols: 4,
	}
}

func emotionTable(title string, rows []view.EmotionRow, loc *time.Location) cli.Table {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			strconv.FormatInt(r.ID, 10),
			cli.FormatTime(r.Time, loc),
			cli.Truncate(r.DriverName, 24),
			r.Emotion,
		})
	}
	return cli.Table{
		Title:    title,
		Headers:  []string{"ID", "Time", "Driver", "Emotion"},
		Rows:     out,
		LeftCols: 4,
	}
}

func pageFooter[T any](p model.Page[T]) string {
	s := fmt.Sprintf("  Page %d of %d (%s total)", p.PageNumber, p.TotalPages, cli.FormatCount(p.TotalItems))
	if p.HasNext() {
		s += fmt.Sprintf("  next: --page %d", p.PageNumber+1)
	}
	return cli.RenderMuted(s)
}
