package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/safedrive-ia/safedrive/internal/pipeline"
)

// Filter is the user-controlled state behind a view.
type Filter struct {
	From     string // inclusive YYYY-MM-DD
	To       string // inclusive YYYY-MM-DD
	Days     int    // lookback when no explicit range is set
	DriverID int64
	Page     int
	Search   string
}

// HasRange reports whether an explicit date range is set.
func (f Filter) HasRange() bool {
	return strings.TrimSpace(f.From) != "" || strings.TrimSpace(f.To) != ""
}

// Window resolves the filter to a day window. An explicit range wins over
// the lookback; otherwise Days (or defaultDays) ending today is used.
func (f Filter) Window(now time.Time, defaultDays int, loc *time.Location) (pipeline.Window, error) {
	if f.HasRange() {
		from, to := strings.TrimSpace(f.From), strings.TrimSpace(f.To)
		if from == "" || to == "" {
			return pipeline.Window{}, fmt.Errorf("%w: both from and to dates are required", pipeline.ErrInvalidArgument)
		}
		return pipeline.WindowFromDates(from, to, loc)
	}
	days := f.Days
	if days == 0 {
		days = defaultDays
	}
	return pipeline.DefaultWindow(now, days, loc)
}
