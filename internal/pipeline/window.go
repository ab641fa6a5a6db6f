// Package pipeline implements the pure analytics over fetched events:
// day windows and buckets, categorical distributions, summaries, and
// pagination, plus the session lookups that feed driver-scoped views.
package pipeline

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidArgument is returned for window sizes, page sizes, and date
// ranges that cannot be computed.
var ErrInvalidArgument = errors.New("invalid argument")

// Day is the nominal bucket width. Buckets follow calendar days in the
// window's location, so a DST day is one bucket of 23 or 25 hours.
const Day = 24 * time.Hour

// MaxWindowDays bounds every window, roughly ten years of buckets.
const MaxWindowDays = 3660

// DateLayout is the accepted layout for user-supplied dates.
const DateLayout = "2006-01-02"

// Window is a run of Days consecutive day buckets starting at Start.
type Window struct {
	Start time.Time
	Days  int
}

// NewWindow validates days and returns the window.
func NewWindow(start time.Time, days int) (Window, error) {
	if err := checkDays(days); err != nil {
		return Window{}, err
	}
	return Window{Start: start, Days: days}, nil
}

func checkDays(days int) error {
	if days < 1 {
		return fmt.Errorf("%w: window size %d, need at least 1 day", ErrInvalidArgument, days)
	}
	if days > MaxWindowDays {
		return fmt.Errorf("%w: window size %d exceeds %d days", ErrInvalidArgument, days, MaxWindowDays)
	}
	return nil
}

// DefaultWindow returns the days-long window ending today: it starts at
// local midnight of now minus days-1 and includes today.
func DefaultWindow(now time.Time, days int, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.Local
	}
	if err := checkDays(days); err != nil {
		return Window{}, err
	}
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return NewWindow(midnight.AddDate(0, 0, -(days-1)), days)
}

// WindowBetween returns the window whose first bucket starts at start and
// whose last bucket contains end. Days are counted on the calendar of
// start's location, so the result is floor((end-start)/Day)+1 whenever
// no DST shift lies in between.
func WindowBetween(start, end time.Time) (Window, error) {
	if end.Before(start) {
		return Window{}, fmt.Errorf("%w: end %s is before start %s", ErrInvalidArgument,
			end.Format(DateLayout), start.Format(DateLayout))
	}
	days := calendarDays(start, end)
	if end.Before(start.AddDate(0, 0, days)) {
		days--
	}
	return NewWindow(start, days+1)
}

// calendarDays counts the date changes from a to b on a's calendar.
// Civil dates are compared in UTC, where every day is exactly Day long.
func calendarDays(a, b time.Time) int {
	b = b.In(a.Location())
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int((ub.Unix() - ua.Unix()) / int64(Day/time.Second))
}

// WindowFromDates parses inclusive YYYY-MM-DD bounds at local midnight.
func WindowFromDates(from, to string, loc *time.Location) (Window, error) {
	start, err := ParseDate(from, loc)
	if err != nil {
		return Window{}, err
	}
	end, err := ParseDate(to, loc)
	if err != nil {
		return Window{}, err
	}
	return WindowBetween(start, end)
}

// ParseDate parses a YYYY-MM-DD date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidArgument, s)
	}
	return t, nil
}

// End returns the exclusive end of the window.
func (w Window) End() time.Time {
	return w.DayStart(w.Days)
}

// Index returns the bucket index of t, and false when t is outside
// [Start, End).
func (w Window) Index(t time.Time) (int, bool) {
	if t.Before(w.Start) {
		return -1, false
	}
	idx := calendarDays(w.Start, t)
	if t.Before(w.DayStart(idx)) {
		idx--
	}
	if idx >= w.Days {
		return idx, false
	}
	return idx, true
}

// Contains reports whether t falls in any bucket.
func (w Window) Contains(t time.Time) bool {
	_, ok := w.Index(t)
	return ok
}

// QueryBounds returns the inclusive time range to fetch so that every
// returned event lands in a bucket.
func (w Window) QueryBounds() (from, to time.Time) {
	return w.Start, w.End().Add(-time.Millisecond)
}

// DayStart returns the start of bucket i: the same wall clock time as
// Start, i calendar days later.
func (w Window) DayStart(i int) time.Time {
	return w.Start.AddDate(0, 0, i)
}
