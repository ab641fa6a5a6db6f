package pipeline

import (
	"strconv"
	"time"

	"github.com/safedrive-ia/safedrive/internal/model"
)

// Timestamped is any event carrying an event time.
type Timestamped interface {
	Timestamp() time.Time
}

// Locale selects day label formatting.
type Locale string

// Supported label locales.
const (
	LocaleES Locale = "es"
	LocaleEN Locale = "en"
)

var monthAbbrev = map[Locale][12]string{
	LocaleES: {"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"},
	LocaleEN: {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
}

// DayLabel formats t as a short day/month label, e.g. "14 oct".
func DayLabel(t time.Time, locale Locale) string {
	months, ok := monthAbbrev[locale]
	if !ok {
		months = monthAbbrev[LocaleES]
	}
	return strconv.Itoa(t.Day()) + " " + months[t.Month()-1]
}

// DayLabels returns one label per bucket of w, independent of any events.
func DayLabels(w Window, locale Locale) []string {
	labels := make([]string, w.Days)
	for i := range labels {
		labels[i] = DayLabel(w.DayStart(i), locale)
	}
	return labels
}

// BucketByDay counts events per day of the window starting at start.
// Events outside [start, start+days) are dropped. The series always has
// exactly days entries.
func BucketByDay[E Timestamped](events []E, start time.Time, days int, locale Locale) (model.DayBucketSeries, error) {
	w, err := NewWindow(start, days)
	if err != nil {
		return model.DayBucketSeries{}, err
	}
	return BucketWindow(events, w, locale), nil
}

// BucketWindow is BucketByDay over an already validated window.
func BucketWindow[E Timestamped](events []E, w Window, locale Locale) model.DayBucketSeries {
	counts := make([]int, w.Days)
	for _, e := range events {
		if idx, ok := w.Index(e.Timestamp()); ok {
			counts[idx]++
		}
	}
	return model.DayBucketSeries{Labels: DayLabels(w, locale), Counts: counts}
}

// FilterWindow returns the events that fall inside w.
func FilterWindow[E Timestamped](events []E, w Window) []E {
	var out []E
	for _, e := range events {
		if w.Contains(e.Timestamp()) {
			out = append(out, e)
		}
	}
	return out
}
