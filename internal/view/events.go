package view

import (
	"context"

	"github.com/safedrive-ia/safedrive/internal/model"
	"github.com/safedrive-ia/safedrive/internal/pipeline"
	"github.com/safedrive-ia/safedrive/internal/source"
)

// RecentEvents is one page of fatigue events, newest first.
type RecentEvents struct {
	Window         *WindowInfo          `json:"window,omitempty" yaml:"window,omitempty"`
	Page           model.Page[EventRow] `json:"page" yaml:"page"`
	Section        Section              `json:"section" yaml:"section"`
	DriversSection Section              `json:"drivers_section" yaml:"drivers_section"`
}

// RecentEvents loads f.Page of the fatigue event log. Without an explicit
// date range every event is listed. Only the visible page is joined with
// driver names.
func (l *Loader) RecentEvents(ctx context.Context, f Filter) (*RecentEvents, error) {
	q := source.From(source.TableFatigueEvents).Order("event_time", false)
	v := &RecentEvents{}
	if f.HasRange() {
		w, err := f.Window(l.opts.Now(), l.opts.DefaultDays, l.opts.Location)
		if err != nil {
			return nil, err
		}
		q = windowed(source.TableFatigueEvents, w)
		info := windowInfo(w)
		v.Window = &info
	}

	events, qerr := l.fatigue(ctx, q)
	page, err := pipeline.Paginate(events, l.opts.PageSize, f.Page)
	if err != nil {
		return nil, err
	}

	x, jerr := l.driverIndex(ctx, fatigueSessionIDs(page.Items))
	v.Page = model.Page[EventRow]{
		Items:      eventRows(page.Items, x),
		PageNumber: page.PageNumber,
		TotalPages: page.TotalPages,
		TotalItems: page.TotalItems,
	}
	v.Section = sectionFor(qerr, len(events))
	v.DriversSection = sectionFor(jerr, len(page.Items))
	return v, nil
}
