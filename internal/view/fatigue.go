package view

import (
	"context"

	"github.com/safedrive-ia/safedrive/internal/model"
	"github.com/safedrive-ia/safedrive/internal/pipeline"
	"github.com/safedrive-ia/safedrive/internal/source"
)

// Fatigue is the fatigue analysis for a date window.
type Fatigue struct {
	Window  WindowInfo            `json:"window" yaml:"window"`
	Series  model.DayBucketSeries `json:"series" yaml:"series"`
	Summary model.SummaryStats    `json:"summary" yaml:"summary"`
	ByAlert []model.CategoryCount `json:"by_alert" yaml:"by_alert"`
	Events  []EventRow            `json:"events" yaml:"events"`
	Section Section               `json:"section" yaml:"section"`

	// DriversSection reports the name lookup; events still render when it fails.
	DriversSection Section `json:"drivers_section" yaml:"drivers_section"`
}

// Fatigue loads fatigue events in the filter window.
func (l *Loader) Fatigue(ctx context.Context, f Filter) (*Fatigue, error) {
	w, err := f.Window(l.opts.Now(), l.opts.DefaultDays, l.opts.Location)
	if err != nil {
		return nil, err
	}

	events, qerr := l.fatigue(ctx, windowed(source.TableFatigueEvents, w))
	v := &Fatigue{
		Window:  windowInfo(w),
		Series:  pipeline.BucketWindow(events, w, l.opts.Locale),
		Summary: pipeline.SummarizeFatigue(events),
		ByAlert: pipeline.Distribution(events, pipeline.AlertType).Entries,
		Section: sectionFor(qerr, len(events)),
	}

	x, jerr := l.driverIndex(ctx, fatigueSessionIDs(events))
	v.Events = eventRows(events, x)
	v.DriversSection = sectionFor(jerr, len(events))
	return v, nil
}
