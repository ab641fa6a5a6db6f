package view

import (
	"context"

	"github.com/safedrive-ia/safedrive/internal/model"
	"github.com/safedrive-ia/safedrive/internal/pipeline"
	"github.com/safedrive-ia/safedrive/internal/source"
)

// Emotions is the emotion analysis for a date window.
type Emotions struct {
	Window        WindowInfo                 `json:"window" yaml:"window"`
	Series        model.DayBucketSeries      `json:"series" yaml:"series"`
	Distribution  model.CategoryDistribution `json:"distribution" yaml:"distribution"`
	Top           []model.CategoryCount      `json:"top" yaml:"top"`
	MostCommon    string                     `json:"most_common" yaml:"most_common"`
	PositiveShare float64                    `json:"positive_share" yaml:"positive_share"`
	ByDriver      []model.GroupDistribution  `json:"by_driver" yaml:"by_driver"`
	Rows          model.Page[EmotionRow]     `json:"rows" yaml:"rows"`
	Section       Section                    `json:"section" yaml:"section"`

	DriversSection Section `json:"drivers_section" yaml:"drivers_section"`
}

// Emotions loads emotion events in the filter window.
func (l *Loader) Emotions(ctx context.Context, f Filter) (*Emotions, error) {
	w, err := f.Window(l.opts.Now(), l.opts.DefaultDays, l.opts.Location)
	if err != nil {
		return nil, err
	}

	events, qerr := l.emotions(ctx, windowed(source.TableEmotions, w))
	dist := pipeline.Distribution(events, pipeline.Emotion)
	top, err := pipeline.TopK(dist, l.opts.TopEmotions)
	if err != nil {
		return nil, err
	}

	x, jerr := l.driverIndex(ctx, emotionSessionIDs(events))
	rows, err := pipeline.Paginate(emotionRows(events, x), l.opts.PageSize, f.Page)
	if err != nil {
		return nil, err
	}

	return &Emotions{
		Window:        windowInfo(w),
		Series:        pipeline.BucketWindow(events, w, l.opts.Locale),
		Distribution:  dist,
		Top:           top,
		MostCommon:    pipeline.MostCommon(dist, NoEmotion),
		PositiveShare: pipeline.SummarizeEmotions(events, l.opts.PositiveEmotions).PositiveShare,
		ByDriver: pipeline.DistributionBy(events,
			func(e model.EmotionEvent) int64 { return x.DriverID(e.SessionID) },
			func(e model.EmotionEvent) string { return x.DriverName(e.SessionID) },
			pipeline.Emotion),
		Rows:           rows,
		Section:        sectionFor(qerr, len(events)),
		DriversSection: sectionFor(jerr, len(events)),
	}, nil
}
