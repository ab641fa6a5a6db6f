package view

import (
	"context"

	"github.com/safedrive-ia/safedrive/internal/model"
	"github.com/safedrive-ia/safedrive/internal/pipeline"
	"github.com/safedrive-ia/safedrive/internal/source"
)

// Dashboard is the fleet overview.
type Dashboard struct {
	Window WindowInfo `json:"window" yaml:"window"`

	DriverCount    int     `json:"driver_count" yaml:"driver_count"`
	DriversSection Section `json:"drivers_section" yaml:"drivers_section"`

	Fatigue        model.DayBucketSeries `json:"fatigue" yaml:"fatigue"`
	FatigueTotal   int                   `json:"fatigue_total" yaml:"fatigue_total"`
	Recent         []EventRow            `json:"recent" yaml:"recent"`
	FatigueSection Section               `json:"fatigue_section" yaml:"fatigue_section"`
	// RecentNames reports the driver name lookup for Recent.
	RecentNames Section `json:"recent_names_section" yaml:"recent_names_section"`

	TopEmotions     []model.CategoryCount `json:"top_emotions" yaml:"top_emotions"`
	EmotionTotal    int                   `json:"emotion_total" yaml:"emotion_total"`
	PositiveShare   float64               `json:"positive_share" yaml:"positive_share"`
	EmotionsSection Section               `json:"emotions_section" yaml:"emotions_section"`
}

// Dashboard loads the overview for the dashboard lookback window.
func (l *Loader) Dashboard(ctx context.Context) (*Dashboard, error) {
	w, err := pipeline.DefaultWindow(l.opts.Now(), l.opts.DashboardDays, l.opts.Location)
	if err != nil {
		return nil, err
	}

	var (
		drivers    []model.Driver
		fatigue    []model.FatigueEvent
		emotions   []model.EmotionEvent
		driversErr error
		fatigueErr error
		emotionErr error
	)
	parallel(
		func() {
			drivers, driversErr = l.drivers(ctx, source.From(source.TableDrivers).Select("driver_id"))
		},
		func() {
			fatigue, fatigueErr = l.fatigue(ctx, windowed(source.TableFatigueEvents, w))
		},
		func() {
			emotions, emotionErr = l.emotions(ctx, windowed(source.TableEmotions, w))
		},
	)

	d := &Dashboard{
		Window:          windowInfo(w),
		DriverCount:     len(drivers),
		DriversSection:  sectionFor(driversErr, len(drivers)),
		Fatigue:         pipeline.BucketWindow(fatigue, w, l.opts.Locale),
		FatigueSection:  sectionFor(fatigueErr, len(fatigue)),
		EmotionsSection: sectionFor(emotionErr, len(emotions)),
		Recent:          []EventRow{},
		TopEmotions:     []model.CategoryCount{},
	}
	d.FatigueTotal = d.Fatigue.Total()

	recent := fatigue[:min(l.opts.RecentEvents, len(fatigue))]
	x, jerr := l.driverIndex(ctx, fatigueSessionIDs(recent))
	d.Recent = eventRows(recent, x)
	d.RecentNames = sectionFor(jerr, len(recent))

	dist := pipeline.Distribution(emotions, pipeline.Emotion)
	d.EmotionTotal = dist.Total
	if d.TopEmotions, err = pipeline.TopK(dist, l.opts.TopEmotions); err != nil {
		return nil, err
	}
	d.PositiveShare = pipeline.SummarizeEmotions(emotions, l.opts.PositiveEmotions).PositiveShare
	return d, nil
}
