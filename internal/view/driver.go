package view

import (
	"context"
	"errors"
	"fmt"

	"github.com/safedrive-ia/safedrive/internal/model"
	"github.com/safedrive-ia/safedrive/internal/pipeline"
	"github.com/safedrive-ia/safedrive/internal/source"
)

// ErrDriverNotFound is returned when the requested driver does not exist.
var ErrDriverNotFound = errors.New("driver not found")

// DriverDetail is the driver-scoped view.
type DriverDetail struct {
	Driver        model.Driver `json:"driver" yaml:"driver"`
	DriverSection Section      `json:"driver_section" yaml:"driver_section"`

	Window   WindowInfo `json:"window" yaml:"window"`
	Sessions int        `json:"sessions" yaml:"sessions"`

	// NoSessions is set when the driver has never driven; no event queries run.
	NoSessions      bool    `json:"no_sessions" yaml:"no_sessions"`
	SessionsSection Section `json:"sessions_section" yaml:"sessions_section"`

	EmotionSeries   model.DayBucketSeries      `json:"emotion_series" yaml:"emotion_series"`
	Emotions        model.CategoryDistribution `json:"emotions" yaml:"emotions"`
	MostCommon      string                     `json:"most_common" yaml:"most_common"`
	PositiveShare   float64                    `json:"positive_share" yaml:"positive_share"`
	EmotionsSection Section                    `json:"emotions_section" yaml:"emotions_section"`

	FatigueSeries  model.DayBucketSeries `json:"fatigue_series" yaml:"fatigue_series"`
	FatigueSummary model.SummaryStats    `json:"fatigue_summary" yaml:"fatigue_summary"`
	FatigueSection Section               `json:"fatigue_section" yaml:"fatigue_section"`
}

// Driver loads the view for f.DriverID. Sessions resolve first, then both
// event kinds load concurrently; a failure in one leaves the other intact.
func (l *Loader) Driver(ctx context.Context, f Filter) (*DriverDetail, error) {
	w, err := f.Window(l.opts.Now(), l.opts.DefaultDays, l.opts.Location)
	if err != nil {
		return nil, err
	}
	if f.DriverID <= 0 {
		return nil, fmt.Errorf("%w: driver id %d", pipeline.ErrInvalidArgument, f.DriverID)
	}

	var (
		drivers     []model.Driver
		sessionIDs  []int64
		driverErr   error
		sessionsErr error
	)
	parallel(
		func() {
			drivers, driverErr = l.drivers(ctx, source.From(source.TableDrivers).Eq("driver_id", f.DriverID))
		},
		func() {
			sessionIDs, sessionsErr = pipeline.ResolveSessions(ctx, l.store, f.DriverID)
			if sessionsErr != nil {
				l.log.Warn("query failed", "table", string(source.TableSessions), "error", sessionsErr)
			}
		},
	)
	driver := model.Driver{ID: f.DriverID}
	switch {
	case driverErr != nil:
	case len(drivers) == 0:
		return nil, fmt.Errorf("%w: %d", ErrDriverNotFound, f.DriverID)
	default:
		driver = drivers[0]
	}

	v := &DriverDetail{
		Driver:          driver,
		DriverSection:   sectionFor(driverErr, len(drivers)),
		Window:          windowInfo(w),
		Sessions:        len(sessionIDs),
		SessionsSection: sectionFor(sessionsErr, len(sessionIDs)),
		EmotionSeries:   pipeline.BucketWindow([]model.EmotionEvent(nil), w, l.opts.Locale),
		FatigueSeries:   pipeline.BucketWindow([]model.FatigueEvent(nil), w, l.opts.Locale),
		Emotions:        pipeline.Distribution([]model.EmotionEvent(nil), pipeline.Emotion),
		MostCommon:      NoEmotion,
	}
	if sessionsErr != nil {
		v.EmotionsSection = Section{Status: StatusFailed, Error: sessionsErr.Error()}
		v.FatigueSection = v.EmotionsSection
		return v, nil
	}
	if len(sessionIDs) == 0 {
		v.NoSessions = true
		v.EmotionsSection = Section{Status: StatusEmpty}
		v.FatigueSection = Section{Status: StatusEmpty}
		return v, nil
	}

	var (
		emotions   []model.EmotionEvent
		fatigue    []model.FatigueEvent
		emotionErr error
		fatigueErr error
	)
	parallel(
		func() {
			emotions, emotionErr = l.emotions(ctx, windowed(source.TableEmotions, w).InIDs("session_id", sessionIDs))
		},
		func() {
			fatigue, fatigueErr = l.fatigue(ctx, windowed(source.TableFatigueEvents, w).InIDs("session_id", sessionIDs))
		},
	)

	v.EmotionSeries = pipeline.BucketWindow(emotions, w, l.opts.Locale)
	v.Emotions = pipeline.Distribution(emotions, pipeline.Emotion)
	v.MostCommon = pipeline.MostCommon(v.Emotions, NoEmotion)
	v.PositiveShare = pipeline.SummarizeEmotions(emotions, l.opts.PositiveEmotions).PositiveShare
	v.EmotionsSection = sectionFor(emotionErr, len(emotions))

	v.FatigueSeries = pipeline.BucketWindow(fatigue, w, l.opts.Locale)
	v.FatigueSummary = pipeline.SummarizeFatigue(fatigue)
	v.FatigueSection = sectionFor(fatigueErr, len(fatigue))
	return v, nil
}
