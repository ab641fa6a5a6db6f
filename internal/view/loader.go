package view

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/safedrive-ia/safedrive/internal/model"
	"github.com/safedrive-ia/safedrive/internal/pipeline"
	"github.com/safedrive-ia/safedrive/internal/source"
)

// Options configures a Loader. Zero values take defaults.
type Options struct {
	PositiveEmotions []string
	TopEmotions      int
	PageSize         int
	RecentEvents     int
	DashboardDays    int
	DefaultDays      int
	Locale           pipeline.Locale
	Location         *time.Location
	Now              func() time.Time
	Logger           *slog.Logger
}

// DefaultPositiveEmotions is the default positive emotion set.
var DefaultPositiveEmotions = []string{"alerta", "feliz", "calmado"}

// NoEmotion is the most-common label when no emotion was recorded.
const NoEmotion = "Ninguna"

func (o Options) withDefaults() Options {
	if o.PositiveEmotions == nil {
		o.PositiveEmotions = DefaultPositiveEmotions
	}
	if o.TopEmotions < 1 {
		o.TopEmotions = 5
	}
	if o.PageSize < 1 {
		o.PageSize = 10
	}
	if o.RecentEvents < 1 {
		o.RecentEvents = 5
	}
	if o.DashboardDays < 1 {
		o.DashboardDays = 7
	}
	if o.DefaultDays < 1 {
		o.DefaultDays = 30
	}
	if o.Locale == "" {
		o.Locale = pipeline.LocaleES
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// Loader builds views from a Store.
type Loader struct {
	store source.Store
	opts  Options
	log   *slog.Logger
}

// NewLoader returns a Loader over st.
func NewLoader(st source.Store, opts Options) *Loader {
	opts = opts.withDefaults()
	return &Loader{store: st, opts: opts, log: opts.Logger}
}

// Options returns the effective options.
func (l *Loader) Options() Options { return l.opts }

// query runs q and logs failures. Failures are returned for the caller to
// record in a section.
func (l *Loader) query(ctx context.Context, q source.Query) ([]source.Row, error) {
	rows, err := l.store.Query(ctx, q)
	if err != nil {
		l.log.Warn("query failed", "table", string(q.Table), "error", err)
		return nil, err
	}
	return rows, nil
}

func (l *Loader) fatigue(ctx context.Context, q source.Query) ([]model.FatigueEvent, error) {
	rows, err := l.query(ctx, q)
	return source.DecodeAll(rows, source.DecodeFatigueEvent), err
}

func (l *Loader) emotions(ctx context.Context, q source.Query) ([]model.EmotionEvent, error) {
	rows, err := l.query(ctx, q)
	return source.DecodeAll(rows, source.DecodeEmotionEvent), err
}

func (l *Loader) drivers(ctx context.Context, q source.Query) ([]model.Driver, error) {
	rows, err := l.query(ctx, q)
	return source.DecodeAll(rows, source.DecodeDriver), err
}

func windowed(t source.Table, w pipeline.Window) source.Query {
	from, to := w.QueryBounds()
	return source.From(t).Gte("event_time", from).Lte("event_time", to).Order("event_time", false)
}

// driverIndex resolves the owners of sessionIDs with two targeted queries.
func (l *Loader) driverIndex(ctx context.Context, sessionIDs []int64) (pipeline.DriverIndex, error) {
	ids := uniqueIDs(sessionIDs)
	if len(ids) == 0 {
		return pipeline.NewDriverIndex(nil, nil), nil
	}

	rows, err := l.query(ctx, source.From(source.TableSessions).InIDs("session_id", ids))
	if err != nil {
		return pipeline.NewDriverIndex(nil, nil), err
	}
	sessions := source.DecodeAll(rows, source.DecodeSession)

	driverIDs := make([]int64, 0, len(sessions))
	for _, s := range sessions {
		driverIDs = append(driverIDs, s.DriverID)
	}
	drivers, err := l.drivers(ctx, source.From(source.TableDrivers).InIDs("driver_id", uniqueIDs(driverIDs)))
	if err != nil {
		return pipeline.NewDriverIndex(nil, sessions), err
	}
	return pipeline.NewDriverIndex(drivers, sessions), nil
}

func uniqueIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

func fatigueSessionIDs(events []model.FatigueEvent) []int64 {
	ids := make([]int64, len(events))
	for i, e := range events {
		ids[i] = e.SessionID
	}
	return ids
}

func emotionSessionIDs(events []model.EmotionEvent) []int64 {
	ids := make([]int64, len(events))
	for i, e := range events {
		ids[i] = e.SessionID
	}
	return ids
}

func eventRows(events []model.FatigueEvent, x pipeline.DriverIndex) []EventRow {
	out := make([]EventRow, len(events))
	for i, e := range events {
		out[i] = EventRow{
			ID:               e.ID,
			Time:             e.EventTime,
			DriverID:         x.DriverID(e.SessionID),
			DriverName:       x.DriverName(e.SessionID),
			AlertType:        e.AlertType,
			EyeClosedSeconds: e.EyeClosedSeconds,
			AlarmTriggered:   e.AlarmTriggered,
		}
	}
	return out
}

func emotionRows(events []model.EmotionEvent, x pipeline.DriverIndex) []EmotionRow {
	out := make([]EmotionRow, len(events))
	for i, e := range events {
		out[i] = EmotionRow{
			ID:         e.ID,
			Time:       e.EventTime,
			DriverID:   x.DriverID(e.SessionID),
			DriverName: x.DriverName(e.SessionID),
			Emotion:    e.Emotion,
		}
	}
	return out
}
