package view

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safedrive-ia/safedrive/internal/model"
	"github.com/safedrive-ia/safedrive/internal/pipeline"
	"github.com/safedrive-ia/safedrive/internal/source"
	"github.com/safedrive-ia/safedrive/internal/store"
)

var testNow = time.Date(2024, 10, 14, 15, 0, 0, 0, time.UTC)

// flakyStore fails queries against the listed tables and counts the rest.
type flakyStore struct {
	source.Store
	fail map[source.Table]bool

	mu    sync.Mutex
	calls map[source.Table]int
}

func (f *flakyStore) Query(ctx context.Context, q source.Query) ([]source.Row, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[source.Table]int)
	}
	f.calls[q.Table]++
	f.mu.Unlock()
	if f.fail[q.Table] {
		return nil, source.Fail(q.Table, errors.New("connection reset"))
	}
	return f.Store.Query(ctx, q)
}

func (f *flakyStore) count(t source.Table) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[t]
}

type fixture struct {
	db       *store.DB
	ana      int64
	luis     int64
	idle     int64
	sessions []int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "view.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	ins := func(table source.Table, v map[string]any) source.Row {
		row, err := db.Insert(ctx, table, v)
		require.NoError(t, err)
		return row
	}

	fx := fixture{db: db}
	fx.ana = source.DecodeDriver(ins(source.TableDrivers, map[string]any{"driver_name": "Ana", "driver_email": "ana@flota.co"})).ID
	fx.luis = source.DecodeDriver(ins(source.TableDrivers, map[string]any{"driver_name": "Luis", "driver_email": "luis@flota.co"})).ID
	fx.idle = source.DecodeDriver(ins(source.TableDrivers, map[string]any{"driver_name": "Sofía", "driver_email": "sofia@flota.co"})).ID
	for _, d := range []int64{fx.ana, fx.luis} {
		fx.sessions = append(fx.sessions, source.DecodeSession(ins(source.TableSessions, map[string]any{"driver_id": d})).ID)
	}
	anaSession, luisSession := fx.sessions[0], fx.sessions[1]

	// Window for a 7-day lookback is 2024-10-08 .. 2024-10-14.
	day := func(d int, h int) time.Time { return time.Date(2024, 10, 8+d, h, 0, 0, 0, time.UTC) }
	fatigue := []struct {
		session int64
		at      time.Time
		eye     float64
		alarm   bool
	}{
		{anaSession, day(0, 8), 1.0, true},
		{anaSession, day(0, 9), 2.0, false},
		{luisSession, day(3, 10), 3.0, true},
		{luisSession, day(6, 11), 0.5, false},
		{anaSession, day(-10, 12), 4.0, true}, // outside the 7-day window, inside 30 days
	}
	for _, f := range fatigue {
		ins(source.TableFatigueEvents, map[string]any{
			"session_id": f.session, "event_time": f.at, "alert_type": "bostezo",
			"eye_closed_seconds": f.eye, "alarm_triggered": f.alarm,
		})
	}
	for i, e := range []string{"feliz", "alerta", "feliz", "triste"} {
		sid := anaSession
		if i == 3 {
			sid = luisSession
		}
		ins(source.TableEmotions, map[string]any{"session_id": sid, "event_time": day(i, 14), "emotion": e})
	}
	return fx
}

func newLoader(st source.Store) *Loader {
	return NewLoader(st, Options{
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	})
}

func TestDashboard(t *testing.T) {
	fx := newFixture(t)

	d, err := newLoader(fx.db).Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, WindowInfo{From: "2024-10-08", To: "2024-10-14", Days: 7}, d.Window)
	assert.Equal(t, 3, d.DriverCount)
	assert.Equal(t, []int{2, 0, 0, 1, 0, 0, 1}, d.Fatigue.Counts)
	assert.Len(t, d.Fatigue.Labels, 7)
	assert.Equal(t, 4, d.FatigueTotal)
	assert.Equal(t, StatusLoaded, d.FatigueSection.Status)

	require.Len(t, d.Recent, 4)
	assert.True(t, d.Recent[0].Time.After(d.Recent[1].Time), "newest first")
	assert.Equal(t, "Luis", d.Recent[0].DriverName)

	// Ties keep first-seen order, and events arrive newest first.
	assert.Equal(t, []model.CategoryCount{{Label: "feliz", Count: 2}, {Label: "triste", Count: 1}, {Label: "alerta", Count: 1}}, d.TopEmotions)
	assert.InDelta(t, 75.0, d.PositiveShare, 1e-9)
}

func TestDashboardPartialFailure(t *testing.T) {
	fx := newFixture(t)
	st := &flakyStore{Store: fx.db, fail: map[source.Table]bool{source.TableEmotions: true}}

	d, err := newLoader(st).Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, d.EmotionsSection.Status)
	assert.NotEmpty(t, d.EmotionsSection.Error)
	assert.Empty(t, d.TopEmotions)
	assert.Equal(t, StatusLoaded, d.FatigueSection.Status)
	assert.Equal(t, 4, d.FatigueTotal)
}

func TestDashboardRecentNamesFailure(t *testing.T) {
	fx := newFixture(t)
	st := &flakyStore{Store: fx.db, fail: map[source.Table]bool{source.TableSessions: true}}

	d, err := newLoader(st).Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, d.RecentNames.Status)
	assert.NotEmpty(t, d.RecentNames.Error)
	assert.Equal(t, StatusLoaded, d.FatigueSection.Status)
	require.Len(t, d.Recent, 4)
	assert.Equal(t, pipeline.UnknownDriver, d.Recent[0].DriverName)
}

func TestFailedIsDistinctFromEmpty(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	empty, err := newLoader(db).Fatigue(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, StatusEmpty, empty.Section.Status)
	assert.Len(t, empty.Series.Counts, 30)

	st := &flakyStore{Store: db, fail: map[source.Table]bool{source.TableFatigueEvents: true}}
	failed, err := newLoader(st).Fatigue(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, failed.Section.Status)
	assert.Len(t, failed.Series.Counts, 30)
}

func TestFatigueExplicitRange(t *testing.T) {
	fx := newFixture(t)

	v, err := newLoader(fx.db).Fatigue(context.Background(), Filter{From: "2024-10-08", To: "2024-10-11"})
	require.NoError(t, err)

	assert.Equal(t, 4, v.Window.Days)
	assert.Equal(t, []int{2, 0, 0, 1}, v.Series.Counts)
	assert.Equal(t, 3, v.Summary.Total)
	assert.InDelta(t, 2.0, v.Summary.Mean, 1e-9)
	assert.Equal(t, 2, v.Summary.CountWhere)
	require.Len(t, v.Events, 3)
	assert.Equal(t, "Luis", v.Events[0].DriverName)
	assert.Equal(t, "Ana", v.Events[2].DriverName)
}

func TestFatigueDefaultThirtyDays(t *testing.T) {
	fx := newFixture(t)

	v, err := newLoader(fx.db).Fatigue(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, 30, v.Window.Days)
	assert.Equal(t, 5, v.Summary.Total)
	assert.InDelta(t, 2.1, v.Summary.Mean, 1e-9) // 10.5 / 5
}

func TestFatigueInvalidRange(t *testing.T) {
	fx := newFixture(t)
	l := newLoader(fx.db)

	_, err := l.Fatigue(context.Background(), Filter{From: "2024-10-08"})
	assert.ErrorIs(t, err, pipeline.ErrInvalidArgument)

	_, err = l.Fatigue(context.Background(), Filter{From: "2024-10-08", To: "2024-10-01"})
	assert.ErrorIs(t, err, pipeline.ErrInvalidArgument)

	_, err = l.Fatigue(context.Background(), Filter{Days: -1})
	assert.ErrorIs(t, err, pipeline.ErrInvalidArgument)
}

func TestEmotions(t *testing.T) {
	fx := newFixture(t)

	v, err := newLoader(fx.db).Emotions(context.Background(), Filter{Days: 7})
	require.NoError(t, err)

	assert.Equal(t, 4, v.Distribution.Total)
	assert.Equal(t, "feliz", v.MostCommon)
	assert.InDelta(t, 75.0, v.PositiveShare, 1e-9)
	require.Len(t, v.ByDriver, 2)
	assert.Equal(t, "Luis", v.ByDriver[0].Group, "newest event first")
	assert.Equal(t, 1, v.Rows.TotalPages)
	assert.Len(t, v.Rows.Items, 4)
}

func TestEmotionsByDriverKeepsNamesakesApart(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	row, err := fx.db.Insert(ctx, source.TableDrivers, map[string]any{"driver_name": "Luis", "driver_email": "luis.b@flota.co"})
	require.NoError(t, err)
	other := source.DecodeDriver(row).ID
	row, err = fx.db.Insert(ctx, source.TableSessions, map[string]any{"driver_id": other})
	require.NoError(t, err)
	_, err = fx.db.Insert(ctx, source.TableEmotions, map[string]any{
		"session_id": source.DecodeSession(row).ID,
		"event_time": time.Date(2024, 10, 13, 9, 0, 0, 0, time.UTC),
		"emotion":    "calmado",
	})
	require.NoError(t, err)

	v, err := newLoader(fx.db).Emotions(ctx, Filter{Days: 7})
	require.NoError(t, err)

	require.Len(t, v.ByDriver, 3)
	byID := map[int64]model.GroupDistribution{}
	for _, g := range v.ByDriver {
		byID[g.ID] = g
	}
	assert.Equal(t, "Luis", byID[fx.luis].Group)
	assert.Equal(t, "Luis", byID[other].Group)
	assert.Equal(t, 1, byID[other].Distribution.Count("calmado"))
	assert.Zero(t, byID[fx.luis].Distribution.Count("calmado"))
}

func TestEmotionsEmptyMostCommonFallback(t *testing.T) {
	fx := newFixture(t)

	v, err := newLoader(fx.db).Emotions(context.Background(), Filter{From: "2024-01-01", To: "2024-01-02"})
	require.NoError(t, err)
	assert.Equal(t, NoEmotion, v.MostCommon)
	assert.Zero(t, v.PositiveShare)
	assert.Equal(t, StatusEmpty, v.Section.Status)
}

func TestDriverView(t *testing.T) {
	fx := newFixture(t)

	v, err := newLoader(fx.db).Driver(context.Background(), Filter{DriverID: fx.ana})
	require.NoError(t, err)

	assert.Equal(t, "Ana", v.Driver.Name)
	assert.Equal(t, 1, v.Sessions)
	assert.False(t, v.NoSessions)
	assert.Len(t, v.FatigueSeries.Counts, 30)
	assert.Equal(t, 3, v.FatigueSummary.Total)
	assert.Equal(t, 3, v.Emotions.Total)
	assert.InDelta(t, 100.0, v.PositiveShare, 1e-9)
}

func TestDriverViewNoSessionsSkipsEventQueries(t *testing.T) {
	fx := newFixture(t)
	st := &flakyStore{Store: fx.db}

	v, err := newLoader(st).Driver(context.Background(), Filter{DriverID: fx.idle})
	require.NoError(t, err)

	assert.True(t, v.NoSessions)
	assert.Equal(t, StatusEmpty, v.EmotionsSection.Status)
	assert.Equal(t, StatusEmpty, v.FatigueSection.Status)
	assert.Len(t, v.EmotionSeries.Counts, 30)
	assert.Equal(t, NoEmotion, v.MostCommon)
	assert.Zero(t, st.count(source.TableEmotions))
	assert.Zero(t, st.count(source.TableFatigueEvents))
	assert.Equal(t, 1, st.count(source.TableSessions))
}

func TestDriverViewPartialFailure(t *testing.T) {
	fx := newFixture(t)
	st := &flakyStore{Store: fx.db, fail: map[source.Table]bool{source.TableEmotions: true}}

	v, err := newLoader(st).Driver(context.Background(), Filter{DriverID: fx.ana})
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, v.EmotionsSection.Status)
	assert.Equal(t, StatusLoaded, v.FatigueSection.Status)
	assert.Equal(t, 3, v.FatigueSummary.Total)
}

func TestDriverViewSessionFailure(t *testing.T) {
	fx := newFixture(t)
	st := &flakyStore{Store: fx.db, fail: map[source.Table]bool{source.TableSessions: true}}

	v, err := newLoader(st).Driver(context.Background(), Filter{DriverID: fx.ana})
	require.NoError(t, err)
	assert.False(t, v.NoSessions)
	assert.Equal(t, StatusFailed, v.SessionsSection.Status)
	assert.Equal(t, StatusFailed, v.FatigueSection.Status)
}

func TestDriverViewErrors(t *testing.T) {
	fx := newFixture(t)
	l := newLoader(fx.db)

	_, err := l.Driver(context.Background(), Filter{DriverID: 999})
	assert.ErrorIs(t, err, ErrDriverNotFound)

	_, err = l.Driver(context.Background(), Filter{})
	assert.ErrorIs(t, err, pipeline.ErrInvalidArgument)
}

func TestRecentEventsPagination(t *testing.T) {
	fx := newFixture(t)
	l := NewLoader(fx.db, Options{PageSize: 2, Location: time.UTC, Now: func() time.Time { return testNow }})

	first, err := l.RecentEvents(context.Background(), Filter{Page: 1})
	require.NoError(t, err)
	assert.Nil(t, first.Window)
	assert.Equal(t, 3, first.Page.TotalPages)
	assert.Equal(t, 5, first.Page.TotalItems)
	require.Len(t, first.Page.Items, 2)
	assert.Equal(t, "Luis", first.Page.Items[0].DriverName)

	last, err := l.RecentEvents(context.Background(), Filter{Page: 40})
	require.NoError(t, err)
	assert.Equal(t, 3, last.Page.PageNumber)
	require.Len(t, last.Page.Items, 1)
	assert.Equal(t, "Ana", last.Page.Items[0].DriverName)

	ranged, err := l.RecentEvents(context.Background(), Filter{From: "2024-10-11", To: "2024-10-14"})
	require.NoError(t, err)
	require.NotNil(t, ranged.Window)
	assert.Equal(t, 2, ranged.Page.TotalItems)
}

func TestDriversSearch(t *testing.T) {
	fx := newFixture(t)
	l := newLoader(fx.db)

	all := l.Drivers(context.Background(), Filter{})
	require.Len(t, all.Drivers, 3)
	assert.Equal(t, "Ana", all.Drivers[0].Name)

	some := l.Drivers(context.Background(), Filter{Search: "LUIS"})
	require.Len(t, some.Drivers, 1)
	assert.Equal(t, 3, some.Total)

	none := l.Drivers(context.Background(), Filter{Search: "zzz"})
	assert.Equal(t, StatusEmpty, none.Section.Status)
	assert.NotNil(t, none.Drivers)
}

func TestTrackerLastFilterWins(t *testing.T) {
	var tr Tracker
	first := tr.Begin()
	assert.True(t, tr.Current(first))

	second := tr.Begin()
	assert.False(t, tr.Current(first))
	assert.True(t, tr.Current(second))
}

func TestAdmin(t *testing.T) {
	fx := newFixture(t)
	a := NewAdmin(fx.db, func() time.Time { return testNow })
	ctx := context.Background()

	_, err := a.CreateDriver(ctx, model.Driver{Name: "  ", Email: "x"})
	assert.ErrorIs(t, err, pipeline.ErrInvalidArgument)

	d, err := a.CreateDriver(ctx, model.Driver{Name: " Pedro ", Email: "pedro@flota.co"})
	require.NoError(t, err)
	assert.Equal(t, "Pedro", d.Name)

	d.Email = "p.ruiz@flota.co"
	updated, err := a.UpdateDriver(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, "p.ruiz@flota.co", updated.Email)

	require.NoError(t, a.DeleteDriver(ctx, d.ID))
	assert.ErrorIs(t, a.DeleteDriver(ctx, d.ID), source.ErrNotFound)

	_, err = a.FileIncident(ctx, model.IncidentReport{IncidentDate: "14/10/2024"})
	assert.ErrorIs(t, err, pipeline.ErrInvalidArgument)

	rep, err := a.FileIncident(ctx, model.IncidentReport{
		IncidentDate: "2024-10-14", IncidentTime: "07:45", Location: "Vía al Llano km 30",
		Description: "Cabeceo", DriverState: "somnoliento", DriverID: &fx.luis,
	})
	require.NoError(t, err)
	require.NotNil(t, rep.DriverID)
	assert.Equal(t, fx.luis, *rep.DriverID)
	assert.True(t, rep.CreatedAt.Equal(testNow))
}
