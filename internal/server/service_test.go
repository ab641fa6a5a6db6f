package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safedrive-ia/safedrive/internal/source"
	"github.com/safedrive-ia/safedrive/internal/store"
	"github.com/safedrive-ia/safedrive/internal/view"
)

var testNow = time.Date(2024, 10, 14, 15, 0, 0, 0, time.UTC)

type testEnv struct {
	db      *store.DB
	svc     *Service
	handler http.Handler
	session int64
}

func setup(t *testing.T, writable bool) *testEnv {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	row, err := db.Insert(ctx, source.TableDrivers, map[string]any{"driver_name": "Ana", "driver_email": "ana@flota.co"})
	require.NoError(t, err)
	row, err = db.Insert(ctx, source.TableSessions, map[string]any{"driver_id": source.DecodeDriver(row).ID})
	require.NoError(t, err)
	env := &testEnv{db: db, session: source.DecodeSession(row).ID}

	env.addFatigue(t, time.Date(2024, 10, 12, 8, 0, 0, 0, time.UTC))
	env.addFatigue(t, time.Date(2024, 10, 13, 9, 0, 0, 0, time.UTC))
	_, err = db.Insert(ctx, source.TableEmotions, map[string]any{
		"session_id": env.session, "event_time": time.Date(2024, 10, 13, 10, 0, 0, 0, time.UTC), "emotion": "feliz",
	})
	require.NoError(t, err)

	loader := view.NewLoader(db, view.Options{
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	})
	var admin *view.Admin
	if writable {
		admin = view.NewAdmin(db, func() time.Time { return testNow })
	}
	env.svc = New(Config{EventsBuffer: 10}, loader, admin, nil)
	env.handler = env.svc.Handler()
	return env
}

func (e *testEnv) addFatigue(t *testing.T, at time.Time) {
	t.Helper()
	_, err := e.db.Insert(context.Background(), source.TableFatigueEvents, map[string]any{
		"session_id": e.session, "event_time": at, "alert_type": "bostezo",
		"eye_closed_seconds": 1.5, "alarm_triggered": true,
	})
	require.NoError(t, err)
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{Drivers: 3, FatigueEvents: 10, Emotions: 40}
	curr := Snapshot{Drivers: 4, FatigueEvents: 12, Emotions: 40}

	delta := diffSnapshots(prev, curr)
	assert.Equal(t, Delta{Drivers: 1, FatigueEvents: 2, Emotions: 0}, delta)
	assert.False(t, delta.isZero())
	assert.True(t, diffSnapshots(curr, curr).isZero())
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{Interval: 10 * time.Second, EventsBuffer: 2}, nil, nil, nil)

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	require.Len(t, s.events, 2)
	assert.Equal(t, int64(2), s.events[0].ID)
	assert.Equal(t, int64(3), s.events[1].ID)
}

func TestHealthz(t *testing.T) {
	env := setup(t, false)
	w := env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok\n", w.Body.String())
}

func TestDashboardRoute(t *testing.T) {
	env := setup(t, false)
	w := env.do(t, http.MethodGet, "/api/v1/dashboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	d := decode[view.Dashboard](t, w)
	assert.Equal(t, 2, d.FatigueTotal)
	assert.Equal(t, 1, d.EmotionTotal)
	assert.Equal(t, 1, d.DriverCount)
	assert.Equal(t, []int{0, 0, 0, 0, 1, 1, 0}, d.Fatigue.Counts)
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := setup(t, false)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestFilteredRoutes(t *testing.T) {
	env := setup(t, false)

	w := env.do(t, http.MethodGet, "/api/v1/fatigue?from=2024-10-12&to=2024-10-12", "")
	require.Equal(t, http.StatusOK, w.Code)
	f := decode[view.Fatigue](t, w)
	assert.Equal(t, view.WindowInfo{From: "2024-10-12", To: "2024-10-12", Days: 1}, f.Window)
	assert.Equal(t, 1, f.Summary.Total)
	require.Len(t, f.Events, 1)
	assert.Equal(t, "Ana", f.Events[0].DriverName)

	w = env.do(t, http.MethodGet, "/api/v1/emotions?days=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	em := decode[view.Emotions](t, w)
	assert.Equal(t, 3, em.Window.Days)
	assert.Equal(t, "feliz", em.MostCommon)

	w = env.do(t, http.MethodGet, "/api/v1/drivers?q=ANA", "")
	require.Equal(t, http.StatusOK, w.Code)
	l := decode[view.DriverList](t, w)
	require.Len(t, l.Drivers, 1)
	assert.Equal(t, "ana@flota.co", l.Drivers[0].Email)

	w = env.do(t, http.MethodGet, "/api/v1/drivers/"+strconv.FormatInt(l.Drivers[0].ID, 10), "")
	require.Equal(t, http.StatusOK, w.Code)
	dd := decode[view.DriverDetail](t, w)
	assert.Equal(t, 1, dd.Sessions)
	assert.Equal(t, 2, dd.FatigueSummary.Total)

	w = env.do(t, http.MethodGet, "/api/v1/events?page=9", "")
	require.Equal(t, http.StatusOK, w.Code)
	ev := decode[view.RecentEvents](t, w)
	assert.Equal(t, 1, ev.Page.PageNumber, "page clamps to the last page")
	assert.Len(t, ev.Page.Items, 2)
}

func TestInvalidArguments(t *testing.T) {
	env := setup(t, false)

	tests := []struct {
		target string
		want   int
	}{
		{"/api/v1/fatigue?days=abc", http.StatusBadRequest},
		{"/api/v1/fatigue?days=0", http.StatusBadRequest},
		{"/api/v1/fatigue?days=2000000000", http.StatusBadRequest},
		{"/api/v1/events?from=1900-01-01&to=2200-01-01", http.StatusBadRequest},
		{"/api/v1/fatigue?from=2024-10-10", http.StatusBadRequest},
		{"/api/v1/emotions?from=2024-10-10&to=2024-10-01", http.StatusBadRequest},
		{"/api/v1/emotions?from=10/01/2024&to=2024-10-10", http.StatusBadRequest},
		{"/api/v1/events?page=two", http.StatusBadRequest},
		{"/api/v1/drivers/abc", http.StatusBadRequest},
		{"/api/v1/drivers/0", http.StatusBadRequest},
		{"/api/v1/drivers/999", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := env.do(t, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.want, w.Code)
			body := decode[map[string]string](t, w)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestPollOncePublishesActivity(t *testing.T) {
	env := setup(t, false)
	ctx := context.Background()

	env.svc.pollOnce(ctx)
	st := env.svc.snapshotStatus()
	assert.Equal(t, int64(1), st.PollCount)
	assert.Equal(t, 1, st.EventCount)
	assert.Equal(t, 2, st.Summary.FatigueEvents)
	assert.Empty(t, st.LastError)

	// Nothing changed: no new event.
	env.svc.pollOnce(ctx)
	assert.Equal(t, 1, env.svc.snapshotStatus().EventCount)

	env.addFatigue(t, time.Date(2024, 10, 14, 12, 0, 0, 0, time.UTC))
	env.svc.pollOnce(ctx)

	w := env.do(t, http.MethodGet, "/api/v1/feed", "")
	require.Equal(t, http.StatusOK, w.Code)
	events := decode[[]Event](t, w)
	require.Len(t, events, 2)
	assert.Equal(t, "snapshot", events[0].Type)
	assert.Equal(t, "activity", events[1].Type)
	assert.Equal(t, Delta{FatigueEvents: 1}, events[1].Delta)
	require.Len(t, events[1].Alerts, 1)
	assert.Equal(t, "Ana", events[1].Alerts[0].DriverName)
}

func TestWriteRoutes(t *testing.T) {
	env := setup(t, true)

	w := env.do(t, http.MethodPost, "/api/v1/drivers", `{"driver_name":"Eva","driver_email":"eva@flota.co"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	id := int64(created["driver_id"].(float64))
	assert.Equal(t, "Eva", created["driver_name"])

	w = env.do(t, http.MethodPost, "/api/v1/drivers", `{"driver_name":"Eva","driver_email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/drivers", `{"name":"Eva"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "unknown fields are rejected")

	path := "/api/v1/drivers/" + strconv.FormatInt(id, 10)
	w = env.do(t, http.MethodPut, path, `{"driver_name":"Eva R.","driver_email":"eva@flota.co"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Eva R.", decode[map[string]any](t, w)["driver_name"])

	w = env.do(t, http.MethodPost, "/api/v1/incidents", `{
		"incident_date": "2024-10-14", "incident_time": "07:45", "location": "Km 12",
		"description": "Frenado brusco", "driver_state": "somnoliento", "driver_id": `+strconv.FormatInt(id, 10)+`}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/v1/incidents", `{"incident_date": "14/10/2024"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWriteRoutesNeedAdmin(t *testing.T) {
	env := setup(t, false)
	w := env.do(t, http.MethodPost, "/api/v1/drivers", `{"driver_name":"Eva","driver_email":"eva@flota.co"}`)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
