package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safedrive-ia/safedrive/internal/source"
	"github.com/safedrive-ia/safedrive/internal/store"
	"github.com/safedrive-ia/safedrive/internal/view"
)

var testNow = time.Date(2024, 10, 14, 15, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, cfg Config) App {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "tui.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	row, err := db.Insert(ctx, source.TableDrivers, map[string]any{"driver_name": "Ana", "driver_email": "ana@flota.co"})
	require.NoError(t, err)
	_, err = db.Insert(ctx, source.TableDrivers, map[string]any{"driver_name": "Luis", "driver_email": "luis@flota.co"})
	require.NoError(t, err)
	row, err = db.Insert(ctx, source.TableSessions, map[string]any{"driver_id": source.DecodeDriver(row).ID})
	require.NoError(t, err)
	session := source.DecodeSession(row).ID

	for _, at := range []time.Time{
		time.Date(2024, 10, 12, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 10, 13, 9, 0, 0, 0, time.UTC),
	} {
		_, err = db.Insert(ctx, source.TableFatigueEvents, map[string]any{
			"session_id": session, "event_time": at, "alert_type": "bostezo",
			"eye_closed_seconds": 1.2, "alarm_triggered": false,
		})
		require.NoError(t, err)
	}
	_, err = db.Insert(ctx, source.TableEmotions, map[string]any{
		"session_id": session, "event_time": time.Date(2024, 10, 13, 10, 0, 0, 0, time.UTC), "emotion": "feliz",
	})
	require.NoError(t, err)

	cfg.Loader = view.NewLoader(db, view.Options{
		PageSize: 1,
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	})
	return NewApp(cfg)
}

// send runs one Update and returns the resulting App.
func send(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	next, ok := m.(App)
	require.True(t, ok)
	return next, cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// load runs the current load synchronously and applies it.
func load(t *testing.T, a App) App {
	t.Helper()
	a, _ = send(t, a, a.loadCmd()())
	return a
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	a := newTestApp(t, Config{})
	stale := a.loadCmd()()

	// A newer filter state supersedes the first request.
	a, cmd := send(t, a, key("+"))
	require.NotNil(t, cmd)

	a, _ = send(t, a, stale)
	assert.Nil(t, a.dashboard, "stale result must not be applied")
	assert.True(t, a.loading)

	a = load(t, a)
	require.NotNil(t, a.dashboard)
	assert.False(t, a.loading)
	assert.Equal(t, 2, a.dashboard.FatigueTotal)
	assert.Equal(t, 2, a.dashboard.DriverCount)
}

func TestCycleDays(t *testing.T) {
	a := newTestApp(t, Config{})
	require.Equal(t, 30, a.filter.Days)

	steps := []struct {
		key    string
		days   int
		reload bool
	}{
		{"+", 90, true},
		{"+", 90, false},
		{"-", 30, true},
		{"-", 7, true},
		{"-", 7, false},
	}
	for _, s := range steps {
		var cmd tea.Cmd
		a, cmd = send(t, a, key(s.key))
		assert.Equal(t, s.days, a.filter.Days)
		assert.Equal(t, s.reload, cmd != nil, "key %s to %d days", s.key, s.days)
	}
}

func TestCycleDaysDropsExplicitRange(t *testing.T) {
	a := newTestApp(t, Config{Filter: view.Filter{From: "2024-10-01", To: "2024-10-14"}})
	a, _ = send(t, a, key("-"))
	assert.False(t, a.filter.HasRange())
	assert.Equal(t, 7, a.filter.Days)
}

func TestDriverSearchAndDetail(t *testing.T) {
	a := newTestApp(t, Config{})

	a, _ = send(t, a, key("/"))
	require.True(t, a.searching)
	assert.Equal(t, tabDrivers, a.activeTab)

	a, _ = send(t, a, key("ANA"))
	a, cmd := send(t, a, key("enter"))
	require.NotNil(t, cmd)
	assert.False(t, a.searching)
	assert.Equal(t, "ANA", a.filter.Search)

	a = load(t, a)
	require.NotNil(t, a.drivers)
	require.Len(t, a.drivers.Drivers, 1)
	assert.Equal(t, "Ana", a.drivers.Drivers[0].Name)

	a, _ = send(t, a, key("enter"))
	require.True(t, a.detail)
	a = load(t, a)
	require.NotNil(t, a.driver)
	assert.Equal(t, 1, a.driver.Sessions)
	assert.Equal(t, 2, a.driver.FatigueSummary.Total)
	assert.Equal(t, "feliz", a.driver.MostCommon)

	a, _ = send(t, a, key("esc"))
	assert.False(t, a.detail)
	a, _ = send(t, a, key("esc"))
	assert.Empty(t, a.filter.Search, "second esc clears the search")
}

func TestDriverCursorStaysInRange(t *testing.T) {
	a := newTestApp(t, Config{})
	a, _ = send(t, a, key("i"))
	a = load(t, a)
	require.Len(t, a.drivers.Drivers, 2)

	for range 5 {
		a, _ = send(t, a, key("j"))
	}
	assert.Equal(t, 1, a.cursor)
	for range 5 {
		a, _ = send(t, a, key("k"))
	}
	assert.Equal(t, 0, a.cursor)
}

func TestEventPaging(t *testing.T) {
	a := newTestApp(t, Config{})
	a, _ = send(t, a, key("v"))
	require.Equal(t, tabEvents, a.activeTab)
	a = load(t, a)
	require.NotNil(t, a.events)
	assert.Equal(t, 1, a.events.Page.PageNumber)
	assert.Equal(t, 2, a.events.Page.TotalPages)

	a, cmd := send(t, a, key("n"))
	require.NotNil(t, cmd)
	a = load(t, a)
	assert.Equal(t, 2, a.events.Page.PageNumber)

	_, cmd = send(t, a, key("n"))
	assert.Nil(t, cmd, "no page after the last")
}

func TestLoadErrorIsShown(t *testing.T) {
	a := newTestApp(t, Config{Filter: view.Filter{From: "2024-10-10"}})
	a, _ = send(t, a, tea.WindowSizeMsg{Width: 120, Height: 40})
	a, _ = send(t, a, key("f"))
	a = load(t, a)

	require.Error(t, a.loadErr)
	assert.Contains(t, a.View(), "Could not load fatigue")
}

func TestDatabaseChangeReloads(t *testing.T) {
	changes := make(chan struct{}, 1)
	a := newTestApp(t, Config{Changes: changes})
	a = load(t, a)
	require.False(t, a.loading)
	before := a.ticket

	a, cmd := send(t, a, dbChangedMsg{})
	assert.NotNil(t, cmd)
	assert.True(t, a.loading)
	assert.NotEqual(t, before, a.ticket)
}

func TestRefreshTick(t *testing.T) {
	a := newTestApp(t, Config{AutoRefresh: false})
	a = load(t, a)
	_, cmd := send(t, a, refreshTickMsg{})
	assert.Nil(t, cmd, "disabled auto-refresh ignores ticks")

	a = newTestApp(t, Config{AutoRefresh: true, RefreshInterval: time.Minute})
	a = load(t, a)
	a, cmd = send(t, a, refreshTickMsg{})
	assert.NotNil(t, cmd)
	assert.True(t, a.loading)
}

func TestTabAtX(t *testing.T) {
	a := App{}
	// "Dashboard" plus one column of padding each side, then a separator.
	assert.Equal(t, 0, a.tabAtX(5))
	assert.Equal(t, -1, a.tabAtX(11))
	assert.Equal(t, 1, a.tabAtX(13))
	assert.Equal(t, -1, a.tabAtX(1000))
}

func TestViewRendersEveryTab(t *testing.T) {
	a := newTestApp(t, Config{})
	a, _ = send(t, a, tea.WindowSizeMsg{Width: 140, Height: 50})
	for _, k := range []string{"d", "f", "e", "i", "v"} {
		a, _ = send(t, a, key(k))
		a = load(t, a)
		out := a.View()
		assert.NotEmpty(t, out)
		lines := strings.Split(out, "\n")
		assert.Len(t, lines, 50, "tab %s fills the terminal height", k)
	}
}
