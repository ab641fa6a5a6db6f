// Package server provides the HTTP JSON API over the view loaders and a
// polled activity feed with server-sent events.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/safedrive-ia/safedrive/internal/view"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	Interval     time.Duration
	EventsBuffer int
}

// Snapshot is the compact fleet state carried by status and feed payloads.
type Snapshot struct {
	At            time.Time       `json:"at"`
	Window        view.WindowInfo `json:"window"`
	Drivers       int             `json:"drivers"`
	FatigueEvents int             `json:"fatigue_events"`
	Emotions      int             `json:"emotions"`
	PositiveShare float64         `json:"positive_share"`
	LatestAlertID int64           `json:"latest_alert_id"`
}

// Delta captures snapshot changes between polls.
type Delta struct {
	Drivers       int `json:"drivers"`
	FatigueEvents int `json:"fatigue_events"`
	Emotions      int `json:"emotions"`
}

func (d Delta) isZero() bool {
	return d.Drivers == 0 && d.FatigueEvents == 0 && d.Emotions == 0
}

// Event is emitted whenever the fleet snapshot changes.
type Event struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Snapshot  Snapshot        `json:"snapshot"`
	Delta     Delta           `json:"delta"`
	Alerts    []view.EventRow `json:"alerts,omitempty"`
}

// Status is served at /api/v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service serves the API and polls the dashboard for the activity feed.
type Service struct {
	cfg    Config
	loader *view.Loader
	admin  *view.Admin
	log    *slog.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a service reading through loader. Write routes are only
// registered when admin is non-nil.
func New(cfg Config, loader *view.Loader, admin *view.Admin, log *slog.Logger) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 15 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8790"
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Service{
		cfg:       cfg,
		loader:    loader,
		admin:     admin,
		log:       log,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run serves HTTP and polls until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("http server: %w", err)
		}
	}
}

// pollOnce loads the dashboard and publishes a feed event when the counts
// changed. A poll with a failed section keeps the previous snapshot.
func (s *Service) pollOnce(ctx context.Context) {
	now := time.Now()
	d, err := s.loader.Dashboard(ctx)
	if err == nil {
		err = sectionErrors(d)
	}
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn("poll failed", "error", err)
		return
	}

	snap := snapshotFromDashboard(d, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "snapshot", Timestamp: now, Snapshot: snap}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() || snap.LatestAlertID != prev.LatestAlertID {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "activity",
			Timestamp: now,
			Snapshot:  snap,
			Delta:     delta,
			Alerts:    newAlerts(d.Recent, prev.LatestAlertID),
		}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.log.Debug("feed event", "type", ev.Type, "fatigue_delta", ev.Delta.FatigueEvents, "emotion_delta", ev.Delta.Emotions)
		s.publishEvent(ev)
	}
}

func sectionErrors(d *view.Dashboard) error {
	var msgs []string
	for _, sec := range []struct {
		name string
		view.Section
	}{
		{"drivers", d.DriversSection},
		{"fatigue", d.FatigueSection},
		{"emotions", d.EmotionsSection},
	} {
		if sec.Status == view.StatusFailed {
			msgs = append(msgs, sec.name+": "+sec.Error)
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(msgs, "; "))
}

func snapshotFromDashboard(d *view.Dashboard, at time.Time) Snapshot {
	snap := Snapshot{
		At:            at,
		Window:        d.Window,
		Drivers:       d.DriverCount,
		FatigueEvents: d.FatigueTotal,
		Emotions:      d.EmotionTotal,
		PositiveShare: d.PositiveShare,
	}
	for _, r := range d.Recent {
		snap.LatestAlertID = max(snap.LatestAlertID, r.ID)
	}
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Drivers:       curr.Drivers - prev.Drivers,
		FatigueEvents: curr.FatigueEvents - prev.FatigueEvents,
		Emotions:      curr.Emotions - prev.Emotions,
	}
}

// newAlerts returns the recent alerts newer than the last seen id.
func newAlerts(recent []view.EventRow, lastSeen int64) []view.EventRow {
	var out []view.EventRow
	for _, r := range recent {
		if r.ID > lastSeen {
			out = append(out, r)
		}
	}
	return out
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
