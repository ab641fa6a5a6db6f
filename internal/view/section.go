// Package view assembles the dashboard views from event store queries.
// Every view recomputes from fresh queries; independent queries run
// concurrently and a failed query only fails its own section.
package view

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/safedrive-ia/safedrive/internal/pipeline"
)

// Status is the load state of one view section.
type Status string

// Section states. Failed is distinct from Empty.
const (
	StatusLoaded Status = "loaded"
	StatusEmpty  Status = "empty"
	StatusFailed Status = "failed"
)

// Section reports how one part of a view loaded.
type Section struct {
	Status Status `json:"status" yaml:"status"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the section has data to show.
func (s Section) OK() bool { return s.Status == StatusLoaded }

func sectionFor(err error, n int) Section {
	switch {
	case err != nil:
		return Section{Status: StatusFailed, Error: err.Error()}
	case n == 0:
		return Section{Status: StatusEmpty}
	default:
		return Section{Status: StatusLoaded}
	}
}

// WindowInfo describes the resolved date window of a view.
type WindowInfo struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
	Days int    `json:"days" yaml:"days"`
}

func windowInfo(w pipeline.Window) WindowInfo {
	return WindowInfo{
		From: w.Start.Format(pipeline.DateLayout),
		To:   w.DayStart(w.Days - 1).Format(pipeline.DateLayout),
		Days: w.Days,
	}
}

// Ticket identifies one filter state.
type Ticket uint64

// Tracker hands out tickets so that only results for the most recent
// filter state are applied.
type Tracker struct {
	gen atomic.Uint64
}

// Begin starts a new filter state and invalidates all earlier tickets.
func (t *Tracker) Begin() Ticket {
	return Ticket(t.gen.Add(1))
}

// Current reports whether k is still the latest ticket.
func (t *Tracker) Current(k Ticket) bool {
	return uint64(k) == t.gen.Load()
}

// parallel runs fns concurrently and waits for all of them.
func parallel(fns ...func()) {
	var wg sync.WaitGroup
	wg.Add(len(fns))
	for _, fn := range fns {
		go func() {
			defer wg.Done()
			fn()
		}()
	}
	wg.Wait()
}

// EventRow is a fatigue event joined with its driver.
type EventRow struct {
	ID               int64     `json:"event_id" yaml:"event_id"`
	Time             time.Time `json:"event_time" yaml:"event_time"`
	DriverID         int64     `json:"driver_id" yaml:"driver_id"`
	DriverName       string    `json:"driver_name" yaml:"driver_name"`
	AlertType        string    `json:"alert_type" yaml:"alert_type"`
	EyeClosedSeconds *float64  `json:"eye_closed_seconds" yaml:"eye_closed_seconds"`
	AlarmTriggered   bool      `json:"alarm_triggered" yaml:"alarm_triggered"`
}

// EmotionRow is an emotion event joined with its driver.
type EmotionRow struct {
	ID         int64     `json:"emotion_id" yaml:"emotion_id"`
	Time       time.Time `json:"event_time" yaml:"event_time"`
	DriverID   int64     `json:"driver_id" yaml:"driver_id"`
	DriverName string    `json:"driver_name" yaml:"driver_name"`
	Emotion    string    `json:"emotion" yaml:"emotion"`
}
