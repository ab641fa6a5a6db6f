// Package model defines domain types for drivers, sessions, and monitored events.
package model

import "time"

// Driver is a monitored driver record.
type Driver struct {
	ID        int64     `json:"driver_id" yaml:"driver_id"`
	Name      string    `json:"driver_name" yaml:"driver_name"`
	Email     string    `json:"driver_email" yaml:"driver_email"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Session links a driving session to the driver who owns it.
type Session struct {
	ID       int64
	DriverID int64
}

// FatigueEvent is a single fatigue detection emitted during a session.
type FatigueEvent struct {
	ID        int64
	SessionID int64
	EventTime time.Time
	AlertType string

	// EyeClosedSeconds is nil when the duration was missing or invalid.
	EyeClosedSeconds *float64
	AlarmTriggered   bool
}

// EmotionEvent is a single emotion classification emitted during a session.
type EmotionEvent struct {
	ID        int64
	SessionID int64
	EventTime time.Time
	Emotion   string
}

// Timestamp returns the event time.
func (e FatigueEvent) Timestamp() time.Time { return e.EventTime }

// Timestamp returns the event time.
func (e EmotionEvent) Timestamp() time.Time { return e.EventTime }
