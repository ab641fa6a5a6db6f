package store

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/safedrive-ia/safedrive/internal/source"
)

// SeedOptions controls demo data generation.
type SeedOptions struct {
	Drivers           int
	SessionsPerDriver int
	EventsPerSession  int
	Days              int
	Now               time.Time
	Seed              uint64
}

// SeedResult reports how many rows were written.
type SeedResult struct {
	Drivers  int
	Sessions int
	Fatigue  int
	Emotions int
}

var (
	seedNames = []string{
		"Ana Torres", "Luis Gómez", "María Rojas", "Carlos Pérez", "Lucía Herrera",
		"Jorge Castillo", "Sofía Vargas", "Andrés Ramírez", "Valentina Ortiz", "Diego Morales",
	}
	seedEmotions   = []string{"feliz", "alerta", "calmado", "neutral", "triste", "enojado", "sorprendido", "Feliz"}
	seedAlertTypes = []string{"parpadeo prolongado", "bostezo", "cabeceo", "microsueño"}
)

// Seed fills the database with reproducible demo data spread over the last
// Days days before Now.
func (d *DB) Seed(ctx context.Context, opts SeedOptions) (SeedResult, error) {
	if opts.Drivers < 1 {
		opts.Drivers = 5
	}
	if opts.SessionsPerDriver < 1 {
		opts.SessionsPerDriver = 4
	}
	if opts.EventsPerSession < 1 {
		opts.EventsPerSession = 12
	}
	if opts.Days < 1 {
		opts.Days = 30
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x5afed21e))

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return SeedResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var res SeedResult
	span := time.Duration(opts.Days) * 24 * time.Hour

	for i := 0; i < opts.Drivers; i++ {
		name := seedNames[i%len(seedNames)]
		if i >= len(seedNames) {
			name = fmt.Sprintf("%s %d", name, i/len(seedNames)+1)
		}
		email := fmt.Sprintf("conductor%d@safedrive.test", i+1)

		r, err := tx.ExecContext(ctx, "INSERT INTO drivers (driver_name, driver_email, created_at) VALUES (?, ?, ?)",
			name, email, source.FormatTime(opts.Now.Add(-span-time.Duration(i)*time.Hour)))
		if err != nil {
			return res, fmt.Errorf("inserting driver: %w", err)
		}
		driverID, _ := r.LastInsertId()
		res.Drivers++

		for s := 0; s < opts.SessionsPerDriver; s++ {
			r, err := tx.ExecContext(ctx, "INSERT INTO driver_sessions (driver_id) VALUES (?)", driverID)
			if err != nil {
				return res, fmt.Errorf("inserting session: %w", err)
			}
			sessionID, _ := r.LastInsertId()
			res.Sessions++

			start := opts.Now.Add(-time.Duration(rng.Int64N(int64(span))))
			for e := 0; e < opts.EventsPerSession; e++ {
				at := start.Add(time.Duration(e) * time.Duration(1+rng.IntN(9)) * time.Minute)
				if at.After(opts.Now) {
					at = opts.Now
				}

				if rng.IntN(3) == 0 {
					eye := float64(rng.IntN(40)) / 10
					_, err := tx.ExecContext(ctx, `INSERT INTO fatigue_events
						(session_id, event_time, alert_type, eye_closed_seconds, alarm_triggered)
						VALUES (?, ?, ?, ?, ?)`,
						sessionID, source.FormatTime(at), seedAlertTypes[rng.IntN(len(seedAlertTypes))],
						eye, sqlValue(eye >= 2))
					if err != nil {
						return res, fmt.Errorf("inserting fatigue event: %w", err)
					}
					res.Fatigue++
					continue
				}

				_, err := tx.ExecContext(ctx, "INSERT INTO emotions (session_id, event_time, emotion) VALUES (?, ?, ?)",
					sessionID, source.FormatTime(at), seedEmotions[rng.IntN(len(seedEmotions))])
				if err != nil {
					return res, fmt.Errorf("inserting emotion: %w", err)
				}
				res.Emotions++
			}
		}
	}

	return res, tx.Commit()
}
