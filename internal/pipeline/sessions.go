package pipeline

import (
	"context"
	"strings"

	"github.com/safedrive-ia/safedrive/internal/model"
	"github.com/safedrive-ia/safedrive/internal/source"
)

// ResolveSessions returns the session ids owned by driverID. A driver with
// no sessions yields an empty slice and no error.
func ResolveSessions(ctx context.Context, st source.Store, driverID int64) ([]int64, error) {
	rows, err := st.Query(ctx, source.From(source.TableSessions).
		Select("session_id", "driver_id").
		Eq("driver_id", driverID).
		Order("session_id", true))
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, source.DecodeSession(r).ID)
	}
	return ids, nil
}

// UnknownDriver is shown for events whose session has no known driver.
const UnknownDriver = "Desconocido"

// DriverIndex maps sessions to their owning drivers.
type DriverIndex struct {
	owner   map[int64]int64
	drivers map[int64]model.Driver
}

// NewDriverIndex builds an index from driver and session rows.
func NewDriverIndex(drivers []model.Driver, sessions []model.Session) DriverIndex {
	x := DriverIndex{
		owner:   make(map[int64]int64, len(sessions)),
		drivers: make(map[int64]model.Driver, len(drivers)),
	}
	for _, d := range drivers {
		x.drivers[d.ID] = d
	}
	for _, s := range sessions {
		x.owner[s.ID] = s.DriverID
	}
	return x
}

// Driver returns the driver owning sessionID.
func (x DriverIndex) Driver(sessionID int64) (model.Driver, bool) {
	id, ok := x.owner[sessionID]
	if !ok {
		return model.Driver{}, false
	}
	d, ok := x.drivers[id]
	return d, ok
}

// DriverName returns the owning driver's name or UnknownDriver.
func (x DriverIndex) DriverName(sessionID int64) string {
	if d, ok := x.Driver(sessionID); ok {
		return d.Name
	}
	return UnknownDriver
}

// DriverID returns the owning driver id, or 0.
func (x DriverIndex) DriverID(sessionID int64) int64 {
	return x.owner[sessionID]
}

// SearchDrivers returns drivers whose name or email contains q,
// case-insensitively. An empty query returns all drivers.
func SearchDrivers(drivers []model.Driver, q string) []model.Driver {
	q = strings.TrimSpace(q)
	if q == "" {
		return drivers
	}
	var out []model.Driver
	for _, d := range drivers {
		if containsIgnoreCase(d.Name, q) || containsIgnoreCase(d.Email, q) {
			out = append(out, d)
		}
	}
	return out
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
