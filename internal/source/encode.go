package source

import (
	"strings"
	"time"

	"github.com/safedrive-ia/safedrive/internal/model"
)

// DriverValues returns the writable columns of d.
func DriverValues(d model.Driver) map[string]any {
	return map[string]any{
		"driver_name":  strings.TrimSpace(d.Name),
		"driver_email": strings.TrimSpace(d.Email),
	}
}

// IncidentValues returns the writable columns of r. created is stamped as
// the creation time.
func IncidentValues(r model.IncidentReport, created time.Time) map[string]any {
	v := map[string]any{
		"incident_date": r.IncidentDate,
		"incident_time": r.IncidentTime,
		"location":      strings.TrimSpace(r.Location),
		"description":   strings.TrimSpace(r.Description),
		"driver_state":  strings.TrimSpace(r.DriverState),
		"driver_id":     nil,
		"created_at":    FormatTime(created),
	}
	if r.DriverID != nil {
		v["driver_id"] = *r.DriverID
	}
	return v
}
