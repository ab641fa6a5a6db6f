package model

import (
	"errors"
	"strings"
	"time"
)

// IncidentReport is a manually filed incident.
type IncidentReport struct {
	ID           int64     `json:"report_id" yaml:"report_id"`
	IncidentDate string    `json:"incident_date" yaml:"incident_date"` // YYYY-MM-DD
	IncidentTime string    `json:"incident_time" yaml:"incident_time"` // HH:MM
	Location     string    `json:"location" yaml:"location"`
	Description  string    `json:"description" yaml:"description"`
	DriverState  string    `json:"driver_state" yaml:"driver_state"`
	DriverID     *int64    `json:"driver_id" yaml:"driver_id"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

// Validate checks the required report fields.
func (r IncidentReport) Validate() error {
	var errs []error
	if _, err := time.Parse("2006-01-02", r.IncidentDate); err != nil {
		errs = append(errs, errors.New("incident date must be YYYY-MM-DD"))
	}
	if _, err := time.Parse("15:04", r.IncidentTime); err != nil {
		errs = append(errs, errors.New("incident time must be HH:MM"))
	}
	if strings.TrimSpace(r.Location) == "" {
		errs = append(errs, errors.New("location is required"))
	}
	if strings.TrimSpace(r.Description) == "" {
		errs = append(errs, errors.New("description is required"))
	}
	if strings.TrimSpace(r.DriverState) == "" {
		errs = append(errs, errors.New("driver state is required"))
	}
	if r.DriverID != nil && *r.DriverID <= 0 {
		errs = append(errs, errors.New("driver id must be positive"))
	}
	return errors.Join(errs...)
}

// ValidateDriver checks the fields required to save a driver.
func ValidateDriver(d Driver) error {
	var errs []error
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	email := strings.TrimSpace(d.Email)
	if email == "" {
		errs = append(errs, errors.New("email is required"))
	} else if !strings.Contains(email, "@") {
		errs = append(errs, errors.New("email is invalid"))
	}
	return errors.Join(errs...)
}
