package cmd

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/safedrive-ia/safedrive/internal/model"

	"github.com/charmbracelet/huh"
)

func formTheme() *huh.Theme {
	return huh.ThemeCharm()
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

func validateDate(s string) error {
	if _, err := time.Parse("2006-01-02", strings.TrimSpace(s)); err != nil {
		return errors.New("use YYYY-MM-DD format")
	}
	return nil
}

func validateClock(s string) error {
	if _, err := time.Parse("15:04", strings.TrimSpace(s)); err != nil {
		return errors.New("use HH:MM format")
	}
	return nil
}

func validateOptionalID(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if id, err := strconv.ParseInt(s, 10, 64); err != nil || id <= 0 {
		return errors.New("enter a positive driver id or leave blank")
	}
	return nil
}

func validateEmail(s string) error {
	if err := required("email")(s); err != nil {
		return err
	}
	if !strings.Contains(s, "@") {
		return errors.New("email is invalid")
	}
	return nil
}

// driverForm edits d in place.
func driverForm(d *model.Driver) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&d.Name).
				Validate(required("name")),
			huh.NewInput().
				Title("Email").
				Placeholder("driver@example.com").
				Value(&d.Email).
				Validate(validateEmail),
		),
	).WithTheme(formTheme()).WithShowHelp(false)
}

// incidentForm collects an incident report. driverID is the raw text of the
// optional driver id field.
func incidentForm(r *model.IncidentReport, driverID *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Date (YYYY-MM-DD)").
				Placeholder(time.Now().Format("2006-01-02")).
				Value(&r.IncidentDate).
				Validate(validateDate),
			huh.NewInput().
				Title("Time (HH:MM)").
				Placeholder(time.Now().Format("15:04")).
				Value(&r.IncidentTime).
				Validate(validateClock),
			huh.NewInput().
				Title("Location").
				Value(&r.Location).
				Validate(required("location")),
		),
		huh.NewGroup(
			huh.NewText().
				Title("Description").
				Value(&r.Description).
				Validate(required("description")),
			huh.NewInput().
				Title("Driver state").
				Placeholder("somnoliento, distraído...").
				Value(&r.DriverState).
				Validate(required("driver state")),
			huh.NewInput().
				Title("Driver ID (optional)").
				Value(driverID).
				Validate(validateOptionalID),
		),
	).WithTheme(formTheme()).WithShowHelp(false)
}

func confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(formTheme()).WithShowHelp(false).Run()
	return ok, err
}
