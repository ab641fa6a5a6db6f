package view

import (
	"context"
	"fmt"
	"time"

	"github.com/safedrive-ia/safedrive/internal/model"
	"github.com/safedrive-ia/safedrive/internal/pipeline"
	"github.com/safedrive-ia/safedrive/internal/source"
)

// Admin performs the writes behind the driver directory and incident
// reports. Input is validated before any write.
type Admin struct {
	w   source.Writer
	now func() time.Time
}

// NewAdmin returns an Admin writing through w.
func NewAdmin(w source.Writer, now func() time.Time) *Admin {
	if now == nil {
		now = time.Now
	}
	return &Admin{w: w, now: now}
}

// CreateDriver validates and inserts d.
func (a *Admin) CreateDriver(ctx context.Context, d model.Driver) (model.Driver, error) {
	if err := model.ValidateDriver(d); err != nil {
		return model.Driver{}, fmt.Errorf("%w: %v", pipeline.ErrInvalidArgument, err)
	}
	row, err := a.w.Insert(ctx, source.TableDrivers, source.DriverValues(d))
	if err != nil {
		return model.Driver{}, err
	}
	return source.DecodeDriver(row), nil
}

// UpdateDriver validates d and updates the row with d.ID.
func (a *Admin) UpdateDriver(ctx context.Context, d model.Driver) (model.Driver, error) {
	if d.ID <= 0 {
		return model.Driver{}, fmt.Errorf("%w: driver id %d", pipeline.ErrInvalidArgument, d.ID)
	}
	if err := model.ValidateDriver(d); err != nil {
		return model.Driver{}, fmt.Errorf("%w: %v", pipeline.ErrInvalidArgument, err)
	}
	row, err := a.w.Update(ctx, source.TableDrivers, d.ID, source.DriverValues(d))
	if err != nil {
		return model.Driver{}, err
	}
	return source.DecodeDriver(row), nil
}

// DeleteDriver removes the driver with id.
func (a *Admin) DeleteDriver(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: driver id %d", pipeline.ErrInvalidArgument, id)
	}
	return a.w.Delete(ctx, source.TableDrivers, id)
}

// FileIncident validates and stores r, stamping its creation time.
func (a *Admin) FileIncident(ctx context.Context, r model.IncidentReport) (model.IncidentReport, error) {
	if err := r.Validate(); err != nil {
		return model.IncidentReport{}, fmt.Errorf("%w: %v", pipeline.ErrInvalidArgument, err)
	}
	row, err := a.w.Insert(ctx, source.TableIncidentReports, source.IncidentValues(r, a.now()))
	if err != nil {
		return model.IncidentReport{}, err
	}
	return source.DecodeIncidentReport(row), nil
}
