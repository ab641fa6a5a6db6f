package view

import (
	"context"

	"github.com/safedrive-ia/safedrive/internal/model"
	"github.com/safedrive-ia/safedrive/internal/pipeline"
	"github.com/safedrive-ia/safedrive/internal/source"
)

// DriverList is the searchable driver directory.
type DriverList struct {
	Drivers []model.Driver `json:"drivers" yaml:"drivers"`
	Total   int            `json:"total" yaml:"total"`
	Section Section        `json:"section" yaml:"section"`
}

// Drivers lists drivers ordered by id, filtered by f.Search.
func (l *Loader) Drivers(ctx context.Context, f Filter) *DriverList {
	all, err := l.drivers(ctx, source.From(source.TableDrivers).Order("driver_id", true))
	matched := pipeline.SearchDrivers(all, f.Search)
	if matched == nil {
		matched = []model.Driver{}
	}
	return &DriverList{
		Drivers: matched,
		Total:   len(all),
		Section: sectionFor(err, len(matched)),
	}
}
