package model

// DayBucketSeries is a fixed-length per-day count series.
// len(Labels) == len(Counts) == window size.
type DayBucketSeries struct {
	Labels []string `json:"labels" yaml:"labels"`
	Counts []int    `json:"counts" yaml:"counts"`
}

// Total returns the sum of all bucket counts.
func (s DayBucketSeries) Total() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}

// CategoryCount is one label with its number of occurrences.
type CategoryCount struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// CategoryDistribution holds label counts in first-seen order.
type CategoryDistribution struct {
	Entries []CategoryCount `json:"entries" yaml:"entries"`
	Total   int             `json:"total" yaml:"total"`
}

// Count returns the count for the exact label, or 0.
func (d CategoryDistribution) Count(label string) int {
	for _, e := range d.Entries {
		if e.Label == label {
			return e.Count
		}
	}
	return 0
}

// GroupDistribution is a distribution for one group, e.g. a driver. ID
// identifies the group; Group is its display name and need not be unique.
type GroupDistribution struct {
	ID           int64                `json:"id" yaml:"id"`
	Group        string               `json:"group" yaml:"group"`
	Distribution CategoryDistribution `json:"distribution" yaml:"distribution"`
}

// SummaryStats holds the scalar summary of an event set.
type SummaryStats struct {
	Total         int     `json:"total" yaml:"total"`
	Mean          float64 `json:"mean" yaml:"mean"`
	CountWhere    int     `json:"count_where" yaml:"count_where"`
	PositiveShare float64 `json:"positive_share,omitempty" yaml:"positive_share,omitempty"`
}

// Page is one page of a paginated slice.
type Page[T any] struct {
	Items      []T `json:"items" yaml:"items"`
	PageNumber int `json:"page_number" yaml:"page_number"`
	TotalPages int `json:"total_pages" yaml:"total_pages"`
	TotalItems int `json:"total_items" yaml:"total_items"`
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.PageNumber > 1 }

// HasNext reports whether a next page exists.
func (p Page[T]) HasNext() bool { return p.PageNumber < p.TotalPages }
