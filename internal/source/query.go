// Package source defines the event store contract: filtered table queries,
// row decoding, and a PostgREST-compatible HTTP adapter.
package source

import (
	"fmt"
	"slices"
	"time"
)

// Table names a queryable table.
type Table string

// Known tables.
const (
	TableDrivers         Table = "drivers"
	TableSessions        Table = "driver_sessions"
	TableFatigueEvents   Table = "fatigue_events"
	TableEmotions        Table = "emotions"
	TableIncidentReports Table = "incident_reports"
)

// TimeLayout is the wire and storage layout for timestamps. Values are
// always UTC so that lexical order equals time order.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

var tableColumns = map[Table][]string{
	TableDrivers:         {"driver_id", "driver_name", "driver_email", "created_at"},
	TableSessions:        {"session_id", "driver_id"},
	TableFatigueEvents:   {"event_id", "session_id", "event_time", "alert_type", "eye_closed_seconds", "alarm_triggered"},
	TableEmotions:        {"emotion_id", "session_id", "event_time", "emotion"},
	TableIncidentReports: {"report_id", "incident_date", "incident_time", "location", "description", "driver_state", "driver_id", "created_at"},
}

// Columns returns the known columns of t, or nil for an unknown table.
func Columns(t Table) []string {
	return tableColumns[t]
}

// PrimaryKey returns the id column of t.
func PrimaryKey(t Table) string {
	if cols := tableColumns[t]; len(cols) > 0 {
		return cols[0]
	}
	return ""
}

// Op is a filter operator.
type Op string

// Filter operators.
const (
	OpEq  Op = "eq"
	OpIn  Op = "in"
	OpGte Op = "gte"
	OpLte Op = "lte"
)

// Filter is a single column predicate.
type Filter struct {
	Column string
	Op     Op
	Values []any
}

// Order is a sort key.
type Order struct {
	Column    string
	Ascending bool
}

// Query selects rows from one table. Build it with From and the chained
// methods; each method returns a modified copy.
type Query struct {
	Table   Table
	Columns []string
	Filters []Filter
	Orders  []Order
	Limit   int
}

// From starts a query against table t selecting all columns.
func From(t Table) Query {
	return Query{Table: t}
}

// Select restricts the returned columns.
func (q Query) Select(cols ...string) Query {
	q.Columns = append(slices.Clip(q.Columns), cols...)
	return q
}

// Eq adds column = v.
func (q Query) Eq(col string, v any) Query {
	return q.with(Filter{Column: col, Op: OpEq, Values: []any{v}})
}

// In adds column IN (values...). An empty value list matches nothing.
func (q Query) In(col string, values ...any) Query {
	return q.with(Filter{Column: col, Op: OpIn, Values: values})
}

// InIDs is In for integer ids.
func (q Query) InIDs(col string, ids []int64) Query {
	vals := make([]any, len(ids))
	for i, id := range ids {
		vals[i] = id
	}
	return q.In(col, vals...)
}

// Gte adds column >= t.
func (q Query) Gte(col string, t time.Time) Query {
	return q.with(Filter{Column: col, Op: OpGte, Values: []any{t}})
}

// Lte adds column <= t.
func (q Query) Lte(col string, t time.Time) Query {
	return q.with(Filter{Column: col, Op: OpLte, Values: []any{t}})
}

// Order appends a sort key.
func (q Query) Order(col string, ascending bool) Query {
	q.Orders = append(slices.Clip(q.Orders), Order{Column: col, Ascending: ascending})
	return q
}

// WithLimit caps the number of returned rows. Zero means no limit.
func (q Query) WithLimit(n int) Query {
	q.Limit = n
	return q
}

func (q Query) with(f Filter) Query {
	q.Filters = append(slices.Clip(q.Filters), f)
	return q
}

// MatchesNothing reports whether the query has an empty In filter and can
// be answered without touching the backend.
func (q Query) MatchesNothing() bool {
	for _, f := range q.Filters {
		if f.Op == OpIn && len(f.Values) == 0 {
			return true
		}
	}
	return false
}

// Validate checks the table and every referenced column.
func (q Query) Validate() error {
	cols, ok := tableColumns[q.Table]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTable, q.Table)
	}
	check := func(c string) error {
		if !slices.Contains(cols, c) {
			return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, q.Table, c)
		}
		return nil
	}
	for _, c := range q.Columns {
		if err := check(c); err != nil {
			return err
		}
	}
	for _, f := range q.Filters {
		if err := check(f.Column); err != nil {
			return err
		}
		if f.Op != OpIn && len(f.Values) != 1 {
			return fmt.Errorf("%w: %s filter on %s needs one value", ErrInvalidQuery, f.Op, f.Column)
		}
	}
	for _, o := range q.Orders {
		if err := check(o.Column); err != nil {
			return err
		}
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: negative limit", ErrInvalidQuery)
	}
	return nil
}

// SelectedColumns returns the explicit column list or every known column.
func (q Query) SelectedColumns() []string {
	if len(q.Columns) > 0 {
		return q.Columns
	}
	return tableColumns[q.Table]
}

// FormatValue renders a filter value the way both adapters expect it.
func FormatValue(v any) string {
	switch x := v.(type) {
	case time.Time:
		return FormatTime(x)
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(x)
	}
}
