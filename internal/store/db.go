// Package store provides a SQLite-backed event store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/safedrive-ia/safedrive/internal/source"

	_ "modernc.org/sqlite" // register sqlite driver
)

// DB is a local event store. It implements source.Backend.
type DB struct {
	db   *sql.DB
	path string
}

var _ source.Backend = (*DB)(nil)

// Open opens or creates the database at the given path.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db, path: dbPath}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

// Query runs q and returns each row as a JSON object.
func (d *DB) Query(ctx context.Context, q source.Query) ([]source.Row, error) {
	if err := q.Validate(); err != nil {
		return nil, source.Fail(q.Table, err)
	}
	if q.MatchesNothing() {
		return nil, nil
	}

	stmt, args, err := buildSelect(q)
	if err != nil {
		return nil, source.Fail(q.Table, err)
	}

	rows, err := d.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, source.Fail(q.Table, err)
	}
	defer func() { _ = rows.Close() }()

	var out []source.Row
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, source.Fail(q.Table, err)
		}
		out = append(out, source.Row(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, source.Fail(q.Table, err)
	}
	return out, nil
}

// Insert creates a row and returns it.
func (d *DB) Insert(ctx context.Context, t source.Table, values map[string]any) (source.Row, error) {
	cols, err := writableColumns(t, values)
	if err != nil {
		return nil, source.Fail(t, err)
	}

	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = sqlValue(values[c])
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		t, strings.Join(cols, ", "), placeholders(len(cols)), jsonObject(source.Columns(t)))

	var raw string
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&raw); err != nil {
		return nil, source.Fail(t, err)
	}
	return source.Row(raw), nil
}

// Update sets the given columns on the row with primary key id.
func (d *DB) Update(ctx context.Context, t source.Table, id int64, values map[string]any) (source.Row, error) {
	cols, err := writableColumns(t, values)
	if err != nil {
		return nil, source.Fail(t, err)
	}

	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		sets[i] = c + " = ?"
		args = append(args, sqlValue(values[c]))
	}
	args = append(args, id)
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ? RETURNING %s",
		t, strings.Join(sets, ", "), source.PrimaryKey(t), jsonObject(source.Columns(t)))

	var raw string
	err = d.db.QueryRowContext(ctx, stmt, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, source.Fail(t, source.ErrNotFound)
	}
	if err != nil {
		return nil, source.Fail(t, err)
	}
	return source.Row(raw), nil
}

// Delete removes the row with primary key id.
func (d *DB) Delete(ctx context.Context, t source.Table, id int64) error {
	if source.Columns(t) == nil {
		return source.Fail(t, fmt.Errorf("%w: %q", source.ErrUnknownTable, t))
	}
	res, err := d.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = ?", t, source.PrimaryKey(t)), id)
	if err != nil {
		return source.Fail(t, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return source.Fail(t, err)
	}
	if n == 0 {
		return source.Fail(t, source.ErrNotFound)
	}
	return nil
}

// Count returns the number of rows in t.
func (d *DB) Count(ctx context.Context, t source.Table) (int, error) {
	if source.Columns(t) == nil {
		return 0, fmt.Errorf("%w: %q", source.ErrUnknownTable, t)
	}
	var n int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+string(t)).Scan(&n)
	return n, err
}

func buildSelect(q source.Query) (string, []any, error) {
	var b strings.Builder
	var args []any

	b.WriteString("SELECT ")
	b.WriteString(jsonObject(q.SelectedColumns()))
	b.WriteString(" FROM ")
	b.WriteString(string(q.Table))

	for i, f := range q.Filters {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		switch f.Op {
		case source.OpEq:
			b.WriteString(f.Column + " = ?")
			args = append(args, sqlValue(f.Values[0]))
		case source.OpGte:
			b.WriteString(f.Column + " >= ?")
			args = append(args, sqlValue(f.Values[0]))
		case source.OpLte:
			b.WriteString(f.Column + " <= ?")
			args = append(args, sqlValue(f.Values[0]))
		case source.OpIn:
			// One JSON array bind keeps large id sets under the variable limit.
			vals := make([]any, len(f.Values))
			for j, v := range f.Values {
				vals[j] = sqlValue(v)
			}
			data, err := json.Marshal(vals)
			if err != nil {
				return "", nil, fmt.Errorf("encoding in-list: %w", err)
			}
			b.WriteString(f.Column + " IN (SELECT value FROM json_each(?))")
			args = append(args, string(data))
		default:
			return "", nil, fmt.Errorf("%w: operator %q", source.ErrInvalidQuery, f.Op)
		}
	}

	pk := source.PrimaryKey(q.Table)
	orders := slices.Clone(q.Orders)
	if !slices.ContainsFunc(orders, func(o source.Order) bool { return o.Column == pk }) {
		asc := len(orders) == 0 || orders[len(orders)-1].Ascending
		orders = append(orders, source.Order{Column: pk, Ascending: asc})
	}
	b.WriteString(" ORDER BY ")
	for i, o := range orders {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(o.Column)
		if o.Ascending {
			b.WriteString(" ASC")
		} else {
			b.WriteString(" DESC")
		}
	}

	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}
	return b.String(), args, nil
}

func jsonObject(cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = "'" + c + "', " + c
	}
	return "json_object(" + strings.Join(parts, ", ") + ")"
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// writableColumns returns the sorted column names of values, rejecting
// unknown columns and the primary key.
func writableColumns(t source.Table, values map[string]any) ([]string, error) {
	known := source.Columns(t)
	if known == nil {
		return nil, fmt.Errorf("%w: %q", source.ErrUnknownTable, t)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no values", source.ErrInvalidQuery)
	}
	cols := make([]string, 0, len(values))
	for c := range values {
		if c == source.PrimaryKey(t) || !slices.Contains(known, c) {
			return nil, fmt.Errorf("%w: %s.%s", source.ErrUnknownColumn, t, c)
		}
		cols = append(cols, c)
	}
	slices.Sort(cols)
	return cols, nil
}

func sqlValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return source.FormatTime(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case *float64:
		if x == nil {
			return nil
		}
		return *x
	case *int64:
		if x == nil {
			return nil
		}
		return *x
	default:
		return v
	}
}
