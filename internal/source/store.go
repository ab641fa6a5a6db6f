package source

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrQueryFailed matches every error returned by a Store query.
	ErrQueryFailed = errors.New("source: query failed")
	// ErrUnknownTable indicates a query against a table outside the known set.
	ErrUnknownTable = errors.New("source: unknown table")
	// ErrUnknownColumn indicates a query referencing an unknown column.
	ErrUnknownColumn = errors.New("source: unknown column")
	// ErrInvalidQuery indicates a malformed filter or limit.
	ErrInvalidQuery = errors.New("source: invalid query")
	// ErrNotFound indicates an update or delete matched no row.
	ErrNotFound = errors.New("source: not found")
	// ErrUnauthorized indicates the backend rejected the API key.
	ErrUnauthorized = errors.New("source: unauthorized (api key missing or invalid)")
	// ErrMalformedBody indicates a backend response that is oversized or
	// not a complete JSON array.
	ErrMalformedBody = errors.New("source: malformed response body")
)

// Row is one JSON object returned by a query.
type Row []byte

// Store answers filtered table queries.
type Store interface {
	Query(ctx context.Context, q Query) ([]Row, error)
}

// Writer mutates rows. Values are keyed by column name.
type Writer interface {
	Insert(ctx context.Context, t Table, values map[string]any) (Row, error)
	Update(ctx context.Context, t Table, id int64, values map[string]any) (Row, error)
	Delete(ctx context.Context, t Table, id int64) error
}

// Backend is a full read/write event store.
type Backend interface {
	Store
	Writer
	Close() error
}

// QueryError wraps a backend failure for one table.
type QueryError struct {
	Table Table
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s: %v", e.Table, e.Err)
}

// Unwrap exposes both ErrQueryFailed and the underlying cause.
func (e *QueryError) Unwrap() []error {
	return []error{ErrQueryFailed, e.Err}
}

// Fail wraps err as a QueryError for t. A nil err stays nil.
func Fail(t Table, err error) error {
	if err == nil {
		return nil
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return err
	}
	return &QueryError{Table: t, Err: err}
}
