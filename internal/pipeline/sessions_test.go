package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safedrive-ia/safedrive/internal/model"
	"github.com/safedrive-ia/safedrive/internal/source"
)

type fakeStore struct {
	rows    []source.Row
	err     error
	queries []source.Query
}

func (f *fakeStore) Query(_ context.Context, q source.Query) ([]source.Row, error) {
	f.queries = append(f.queries, q)
	return f.rows, f.err
}

func TestResolveSessions(t *testing.T) {
	st := &fakeStore{rows: []source.Row{
		source.Row(`{"session_id":4,"driver_id":9}`),
		source.Row(`{"session_id":7,"driver_id":9}`),
	}}

	ids, err := ResolveSessions(context.Background(), st, 9)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 7}, ids)

	require.Len(t, st.queries, 1)
	q := st.queries[0]
	assert.Equal(t, source.TableSessions, q.Table)
	require.Len(t, q.Filters, 1)
	assert.Equal(t, source.Filter{Column: "driver_id", Op: source.OpEq, Values: []any{int64(9)}}, q.Filters[0])
}

func TestResolveSessionsEmptyIsNotAnError(t *testing.T) {
	ids, err := ResolveSessions(context.Background(), &fakeStore{}, 3)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestResolveSessionsPropagatesFailure(t *testing.T) {
	st := &fakeStore{err: source.Fail(source.TableSessions, errors.New("timeout"))}
	_, err := ResolveSessions(context.Background(), st, 3)
	assert.ErrorIs(t, err, source.ErrQueryFailed)
}

func TestDriverIndex(t *testing.T) {
	x := NewDriverIndex(
		[]model.Driver{{ID: 1, Name: "Ana"}, {ID: 2, Name: "Luis"}},
		[]model.Session{{ID: 10, DriverID: 1}, {ID: 11, DriverID: 2}, {ID: 12, DriverID: 3}},
	)

	assert.Equal(t, "Ana", x.DriverName(10))
	assert.Equal(t, "Luis", x.DriverName(11))
	assert.Equal(t, UnknownDriver, x.DriverName(12))
	assert.Equal(t, UnknownDriver, x.DriverName(99))
	assert.Equal(t, int64(3), x.DriverID(12))
}

func TestSearchDrivers(t *testing.T) {
	drivers := []model.Driver{
		{ID: 1, Name: "Ana Torres", Email: "ana@flota.co"},
		{ID: 2, Name: "Luis Gómez", Email: "lgomez@flota.co"},
		{ID: 3, Name: "María Rojas", Email: "maria@correo.com"},
	}

	assert.Len(t, SearchDrivers(drivers, ""), 3)
	assert.Len(t, SearchDrivers(drivers, "FLOTA"), 2)

	got := SearchDrivers(drivers, "rojas")
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ID)

	assert.Empty(t, SearchDrivers(drivers, "pedro"))
}
