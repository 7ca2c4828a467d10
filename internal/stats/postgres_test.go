package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	value []byte
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.value
	return nil
}

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return m.Called(ctx, sql, args).Get(0).(pgx.Row)
}

func (m *mockQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	ret := m.Called(ctx, sql, args)
	return ret.Get(0).(pgconn.CommandTag), ret.Error(1)
}

func TestPostgresStoreLoadAbsent(t *testing.T) {
	db := new(mockQuerier)
	db.On("QueryRow", mock.Anything, mock.Anything, []any{DefaultKey}).Return(fakeRow{err: pgx.ErrNoRows})

	got, err := NewPostgresStore(db, "").Load(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, got)
	db.AssertExpectations(t)
}

func TestPostgresStoreLoad(t *testing.T) {
	data, err := Encode(sample())
	require.NoError(t, err)

	db := new(mockQuerier)
	db.On("QueryRow", mock.Anything, mock.Anything, []any{"custom"}).Return(fakeRow{value: data})

	got, err := NewPostgresStore(db, "custom").Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sample(), *got)
}

func TestPostgresStoreLoadError(t *testing.T) {
	db := new(mockQuerier)
	db.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(fakeRow{err: errors.New("conn reset")})

	_, err := NewPostgresStore(db, "").Load(context.Background())
	assert.ErrorContains(t, err, "conn reset")
}

func TestPostgresStoreSave(t *testing.T) {
	data, err := Encode(sample())
	require.NoError(t, err)

	db := new(mockQuerier)
	db.On("Exec", mock.Anything, mock.Anything, []any{DefaultKey, data}).Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	assert.NoError(t, NewPostgresStore(db, "").Save(context.Background(), sample()))
	db.AssertExpectations(t)
}
