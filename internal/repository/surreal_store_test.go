package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockQuerier is a mock implementation of RecordQuerier
type MockQuerier struct {
	mock.Mock
}

func (m *MockQuerier) QueryRecords(ctx context.Context, query string, vars map[string]any) ([]Record, error) {
	args := m.Called(ctx, query, vars)
	rows, _ := args.Get(0).([]Record)
	return rows, args.Error(1)
}

func (m *MockQuerier) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestSurrealStore_Get_Stored(t *testing.T) {
	q := &MockQuerier{}
	store := NewSurrealStoreWithQuerier(q)
	ctx := context.Background()

	q.On("QueryRecords", ctx, surrealSelectOne, map[string]any{"date": "2025-12-25"}).
		Return([]Record{{Date: "2025-12-25", Status: StatusPending}}, nil)

	status, err := store.Get(ctx, "2025-12-25")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)
	q.AssertExpectations(t)
}

func TestSurrealStore_Get_AbsentDefaultsToAvailable(t *testing.T) {
	q := &MockQuerier{}
	store := NewSurrealStoreWithQuerier(q)
	ctx := context.Background()

	q.On("QueryRecords", ctx, surrealSelectOne, map[string]any{"date": "2025-12-25"}).Return(nil, nil)

	status, err := store.Get(ctx, "2025-12-25")
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, status)
}

func TestSurrealStore_Get_QueryError(t *testing.T) {
	q := &MockQuerier{}
	store := NewSurrealStoreWithQuerier(q)
	ctx := context.Background()

	q.On("QueryRecords", ctx, surrealSelectOne, mock.Anything).Return(nil, ErrConnection)

	_, err := store.Get(ctx, "2025-12-25")
	assert.True(t, errors.Is(err, ErrConnection))
}

func TestSurrealStore_GetAll(t *testing.T) {
	q := &MockQuerier{}
	store := NewSurrealStoreWithQuerier(q)
	ctx := context.Background()

	rows := []Record{
		{Date: "2025-12-24", Status: StatusUnavailable},
		{Date: "2025-12-25", Status: StatusPending},
	}
	q.On("QueryRecords", ctx, surrealSelectAll, map[string]any(nil)).Return(rows, nil)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, rows, all)
}

func TestSurrealStore_GetAll_EmptyIsNotNil(t *testing.T) {
	q := &MockQuerier{}
	store := NewSurrealStoreWithQuerier(q)
	ctx := context.Background()

	q.On("QueryRecords", ctx, surrealSelectAll, map[string]any(nil)).Return(nil, nil)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestSurrealStore_Upsert(t *testing.T) {
	q := &MockQuerier{}
	store := NewSurrealStoreWithQuerier(q)
	ctx := context.Background()

	vars := map[string]any{"date": "2025-12-25", "status": "unavailable"}
	q.On("QueryRecords", ctx, surrealUpsert, vars).
		Return([]Record{{Date: "2025-12-25", Status: StatusUnavailable}}, nil)

	rec, err := store.Upsert(ctx, "2025-12-25", StatusUnavailable)
	require.NoError(t, err)
	assert.Equal(t, Record{Date: "2025-12-25", Status: StatusUnavailable}, rec)
	q.AssertExpectations(t)
}

func TestSurrealStore_Upsert_NoRow(t *testing.T) {
	q := &MockQuerier{}
	store := NewSurrealStoreWithQuerier(q)
	ctx := context.Background()

	q.On("QueryRecords", ctx, surrealUpsert, mock.Anything).Return([]Record{}, nil)

	_, err := store.Upsert(ctx, "2025-12-25", StatusPending)
	assert.True(t, errors.Is(err, ErrQuery))
}

func TestSurrealStore_Close(t *testing.T) {
	q := &MockQuerier{}
	store := NewSurrealStoreWithQuerier(q)
	ctx := context.Background()

	q.On("Close", ctx).Return(nil)

	assert.NoError(t, store.Close(ctx))
	q.AssertExpectations(t)
}

func TestSurrealConn_NilDB(t *testing.T) {
	c := &surrealConn{}
	_, err := c.QueryRecords(context.Background(), surrealSelectAll, nil)
	assert.True(t, errors.Is(err, ErrConnection))
	assert.NoError(t, c.Close(context.Background()))
}
