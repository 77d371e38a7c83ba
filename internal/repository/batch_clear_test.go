package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"shopping-list-bot/internal/domain"
)

func rowNames(n int) []string {
	rows := make([]string, n)
	for i := range rows {
		rows[i] = fmt.Sprintf("item-%02d", i)
	}
	return rows
}

func TestNewBatchClearer_Validates(t *testing.T) {
	_, err := NewBatchClearer(nil, "test-table")
	require.Error(t, err)

	_, err = NewBatchClearer(newFakeDynamo(), " ")
	require.Error(t, err)
}

func TestBatchClear_DeletesEveryRowInBatches(t *testing.T) {
	db := newFakeDynamo(rowNames(30)...)
	db.pageSize = 10
	b, err := NewBatchClearer(db, "test-table")
	require.NoError(t, err)

	require.NoError(t, b.Clear(context.Background()))
	require.Empty(t, db.rows)
	require.True(t, db.exists)
	require.Equal(t, []int{25, 5}, db.batchSizes)
	require.NotContains(t, db.calls, "DeleteTable")
}

func TestBatchClear_EmptyTableMakesNoWrites(t *testing.T) {
	db := newFakeDynamo()
	b, err := NewBatchClearer(db, "test-table")
	require.NoError(t, err)

	require.NoError(t, b.Clear(context.Background()))
	require.NotContains(t, db.calls, "BatchWriteItem")
}

func TestBatchClear_ResubmitsUnprocessedItems(t *testing.T) {
	db := newFakeDynamo("milk", "eggs")
	db.unprocessedOnce = true
	b, err := NewBatchClearer(db, "test-table")
	require.NoError(t, err)

	require.NoError(t, b.Clear(context.Background()))
	require.Empty(t, db.rows)
	require.Equal(t, []int{2, 1}, db.batchSizes)
}

func TestBatchClear_ScanError(t *testing.T) {
	db := newFakeDynamo("milk")
	db.scanErr = errors.New("throttled")
	b, err := NewBatchClearer(db, "test-table")
	require.NoError(t, err)

	err = b.Clear(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "scan")
	require.NotErrorIs(t, err, domain.ErrTableMissing)
}

func TestBatchClear_BatchWriteError(t *testing.T) {
	db := newFakeDynamo("milk")
	db.batchErr = errors.New("throttled")
	b, err := NewBatchClearer(db, "test-table")
	require.NoError(t, err)

	err = b.Clear(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "batch delete")
	require.Equal(t, []string{"milk"}, db.rows)
}

func TestClient_DeleteAllWithBatchClearer(t *testing.T) {
	db := newFakeDynamo("milk", "eggs")
	b, err := NewBatchClearer(db, "test-table")
	require.NoError(t, err)
	c := mustNewClient(t, db, WithClearer(b))

	require.NoError(t, c.DeleteAll(context.Background()))
	require.Equal(t, "scan", c.ClearStrategy())
	items, err := c.ListItems(context.Background())
	require.NoError(t, err)
	require.Empty(t, items)
}
