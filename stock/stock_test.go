package stock

import (
	"context"
	"fmt"
	"testing"

	"vitrine/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStockStore struct {
	stock map[string]int
}

func (f *fakeStockStore) FindProduct(_ context.Context, productID string) (models.Product, error) {
	n, ok := f.stock[productID]
	if !ok {
		return models.Product{}, fmt.Errorf("product %w", models.ErrNotFound)
	}
	return models.Product{ProductID: productID, Stock: n}, nil
}

func (f *fakeStockStore) IncStock(_ context.Context, productID string, qty int) (int, error) {
	n, ok := f.stock[productID]
	if !ok {
		return 0, fmt.Errorf("product %w", models.ErrNotFound)
	}
	f.stock[productID] = n + qty
	return n + qty, nil
}

func (f *fakeStockStore) DecStock(_ context.Context, productID string, qty int) (int, bool, error) {
	n, ok := f.stock[productID]
	if !ok || n < qty {
		return 0, false, nil
	}
	f.stock[productID] = n - qty
	return n - qty, true, nil
}

type recordingNotifier struct {
	calls []models.StockUpdate
}

func (r *recordingNotifier) StockChanged(productID string, newStock int) {
	r.calls = append(r.calls, models.StockUpdate{ProductID: productID, Stock: newStock})
}

func TestAdjustDecrement(t *testing.T) {
	store := &fakeStockStore{stock: map[string]int{"p1": 5}}
	notify := &recordingNotifier{}
	svc := NewService(store, notify)

	n, err := svc.Adjust(context.Background(), "p1", 3, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, notify.calls, 1)
	assert.Equal(t, 2, notify.calls[0].Stock)
}

func TestAdjustNeverGoesNegative(t *testing.T) {
	store := &fakeStockStore{stock: map[string]int{"p1": 2}}
	notify := &recordingNotifier{}
	svc := NewService(store, notify)

	_, err := svc.Adjust(context.Background(), "p1", 3, false)
	assert.ErrorIs(t, err, models.ErrOutOfStock)
	assert.Equal(t, 2, store.stock["p1"])
	// No notification for a failed adjustment.
	assert.Empty(t, notify.calls)
}

func TestAdjustExactStockToZero(t *testing.T) {
	store := &fakeStockStore{stock: map[string]int{"p1": 3}}
	svc := NewService(store, nil)

	n, err := svc.Adjust(context.Background(), "p1", 3, false)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestAdjustMissingProduct(t *testing.T) {
	svc := NewService(&fakeStockStore{stock: map[string]int{}}, nil)

	_, err := svc.Adjust(context.Background(), "ghost", 1, false)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.False(t, IsOutOfStock(err))
}

func TestAdjustIncrement(t *testing.T) {
	store := &fakeStockStore{stock: map[string]int{"p1": 0}}
	notify := &recordingNotifier{}
	svc := NewService(store, notify)

	n, err := svc.Adjust(context.Background(), "p1", 7, true)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	require.Len(t, notify.calls, 1)
}

func TestAdjustRejectsNonPositiveQuantity(t *testing.T) {
	svc := NewService(&fakeStockStore{stock: map[string]int{"p1": 5}}, nil)

	_, err := svc.Adjust(context.Background(), "p1", 0, false)
	assert.Error(t, err)
	_, err = svc.Adjust(context.Background(), "p1", -1, true)
	assert.Error(t, err)
}

func TestAvailable(t *testing.T) {
	svc := NewService(&fakeStockStore{stock: map[string]int{"p1": 4}}, nil)

	ok, err := svc.Available(context.Background(), "p1", 4)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Available(context.Background(), "p1", 5)
	require.NoError(t, err)
	assert.False(t, ok)
}
