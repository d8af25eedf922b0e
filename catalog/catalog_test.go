package catalog

import (
	"context"
	"fmt"
	"testing"

	"vitrine/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductStore struct {
	byID map[string]models.Product
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{byID: make(map[string]models.Product)}
}

func (f *fakeProductStore) Insert(_ context.Context, p models.Product) error {
	f.byID[p.ProductID] = p
	return nil
}

func (f *fakeProductStore) FindByID(_ context.Context, id string) (models.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return models.Product{}, fmt.Errorf("product %w", models.ErrNotFound)
	}
	return p, nil
}

func (f *fakeProductStore) FindByName(_ context.Context, name string) (models.Product, error) {
	for _, p := range f.byID {
		if p.Name == name {
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("product %w", models.ErrNotFound)
}

func (f *fakeProductStore) FindPage(_ context.Context, q ListQuery) ([]models.Product, int64, error) {
	out := []models.Product{}
	for _, p := range f.byID {
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeProductStore) Replace(_ context.Context, p models.Product) error {
	if _, ok := f.byID[p.ProductID]; !ok {
		return fmt.Errorf("product %w", models.ErrNotFound)
	}
	f.byID[p.ProductID] = p
	return nil
}

func (f *fakeProductStore) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return fmt.Errorf("product %w", models.ErrNotFound)
	}
	delete(f.byID, id)
	return nil
}

func TestFinalPrice(t *testing.T) {
	assert.InDelta(t, 90, FinalPrice(100, 10), 1e-9)
	assert.InDelta(t, 100, FinalPrice(100, 0), 1e-9)
	assert.InDelta(t, 0, FinalPrice(100, 100), 1e-9)
}

func TestInstock(t *testing.T) {
	p := models.Product{Stock: 3}
	assert.True(t, Instock(p, 3))
	assert.False(t, Instock(p, 4))
	assert.True(t, Instock(p, 0))
}

func TestCreateComputesFinalPrice(t *testing.T) {
	svc := NewService(newFakeProductStore())

	got, err := svc.Create(context.Background(), CreateProductRequest{
		Name: "Shirt", Price: 40, Discount: 25, Stock: 10,
	}, "admin-1")
	require.NoError(t, err)
	assert.InDelta(t, 30, got.FinalPrice, 1e-9)
	assert.NotEmpty(t, got.ProductID)
	assert.Equal(t, "admin-1", got.CreatedBy)
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	svc := NewService(newFakeProductStore())

	req := CreateProductRequest{Name: "Shirt", Price: 40, Stock: 1}
	_, err := svc.Create(context.Background(), req, "admin-1")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), req, "admin-1")
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestCreateRejectsInvalidFields(t *testing.T) {
	svc := NewService(newFakeProductStore())

	_, err := svc.Create(context.Background(), CreateProductRequest{Name: "", Price: 10}, "a")
	assert.Error(t, err)
	_, err = svc.Create(context.Background(), CreateProductRequest{Name: "X", Price: 0}, "a")
	assert.Error(t, err)
	_, err = svc.Create(context.Background(), CreateProductRequest{Name: "X", Price: 10, Stock: -1}, "a")
	assert.Error(t, err)
}

func TestUpdateRecomputesFinalPrice(t *testing.T) {
	store := newFakeProductStore()
	svc := NewService(store)

	created, err := svc.Create(context.Background(), CreateProductRequest{
		Name: "Shirt", Price: 40, Discount: 0, Stock: 5,
	}, "a")
	require.NoError(t, err)

	discount := 50.0
	updated, err := svc.Update(context.Background(), created.ProductID, ProductPatch{Discount: &discount})
	require.NoError(t, err)
	assert.InDelta(t, 20, updated.FinalPrice, 1e-9)
}

func TestUpdateUnknownProduct(t *testing.T) {
	svc := NewService(newFakeProductStore())
	name := "New"
	_, err := svc.Update(context.Background(), "ghost", ProductPatch{Name: &name})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListDefaultsPagination(t *testing.T) {
	store := newFakeProductStore()
	svc := NewService(store)
	_, err := svc.Create(context.Background(), CreateProductRequest{Name: "A", Price: 1, Stock: 1}, "a")
	require.NoError(t, err)

	items, pagination, err := svc.List(context.Background(), ListQuery{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, pagination.PageNumber)
	assert.Equal(t, 10, pagination.PageSize)
	assert.EqualValues(t, 1, pagination.TotalSize)
}
