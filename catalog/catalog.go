package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vitrine/models"
	"vitrine/utils"
)

// Instock is the availability predicate: a pure read of the stock count.
func Instock(p models.Product, quantity int) bool {
	return p.Stock >= quantity
}

// FinalPrice applies the product's own discount percentage to its list price.
func FinalPrice(price, discount float64) float64 {
	return price - price*discount/100
}

type CreateProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	Discount    float64  `json:"discount"`
	Stock       int      `json:"stock"`
	Sizes       []string `json:"sizes"`
}

type ProductPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	Discount    *float64 `json:"discount"`
	Stock       *int     `json:"stock"`
	Sizes       []string `json:"sizes"`
}

type ListQuery struct {
	Search   string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Page     int
	Limit    int
}

// Store is the persistence contract the catalog service runs against.
type Store interface {
	Insert(ctx context.Context, p models.Product) error
	FindByID(ctx context.Context, id string) (models.Product, error)
	FindByName(ctx context.Context, name string) (models.Product, error)
	FindPage(ctx context.Context, q ListQuery) ([]models.Product, int64, error)
	Replace(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, req CreateProductRequest, userID string) (models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.Price <= 0 || req.Stock < 0 {
		return models.Product{}, fmt.Errorf("missing or invalid product fields")
	}

	if _, err := s.store.FindByName(ctx, name); err == nil {
		return models.Product{}, fmt.Errorf("product with this name %w", models.ErrConflict)
	}

	now := time.Now()
	product := models.Product{
		ProductID:   utils.GetUUID(),
		Name:        name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Discount:    req.Discount,
		FinalPrice:  FinalPrice(req.Price, req.Discount),
		Stock:       req.Stock,
		Sizes:       req.Sizes,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Insert(ctx, product); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Product, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]models.Product, utils.Pagination, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	items, total, err := s.store.FindPage(ctx, q)
	if err != nil {
		return nil, utils.Pagination{}, err
	}
	if items == nil {
		items = []models.Product{}
	}
	return items, utils.NewPagination(total, q.Page, q.Limit), nil
}

func (s *Service) Update(ctx context.Context, id string, patch ProductPatch) (models.Product, error) {
	product, err := s.store.FindByID(ctx, id)
	if err != nil {
		return models.Product{}, err
	}

	if patch.Name != nil && *patch.Name != product.Name {
		if _, err := s.store.FindByName(ctx, *patch.Name); err == nil {
			return models.Product{}, fmt.Errorf("product with this name %w", models.ErrConflict)
		}
		product.Name = *patch.Name
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Category != nil {
		product.Category = *patch.Category
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Discount != nil {
		product.Discount = *patch.Discount
	}
	if patch.Stock != nil && *patch.Stock >= 0 {
		product.Stock = *patch.Stock
	}
	if patch.Sizes != nil {
		product.Sizes = patch.Sizes
	}
	product.FinalPrice = FinalPrice(product.Price, product.Discount)
	product.UpdatedAt = time.Now()

	if err := s.store.Replace(ctx, product); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
