package stock

import (
	"context"
	"errors"
	"fmt"

	"vitrine/models"
)

// Notifier receives a fanout call after every successful stock change.
type Notifier interface {
	StockChanged(productID string, newStock int)
}

// Store is the ledger's storage contract. Decrement must be conditional:
// it fails rather than letting stock go negative, and the store — not the
// application — serializes concurrent adjustments.
type Store interface {
	FindProduct(ctx context.Context, productID string) (models.Product, error)
	// IncStock atomically adds qty and returns the new stock value.
	IncStock(ctx context.Context, productID string, qty int) (int, error)
	// DecStock atomically subtracts qty iff stock >= qty. matched reports
	// whether a document satisfied the precondition.
	DecStock(ctx context.Context, productID string, qty int) (newStock int, matched bool, err error)
}

type Service struct {
	store  Store
	notify Notifier
}

func NewService(store Store, notify Notifier) *Service {
	return &Service{store: store, notify: notify}
}

// Available is the pure availability read used before cart mutations.
func (s *Service) Available(ctx context.Context, productID string, qty int) (bool, error) {
	product, err := s.store.FindProduct(ctx, productID)
	if err != nil {
		return false, err
	}
	return product.Stock >= qty, nil
}

// Adjust applies a single atomic stock change and returns the post-update
// value. Increment always succeeds for an existing product; decrement
// fails with ErrOutOfStock when the remaining stock is insufficient.
// Every successful call fans out through the notifier.
func (s *Service) Adjust(ctx context.Context, productID string, qty int, increment bool) (int, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("quantity must be positive")
	}

	var newStock int
	if increment {
		n, err := s.store.IncStock(ctx, productID, qty)
		if err != nil {
			return 0, err
		}
		newStock = n
	} else {
		n, matched, err := s.store.DecStock(ctx, productID, qty)
		if err != nil {
			return 0, err
		}
		if !matched {
			// Distinguish a missing product from insufficient stock.
			if _, err := s.store.FindProduct(ctx, productID); err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("product %s %w", productID, models.ErrOutOfStock)
		}
		newStock = n
	}

	if s.notify != nil {
		s.notify.StockChanged(productID, newStock)
	}
	return newStock, nil
}

// IsOutOfStock reports whether err is the insufficient-stock condition.
func IsOutOfStock(err error) bool {
	return errors.Is(err, models.ErrOutOfStock)
}
