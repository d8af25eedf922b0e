package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vitrine/catalog"
	"vitrine/models"
	"vitrine/utils"
)

// Products resolves live catalog entries; the cart never owns product data.
type Products interface {
	FindByID(ctx context.Context, id string) (models.Product, error)
}

type Store interface {
	FindByUser(ctx context.Context, userID string) (models.Cart, error)
	Insert(ctx context.Context, c models.Cart) error
	// IncLineQuantity bumps one line in place, scoped by line id so the
	// update is atomic per line.
	IncLineQuantity(ctx context.Context, userID, lineID string, delta int) (bool, error)
	SetLine(ctx context.Context, userID, lineID string, quantity int, price float64) (bool, error)
	PushLine(ctx context.Context, userID string, line models.CartLine) (bool, error)
	PullLine(ctx context.Context, userID, lineID string) (bool, error)
	ClearLines(ctx context.Context, userID string) error
}

type Service struct {
	store    Store
	products Products
}

func NewService(store Store, products Products) *Service {
	return &Service{store: store, products: products}
}

// AddItem validates availability, then merges into an existing
// (product, size) line or appends a new one with the current final price
// as the snapshot. The availability check and the write are separate
// steps; the narrow race window is accepted here and closed by the
// re-validation at checkout.
func (s *Service) AddItem(ctx context.Context, userID, productID, size string, quantity int) (models.Cart, error) {
	if quantity < 1 {
		return models.Cart{}, fmt.Errorf("quantity must be at least 1")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return models.Cart{}, err
	}
	if !catalog.Instock(product, quantity) {
		return models.Cart{}, fmt.Errorf("product %s %w", product.Name, models.ErrOutOfStock)
	}

	existing, err := s.store.FindByUser(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		now := time.Now()
		fresh := models.Cart{
			CartID: utils.GetUUID(),
			UserID: userID,
			Lines: []models.CartLine{{
				LineID:    utils.GetUUID(),
				ProductID: productID,
				Size:      size,
				Quantity:  quantity,
				Price:     product.FinalPrice,
			}},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.store.Insert(ctx, fresh); err != nil {
			return models.Cart{}, err
		}
		return fresh, nil
	}
	if err != nil {
		return models.Cart{}, err
	}

	for _, line := range existing.Lines {
		if line.ProductID != productID || line.Size != size {
			continue
		}
		// Same product and size: merge instead of duplicating.
		newQuantity := line.Quantity + quantity
		if !catalog.Instock(product, newQuantity) {
			return models.Cart{}, fmt.Errorf("product %s %w", product.Name, models.ErrOutOfStock)
		}
		if _, err := s.store.IncLineQuantity(ctx, userID, line.LineID, quantity); err != nil {
			return models.Cart{}, err
		}
		return s.store.FindByUser(ctx, userID)
	}

	line := models.CartLine{
		LineID:    utils.GetUUID(),
		ProductID: productID,
		Size:      size,
		Quantity:  quantity,
		Price:     product.FinalPrice,
	}
	if _, err := s.store.PushLine(ctx, userID, line); err != nil {
		return models.Cart{}, err
	}
	return s.store.FindByUser(ctx, userID)
}

// UpdateItem sets a line's absolute quantity, re-validating availability
// and refreshing the price snapshot from the live product.
func (s *Service) UpdateItem(ctx context.Context, userID, lineID string, quantity int) (models.Cart, error) {
	if quantity < 1 {
		return models.Cart{}, fmt.Errorf("quantity must be at least 1")
	}

	existing, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		return models.Cart{}, err
	}

	var target *models.CartLine
	for i := range existing.Lines {
		if existing.Lines[i].LineID == lineID {
			target = &existing.Lines[i]
			break
		}
	}
	if target == nil {
		return models.Cart{}, fmt.Errorf("cart line %w", models.ErrNotFound)
	}

	product, err := s.products.FindByID(ctx, target.ProductID)
	if err != nil {
		return models.Cart{}, err
	}
	if !catalog.Instock(product, quantity) {
		return models.Cart{}, fmt.Errorf("product %s %w", product.Name, models.ErrOutOfStock)
	}

	if _, err := s.store.SetLine(ctx, userID, lineID, quantity, product.FinalPrice); err != nil {
		return models.Cart{}, err
	}
	return s.store.FindByUser(ctx, userID)
}

func (s *Service) RemoveItem(ctx context.Context, userID, lineID string) (models.Cart, error) {
	matched, err := s.store.PullLine(ctx, userID, lineID)
	if err != nil {
		return models.Cart{}, err
	}
	if !matched {
		return models.Cart{}, fmt.Errorf("cart line %w", models.ErrNotFound)
	}
	return s.store.FindByUser(ctx, userID)
}

// Clear empties the cart. Clearing an absent cart is a no-op.
func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.store.ClearLines(ctx, userID)
}

// View returns the cart joined with product display fields plus the
// computed total over the price snapshots. An absent cart is an empty
// view, not an error.
func (s *Service) View(ctx context.Context, userID string) (models.CartView, error) {
	existing, err := s.store.FindByUser(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return models.CartView{Products: []models.CartViewLine{}}, nil
	}
	if err != nil {
		return models.CartView{}, err
	}

	view := models.CartView{
		CartID:   existing.CartID,
		UserID:   existing.UserID,
		Products: make([]models.CartViewLine, 0, len(existing.Lines)),
	}
	for _, line := range existing.Lines {
		name := ""
		if product, err := s.products.FindByID(ctx, line.ProductID); err == nil {
			name = product.Name
		}
		subtotal := line.Price * float64(line.Quantity)
		view.Products = append(view.Products, models.CartViewLine{
			LineID:    line.LineID,
			ProductID: line.ProductID,
			Name:      name,
			Size:      line.Size,
			Quantity:  line.Quantity,
			Price:     line.Price,
			Subtotal:  subtotal,
		})
		view.Total += subtotal
	}
	view.ItemsCount = len(view.Products)
	return view, nil
}
