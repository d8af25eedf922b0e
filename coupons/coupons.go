package coupons

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vitrine/models"
	"vitrine/utils"
)

// Application is the result of applying a coupon to a pre-discount total.
type Application struct {
	Code       string              `json:"code"`
	Type       models.DiscountType `json:"type"`
	Value      float64             `json:"value"`
	Discount   float64             `json:"discount"`
	FinalTotal float64             `json:"finalTotal"`
}

type CreateCouponRequest struct {
	Code        string              `json:"code"`
	Type        models.DiscountType `json:"type"`
	Value       float64             `json:"value"`
	IsActive    *bool               `json:"isActive"`
	ExpiryDate  time.Time           `json:"expiryDate"`
	MaxUsage    int                 `json:"maxUsage"`
	Description string              `json:"description"`
}

type CouponPatch struct {
	Value       *float64   `json:"value"`
	IsActive    *bool      `json:"isActive"`
	ExpiryDate  *time.Time `json:"expiryDate"`
	MaxUsage    *int       `json:"maxUsage"`
	Description *string    `json:"description"`
}

type Store interface {
	Insert(ctx context.Context, c models.Coupon) error
	FindByCode(ctx context.Context, code string) (models.Coupon, error)
	FindAll(ctx context.Context) ([]models.Coupon, error)
	Update(ctx context.Context, couponID string, patch CouponPatch) (models.Coupon, error)
	Delete(ctx context.Context, couponID string) error
	// IncUsage bumps usageCount iff the usage limit is not yet reached
	// (always matches when maxUsage == 0). Reports whether it matched.
	IncUsage(ctx context.Context, code string) (bool, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) Create(ctx context.Context, req CreateCouponRequest) (models.Coupon, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" || req.Value <= 0 {
		return models.Coupon{}, fmt.Errorf("missing or invalid coupon fields")
	}
	if req.Type != models.DiscountPercentage && req.Type != models.DiscountFixed {
		req.Type = models.DiscountPercentage
	}

	if _, err := s.store.FindByCode(ctx, code); err == nil {
		return models.Coupon{}, fmt.Errorf("coupon code %w", models.ErrConflict)
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	coupon := models.Coupon{
		CouponID:    utils.GetUUID(),
		Code:        code,
		Type:        req.Type,
		Value:       req.Value,
		IsActive:    active,
		ExpiryDate:  req.ExpiryDate,
		MaxUsage:    req.MaxUsage,
		Description: req.Description,
		CreatedAt:   s.now(),
	}
	if err := s.store.Insert(ctx, coupon); err != nil {
		return models.Coupon{}, err
	}
	return coupon, nil
}

func (s *Service) FindAll(ctx context.Context) ([]models.Coupon, error) {
	coupons, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if coupons == nil {
		coupons = []models.Coupon{}
	}
	return coupons, nil
}

func (s *Service) FindByCode(ctx context.Context, code string) (models.Coupon, error) {
	return s.store.FindByCode(ctx, code)
}

func (s *Service) Update(ctx context.Context, couponID string, patch CouponPatch) (models.Coupon, error) {
	return s.store.Update(ctx, couponID, patch)
}

func (s *Service) Delete(ctx context.Context, couponID string) error {
	return s.store.Delete(ctx, couponID)
}

// Validate fetches a coupon and checks its predicates in order:
// existence, active flag, expiry, usage limit (skipped when unlimited).
func (s *Service) Validate(ctx context.Context, code string) (models.Coupon, error) {
	coupon, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return models.Coupon{}, err
	}
	if !coupon.IsActive {
		return models.Coupon{}, models.ErrCouponInactive
	}
	if !s.now().Before(coupon.ExpiryDate) {
		return models.Coupon{}, models.ErrCouponExpired
	}
	if coupon.MaxUsage > 0 && coupon.UsageCount >= coupon.MaxUsage {
		return models.Coupon{}, models.ErrCouponExhausted
	}
	return coupon, nil
}

// Apply computes the discount for a total. The discount is clamped so the
// final total never goes negative. Usage counters are untouched here;
// RedeemUsage runs at settlement.
func (s *Service) Apply(ctx context.Context, code string, total float64) (Application, error) {
	coupon, err := s.Validate(ctx, code)
	if err != nil {
		return Application{}, err
	}

	var discount float64
	if coupon.Type == models.DiscountPercentage {
		discount = total * coupon.Value / 100
	} else {
		discount = coupon.Value
	}
	if discount > total {
		discount = total
	}

	return Application{
		Code:       coupon.Code,
		Type:       coupon.Type,
		Value:      coupon.Value,
		Discount:   discount,
		FinalTotal: total - discount,
	}, nil
}

// RedeemUsage counts one successful use against the coupon's limit.
// Called once per settled order; the conditional increment keeps a burst
// of settlements from overshooting maxUsage.
func (s *Service) RedeemUsage(ctx context.Context, code string) error {
	if code == "" {
		return nil
	}
	matched, err := s.store.IncUsage(ctx, code)
	if err != nil {
		return err
	}
	if !matched {
		return models.ErrCouponExhausted
	}
	return nil
}
