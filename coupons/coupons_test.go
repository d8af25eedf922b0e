package coupons

import (
	"context"
	"fmt"
	"testing"
	"time"

	"vitrine/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCouponStore struct {
	coupons map[string]models.Coupon
}

func newFakeCouponStore(coupons ...models.Coupon) *fakeCouponStore {
	s := &fakeCouponStore{coupons: make(map[string]models.Coupon)}
	for _, c := range coupons {
		s.coupons[c.Code] = c
	}
	return s
}

func (s *fakeCouponStore) Insert(_ context.Context, c models.Coupon) error {
	if _, ok := s.coupons[c.Code]; ok {
		return fmt.Errorf("coupon code %w", models.ErrConflict)
	}
	s.coupons[c.Code] = c
	return nil
}

func (s *fakeCouponStore) FindByCode(_ context.Context, code string) (models.Coupon, error) {
	c, ok := s.coupons[code]
	if !ok {
		return models.Coupon{}, fmt.Errorf("coupon %w", models.ErrNotFound)
	}
	return c, nil
}

func (s *fakeCouponStore) FindAll(_ context.Context) ([]models.Coupon, error) {
	out := make([]models.Coupon, 0, len(s.coupons))
	for _, c := range s.coupons {
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeCouponStore) Update(_ context.Context, couponID string, patch CouponPatch) (models.Coupon, error) {
	for code, c := range s.coupons {
		if c.CouponID != couponID {
			continue
		}
		if patch.IsActive != nil {
			c.IsActive = *patch.IsActive
		}
		if patch.Value != nil {
			c.Value = *patch.Value
		}
		s.coupons[code] = c
		return c, nil
	}
	return models.Coupon{}, fmt.Errorf("coupon %w", models.ErrNotFound)
}

func (s *fakeCouponStore) Delete(_ context.Context, couponID string) error {
	for code, c := range s.coupons {
		if c.CouponID == couponID {
			delete(s.coupons, code)
			return nil
		}
	}
	return fmt.Errorf("coupon %w", models.ErrNotFound)
}

func (s *fakeCouponStore) IncUsage(_ context.Context, code string) (bool, error) {
	c, ok := s.coupons[code]
	if !ok {
		return false, nil
	}
	if c.MaxUsage > 0 && c.UsageCount >= c.MaxUsage {
		return false, nil
	}
	c.UsageCount++
	s.coupons[code] = c
	return true, nil
}

func testService(store Store, now time.Time) *Service {
	svc := NewService(store)
	svc.now = func() time.Time { return now }
	return svc
}

func TestValidateChecksInOrder(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	cases := []struct {
		name   string
		coupon models.Coupon
		want   error
	}{
		{
			name:   "inactive",
			coupon: models.Coupon{Code: "C", IsActive: false, ExpiryDate: future},
			want:   models.ErrCouponInactive,
		},
		{
			name:   "expired",
			coupon: models.Coupon{Code: "C", IsActive: true, ExpiryDate: past},
			want:   models.ErrCouponExpired,
		},
		{
			name:   "exhausted",
			coupon: models.Coupon{Code: "C", IsActive: true, ExpiryDate: future, MaxUsage: 3, UsageCount: 3},
			want:   models.ErrCouponExhausted,
		},
		{
			// Inactive wins over expired; the active flag is checked first.
			name:   "inactive and expired",
			coupon: models.Coupon{Code: "C", IsActive: false, ExpiryDate: past},
			want:   models.ErrCouponInactive,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := testService(newFakeCouponStore(tc.coupon), now)
			_, err := svc.Validate(context.Background(), "C")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidateMissingCoupon(t *testing.T) {
	svc := testService(newFakeCouponStore(), time.Now())
	_, err := svc.Validate(context.Background(), "NOPE")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestValidateUnlimitedUsage(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	coupon := models.Coupon{
		Code:       "FOREVER",
		IsActive:   true,
		ExpiryDate: now.Add(time.Hour),
		MaxUsage:   0,
		UsageCount: 100000,
	}
	svc := testService(newFakeCouponStore(coupon), now)

	got, err := svc.Validate(context.Background(), "FOREVER")
	require.NoError(t, err)
	assert.Equal(t, "FOREVER", got.Code)
}

func TestApplyPercentage(t *testing.T) {
	now := time.Now()
	coupon := models.Coupon{
		Code: "TEN", Type: models.DiscountPercentage, Value: 10,
		IsActive: true, ExpiryDate: now.Add(time.Hour),
	}
	svc := testService(newFakeCouponStore(coupon), now)

	applied, err := svc.Apply(context.Background(), "TEN", 200)
	require.NoError(t, err)
	assert.InDelta(t, 20, applied.Discount, 1e-9)
	assert.InDelta(t, 180, applied.FinalTotal, 1e-9)
}

func TestApplyFixedClampsToTotal(t *testing.T) {
	now := time.Now()
	coupon := models.Coupon{
		Code: "OFF50", Type: models.DiscountFixed, Value: 50,
		IsActive: true, ExpiryDate: now.Add(time.Hour),
	}
	svc := testService(newFakeCouponStore(coupon), now)

	applied, err := svc.Apply(context.Background(), "OFF50", 30)
	require.NoError(t, err)
	assert.InDelta(t, 30, applied.Discount, 1e-9)
	assert.InDelta(t, 0, applied.FinalTotal, 1e-9)
}

func TestRedeemUsage(t *testing.T) {
	now := time.Now()
	store := newFakeCouponStore(models.Coupon{
		Code: "ONCE", IsActive: true, ExpiryDate: now.Add(time.Hour), MaxUsage: 1,
	})
	svc := testService(store, now)

	require.NoError(t, svc.RedeemUsage(context.Background(), "ONCE"))
	assert.Equal(t, 1, store.coupons["ONCE"].UsageCount)

	// The limit is reached; the second redemption must not match.
	err := svc.RedeemUsage(context.Background(), "ONCE")
	assert.ErrorIs(t, err, models.ErrCouponExhausted)
	assert.Equal(t, 1, store.coupons["ONCE"].UsageCount)
}

func TestRedeemUsageEmptyCodeIsNoop(t *testing.T) {
	svc := testService(newFakeCouponStore(), time.Now())
	assert.NoError(t, svc.RedeemUsage(context.Background(), ""))
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	now := time.Now()
	svc := testService(newFakeCouponStore(), now)

	req := CreateCouponRequest{Code: "SALE", Type: models.DiscountPercentage, Value: 15, ExpiryDate: now.Add(time.Hour)}
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, models.ErrConflict)
}
