package models

import "errors"

// Shared error kinds. Handlers map these onto HTTP statuses; services
// wrap them with fmt.Errorf("...: %w", ...) to add detail.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrOutOfStock      = errors.New("not in stock")
	ErrEmptyCart       = errors.New("empty cart")
	ErrCouponInactive  = errors.New("coupon inactive")
	ErrCouponExpired   = errors.New("coupon expired")
	ErrCouponExhausted = errors.New("coupon usage limit reached")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrBadSignature    = errors.New("invalid webhook signature")
)
