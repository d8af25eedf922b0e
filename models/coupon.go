package models

import "time"

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Coupon codes are case-sensitive and unique. MaxUsage == 0 means unlimited.
type Coupon struct {
	CouponID    string       `json:"couponId" bson:"couponId"`
	Code        string       `json:"code" bson:"code"`
	Type        DiscountType `json:"type" bson:"type"`
	Value       float64      `json:"value" bson:"value"`
	IsActive    bool         `json:"isActive" bson:"isActive"`
	ExpiryDate  time.Time    `json:"expiryDate" bson:"expiryDate"`
	UsageCount  int          `json:"usageCount" bson:"usageCount"`
	MaxUsage    int          `json:"maxUsage" bson:"maxUsage"`
	Description string       `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time    `json:"createdAt" bson:"createdAt"`
}

// Usable reports whether the coupon can still be applied at time now.
func (c Coupon) Usable(now time.Time) bool {
	if !c.IsActive || !now.Before(c.ExpiryDate) {
		return false
	}
	return c.MaxUsage == 0 || c.UsageCount < c.MaxUsage
}
