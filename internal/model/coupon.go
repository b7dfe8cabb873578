package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CouponKind distinguishes percentage discounts from fixed BRL amounts.
type CouponKind string

const (
	CouponKindPercent CouponKind = "percent"
	CouponKindFixed   CouponKind = "fixed"
)

// CouponTarget scopes a coupon to a checkout type.
type CouponTarget string

const (
	CouponTargetAll      CouponTarget = "all"
	CouponTargetBookings CouponTarget = "bookings"
	CouponTargetProducts CouponTarget = "products"
)

// Coupon is a discount code. Value is a percentage (0-100) for percent
// coupons and a BRL amount for fixed ones. UsedCount is incremented inside
// the payment transaction so max_uses can't be oversubscribed by
// concurrent checkouts.
type Coupon struct {
	ID         int64            `json:"id"`
	Code       string           `json:"code"`
	Kind       CouponKind       `json:"kind"`
	Value      decimal.Decimal  `json:"value"`
	MinAmount  *decimal.Decimal `json:"min_amount,omitempty"`
	MaxUses    *int             `json:"max_uses,omitempty"`
	UsedCount  int              `json:"used_count"`
	AppliesTo  CouponTarget     `json:"applies_to"`
	ValidFrom  *time.Time       `json:"valid_from,omitempty"`
	ValidUntil *time.Time       `json:"valid_until,omitempty"`
	Active     bool             `json:"active"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// AppliesToTarget reports whether the coupon can be used for the given
// checkout type.
func (c *Coupon) AppliesToTarget(target CouponTarget) bool {
	return c.AppliesTo == CouponTargetAll || c.AppliesTo == target
}
