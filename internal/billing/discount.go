package billing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/salaviva/backend/internal/model"
)

// Coupon rejection reasons. Services map these onto 422 responses with a
// human message; the preview endpoint returns them verbatim as the
// "reason" field.
var (
	ErrCouponInactive     = errors.New("coupon is not active")
	ErrCouponNotStarted   = errors.New("coupon is not valid yet")
	ErrCouponExpired      = errors.New("coupon has expired")
	ErrCouponWrongTarget  = errors.New("coupon does not apply to this purchase")
	ErrCouponBelowMinimum = errors.New("purchase amount is below the coupon minimum")
	ErrCouponExhausted    = errors.New("coupon usage limit reached")
)

// ValidateCoupon checks every redemption precondition against the coupon
// row as loaded: active flag, validity window, target, minimum amount and
// usage limit. It does not consume a use; redemption increments used_count
// inside the payment transaction.
func ValidateCoupon(c *model.Coupon, amount decimal.Decimal, target model.CouponTarget, now time.Time) error {
	if !c.Active {
		return ErrCouponInactive
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return ErrCouponNotStarted
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return ErrCouponExpired
	}
	if !c.AppliesToTarget(target) {
		return ErrCouponWrongTarget
	}
	if c.MinAmount != nil && amount.LessThan(*c.MinAmount) {
		return ErrCouponBelowMinimum
	}
	if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
		return ErrCouponExhausted
	}
	return nil
}

// CouponDiscount computes the BRL discount a coupon grants on amount.
// Percent coupons take value% of the amount, fixed coupons their face
// value. The discount is capped at the amount so totals never go negative.
func CouponDiscount(c *model.Coupon, amount decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal

	switch c.Kind {
	case model.CouponKindPercent:
		discount = Round2(amount.Mul(c.Value).Div(hundred))
	case model.CouponKindFixed:
		discount = Round2(c.Value)
	}

	if discount.GreaterThan(amount) {
		return amount
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}

// PixDiscount computes the PIX payment incentive: percent of the amount
// remaining after coupon discounts, rounded to the centavo.
func PixDiscount(amount, percent decimal.Decimal) decimal.Decimal {
	if percent.IsZero() || !amount.IsPositive() {
		return decimal.Zero
	}

	discount := Round2(amount.Mul(percent).Div(hundred))
	if discount.GreaterThan(amount) {
		return amount
	}
	return discount
}

// ApplyDiscount subtracts discount from amount, clamping at zero.
func ApplyDiscount(amount, discount decimal.Decimal) decimal.Decimal {
	result := amount.Sub(discount)
	if result.IsNegative() {
		return decimal.Zero
	}
	return Round2(result)
}
