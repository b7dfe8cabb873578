package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/salaviva/backend/internal/model"
)

func TestCouponDiscountPercent(t *testing.T) {
	coupon := &model.Coupon{Kind: model.CouponKindPercent, Value: dec("10")}

	assert.Equal(t, "15.00", CouponDiscount(coupon, dec("150.00")).StringFixed(2))
	assert.Equal(t, "0.00", CouponDiscount(coupon, dec("0")).StringFixed(2))

	oddPercent := &model.Coupon{Kind: model.CouponKindPercent, Value: dec("33.33")}
	assert.Equal(t, "33.33", CouponDiscount(oddPercent, dec("100.00")).StringFixed(2))

	full := &model.Coupon{Kind: model.CouponKindPercent, Value: dec("100")}
	assert.Equal(t, "75.50", CouponDiscount(full, dec("75.50")).StringFixed(2))
}

func TestCouponDiscountFixed(t *testing.T) {
	coupon := &model.Coupon{Kind: model.CouponKindFixed, Value: dec("20")}

	assert.Equal(t, "20.00", CouponDiscount(coupon, dec("50.00")).StringFixed(2))

	// Fixed discounts never exceed the purchase amount.
	big := &model.Coupon{Kind: model.CouponKindFixed, Value: dec("80")}
	assert.Equal(t, "50.00", CouponDiscount(big, dec("50.00")).StringFixed(2))
}

func TestValidateCoupon(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)
	minAmount := dec("100")
	maxUses := 5

	base := func() *model.Coupon {
		return &model.Coupon{
			Code:      "WELCOME10",
			Kind:      model.CouponKindPercent,
			Value:     dec("10"),
			AppliesTo: model.CouponTargetAll,
			Active:    true,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*model.Coupon)
		amount  string
		target  model.CouponTarget
		wantErr error
	}{
		{
			name:   "valid with all constraints set",
			amount: "150.00",
			target: model.CouponTargetBookings,
			mutate: func(c *model.Coupon) {
				c.ValidFrom = &past
				c.ValidUntil = &future
				c.MinAmount = &minAmount
				c.MaxUses = &maxUses
				c.UsedCount = 4
			},
		},
		{
			name:    "inactive",
			amount:  "150.00",
			target:  model.CouponTargetBookings,
			mutate:  func(c *model.Coupon) { c.Active = false },
			wantErr: ErrCouponInactive,
		},
		{
			name:    "not started",
			amount:  "150.00",
			target:  model.CouponTargetBookings,
			mutate:  func(c *model.Coupon) { c.ValidFrom = &future },
			wantErr: ErrCouponNotStarted,
		},
		{
			name:    "expired",
			amount:  "150.00",
			target:  model.CouponTargetBookings,
			mutate:  func(c *model.Coupon) { c.ValidUntil = &past },
			wantErr: ErrCouponExpired,
		},
		{
			name:    "wrong target",
			amount:  "150.00",
			target:  model.CouponTargetBookings,
			mutate:  func(c *model.Coupon) { c.AppliesTo = model.CouponTargetProducts },
			wantErr: ErrCouponWrongTarget,
		},
		{
			name:    "below minimum",
			amount:  "99.99",
			target:  model.CouponTargetBookings,
			mutate:  func(c *model.Coupon) { c.MinAmount = &minAmount },
			wantErr: ErrCouponBelowMinimum,
		},
		{
			name:   "exhausted",
			amount: "150.00",
			target: model.CouponTargetBookings,
			mutate: func(c *model.Coupon) {
				c.MaxUses = &maxUses
				c.UsedCount = 5
			},
			wantErr: ErrCouponExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coupon := base()
			tt.mutate(coupon)

			err := ValidateCoupon(coupon, dec(tt.amount), tt.target, now)

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestPixDiscount(t *testing.T) {
	assert.Equal(t, "10.00", PixDiscount(dec("200.00"), dec("5")).StringFixed(2))
	assert.Equal(t, "5.00", PixDiscount(dec("99.90"), dec("5")).StringFixed(2))
	assert.Equal(t, "0.00", PixDiscount(dec("200.00"), decimal.Zero).StringFixed(2))
	assert.Equal(t, "0.00", PixDiscount(decimal.Zero, dec("5")).StringFixed(2))
}

func TestApplyDiscount(t *testing.T) {
	assert.Equal(t, "85.00", ApplyDiscount(dec("100.00"), dec("15.00")).StringFixed(2))
	assert.Equal(t, "0.00", ApplyDiscount(dec("50.00"), dec("80.00")).StringFixed(2))
}
