package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentKind string

const (
	PaymentKindBooking PaymentKind = "booking"
	PaymentKindProduct PaymentKind = "product"
)

type PaymentMethod string

const (
	PaymentMethodPix  PaymentMethod = "pix"
	PaymentMethodCard PaymentMethod = "card"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusApproved  PaymentStatus = "approved"
	PaymentStatusDeclined  PaymentStatus = "declined"
	PaymentStatusExpired   PaymentStatus = "expired"
	PaymentStatusRefunded  PaymentStatus = "refunded"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// paymentTransitions encodes the forward-only status graph. Webhooks
// arrive out of order and may be replayed; anything not listed here is
// refused so a stale "declined" can never regress an approved payment.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:  {PaymentStatusApproved, PaymentStatusDeclined, PaymentStatusExpired, PaymentStatusCancelled},
	PaymentStatusApproved: {PaymentStatusRefunded},
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsFinal reports whether no further transitions are possible.
func (s PaymentStatus) IsFinal() bool {
	return len(paymentTransitions[s]) == 0
}

// Payment records one gateway charge. Total = Amount - Discount plus card
// installment interest when Installments exceeds the interest-free count.
// GatewayID is the processor's payment id, unique per provider, which is
// how webhook events find their payment.
type Payment struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	Kind         PaymentKind     `json:"kind"`
	BookingID    *int64          `json:"booking_id,omitempty"`
	ProductID    *int64          `json:"product_id,omitempty"`
	Status       PaymentStatus   `json:"status"`
	Method       PaymentMethod   `json:"method"`
	Amount       decimal.Decimal `json:"amount"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
	Installments int             `json:"installments"`
	CouponID     *int64          `json:"coupon_id,omitempty"`
	Gateway      string          `json:"gateway"`
	GatewayID    string          `json:"gateway_id"`
	PixQRCode    *string         `json:"pix_qr_code,omitempty"`
	PixCopyPaste *string         `json:"pix_copy_paste,omitempty"`
	CardBrand    *string         `json:"card_brand,omitempty"`
	CardLast4    *string         `json:"card_last4,omitempty"`
	PaidAt       *time.Time      `json:"paid_at,omitempty"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
