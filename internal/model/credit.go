package model

import "time"

// CreditKind labels why hours moved in or out of a user's balance.
type CreditKind string

const (
	CreditKindPurchase   CreditKind = "purchase"
	CreditKindBooking    CreditKind = "booking"
	CreditKindRefund     CreditKind = "refund"
	CreditKindAdjustment CreditKind = "adjustment"
	CreditKindExpiry     CreditKind = "expiry"
)

// CreditEntry is one row of the append-only credit-hour ledger.
// DeltaHours is positive for grants (purchase, refund, adjustment up) and
// negative for spends (booking) or claw-backs. A user's balance is the sum
// of their deltas; rows are never updated or deleted, corrections append
// compensating entries.
type CreditEntry struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	DeltaHours int        `json:"delta_hours"`
	Kind       CreditKind `json:"kind"`
	BookingID  *int64     `json:"booking_id,omitempty"`
	PaymentID  *int64     `json:"payment_id,omitempty"`
	ProductID  *int64     `json:"product_id,omitempty"`
	Note       *string    `json:"note,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
