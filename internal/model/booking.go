package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// PaidWith records how a booking was settled: spending ledger hours or a
// gateway payment.
type PaidWith string

const (
	PaidWithCredits PaidWith = "credits"
	PaidWithGateway PaidWith = "gateway"
)

// Booking reserves a room for a whole-hour [StartsAt, EndsAt) slot.
// Reference is a short base58 code shown to customers and printed on
// emails. Overlaps are rejected by the database (exclusion constraint on
// room + time range over pending/confirmed rows), not by application
// checks, so concurrent checkouts can't double-book.
type Booking struct {
	ID             int64           `json:"id"`
	Reference      string          `json:"reference"`
	UserID         int64           `json:"user_id"`
	RoomID         int64           `json:"room_id"`
	StartsAt       time.Time       `json:"starts_at"`
	EndsAt         time.Time       `json:"ends_at"`
	Status         BookingStatus   `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	PaidWith       PaidWith        `json:"paid_with"`
	PaymentID      *int64          `json:"payment_id,omitempty"`
	Notes          *string         `json:"notes,omitempty"`
	ReminderSentAt *time.Time      `json:"-"`
	CancelledAt    *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Room is populated on list/detail reads for display; nil elsewhere.
	Room *Room `json:"room,omitempty"`
}

// Hours is the booked duration in whole hours.
func (b *Booking) Hours() int {
	return int(b.EndsAt.Sub(b.StartsAt) / time.Hour)
}

// IsCancellable reports whether the booking is in a state that still
// admits cancellation. The cancellation window check (hours before start)
// is a policy decision made by the booking service on top of this.
func (b *Booking) IsCancellable() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}
