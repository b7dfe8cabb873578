package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatusTransitions(t *testing.T) {
	tests := []struct {
		from PaymentStatus
		to   PaymentStatus
		want bool
	}{
		{PaymentStatusPending, PaymentStatusApproved, true},
		{PaymentStatusPending, PaymentStatusDeclined, true},
		{PaymentStatusPending, PaymentStatusExpired, true},
		{PaymentStatusPending, PaymentStatusCancelled, true},
		{PaymentStatusPending, PaymentStatusRefunded, false},
		{PaymentStatusApproved, PaymentStatusRefunded, true},
		{PaymentStatusApproved, PaymentStatusDeclined, false},
		{PaymentStatusApproved, PaymentStatusExpired, false},
		{PaymentStatusApproved, PaymentStatusPending, false},
		{PaymentStatusDeclined, PaymentStatusApproved, false},
		{PaymentStatusExpired, PaymentStatusApproved, false},
		{PaymentStatusRefunded, PaymentStatusApproved, false},
		{PaymentStatusCancelled, PaymentStatusApproved, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestPaymentStatusIsFinal(t *testing.T) {
	assert.False(t, PaymentStatusPending.IsFinal())
	assert.False(t, PaymentStatusApproved.IsFinal())
	assert.True(t, PaymentStatusDeclined.IsFinal())
	assert.True(t, PaymentStatusExpired.IsFinal())
	assert.True(t, PaymentStatusRefunded.IsFinal())
	assert.True(t, PaymentStatusCancelled.IsFinal())
}

func TestBookingHours(t *testing.T) {
	start := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	b := &Booking{StartsAt: start, EndsAt: start.Add(2 * time.Hour)}
	assert.Equal(t, 2, b.Hours())
}

func TestBookingIsCancellable(t *testing.T) {
	assert.True(t, (&Booking{Status: BookingStatusPending}).IsCancellable())
	assert.True(t, (&Booking{Status: BookingStatusConfirmed}).IsCancellable())
	assert.False(t, (&Booking{Status: BookingStatusCancelled}).IsCancellable())
	assert.False(t, (&Booking{Status: BookingStatusCompleted}).IsCancellable())
}

func TestCouponAppliesToTarget(t *testing.T) {
	all := &Coupon{AppliesTo: CouponTargetAll}
	assert.True(t, all.AppliesToTarget(CouponTargetBookings))
	assert.True(t, all.AppliesToTarget(CouponTargetProducts))

	bookingsOnly := &Coupon{AppliesTo: CouponTargetBookings}
	assert.True(t, bookingsOnly.AppliesToTarget(CouponTargetBookings))
	assert.False(t, bookingsOnly.AppliesToTarget(CouponTargetProducts))
}

func TestRoomIsOpenBetween(t *testing.T) {
	room := &Room{OpenHour: 8, CloseHour: 20}
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	at := func(h int) time.Time { return day.Add(time.Duration(h) * time.Hour) }

	assert.True(t, room.IsOpenBetween(at(8), at(10)))
	assert.True(t, room.IsOpenBetween(at(19), at(20)))
	assert.False(t, room.IsOpenBetween(at(7), at(9)))
	assert.False(t, room.IsOpenBetween(at(19), at(21)))
	assert.False(t, room.IsOpenBetween(at(10), at(10)))
	assert.False(t, room.IsOpenBetween(at(12), at(10)))

	allDay := &Room{OpenHour: 0, CloseHour: 24}
	assert.True(t, allDay.IsOpenBetween(at(23), day.AddDate(0, 0, 1)))
}
