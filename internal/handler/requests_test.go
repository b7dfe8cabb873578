package handler

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salaviva/backend/internal/model"
	"github.com/salaviva/backend/internal/validation"
)

func TestNewRequestAllocatesFreshValue(t *testing.T) {
	prototype := &CheckoutRequest{}

	first := newRequest(prototype)
	second := newRequest(prototype)

	require.NotSame(t, first, second)
	require.NotSame(t, prototype, first)

	first.ProductID = 42
	assert.Zero(t, second.ProductID)
	assert.Zero(t, prototype.ProductID)
}

func TestCheckoutRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CheckoutRequest
		wantErr bool
	}{
		{"pix without guest", CheckoutRequest{ProductID: 1, Method: "pix"}, false},
		{"card with installments", CheckoutRequest{ProductID: 1, Method: "card", Installments: 3, CardToken: "tok_123"}, false},
		{"missing product", CheckoutRequest{Method: "pix"}, true},
		{"unknown method", CheckoutRequest{ProductID: 1, Method: "boleto"}, true},
		{"installments over cap", CheckoutRequest{ProductID: 1, Method: "card", Installments: 25}, true},
		{
			"guest with valid details",
			CheckoutRequest{ProductID: 1, Method: "pix", Guest: &GuestPayload{
				Name:  "Maria Souza",
				Email: "maria@example.com",
				CPF:   "529.982.247-25",
			}},
			false,
		},
		{
			"guest with bad email",
			CheckoutRequest{ProductID: 1, Method: "pix", Guest: &GuestPayload{
				Name:  "Maria Souza",
				Email: "not-an-email",
			}},
			true,
		},
		{
			"guest with bad cpf",
			CheckoutRequest{ProductID: 1, Method: "pix", Guest: &GuestPayload{
				Name:  "Maria Souza",
				Email: "maria@example.com",
				CPF:   "12345678900",
			}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCouponPreviewRequestValidate(t *testing.T) {
	valid := CouponPreviewRequest{Code: "BEMVINDO10", Amount: decimal.NewFromInt(100), Target: "bookings"}
	assert.NoError(t, valid.Validate())

	missingTarget := CouponPreviewRequest{Code: "BEMVINDO10", Amount: decimal.NewFromInt(100)}
	assert.Error(t, missingTarget.Validate())

	negative := CouponPreviewRequest{Code: "BEMVINDO10", Amount: decimal.NewFromInt(-1), Target: "products"}
	err := negative.Validate()
	require.Error(t, err)

	var custom validation.CustomValidationErrors
	require.True(t, errors.As(err, &custom))
	require.Len(t, custom, 1)
	assert.Equal(t, "amount", custom[0].Field)
}

func TestAdjustCreditsRequestAllowsZeroDelta(t *testing.T) {
	// A zero delta is a tag-valid payload. The service rejects it with a
	// clearer message than a generic required-field error.
	req := AdjustCreditsRequest{ID: 1, DeltaHours: 0}
	assert.NoError(t, req.Validate())

	missingID := AdjustCreditsRequest{DeltaHours: 5}
	assert.Error(t, missingID.Validate())
}

func TestRoomPayloadInputDefaultsActive(t *testing.T) {
	payload := RoomPayload{Name: "Sala Ipê", Capacity: 8, CloseHour: 18}
	assert.True(t, payload.input().Active)

	inactive := false
	payload.Active = &inactive
	assert.False(t, payload.input().Active)
}

func TestCouponPayloadInputDefaultsActive(t *testing.T) {
	payload := CouponPayload{Code: "bemvindo10", Kind: "percent", AppliesTo: "all"}

	in := payload.input()
	assert.True(t, in.Active)
	assert.Equal(t, model.CouponKindPercent, in.Kind)
	assert.Equal(t, model.CouponTargetAll, in.AppliesTo)

	inactive := false
	payload.Active = &inactive
	assert.False(t, payload.input().Active)
}

func TestExportPaymentsRequestValidate(t *testing.T) {
	valid := ExportPaymentsRequest{From: "2025-03-01", To: "2025-03-31"}
	assert.NoError(t, valid.Validate())

	badMonth := ExportPaymentsRequest{From: "2025-13-01", To: "2025-03-31"}
	assert.Error(t, badMonth.Validate())

	missingTo := ExportPaymentsRequest{From: "2025-03-01"}
	assert.Error(t, missingTo.Validate())
}

func TestAdminListPaymentsFilter(t *testing.T) {
	empty := AdminListPaymentsRequest{}
	filter := empty.filter()
	assert.Nil(t, filter.Status)
	assert.Nil(t, filter.Method)
	assert.Nil(t, filter.Kind)
	assert.Nil(t, filter.UserID)

	full := AdminListPaymentsRequest{Status: "approved", Method: "pix", Kind: "product", UserID: 7}
	filter = full.filter()
	require.NotNil(t, filter.Status)
	assert.Equal(t, model.PaymentStatusApproved, *filter.Status)
	require.NotNil(t, filter.Method)
	assert.Equal(t, model.PaymentMethodPix, *filter.Method)
	require.NotNil(t, filter.Kind)
	assert.Equal(t, model.PaymentKindProduct, *filter.Kind)
	require.NotNil(t, filter.UserID)
	assert.Equal(t, int64(7), *filter.UserID)
}

func TestAdminListBookingsFilterDates(t *testing.T) {
	req := AdminListBookingsRequest{From: "2025-03-10", To: "2025-03-10", Status: "confirmed"}

	filter, err := req.filter()
	require.NoError(t, err)

	require.NotNil(t, filter.From)
	require.NotNil(t, filter.To)

	// A single inclusive day becomes a 24h half-open range in venue time.
	assert.Equal(t, 24*time.Hour, filter.To.Sub(*filter.From))
	assert.Equal(t, "America/Sao_Paulo", filter.From.Location().String())

	require.NotNil(t, filter.Status)
	assert.Equal(t, model.BookingStatusConfirmed, *filter.Status)

	bad := AdminListBookingsRequest{From: "not-a-date"}
	_, err = bad.filter()
	assert.Error(t, err)
}

func TestBookingStatusHelper(t *testing.T) {
	assert.Nil(t, bookingStatus(""))

	status := bookingStatus("pending")
	require.NotNil(t, status)
	assert.Equal(t, model.BookingStatusPending, *status)
}
