package service

import (
	"net/http"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salaviva/backend/internal/errs"
	"github.com/salaviva/backend/internal/model"
)

func TestBusinessDate(t *testing.T) {
	day, err := BusinessDate("2025-03-10")
	require.NoError(t, err)

	assert.Equal(t, "America/Sao_Paulo", day.Location().String())
	assert.Equal(t, 2025, day.Year())
	assert.Equal(t, time.March, day.Month())
	assert.Equal(t, 10, day.Day())
	assert.Equal(t, 0, day.Hour())

	// São Paulo runs at UTC-3 year-round since 2019.
	_, offset := day.Zone()
	assert.Equal(t, -3*60*60, offset)

	_, err = BusinessDate("10/03/2025")
	assert.Error(t, err)
}

func TestPaginationLimitOffset(t *testing.T) {
	tests := []struct {
		name       string
		p          Pagination
		wantLimit  int
		wantOffset int
	}{
		{"defaults", Pagination{}, 20, 0},
		{"second page", Pagination{Page: 2, PerPage: 10}, 10, 10},
		{"zero page clamps to first", Pagination{Page: 0, PerPage: 10}, 10, 0},
		{"negative page clamps to first", Pagination{Page: -3, PerPage: 10}, 10, 0},
		{"per_page capped", Pagination{Page: 1, PerPage: 500}, 100, 0},
		{"offset uses clamped per_page", Pagination{Page: 3, PerPage: 500}, 100, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := tt.p.limitOffset()
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestNewPageInfo(t *testing.T) {
	info := newPageInfo(Pagination{Page: 2, PerPage: 10}, 35)
	assert.Equal(t, 2, info.Page)
	assert.Equal(t, 10, info.PerPage)
	assert.Equal(t, 35, info.Total)
	assert.Equal(t, 4, info.TotalPages)

	empty := newPageInfo(Pagination{}, 0)
	assert.Equal(t, 1, empty.Page)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestFormatBookingTime(t *testing.T) {
	// 18:00 UTC is 15:00 in São Paulo.
	instant := time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, "15/06/2025 15:00", formatBookingTime(instant))
}

func TestCouponInputValidate(t *testing.T) {
	valid := CouponInput{Kind: model.CouponKindPercent, Value: decimal.NewFromInt(10)}
	assert.NoError(t, valid.validate())

	over := CouponInput{Kind: model.CouponKindPercent, Value: decimal.NewFromInt(150)}
	assert.Error(t, over.validate())

	zero := CouponInput{Kind: model.CouponKindFixed, Value: decimal.Zero}
	assert.Error(t, zero.validate())

	badKind := CouponInput{Kind: model.CouponKind("bogus"), Value: decimal.NewFromInt(1)}
	assert.Error(t, badKind.validate())

	from := time.Now()
	until := from.Add(-time.Hour)
	backwards := CouponInput{
		Kind:       model.CouponKindFixed,
		Value:      decimal.NewFromInt(5),
		ValidFrom:  &from,
		ValidUntil: &until,
	}
	assert.Error(t, backwards.validate())
}

func TestCouponInputToModelUppercasesCode(t *testing.T) {
	in := CouponInput{
		Code:  "  bemvindo10 ",
		Kind:  model.CouponKindPercent,
		Value: decimal.NewFromInt(10),
	}

	coupon := in.toModel()
	assert.Equal(t, "BEMVINDO10", coupon.Code)
}

func TestUpperFirst(t *testing.T) {
	assert.Equal(t, "Coupon expired", upperFirst("coupon expired"))
	assert.Equal(t, "X", upperFirst("x"))
	assert.Equal(t, "", upperFirst(""))
}

func TestValidateSettingValue(t *testing.T) {
	ok := func(key, raw string) {
		t.Helper()
		assert.NoError(t, validateSettingValue(key, json.RawMessage(raw)), "%s = %s", key, raw)
	}
	bad := func(key, raw string) {
		t.Helper()
		assert.Error(t, validateSettingValue(key, json.RawMessage(raw)), "%s = %s", key, raw)
	}

	ok(SettingPixDiscountPercent, "5")
	ok(SettingPixDiscountPercent, "0")
	ok(SettingPixDiscountPercent, "2.5")
	bad(SettingPixDiscountPercent, "101")
	bad(SettingPixDiscountPercent, "-1")
	bad(SettingPixDiscountPercent, `"five"`)

	ok(SettingMaxInstallments, "12")
	bad(SettingMaxInstallments, "0")
	bad(SettingMaxInstallments, "25")
	// integer keys reject fractions
	bad(SettingMaxInstallments, "2.5")

	ok(SettingPaymentExpiryMinutes, "30")
	bad(SettingPaymentExpiryMinutes, "2")

	ok(SettingCancellationWindowHours, "24")
	bad(SettingCancellationWindowHours, "1.5")

	ok(SettingInstallmentInterestPct, "1.99")
}

func TestSettingDefaultsCoverEveryKey(t *testing.T) {
	// Every integer-constrained key must have a default that itself passes
	// validation, otherwise the fallback path would serve bad values.
	for key, def := range settingDefaults {
		require.NoError(t, validateSettingValue(key, json.RawMessage(def)),
			"default for %s is invalid", key)
	}
}

func TestValidateSlot(t *testing.T) {
	room := &model.Room{Name: "Sala Ipanema", OpenHour: 8, CloseHour: 20}
	policy := BookingPolicy{CancellationWindowHours: 24, MaxAdvanceDays: 60}
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, businessLocation)

	at := func(days, hour int) time.Time {
		return time.Date(2025, 3, 10+days, hour, 0, 0, 0, businessLocation)
	}

	require.NoError(t, validateSlot(room, BookingInput{StartsAt: at(1, 10), Hours: 2}, policy, now))
	// Ending exactly at closing time is allowed.
	require.NoError(t, validateSlot(room, BookingInput{StartsAt: at(1, 18), Hours: 2}, policy, now))

	tests := []struct {
		name string
		in   BookingInput
	}{
		{"zero hours", BookingInput{StartsAt: at(1, 10), Hours: 0}},
		{"nine hours", BookingInput{StartsAt: at(1, 10), Hours: 9}},
		{"half-hour start", BookingInput{StartsAt: at(1, 10).Add(30 * time.Minute), Hours: 2}},
		{"start in the past", BookingInput{StartsAt: at(-1, 10), Hours: 2}},
		{"beyond advance limit", BookingInput{StartsAt: at(61, 10), Hours: 2}},
		{"before opening", BookingInput{StartsAt: at(1, 7), Hours: 2}},
		{"runs past closing", BookingInput{StartsAt: at(1, 19), Hours: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSlot(room, tt.in, policy, now)

			var httpErr *errs.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusUnprocessableEntity, httpErr.Status)
		})
	}
}
