package service

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/salaviva/backend/internal/errs"
	"github.com/salaviva/backend/internal/model"
	"github.com/salaviva/backend/internal/repository"
	"github.com/salaviva/backend/internal/server"
)

// Setting keys. Values live in the settings table as JSONB scalars and
// fall back to the defaults below when the row is absent.
const (
	SettingCancellationWindowHours  = "booking.cancellation_window_hours"
	SettingMaxAdvanceDays           = "booking.max_advance_days"
	SettingPixDiscountPercent       = "payment.pix_discount_percent"
	SettingMaxInstallments          = "payment.max_installments"
	SettingInterestFreeInstallments = "payment.interest_free_installments"
	SettingInstallmentInterestPct   = "payment.installment_interest_percent"
	SettingPaymentExpiryMinutes     = "payment.expiry_minutes"
)

// integerSettings lists keys whose values must be whole numbers.
var integerSettings = map[string]bool{
	SettingCancellationWindowHours:  true,
	SettingMaxAdvanceDays:           true,
	SettingMaxInstallments:          true,
	SettingInterestFreeInstallments: true,
	SettingPaymentExpiryMinutes:     true,
}

var settingDefaults = map[string]string{
	SettingCancellationWindowHours:  "24",
	SettingMaxAdvanceDays:           "60",
	SettingPixDiscountPercent:       "5",
	SettingMaxInstallments:          "12",
	SettingInterestFreeInstallments: "3",
	SettingInstallmentInterestPct:   "1.99",
	SettingPaymentExpiryMinutes:     "30",
}

// SettingsService reads and writes the admin-tunable knobs. Reads always
// succeed: an absent or unreadable row falls back to the compiled-in
// default so a wiped settings table can't break checkout.
type SettingsService struct {
	server *server.Server
	repos  *repository.Repositories
	audit  *AuditService
}

func NewSettingsService(s *server.Server, repos *repository.Repositories, audit *AuditService) *SettingsService {
	return &SettingsService{
		server: s,
		repos:  repos,
		audit:  audit,
	}
}

func (s *SettingsService) rawValue(ctx context.Context, key string) []byte {
	value, ok, err := s.repos.Settings.Get(ctx, key)
	if err != nil {
		s.server.Logger.Warn().Err(err).Str("key", key).Msg("failed to read setting, using default")
		ok = false
	}
	if !ok {
		return []byte(settingDefaults[key])
	}
	return value
}

func (s *SettingsService) intValue(ctx context.Context, key string) int {
	var v int
	if err := json.Unmarshal(s.rawValue(ctx, key), &v); err != nil {
		s.server.Logger.Warn().Err(err).Str("key", key).Msg("malformed setting value, using default")
		_ = json.Unmarshal([]byte(settingDefaults[key]), &v)
	}
	return v
}

func (s *SettingsService) decimalValue(ctx context.Context, key string) decimal.Decimal {
	var v decimal.Decimal
	if err := json.Unmarshal(s.rawValue(ctx, key), &v); err != nil {
		s.server.Logger.Warn().Err(err).Str("key", key).Msg("malformed setting value, using default")
		v = decimal.RequireFromString(settingDefaults[key])
	}
	return v
}

// BookingPolicy bundles the booking-side knobs for one read.
type BookingPolicy struct {
	CancellationWindowHours int
	MaxAdvanceDays          int
}

func (s *SettingsService) BookingPolicy(ctx context.Context) BookingPolicy {
	return BookingPolicy{
		CancellationWindowHours: s.intValue(ctx, SettingCancellationWindowHours),
		MaxAdvanceDays:          s.intValue(ctx, SettingMaxAdvanceDays),
	}
}

// PaymentPolicy bundles the checkout knobs for one read.
type PaymentPolicy struct {
	PixDiscountPercent         decimal.Decimal
	MaxInstallments            int
	InterestFreeInstallments   int
	InstallmentInterestPercent decimal.Decimal
	ExpiryMinutes              int
}

func (s *SettingsService) PaymentPolicy(ctx context.Context) PaymentPolicy {
	return PaymentPolicy{
		PixDiscountPercent:         s.decimalValue(ctx, SettingPixDiscountPercent),
		MaxInstallments:            s.intValue(ctx, SettingMaxInstallments),
		InterestFreeInstallments:   s.intValue(ctx, SettingInterestFreeInstallments),
		InstallmentInterestPercent: s.decimalValue(ctx, SettingInstallmentInterestPct),
		ExpiryMinutes:              s.intValue(ctx, SettingPaymentExpiryMinutes),
	}
}

// Effective returns every known key with its stored or default value, as
// raw JSON, for the admin settings screen.
func (s *SettingsService) Effective(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := s.repos.Settings.All(ctx)
	if err != nil {
		return nil, err
	}

	stored := make(map[string][]byte, len(rows))
	for _, row := range rows {
		stored[row.Key] = row.Value
	}

	out := make(map[string]json.RawMessage, len(settingDefaults))
	for key, def := range settingDefaults {
		if value, ok := stored[key]; ok {
			out[key] = json.RawMessage(value)
			continue
		}
		out[key] = json.RawMessage(def)
	}

	return out, nil
}

// Update validates and persists the provided keys. Unknown keys are
// rejected rather than silently stored; values must be JSON numbers in
// the key's sane range.
func (s *SettingsService) Update(ctx context.Context, actor *model.User, values map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	for key, raw := range values {
		if _, known := settingDefaults[key]; !known {
			return nil, errs.NewUnprocessableError(fmt.Sprintf("Unknown setting %q", key), nil)
		}
		if err := validateSettingValue(key, raw); err != nil {
			return nil, err
		}
	}

	for key, raw := range values {
		if err := s.repos.Settings.Put(ctx, key, []byte(raw)); err != nil {
			return nil, err
		}
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:  actor,
		Action: "settings.update",
		Entity: "settings",
		Metadata: map[string]any{
			"keys": settingKeys(values),
		},
	})

	return s.Effective(ctx)
}

func settingKeys(values map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	return keys
}

func validateSettingValue(key string, raw json.RawMessage) error {
	value, err := decimal.NewFromString(string(raw))
	if err != nil {
		return errs.NewUnprocessableError(fmt.Sprintf("Setting %q must be a number", key), nil)
	}

	if integerSettings[key] && !value.IsInteger() {
		return errs.NewUnprocessableError(fmt.Sprintf("Setting %q must be an integer", key), nil)
	}

	if value.IsNegative() {
		return errs.NewUnprocessableError(fmt.Sprintf("Setting %q must not be negative", key), nil)
	}

	switch key {
	case SettingPixDiscountPercent:
		if value.GreaterThan(decimal.NewFromInt(100)) {
			return errs.NewUnprocessableError("PIX discount percent must be between 0 and 100", nil)
		}
	case SettingMaxInstallments:
		if value.LessThan(decimal.NewFromInt(1)) || value.GreaterThan(decimal.NewFromInt(24)) {
			return errs.NewUnprocessableError("Max installments must be between 1 and 24", nil)
		}
	case SettingPaymentExpiryMinutes:
		if value.LessThan(decimal.NewFromInt(5)) {
			return errs.NewUnprocessableError("Payment expiry must be at least 5 minutes", nil)
		}
	}

	return nil
}
