package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/salaviva/backend/internal/billing"
	"github.com/salaviva/backend/internal/errs"
	"github.com/salaviva/backend/internal/model"
	"github.com/salaviva/backend/internal/repository"
	"github.com/salaviva/backend/internal/server"
)

// CouponService validates discount codes for checkout previews and owns
// the admin CRUD. Actual redemption happens inside the payment
// transaction, not here.
type CouponService struct {
	server *server.Server
	repos  *repository.Repositories
	audit  *AuditService
}

func NewCouponService(s *server.Server, repos *repository.Repositories, audit *AuditService) *CouponService {
	return &CouponService{
		server: s,
		repos:  repos,
		audit:  audit,
	}
}

// CouponPreview answers "what would this code do to this amount". Invalid
// codes are a normal answer, not an error: the response says why.
type CouponPreview struct {
	Valid    bool            `json:"valid"`
	Reason   string          `json:"reason,omitempty"`
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Preview evaluates a code against an amount and target without
// redeeming. Unknown codes come back valid=false like any other
// rejection, so the endpoint can't be used to enumerate codes apart
// from their validity.
func (s *CouponService) Preview(ctx context.Context, code string, amount decimal.Decimal, target model.CouponTarget) (*CouponPreview, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	preview := &CouponPreview{
		Code:     normalized,
		Discount: decimal.Zero,
		Total:    amount,
	}

	coupon, err := s.repos.Coupons.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			preview.Reason = "coupon not found"
			return preview, nil
		}
		return nil, err
	}

	if err := billing.ValidateCoupon(coupon, amount, target, time.Now()); err != nil {
		preview.Reason = err.Error()
		return preview, nil
	}

	discount := billing.CouponDiscount(coupon, amount)
	preview.Valid = true
	preview.Discount = discount
	preview.Total = billing.ApplyDiscount(amount, discount)

	return preview, nil
}

// Resolve loads and validates a coupon for checkout. A nil coupon with a
// nil error means no code was supplied.
func (s *CouponService) Resolve(ctx context.Context, code string, amount decimal.Decimal, target model.CouponTarget) (*model.Coupon, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}

	coupon, err := s.repos.Coupons.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NewUnprocessableError("Coupon not found", nil)
		}
		return nil, err
	}

	if err := billing.ValidateCoupon(coupon, amount, target, time.Now()); err != nil {
		return nil, errs.NewUnprocessableError(upperFirst(err.Error()), nil)
	}

	return coupon, nil
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// CouponInput carries admin-entered coupon fields. Codes are stored
// uppercase.
type CouponInput struct {
	Code       string
	Kind       model.CouponKind
	Value      decimal.Decimal
	MinAmount  *decimal.Decimal
	MaxUses    *int
	AppliesTo  model.CouponTarget
	ValidFrom  *time.Time
	ValidUntil *time.Time
	Active     bool
}

func (in *CouponInput) validate() error {
	switch in.Kind {
	case model.CouponKindPercent:
		if !in.Value.IsPositive() || in.Value.GreaterThan(decimal.NewFromInt(100)) {
			return errs.NewUnprocessableError("Percent coupons need a value between 0 and 100", nil)
		}
	case model.CouponKindFixed:
		if !in.Value.IsPositive() {
			return errs.NewUnprocessableError("Fixed coupons need a positive value", nil)
		}
	default:
		return errs.NewUnprocessableError("Coupon kind must be percent or fixed", nil)
	}

	if in.ValidFrom != nil && in.ValidUntil != nil && in.ValidUntil.Before(*in.ValidFrom) {
		return errs.NewUnprocessableError("Coupon validity window ends before it starts", nil)
	}

	return nil
}

func (in *CouponInput) toModel() *model.Coupon {
	return &model.Coupon{
		Code:       strings.ToUpper(strings.TrimSpace(in.Code)),
		Kind:       in.Kind,
		Value:      in.Value,
		MinAmount:  in.MinAmount,
		MaxUses:    in.MaxUses,
		AppliesTo:  in.AppliesTo,
		ValidFrom:  in.ValidFrom,
		ValidUntil: in.ValidUntil,
		Active:     in.Active,
	}
}

func (s *CouponService) List(ctx context.Context, p Pagination) ([]*model.Coupon, PageInfo, error) {
	limit, offset := p.limitOffset()

	coupons, total, err := s.repos.Coupons.List(ctx, limit, offset)
	if err != nil {
		return nil, PageInfo{}, err
	}

	return coupons, newPageInfo(p, total), nil
}

func (s *CouponService) Get(ctx context.Context, id int64) (*model.Coupon, error) {
	return s.repos.Coupons.GetByID(ctx, id)
}

func (s *CouponService) Create(ctx context.Context, actor *model.User, in CouponInput) (*model.Coupon, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	coupon, err := s.repos.Coupons.Create(ctx, in.toModel())
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:    actor,
		Action:   "coupon.create",
		Entity:   "coupons",
		EntityID: &coupon.ID,
		Metadata: map[string]any{"code": coupon.Code, "kind": coupon.Kind},
	})

	return coupon, nil
}

func (s *CouponService) Update(ctx context.Context, actor *model.User, id int64, in CouponInput) (*model.Coupon, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	coupon := in.toModel()
	coupon.ID = id

	updated, err := s.repos.Coupons.Update(ctx, coupon)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:    actor,
		Action:   "coupon.update",
		Entity:   "coupons",
		EntityID: &updated.ID,
		Metadata: map[string]any{"code": updated.Code, "active": updated.Active},
	})

	return updated, nil
}

// Delete removes a coupon, or deactivates it when payments already
// reference it so their rows keep a valid foreign key.
func (s *CouponService) Delete(ctx context.Context, actor *model.User, id int64) error {
	coupon, err := s.repos.Coupons.GetByID(ctx, id)
	if err != nil {
		return err
	}

	_, used, err := s.repos.Payments.ListByCoupon(ctx, id, 1, 0)
	if err != nil {
		return err
	}

	action := "coupon.delete"
	if used > 0 {
		action = "coupon.deactivate"
		coupon.Active = false
		_, err = s.repos.Coupons.Update(ctx, coupon)
	} else {
		err = s.repos.Coupons.Delete(ctx, id)
	}
	if err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:    actor,
		Action:   action,
		Entity:   "coupons",
		EntityID: &id,
		Metadata: map[string]any{"code": coupon.Code},
	})

	return nil
}

// CouponUsage is the admin usage report: the coupon plus the payments
// that redeemed it.
type CouponUsage struct {
	Coupon   *model.Coupon    `json:"coupon"`
	Payments []*model.Payment `json:"payments"`
	Pages    PageInfo         `json:"pages"`
}

func (s *CouponService) Usage(ctx context.Context, id int64, p Pagination) (*CouponUsage, error) {
	coupon, err := s.repos.Coupons.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	limit, offset := p.limitOffset()
	payments, total, err := s.repos.Payments.ListByCoupon(ctx, id, limit, offset)
	if err != nil {
		return nil, err
	}

	return &CouponUsage{
		Coupon:   coupon,
		Payments: payments,
		Pages:    newPageInfo(p, total),
	}, nil
}
