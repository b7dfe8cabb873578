package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/salaviva/backend/internal/middleware"
	"github.com/salaviva/backend/internal/model"
	"github.com/salaviva/backend/internal/server"
	"github.com/salaviva/backend/internal/service"
	"github.com/salaviva/backend/internal/validation"
)

// CouponsHandler serves the public discount preview and the admin coupon
// back-office.
type CouponsHandler struct {
	Handler
	coupons *service.CouponService
}

func NewCouponsHandler(s *server.Server, coupons *service.CouponService) *CouponsHandler {
	return &CouponsHandler{Handler: NewHandler(s), coupons: coupons}
}

// CouponPreviewRequest evaluates a code against an order amount without
// redeeming it.
type CouponPreviewRequest struct {
	Code   string          `json:"code" validate:"required,max=40"`
	Amount decimal.Decimal `json:"amount"`
	Target string          `json:"target" validate:"required,oneof=bookings products"`
}

func (r *CouponPreviewRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}

	if r.Amount.IsNegative() {
		return validation.CustomValidationErrors{
			{Field: "amount", Message: "must not be negative"},
		}
	}

	return nil
}

// CouponPayload is the admin create/update body. A nil active defaults
// to true.
type CouponPayload struct {
	Code       string           `json:"code" validate:"required,max=40"`
	Kind       string           `json:"kind" validate:"required,oneof=percent fixed"`
	Value      decimal.Decimal  `json:"value"`
	MinAmount  *decimal.Decimal `json:"min_amount"`
	MaxUses    *int             `json:"max_uses" validate:"omitempty,gt=0"`
	AppliesTo  string           `json:"applies_to" validate:"required,oneof=all bookings products"`
	ValidFrom  *time.Time       `json:"valid_from"`
	ValidUntil *time.Time       `json:"valid_until"`
	Active     *bool            `json:"active"`
}

func (p *CouponPayload) input() service.CouponInput {
	active := true
	if p.Active != nil {
		active = *p.Active
	}

	return service.CouponInput{
		Code:       p.Code,
		Kind:       model.CouponKind(p.Kind),
		Value:      p.Value,
		MinAmount:  p.MinAmount,
		MaxUses:    p.MaxUses,
		AppliesTo:  model.CouponTarget(p.AppliesTo),
		ValidFrom:  p.ValidFrom,
		ValidUntil: p.ValidUntil,
		Active:     active,
	}
}

type CreateCouponRequest struct {
	CouponPayload
}

func (r *CreateCouponRequest) Validate() error { return validation.Struct(r) }

type UpdateCouponRequest struct {
	ID int64 `param:"id" validate:"required,gt=0"`
	CouponPayload
}

func (r *UpdateCouponRequest) Validate() error { return validation.Struct(r) }

type CouponListResponse struct {
	Coupons []*model.Coupon  `json:"coupons"`
	Pages   service.PageInfo `json:"pages"`
}

type CouponResponse struct {
	Coupon *model.Coupon `json:"coupon"`
}

// CouponUsageRequest pages through the payments a coupon was redeemed on.
type CouponUsageRequest struct {
	ID int64 `param:"id" validate:"required,gt=0"`
	PageRequest
}

func (r *CouponUsageRequest) Validate() error { return validation.Struct(r) }

func (h *CouponsHandler) Preview(c echo.Context, req *CouponPreviewRequest) (*service.CouponPreview, error) {
	return h.coupons.Preview(c.Request().Context(), req.Code, req.Amount, model.CouponTarget(req.Target))
}

func (h *CouponsHandler) AdminList(c echo.Context, req *PageRequest) (*CouponListResponse, error) {
	coupons, pages, err := h.coupons.List(c.Request().Context(), req.pagination())
	if err != nil {
		return nil, err
	}

	return &CouponListResponse{Coupons: coupons, Pages: pages}, nil
}

func (h *CouponsHandler) AdminGet(c echo.Context, req *IDRequest) (*CouponResponse, error) {
	coupon, err := h.coupons.Get(c.Request().Context(), req.ID)
	if err != nil {
		return nil, err
	}

	return &CouponResponse{Coupon: coupon}, nil
}

func (h *CouponsHandler) Create(c echo.Context, req *CreateCouponRequest) (*CouponResponse, error) {
	coupon, err := h.coupons.Create(c.Request().Context(), middleware.CurrentUser(c), req.input())
	if err != nil {
		return nil, err
	}

	return &CouponResponse{Coupon: coupon}, nil
}

func (h *CouponsHandler) Update(c echo.Context, req *UpdateCouponRequest) (*CouponResponse, error) {
	coupon, err := h.coupons.Update(c.Request().Context(), middleware.CurrentUser(c), req.ID, req.input())
	if err != nil {
		return nil, err
	}

	return &CouponResponse{Coupon: coupon}, nil
}

func (h *CouponsHandler) Delete(c echo.Context, req *IDRequest) error {
	return h.coupons.Delete(c.Request().Context(), middleware.CurrentUser(c), req.ID)
}

func (h *CouponsHandler) Usage(c echo.Context, req *CouponUsageRequest) (*service.CouponUsage, error) {
	return h.coupons.Usage(c.Request().Context(), req.ID, req.pagination())
}
