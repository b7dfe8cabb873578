package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/salaviva/backend/internal/errs"
	"github.com/salaviva/backend/internal/lib/gateway"
	"github.com/salaviva/backend/internal/middleware"
	"github.com/salaviva/backend/internal/model"
	"github.com/salaviva/backend/internal/repository"
	"github.com/salaviva/backend/internal/server"
	"github.com/salaviva/backend/internal/service"
	"github.com/salaviva/backend/internal/validation"
)

// PaymentsHandler serves package checkout, payment polling, the gateway
// webhook and the admin payment back-office.
type PaymentsHandler struct {
	Handler
	payments *service.PaymentService
	auth     *service.AuthService
}

func NewPaymentsHandler(s *server.Server, payments *service.PaymentService, auth *service.AuthService) *PaymentsHandler {
	return &PaymentsHandler{
		Handler:  NewHandler(s),
		payments: payments,
		auth:     auth,
	}
}

// GuestPayload identifies a buyer without an account. Checkout upserts a
// passwordless user for it; registering later with the same email claims
// the history.
type GuestPayload struct {
	Name  string `json:"name" validate:"required,min=2,max=120"`
	Email string `json:"email" validate:"required,email"`
	CPF   string `json:"cpf" validate:"omitempty,cpf"`
}

// CheckoutRequest purchases a credit package. installments and card_token
// only apply to method=card.
type CheckoutRequest struct {
	ProductID    int64         `json:"product_id" validate:"required,gt=0"`
	Method       string        `json:"method" validate:"required,oneof=pix card"`
	Coupon       string        `json:"coupon" validate:"omitempty,max=40"`
	Installments int           `json:"installments" validate:"gte=0,lte=24"`
	CardToken    string        `json:"card_token" validate:"omitempty,max=200"`
	Guest        *GuestPayload `json:"guest"`
}

func (r *CheckoutRequest) Validate() error { return validation.Struct(r) }

type PaymentListResponse struct {
	Payments []*model.Payment `json:"payments"`
	Pages    service.PageInfo `json:"pages"`
}

type PaymentResponse struct {
	Payment *model.Payment `json:"payment"`
}

func (h *PaymentsHandler) Checkout(c echo.Context, req *CheckoutRequest) (*service.PaymentCheckout, error) {
	ctx := c.Request().Context()

	user := middleware.CurrentUser(c)
	if user == nil {
		if req.Guest == nil {
			return nil, errs.NewUnauthorizedError("Sign in or provide guest details to continue", true)
		}

		var err error
		user, err = h.auth.ResolveGuest(ctx, service.GuestInput{
			Name:  req.Guest.Name,
			Email: req.Guest.Email,
			CPF:   req.Guest.CPF,
		})
		if err != nil {
			return nil, err
		}
	}

	return h.payments.CheckoutProduct(ctx, user, service.ProductCheckoutInput{
		ProductID:    req.ProductID,
		Method:       model.PaymentMethod(req.Method),
		CouponCode:   req.Coupon,
		Installments: req.Installments,
		CardToken:    req.CardToken,
	})
}

func (h *PaymentsHandler) ListMine(c echo.Context, req *PageRequest) (*PaymentListResponse, error) {
	user, err := requireUser(c)
	if err != nil {
		return nil, err
	}

	payments, pages, err := h.payments.ListMine(c.Request().Context(), user.ID, req.pagination())
	if err != nil {
		return nil, err
	}

	return &PaymentListResponse{Payments: payments, Pages: pages}, nil
}

func (h *PaymentsHandler) Get(c echo.Context, req *IDRequest) (*PaymentResponse, error) {
	user, err := requireUser(c)
	if err != nil {
		return nil, err
	}

	payment, err := h.payments.GetOwned(c.Request().Context(), user, req.ID)
	if err != nil {
		return nil, err
	}

	return &PaymentResponse{Payment: payment}, nil
}

// Webhook receives gateway deliveries. It bypasses the typed pipeline:
// signature verification needs the raw body bytes.
func (h *PaymentsHandler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return errs.NewBadRequestError("Failed to read request body", false, nil, nil, nil)
	}

	outcome, err := h.payments.ProcessWebhook(c.Request().Context(), body, c.Request().Header.Get(gateway.SignatureHeader))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"status": outcome})
}

// AdminListPaymentsRequest filters the back-office payment list.
type AdminListPaymentsRequest struct {
	PageRequest
	Status string `query:"status" validate:"omitempty,oneof=pending approved declined expired refunded cancelled"`
	Method string `query:"method" validate:"omitempty,oneof=pix card"`
	Kind   string `query:"kind" validate:"omitempty,oneof=booking product"`
	UserID int64  `query:"user_id" validate:"omitempty,gt=0"`
}

func (r *AdminListPaymentsRequest) Validate() error { return validation.Struct(r) }

func (r *AdminListPaymentsRequest) filter() repository.PaymentFilter {
	var filter repository.PaymentFilter

	if r.Status != "" {
		status := model.PaymentStatus(r.Status)
		filter.Status = &status
	}
	if r.Method != "" {
		method := model.PaymentMethod(r.Method)
		filter.Method = &method
	}
	if r.Kind != "" {
		kind := model.PaymentKind(r.Kind)
		filter.Kind = &kind
	}
	if r.UserID > 0 {
		filter.UserID = &r.UserID
	}

	return filter
}

// ExportPaymentsRequest bounds the accounting export: inclusive dates in
// the venue's timezone.
type ExportPaymentsRequest struct {
	From string `query:"from" validate:"required,datetime=2006-01-02"`
	To   string `query:"to" validate:"required,datetime=2006-01-02"`
}

func (r *ExportPaymentsRequest) Validate() error { return validation.Struct(r) }

func (h *PaymentsHandler) AdminList(c echo.Context, req *AdminListPaymentsRequest) (*PaymentListResponse, error) {
	payments, pages, err := h.payments.List(c.Request().Context(), req.filter(), req.pagination())
	if err != nil {
		return nil, err
	}

	return &PaymentListResponse{Payments: payments, Pages: pages}, nil
}

func (h *PaymentsHandler) AdminGet(c echo.Context, req *IDRequest) (*PaymentResponse, error) {
	payment, err := h.payments.Get(c.Request().Context(), req.ID)
	if err != nil {
		return nil, err
	}

	return &PaymentResponse{Payment: payment}, nil
}

func (h *PaymentsHandler) Refund(c echo.Context, req *IDRequest) (*PaymentResponse, error) {
	payment, err := h.payments.Refund(c.Request().Context(), middleware.CurrentUser(c), req.ID)
	if err != nil {
		return nil, err
	}

	return &PaymentResponse{Payment: payment}, nil
}

func (h *PaymentsHandler) Export(c echo.Context, req *ExportPaymentsRequest) ([]byte, error) {
	from, err := service.BusinessDate(req.From)
	if err != nil {
		return nil, errs.NewBadRequestError("Invalid from date, expected YYYY-MM-DD", true, nil, nil, nil)
	}

	to, err := service.BusinessDate(req.To)
	if err != nil {
		return nil, errs.NewBadRequestError("Invalid to date, expected YYYY-MM-DD", true, nil, nil, nil)
	}

	// Inclusive end date: the range passed down is half-open.
	end := to.AddDate(0, 0, 1)
	if !end.After(from) {
		return nil, errs.NewUnprocessableError("The from date must not be after the to date", nil)
	}

	return h.payments.ExportCSV(c.Request().Context(), from, end)
}
