package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/salaviva/backend/internal/errs"
	"github.com/salaviva/backend/internal/middleware"
	"github.com/salaviva/backend/internal/model"
	"github.com/salaviva/backend/internal/repository"
	"github.com/salaviva/backend/internal/server"
	"github.com/salaviva/backend/internal/service"
	"github.com/salaviva/backend/internal/validation"
)

// BookingsHandler serves customer reservations and the admin booking
// back-office.
type BookingsHandler struct {
	Handler
	bookings *service.BookingService
}

func NewBookingsHandler(s *server.Server, bookings *service.BookingService) *BookingsHandler {
	return &BookingsHandler{
		Handler:  NewHandler(s),
		bookings: bookings,
	}
}

// CreateBookingRequest reserves a room slot. starts_at is RFC 3339; the
// service aligns and validates it against the room's opening hours.
type CreateBookingRequest struct {
	RoomSlug string    `json:"room_slug" validate:"required,max=140"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
	Hours    int       `json:"hours" validate:"min=1"`
	PayWith  string    `json:"pay_with" validate:"required,oneof=credits gateway"`
	Notes    string    `json:"notes" validate:"max=500"`
	Coupon   string    `json:"coupon" validate:"omitempty,max=40"`
}

func (r *CreateBookingRequest) Validate() error { return validation.Struct(r) }

// BookingByReferenceRequest captures the :reference path parameter.
type BookingByReferenceRequest struct {
	Reference string `param:"reference" validate:"required,max=20"`
}

func (r *BookingByReferenceRequest) Validate() error { return validation.Struct(r) }

// MyBookingsRequest lists the customer's own bookings.
type MyBookingsRequest struct {
	PageRequest
	Status string `query:"status" validate:"omitempty,oneof=pending confirmed cancelled completed"`
}

func (r *MyBookingsRequest) Validate() error { return validation.Struct(r) }

type BookingListResponse struct {
	Bookings []*model.Booking `json:"bookings"`
	Pages    service.PageInfo `json:"pages"`
}

type BookingResponse struct {
	Booking *model.Booking `json:"booking"`
}

func (h *BookingsHandler) Create(c echo.Context, req *CreateBookingRequest) (*service.BookingCheckout, error) {
	user, err := requireUser(c)
	if err != nil {
		return nil, err
	}

	return h.bookings.Create(c.Request().Context(), user, service.BookingInput{
		RoomSlug:   req.RoomSlug,
		StartsAt:   req.StartsAt,
		Hours:      req.Hours,
		PayWith:    model.PaidWith(req.PayWith),
		Notes:      req.Notes,
		CouponCode: req.Coupon,
	})
}

func (h *BookingsHandler) ListMine(c echo.Context, req *MyBookingsRequest) (*BookingListResponse, error) {
	user, err := requireUser(c)
	if err != nil {
		return nil, err
	}

	bookings, pages, err := h.bookings.ListMine(c.Request().Context(), user.ID, bookingStatus(req.Status), req.pagination())
	if err != nil {
		return nil, err
	}

	return &BookingListResponse{Bookings: bookings, Pages: pages}, nil
}

func (h *BookingsHandler) Get(c echo.Context, req *BookingByReferenceRequest) (*service.BookingDetail, error) {
	user, err := requireUser(c)
	if err != nil {
		return nil, err
	}

	return h.bookings.GetMine(c.Request().Context(), user, req.Reference)
}

func (h *BookingsHandler) Cancel(c echo.Context, req *BookingByReferenceRequest) (*BookingResponse, error) {
	user, err := requireUser(c)
	if err != nil {
		return nil, err
	}

	booking, err := h.bookings.Cancel(c.Request().Context(), user, req.Reference)
	if err != nil {
		return nil, err
	}

	return &BookingResponse{Booking: booking}, nil
}

// AdminListBookingsRequest filters the back-office booking list. from/to
// are inclusive dates in the venue's timezone.
type AdminListBookingsRequest struct {
	PageRequest
	Status string `query:"status" validate:"omitempty,oneof=pending confirmed cancelled completed"`
	RoomID int64  `query:"room_id" validate:"omitempty,gt=0"`
	From   string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

func (r *AdminListBookingsRequest) Validate() error { return validation.Struct(r) }

func (r *AdminListBookingsRequest) filter() (repository.BookingFilter, error) {
	filter := repository.BookingFilter{
		Status: bookingStatus(r.Status),
	}

	if r.RoomID > 0 {
		filter.RoomID = &r.RoomID
	}

	if r.From != "" {
		from, err := service.BusinessDate(r.From)
		if err != nil {
			return filter, errs.NewBadRequestError("Invalid from date, expected YYYY-MM-DD", true, nil, nil, nil)
		}
		filter.From = &from
	}

	if r.To != "" {
		to, err := service.BusinessDate(r.To)
		if err != nil {
			return filter, errs.NewBadRequestError("Invalid to date, expected YYYY-MM-DD", true, nil, nil, nil)
		}
		// Inclusive end date: the repository filters starts_at < To.
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}

	return filter, nil
}

// AdminSetBookingStatusRequest is the back-office status change body.
type AdminSetBookingStatusRequest struct {
	ID     int64  `param:"id" validate:"required,gt=0"`
	Status string `json:"status" validate:"required,oneof=confirmed completed cancelled"`
}

func (r *AdminSetBookingStatusRequest) Validate() error { return validation.Struct(r) }

func (h *BookingsHandler) AdminList(c echo.Context, req *AdminListBookingsRequest) (*BookingListResponse, error) {
	filter, err := req.filter()
	if err != nil {
		return nil, err
	}

	bookings, pages, err := h.bookings.List(c.Request().Context(), filter, req.pagination())
	if err != nil {
		return nil, err
	}

	return &BookingListResponse{Bookings: bookings, Pages: pages}, nil
}

func (h *BookingsHandler) AdminSetStatus(c echo.Context, req *AdminSetBookingStatusRequest) (*BookingResponse, error) {
	booking, err := h.bookings.AdminSetStatus(c.Request().Context(), middleware.CurrentUser(c), req.ID, model.BookingStatus(req.Status))
	if err != nil {
		return nil, err
	}

	return &BookingResponse{Booking: booking}, nil
}

func bookingStatus(value string) *model.BookingStatus {
	if value == "" {
		return nil
	}

	status := model.BookingStatus(value)
	return &status
}
