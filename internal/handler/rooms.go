package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/salaviva/backend/internal/middleware"
	"github.com/salaviva/backend/internal/model"
	"github.com/salaviva/backend/internal/server"
	"github.com/salaviva/backend/internal/service"
	"github.com/salaviva/backend/internal/validation"
)

// RoomsHandler serves the public room catalog, the availability grid and
// the admin room CRUD.
type RoomsHandler struct {
	Handler
	catalog *service.CatalogService
}

func NewRoomsHandler(s *server.Server, catalog *service.CatalogService) *RoomsHandler {
	return &RoomsHandler{
		Handler: NewHandler(s),
		catalog: catalog,
	}
}

type RoomListResponse struct {
	Rooms []*model.Room `json:"rooms"`
}

type RoomResponse struct {
	Room *model.Room `json:"room"`
}

// RoomBySlugRequest captures the :slug path parameter.
type RoomBySlugRequest struct {
	Slug string `param:"slug" validate:"required,max=140"`
}

func (r *RoomBySlugRequest) Validate() error { return validation.Struct(r) }

// AvailabilityRequest asks for one day's hour grid.
type AvailabilityRequest struct {
	Slug string `param:"slug" validate:"required,max=140"`
	Date string `query:"date" validate:"required,datetime=2006-01-02"`
}

func (r *AvailabilityRequest) Validate() error { return validation.Struct(r) }

type AvailabilityResponse struct {
	Room  *model.Room                `json:"room"`
	Date  string                     `json:"date"`
	Slots []service.AvailabilitySlot `json:"slots"`
}

func (h *RoomsHandler) List(c echo.Context, _ *EmptyRequest) (*RoomListResponse, error) {
	rooms, err := h.catalog.ListRooms(c.Request().Context(), false)
	if err != nil {
		return nil, err
	}

	return &RoomListResponse{Rooms: rooms}, nil
}

func (h *RoomsHandler) Get(c echo.Context, req *RoomBySlugRequest) (*RoomResponse, error) {
	room, err := h.catalog.GetRoomBySlug(c.Request().Context(), req.Slug, false)
	if err != nil {
		return nil, err
	}

	return &RoomResponse{Room: room}, nil
}

func (h *RoomsHandler) Availability(c echo.Context, req *AvailabilityRequest) (*AvailabilityResponse, error) {
	room, slots, err := h.catalog.RoomAvailability(c.Request().Context(), req.Slug, req.Date)
	if err != nil {
		return nil, err
	}

	return &AvailabilityResponse{Room: room, Date: req.Date, Slots: slots}, nil
}

// RoomPayload is the admin create/update body for a room.
type RoomPayload struct {
	Name        string          `json:"name" validate:"required,min=2,max=120"`
	Slug        string          `json:"slug" validate:"omitempty,max=140"`
	Description string          `json:"description" validate:"max=2000"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
	Capacity    int             `json:"capacity" validate:"min=1,max=500"`
	OpenHour    int             `json:"open_hour" validate:"gte=0,lte=23"`
	CloseHour   int             `json:"close_hour" validate:"gte=1,lte=24"`
	Active      *bool           `json:"active"`
	Position    int             `json:"position" validate:"gte=0"`
}

func (r *RoomPayload) input() service.RoomInput {
	active := true
	if r.Active != nil {
		active = *r.Active
	}

	return service.RoomInput{
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		HourlyRate:  r.HourlyRate,
		Capacity:    r.Capacity,
		OpenHour:    r.OpenHour,
		CloseHour:   r.CloseHour,
		Active:      active,
		Position:    r.Position,
	}
}

type CreateRoomRequest struct {
	RoomPayload
}

func (r *CreateRoomRequest) Validate() error { return validation.Struct(r) }

type UpdateRoomRequest struct {
	ID int64 `param:"id" validate:"required,gt=0"`
	RoomPayload
}

func (r *UpdateRoomRequest) Validate() error { return validation.Struct(r) }

// AdminList includes deactivated rooms, which the public listing hides.
func (h *RoomsHandler) AdminList(c echo.Context, _ *EmptyRequest) (*RoomListResponse, error) {
	rooms, err := h.catalog.ListRooms(c.Request().Context(), true)
	if err != nil {
		return nil, err
	}

	return &RoomListResponse{Rooms: rooms}, nil
}

func (h *RoomsHandler) AdminGet(c echo.Context, req *IDRequest) (*RoomResponse, error) {
	room, err := h.catalog.GetRoom(c.Request().Context(), req.ID)
	if err != nil {
		return nil, err
	}

	return &RoomResponse{Room: room}, nil
}

func (h *RoomsHandler) Create(c echo.Context, req *CreateRoomRequest) (*RoomResponse, error) {
	room, err := h.catalog.CreateRoom(c.Request().Context(), middleware.CurrentUser(c), req.input())
	if err != nil {
		return nil, err
	}

	return &RoomResponse{Room: room}, nil
}

func (h *RoomsHandler) Update(c echo.Context, req *UpdateRoomRequest) (*RoomResponse, error) {
	room, err := h.catalog.UpdateRoom(c.Request().Context(), middleware.CurrentUser(c), req.ID, req.input())
	if err != nil {
		return nil, err
	}

	return &RoomResponse{Room: room}, nil
}

func (h *RoomsHandler) Delete(c echo.Context, req *IDRequest) error {
	return h.catalog.DeleteRoom(c.Request().Context(), middleware.CurrentUser(c), req.ID)
}
