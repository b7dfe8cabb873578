package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/salaviva/backend/internal/errs"
	"github.com/salaviva/backend/internal/lib/utils"
	"github.com/salaviva/backend/internal/model"
	"github.com/salaviva/backend/internal/repository"
	"github.com/salaviva/backend/internal/server"
)

// CatalogService serves rooms and credit packages: the public listings
// plus the admin CRUD behind them.
type CatalogService struct {
	server *server.Server
	repos  *repository.Repositories
	audit  *AuditService
}

func NewCatalogService(s *server.Server, repos *repository.Repositories, audit *AuditService) *CatalogService {
	return &CatalogService{
		server: s,
		repos:  repos,
		audit:  audit,
	}
}

// ListRooms returns rooms in display order. includeInactive is for the
// back office; the public listing only shows active rooms.
func (s *CatalogService) ListRooms(ctx context.Context, includeInactive bool) ([]*model.Room, error) {
	return s.repos.Rooms.List(ctx, !includeInactive)
}

// GetRoomBySlug resolves a room for the public detail page. Inactive
// rooms 404 unless includeInactive is set.
func (s *CatalogService) GetRoomBySlug(ctx context.Context, slug string, includeInactive bool) (*model.Room, error) {
	room, err := s.repos.Rooms.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !room.Active && !includeInactive {
		return nil, errs.NewNotFoundError("Room not found", true, nil)
	}
	return room, nil
}

func (s *CatalogService) GetRoom(ctx context.Context, id int64) (*model.Room, error) {
	return s.repos.Rooms.GetByID(ctx, id)
}

// ListProducts returns credit packages in display order.
func (s *CatalogService) ListProducts(ctx context.Context, includeInactive bool) ([]*model.Product, error) {
	return s.repos.Products.List(ctx, !includeInactive)
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return s.repos.Products.GetByID(ctx, id)
}

// AvailabilitySlot is one bookable hour of a room's day.
type AvailabilitySlot struct {
	Hour      int       `json:"hour"`
	StartsAt  time.Time `json:"starts_at"`
	Available bool      `json:"available"`
}

// RoomAvailability returns the per-hour grid for one day in the business
// timezone. Hours already started and hours overlapped by a live booking
// (pending or confirmed) come back unavailable.
func (s *CatalogService) RoomAvailability(ctx context.Context, slug, date string) (*model.Room, []AvailabilitySlot, error) {
	room, err := s.GetRoomBySlug(ctx, slug, false)
	if err != nil {
		return nil, nil, err
	}

	day, err := time.ParseInLocation("2006-01-02", date, businessLocation)
	if err != nil {
		return nil, nil, errs.NewBadRequestError("Invalid date, expected YYYY-MM-DD", true, nil, nil, nil)
	}

	dayStart := day.Add(time.Duration(room.OpenHour) * time.Hour)
	dayEnd := day.Add(time.Duration(room.CloseHour) * time.Hour)

	booked, err := s.repos.Bookings.ListForRoomBetween(ctx, room.ID, dayStart, dayEnd)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	slots := make([]AvailabilitySlot, 0, room.CloseHour-room.OpenHour)
	for hour := room.OpenHour; hour < room.CloseHour; hour++ {
		start := day.Add(time.Duration(hour) * time.Hour)
		end := start.Add(time.Hour)

		available := start.After(now)
		for _, b := range booked {
			if b.StartsAt.Before(end) && b.EndsAt.After(start) {
				available = false
				break
			}
		}

		slots = append(slots, AvailabilitySlot{
			Hour:      hour,
			StartsAt:  start,
			Available: available,
		})
	}

	return room, slots, nil
}

// RoomInput carries admin-entered room fields. A blank slug is derived
// from the name.
type RoomInput struct {
	Name        string
	Slug        string
	Description string
	HourlyRate  decimal.Decimal
	Capacity    int
	OpenHour    int
	CloseHour   int
	Active      bool
	Position    int
}

func (in *RoomInput) validate() error {
	if in.OpenHour < 0 || in.CloseHour > 24 || in.OpenHour >= in.CloseHour {
		return errs.NewUnprocessableError("Opening hours must satisfy 0 <= open < close <= 24", nil)
	}
	if !in.HourlyRate.IsPositive() {
		return errs.NewUnprocessableError("Hourly rate must be positive", nil)
	}
	return nil
}

func (in *RoomInput) toModel() *model.Room {
	slug := in.Slug
	if slug == "" {
		slug = utils.Slugify(in.Name)
	}
	return &model.Room{
		Name:        in.Name,
		Slug:        slug,
		Description: in.Description,
		HourlyRate:  in.HourlyRate,
		Capacity:    in.Capacity,
		OpenHour:    in.OpenHour,
		CloseHour:   in.CloseHour,
		Active:      in.Active,
		Position:    in.Position,
	}
}

func (s *CatalogService) CreateRoom(ctx context.Context, actor *model.User, in RoomInput) (*model.Room, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	room, err := s.repos.Rooms.Create(ctx, in.toModel())
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:    actor,
		Action:   "room.create",
		Entity:   "rooms",
		EntityID: &room.ID,
		Metadata: map[string]any{"name": room.Name, "slug": room.Slug},
	})

	return room, nil
}

func (s *CatalogService) UpdateRoom(ctx context.Context, actor *model.User, id int64, in RoomInput) (*model.Room, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	room := in.toModel()
	room.ID = id

	updated, err := s.repos.Rooms.Update(ctx, room)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:    actor,
		Action:   "room.update",
		Entity:   "rooms",
		EntityID: &updated.ID,
		Metadata: map[string]any{"name": updated.Name, "active": updated.Active},
	})

	return updated, nil
}

// DeleteRoom removes a room, or merely deactivates it when bookings
// reference it, so history keeps its foreign keys.
func (s *CatalogService) DeleteRoom(ctx context.Context, actor *model.User, id int64) error {
	hasBookings, err := s.repos.Bookings.ExistsForRoom(ctx, id)
	if err != nil {
		return err
	}

	action := "room.delete"
	if hasBookings {
		action = "room.deactivate"
		err = s.repos.Rooms.Deactivate(ctx, id)
	} else {
		err = s.repos.Rooms.Delete(ctx, id)
	}
	if err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:    actor,
		Action:   action,
		Entity:   "rooms",
		EntityID: &id,
	})

	return nil
}

// ProductInput carries admin-entered package fields.
type ProductInput struct {
	Name        string
	Description string
	CreditHours int
	Price       decimal.Decimal
	Active      bool
	Position    int
}

func (in *ProductInput) validate() error {
	if in.CreditHours < 1 {
		return errs.NewUnprocessableError("Credit hours must be at least 1", nil)
	}
	if !in.Price.IsPositive() {
		return errs.NewUnprocessableError("Price must be positive", nil)
	}
	return nil
}

func (in *ProductInput) toModel() *model.Product {
	return &model.Product{
		Name:        in.Name,
		Description: in.Description,
		CreditHours: in.CreditHours,
		Price:       in.Price,
		Active:      in.Active,
		Position:    in.Position,
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, actor *model.User, in ProductInput) (*model.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product, err := s.repos.Products.Create(ctx, in.toModel())
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:    actor,
		Action:   "product.create",
		Entity:   "products",
		EntityID: &product.ID,
		Metadata: map[string]any{"name": product.Name, "credit_hours": product.CreditHours},
	})

	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, actor *model.User, id int64, in ProductInput) (*model.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product := in.toModel()
	product.ID = id

	updated, err := s.repos.Products.Update(ctx, product)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:    actor,
		Action:   "product.update",
		Entity:   "products",
		EntityID: &updated.ID,
		Metadata: map[string]any{"name": updated.Name, "active": updated.Active},
	})

	return updated, nil
}

// DeleteProduct removes a package, or deactivates it when payments
// reference it.
func (s *CatalogService) DeleteProduct(ctx context.Context, actor *model.User, id int64) error {
	hasPayments, err := s.repos.Payments.ExistsForProduct(ctx, id)
	if err != nil {
		return err
	}

	action := "product.delete"
	if hasPayments {
		action = "product.deactivate"
		err = s.repos.Products.Deactivate(ctx, id)
	} else {
		err = s.repos.Products.Delete(ctx, id)
	}
	if err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:    actor,
		Action:   action,
		Entity:   "products",
		EntityID: &id,
	})

	return nil
}
