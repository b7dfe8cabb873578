package handler

import (
	"github.com/salaviva/backend/internal/server"
	"github.com/salaviva/backend/internal/service"
)

// Handlers bundles every handler for route registration.
type Handlers struct {
	Health   *HealthHandler
	OpenAPI  *OpenAPIHandler
	Auth     *AuthHandler
	Rooms    *RoomsHandler
	Products *ProductsHandler
	Bookings *BookingsHandler
	Payments *PaymentsHandler
	Credits  *CreditsHandler
	Coupons  *CouponsHandler
	Users    *UsersHandler
	Settings *SettingsHandler
	Audit    *AuditHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(s),
		OpenAPI:  NewOpenAPIHandler(s),
		Auth:     NewAuthHandler(s, services.Auth),
		Rooms:    NewRoomsHandler(s, services.Catalog),
		Products: NewProductsHandler(s, services.Catalog),
		Bookings: NewBookingsHandler(s, services.Booking),
		Payments: NewPaymentsHandler(s, services.Payment, services.Auth),
		Credits:  NewCreditsHandler(s, services.Credit),
		Coupons:  NewCouponsHandler(s, services.Coupon),
		Users:    NewUsersHandler(s, services.Users),
		Settings: NewSettingsHandler(s, services.Settings),
		Audit:    NewAuditHandler(s, services.Audit),
	}
}
