package service

import (
	"github.com/salaviva/backend/internal/lib/analytics"
	"github.com/salaviva/backend/internal/lib/gateway"
	"github.com/salaviva/backend/internal/lib/job"
	"github.com/salaviva/backend/internal/repository"
	"github.com/salaviva/backend/internal/server"
)

// Services bundles every service for the handler layer.
type Services struct {
	Auth     *AuthService
	Catalog  *CatalogService
	Booking  *BookingService
	Payment  *PaymentService
	Credit   *CreditService
	Coupon   *CouponService
	Users    *UsersService
	Settings *SettingsService
	Audit    *AuditService
	Job      *job.JobService

	analytics *analytics.Publisher
}

// NewService wires the service graph. Order matters only for the shared
// collaborators: audit and settings first, then the checkout chain
// (payment before booking, which charges through it).
func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	gatewayClient := gateway.NewClient(s.Config, s.Logger)
	publisher := analytics.NewPublisher(s.Config, s.Logger)

	auditService := NewAuditService(s, repos)
	settingsService := NewSettingsService(s, repos, auditService)
	authService := NewAuthService(s, repos, publisher)
	catalogService := NewCatalogService(s, repos, auditService)
	creditService := NewCreditService(s, repos, auditService)
	couponService := NewCouponService(s, repos, auditService)
	paymentService := NewPaymentService(s, repos, gatewayClient, settingsService, couponService, auditService, publisher)
	bookingService := NewBookingService(s, repos, paymentService, settingsService, couponService, auditService, publisher)
	usersService := NewUsersService(s, repos)

	return &Services{
		Auth:      authService,
		Catalog:   catalogService,
		Booking:   bookingService,
		Payment:   paymentService,
		Credit:    creditService,
		Coupon:    couponService,
		Users:     usersService,
		Settings:  settingsService,
		Audit:     auditService,
		Job:       s.Job,
		analytics: publisher,
	}, nil
}

// Close flushes the analytics publisher. Called on shutdown.
func (s *Services) Close() error {
	return s.analytics.Close()
}
