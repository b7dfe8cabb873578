package router

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/salaviva/backend/internal/handler"
	"github.com/salaviva/backend/internal/middleware"
)

// registerAPIRoutes wires the public and customer-facing endpoints.
//
// OptionalAuth runs for the whole group: routes that need a session
// enforce it in the handler, and guest checkout stays reachable with a
// missing or stale cookie.
func registerAPIRoutes(e *echo.Echo, h *handler.Handlers, m *middleware.Middlewares) {
	api := e.Group("/api",
		m.Auth.OptionalAuth,
		m.ContextEnhancer.EnhanceContext(),
		m.Tracing.EnhanceTracing(),
	)

	// Session lifecycle. Register and login share a budget against
	// credential stuffing.
	authLimit := m.RateLimit.Limit("auth", 10, time.Minute)
	api.POST("/auth/register", handler.Handle(h.Auth.Handler, h.Auth.Register, http.StatusCreated, &handler.RegisterRequest{}), authLimit)
	api.POST("/auth/login", handler.Handle(h.Auth.Handler, h.Auth.Login, http.StatusOK, &handler.LoginRequest{}), authLimit)
	api.POST("/auth/logout", handler.HandleNoContent(h.Auth.Handler, h.Auth.Logout, http.StatusNoContent, &handler.EmptyRequest{}))
	api.GET("/auth/me", handler.Handle(h.Auth.Handler, h.Auth.Me, http.StatusOK, &handler.EmptyRequest{}))

	// Public catalogue.
	api.GET("/rooms", handler.Handle(h.Rooms.Handler, h.Rooms.List, http.StatusOK, &handler.EmptyRequest{}))
	api.GET("/rooms/:slug", handler.Handle(h.Rooms.Handler, h.Rooms.Get, http.StatusOK, &handler.RoomBySlugRequest{}))
	api.GET("/rooms/:slug/availability", handler.Handle(h.Rooms.Handler, h.Rooms.Availability, http.StatusOK, &handler.AvailabilityRequest{}))
	api.GET("/products", handler.Handle(h.Products.Handler, h.Products.List, http.StatusOK, &handler.EmptyRequest{}))

	// Discount preview is rate limited so codes cannot be enumerated
	// quickly.
	api.POST("/coupons/preview", handler.Handle(h.Coupons.Handler, h.Coupons.Preview, http.StatusOK, &handler.CouponPreviewRequest{}),
		m.RateLimit.Limit("coupon_preview", 30, time.Minute))

	// Bookings always need a session.
	api.POST("/bookings", handler.Handle(h.Bookings.Handler, h.Bookings.Create, http.StatusCreated, &handler.CreateBookingRequest{}))
	api.GET("/bookings", handler.Handle(h.Bookings.Handler, h.Bookings.ListMine, http.StatusOK, &handler.MyBookingsRequest{}))
	api.GET("/bookings/:reference", handler.Handle(h.Bookings.Handler, h.Bookings.Get, http.StatusOK, &handler.BookingByReferenceRequest{}))
	api.POST("/bookings/:reference/cancel", handler.Handle(h.Bookings.Handler, h.Bookings.Cancel, http.StatusOK, &handler.BookingByReferenceRequest{}))

	// Package checkout accepts guests; the handler upserts the buyer.
	api.POST("/payments", handler.Handle(h.Payments.Handler, h.Payments.Checkout, http.StatusCreated, &handler.CheckoutRequest{}),
		m.RateLimit.Limit("checkout", 10, time.Minute))
	api.GET("/payments", handler.Handle(h.Payments.Handler, h.Payments.ListMine, http.StatusOK, &handler.PageRequest{}))
	api.GET("/payments/:id", handler.Handle(h.Payments.Handler, h.Payments.Get, http.StatusOK, &handler.IDRequest{}))

	api.GET("/credits", handler.Handle(h.Credits.Handler, h.Credits.Summary, http.StatusOK, &handler.PageRequest{}))

	// Gateway callback. Authenticated by the HMAC signature, not by a
	// session; the limit only caps abuse from unrelated sources.
	api.POST("/webhooks/payments", h.Payments.Webhook,
		m.RateLimit.Limit("webhook", 120, time.Minute))
}
