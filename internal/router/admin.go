package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/salaviva/backend/internal/handler"
	"github.com/salaviva/backend/internal/middleware"
)

// registerAdminRoutes wires the back-office. Every route requires an
// admin session.
func registerAdminRoutes(e *echo.Echo, h *handler.Handlers, m *middleware.Middlewares) {
	admin := e.Group("/api/admin",
		m.Auth.RequireAdmin,
		m.ContextEnhancer.EnhanceContext(),
		m.Tracing.EnhanceTracing(),
	)

	// Rooms.
	admin.GET("/rooms", handler.Handle(h.Rooms.Handler, h.Rooms.AdminList, http.StatusOK, &handler.EmptyRequest{}))
	admin.POST("/rooms", handler.Handle(h.Rooms.Handler, h.Rooms.Create, http.StatusCreated, &handler.CreateRoomRequest{}))
	admin.GET("/rooms/:id", handler.Handle(h.Rooms.Handler, h.Rooms.AdminGet, http.StatusOK, &handler.IDRequest{}))
	admin.PUT("/rooms/:id", handler.Handle(h.Rooms.Handler, h.Rooms.Update, http.StatusOK, &handler.UpdateRoomRequest{}))
	admin.DELETE("/rooms/:id", handler.HandleNoContent(h.Rooms.Handler, h.Rooms.Delete, http.StatusNoContent, &handler.IDRequest{}))

	// Credit packages.
	admin.GET("/products", handler.Handle(h.Products.Handler, h.Products.AdminList, http.StatusOK, &handler.EmptyRequest{}))
	admin.POST("/products", handler.Handle(h.Products.Handler, h.Products.Create, http.StatusCreated, &handler.CreateProductRequest{}))
	admin.GET("/products/:id", handler.Handle(h.Products.Handler, h.Products.AdminGet, http.StatusOK, &handler.IDRequest{}))
	admin.PUT("/products/:id", handler.Handle(h.Products.Handler, h.Products.Update, http.StatusOK, &handler.UpdateProductRequest{}))
	admin.DELETE("/products/:id", handler.HandleNoContent(h.Products.Handler, h.Products.Delete, http.StatusNoContent, &handler.IDRequest{}))

	// Bookings.
	admin.GET("/bookings", handler.Handle(h.Bookings.Handler, h.Bookings.AdminList, http.StatusOK, &handler.AdminListBookingsRequest{}))
	admin.PUT("/bookings/:id/status", handler.Handle(h.Bookings.Handler, h.Bookings.AdminSetStatus, http.StatusOK, &handler.AdminSetBookingStatusRequest{}))

	// Payments. The export route must not collide with :id, echo matches
	// static segments first.
	admin.GET("/payments", handler.Handle(h.Payments.Handler, h.Payments.AdminList, http.StatusOK, &handler.AdminListPaymentsRequest{}))
	admin.GET("/payments/export", handler.HandleFile(h.Payments.Handler, h.Payments.Export, http.StatusOK, &handler.ExportPaymentsRequest{}, "payments.csv", "text/csv"))
	admin.GET("/payments/:id", handler.Handle(h.Payments.Handler, h.Payments.AdminGet, http.StatusOK, &handler.IDRequest{}))
	admin.POST("/payments/:id/refund", handler.Handle(h.Payments.Handler, h.Payments.Refund, http.StatusOK, &handler.IDRequest{}))

	// Customers and their credit ledgers.
	admin.GET("/users", handler.Handle(h.Users.Handler, h.Users.AdminList, http.StatusOK, &handler.AdminListUsersRequest{}))
	admin.GET("/users/:id", handler.Handle(h.Users.Handler, h.Users.AdminGet, http.StatusOK, &handler.IDRequest{}))
	admin.POST("/users/:id/credits", handler.Handle(h.Credits.Handler, h.Credits.AdminAdjust, http.StatusCreated, &handler.AdjustCreditsRequest{}))

	// Coupons.
	admin.GET("/coupons", handler.Handle(h.Coupons.Handler, h.Coupons.AdminList, http.StatusOK, &handler.PageRequest{}))
	admin.POST("/coupons", handler.Handle(h.Coupons.Handler, h.Coupons.Create, http.StatusCreated, &handler.CreateCouponRequest{}))
	admin.GET("/coupons/:id", handler.Handle(h.Coupons.Handler, h.Coupons.AdminGet, http.StatusOK, &handler.IDRequest{}))
	admin.PUT("/coupons/:id", handler.Handle(h.Coupons.Handler, h.Coupons.Update, http.StatusOK, &handler.UpdateCouponRequest{}))
	admin.DELETE("/coupons/:id", handler.HandleNoContent(h.Coupons.Handler, h.Coupons.Delete, http.StatusNoContent, &handler.IDRequest{}))
	admin.GET("/coupons/:id/usage", handler.Handle(h.Coupons.Handler, h.Coupons.Usage, http.StatusOK, &handler.CouponUsageRequest{}))

	// Policy knobs.
	admin.GET("/settings", handler.Handle(h.Settings.Handler, h.Settings.Get, http.StatusOK, &handler.EmptyRequest{}))
	admin.PUT("/settings", handler.Handle(h.Settings.Handler, h.Settings.Update, http.StatusOK, &handler.UpdateSettingsRequest{}))

	// Audit trail.
	admin.GET("/audit-logs", handler.Handle(h.Audit.Handler, h.Audit.AdminList, http.StatusOK, &handler.AdminListAuditRequest{}))
}
