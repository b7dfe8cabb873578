// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/salaviva/backend/internal/handler"
	"github.com/salaviva/backend/internal/middleware"
)

// Setup builds the echo instance with global middleware, the error
// handler and every route group. The result is handed to
// server.SetupHTTPServer.
func Setup(h *handler.Handlers, m *middleware.Middlewares) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = m.Global.GlobalErrorHandler

	e.Use(middleware.RequestID())
	e.Use(m.Tracing.NewRelicMiddleware())
	e.Use(m.Global.RequestLogger())
	e.Use(m.Global.Recover())
	e.Use(m.Global.Secure())
	e.Use(m.Global.CORS())

	registerSystemRoutes(e, h)
	registerAPIRoutes(e, h, m)
	registerAdminRoutes(e, h, m)

	return e
}
