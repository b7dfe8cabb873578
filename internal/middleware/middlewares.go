package middleware

import (
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/salaviva/backend/internal/server"
	"github.com/salaviva/backend/internal/service"
)

// Middlewares groups all middleware components used by the HTTP server,
// built once and reused during router setup.
type Middlewares struct {
	// Global holds common middleware used across the whole API:
	// CORS, request logging, recovery, secure headers, and the global
	// error handler.
	Global *GlobalMiddlewares

	// Auth resolves the session cookie and attaches user context.
	Auth *AuthMiddleware

	// ContextEnhancer enriches each request with a request-scoped logger
	// (request_id, method, path, ip, optional user and trace metadata).
	ContextEnhancer *ContextEnhancer

	// Tracing provides New Relic middleware and helpers to attach custom
	// attributes and notice errors on transactions.
	Tracing *TracingMiddleware

	// RateLimit enforces per-IP request budgets backed by Redis.
	RateLimit *RateLimitMiddleware
}

// NewMiddlewares constructs all middleware components. The New Relic
// application instance is pulled from the server's LoggerService when
// configured; tracing degrades to a no-op when it is nil.
func NewMiddlewares(s *server.Server, auth *service.AuthService) *Middlewares {
	var nrApp *newrelic.Application
	if s.LoggerService != nil {
		nrApp = s.LoggerService.GetApplication()
	}

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		Auth:            NewAuthMiddleware(s, auth),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}
