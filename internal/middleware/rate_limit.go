package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/salaviva/backend/internal/errs"
	"github.com/salaviva/backend/internal/server"
)

// RateLimitMiddleware enforces per-IP request caps with a Redis fixed
// window. Counters live in Redis so every API instance shares the same
// budget.
type RateLimitMiddleware struct {
	server *server.Server
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server: s,
	}
}

// Limit caps requests per client IP for the named scope. On Redis
// failure the request is allowed through; rate limiting is protection,
// not a hard dependency.
func (r *RateLimitMiddleware) Limit(scope string, max int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			slot := time.Now().Unix() / int64(window.Seconds())
			key := fmt.Sprintf("ratelimit:%s:%s:%d", scope, c.RealIP(), slot)

			count, err := r.server.Redis.Incr(ctx, key).Result()
			if err != nil {
				GetLogger(c).Warn().
					Err(err).
					Str("scope", scope).
					Msg("rate limit check failed, allowing request")

				return next(c)
			}

			if count == 1 {
				r.server.Redis.Expire(ctx, key, window)
			}

			if count > int64(max) {
				r.RecordRateLimitHit(scope)
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))

				return errs.NewTooManyRequestsError("Too many requests, slow down")
			}

			return next(c)
		}
	}
}

// RecordRateLimitHit emits a custom event so limit pressure shows up in
// APM dashboards.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if r.server.LoggerService != nil && r.server.LoggerService.GetApplication() != nil {
		r.server.LoggerService.GetApplication().RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
		})
	}
}
