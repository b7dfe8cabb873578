package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/salaviva/backend/internal/config"
	"github.com/salaviva/backend/internal/errs"
	"github.com/salaviva/backend/internal/model"
	"github.com/salaviva/backend/internal/server"
	"github.com/salaviva/backend/internal/service"
)

// SessionCookieName is the HTTP-only cookie carrying the session JWT.
const SessionCookieName = "salaviva_session"

// UserKey is the echo context key holding the authenticated *model.User.
const UserKey = "user"

// AuthMiddleware guards routes with the session cookie. The token only
// proves identity; the user row is reloaded on every request so role
// changes and deletions take effect immediately.
type AuthMiddleware struct {
	server *server.Server
	auth   *service.AuthService
}

// NewAuthMiddleware constructs an AuthMiddleware.
func NewAuthMiddleware(s *server.Server, auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
		auth:   auth,
	}
}

// RequireAuth rejects requests without a valid session cookie and stores
// the authenticated user in the echo context for handlers to read.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := auth.resolve(c)
		if err != nil {
			return err
		}
		if user == nil {
			return errs.NewUnauthorizedError("Authentication required", true)
		}

		setUser(c, user)

		return next(c)
	}
}

// OptionalAuth resolves the session cookie when present but lets
// anonymous requests through. Guest checkout depends on this: a missing
// or stale cookie must not block the purchase.
func (auth *AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := auth.resolve(c)
		if err != nil {
			var httpErr *errs.HTTPError
			if errors.As(err, &httpErr) && httpErr.Status == http.StatusUnauthorized {
				return next(c)
			}

			return err
		}
		if user != nil {
			setUser(c, user)
		}

		return next(c)
	}
}

// RequireAdmin layers on RequireAuth and additionally rejects users
// without the admin role.
func (auth *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return auth.RequireAuth(func(c echo.Context) error {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			return errs.NewForbiddenError("Admin access required", true)
		}

		return next(c)
	})
}

func (auth *AuthMiddleware) resolve(c echo.Context) (*model.User, error) {
	// Reuse a user already resolved by an outer middleware in this request.
	if user := CurrentUser(c); user != nil {
		return user, nil
	}

	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	return auth.auth.ResolveSession(c.Request().Context(), cookie.Value)
}

func setUser(c echo.Context, user *model.User) {
	c.Set(UserKey, user)
	c.Set(UserIDKey, strconv.FormatInt(user.ID, 10))
	c.Set(UserRoleKey, string(user.Role))
}

// CurrentUser returns the user stored by RequireAuth or OptionalAuth, or
// nil for anonymous requests.
func CurrentUser(c echo.Context) *model.User {
	user, ok := c.Get(UserKey).(*model.User)
	if !ok {
		return nil
	}

	return user
}

// NewSessionCookie builds the login cookie for a signed session token.
func NewSessionCookie(cfg *config.Config, token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   cfg.Auth.CookieDomain,
		Expires:  expires,
		HttpOnly: true,
		Secure:   cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie builds the expired cookie that logs a browser out.
func ClearSessionCookie(cfg *config.Config) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   cfg.Auth.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
