package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salaviva/backend/internal/config"
	"github.com/salaviva/backend/internal/model"
	"github.com/salaviva/backend/internal/validation"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func TestCurrentUserEmptyContext(t *testing.T) {
	c, _ := newTestContext(t)
	assert.Nil(t, CurrentUser(c))
}

func TestSetUserStoresContextKeys(t *testing.T) {
	c, _ := newTestContext(t)

	setUser(c, &model.User{ID: 42, Role: model.RoleAdmin})

	user := CurrentUser(c)
	require.NotNil(t, user)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "42", GetUserID(c))
	assert.Equal(t, "admin", c.Get(UserRoleKey))
}

func TestRequestIDGeneratesWhenMissing(t *testing.T) {
	c, rec := newTestContext(t)

	var captured string
	handler := RequestID()(func(c echo.Context) error {
		captured = GetRequestID(c)
		return nil
	})

	require.NoError(t, handler(c))
	require.NotEmpty(t, captured)
	assert.True(t, validation.IsValidUUID(captured))
	assert.Equal(t, captured, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDReusesIncomingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id-7")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequestID()(func(c echo.Context) error { return nil })

	require.NoError(t, handler(c))
	assert.Equal(t, "upstream-id-7", GetRequestID(c))
	assert.Equal(t, "upstream-id-7", rec.Header().Get(RequestIDHeader))
}

func TestGetRequestIDWithoutMiddleware(t *testing.T) {
	c, _ := newTestContext(t)
	assert.Equal(t, "", GetRequestID(c))
}

func TestNewSessionCookie(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.CookieDomain = "salaviva.com.br"
	cfg.Auth.CookieSecure = true

	cookie := NewSessionCookie(cfg, "signed.jwt.token", time.Now().Add(7*24*time.Hour))

	assert.Equal(t, SessionCookieName, cookie.Name)
	assert.Equal(t, "signed.jwt.token", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, "salaviva.com.br", cookie.Domain)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.False(t, cookie.Expires.IsZero())
}

func TestClearSessionCookie(t *testing.T) {
	cookie := ClearSessionCookie(&config.Config{})

	assert.Equal(t, SessionCookieName, cookie.Name)
	assert.Equal(t, "", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, -1, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}
