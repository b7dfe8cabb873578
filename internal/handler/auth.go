package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/salaviva/backend/internal/middleware"
	"github.com/salaviva/backend/internal/model"
	"github.com/salaviva/backend/internal/server"
	"github.com/salaviva/backend/internal/service"
	"github.com/salaviva/backend/internal/validation"
)

// AuthHandler serves registration, login and session endpoints.
type AuthHandler struct {
	Handler
	auth *service.AuthService
}

func NewAuthHandler(s *server.Server, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{
		Handler: NewHandler(s),
		auth:    auth,
	}
}

// RegisterRequest creates an account. CPF and phone are optional here;
// checkout asks for the CPF when it is still missing.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	CPF      string `json:"cpf" validate:"omitempty,cpf"`
	Phone    string `json:"phone" validate:"omitempty,min=8,max=20"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (r *RegisterRequest) Validate() error { return validation.Struct(r) }

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error { return validation.Struct(r) }

// SessionResponse is the register/login response body; the session itself
// rides in the cookie.
type SessionResponse struct {
	User *model.User `json:"user"`
}

func (h *AuthHandler) Register(c echo.Context, req *RegisterRequest) (*SessionResponse, error) {
	user, err := h.auth.Register(c.Request().Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		CPF:      req.CPF,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	if err := h.startSession(c, user); err != nil {
		return nil, err
	}

	return &SessionResponse{User: user}, nil
}

func (h *AuthHandler) Login(c echo.Context, req *LoginRequest) (*SessionResponse, error) {
	user, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	if err := h.startSession(c, user); err != nil {
		return nil, err
	}

	return &SessionResponse{User: user}, nil
}

// Logout clears the session cookie. Tokens are stateless, so there is
// nothing to revoke server side.
func (h *AuthHandler) Logout(c echo.Context, _ *EmptyRequest) error {
	c.SetCookie(middleware.ClearSessionCookie(h.server.Config))
	return nil
}

func (h *AuthHandler) Me(c echo.Context, _ *EmptyRequest) (*service.Profile, error) {
	user, err := requireUser(c)
	if err != nil {
		return nil, err
	}

	return h.auth.Me(c.Request().Context(), user)
}

func (h *AuthHandler) startSession(c echo.Context, user *model.User) error {
	token, expires, err := h.auth.IssueSessionToken(user)
	if err != nil {
		return err
	}

	c.SetCookie(middleware.NewSessionCookie(h.server.Config, token, expires))
	return nil
}
