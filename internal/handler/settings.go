package handler

import (
	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	"github.com/salaviva/backend/internal/middleware"
	"github.com/salaviva/backend/internal/server"
	"github.com/salaviva/backend/internal/service"
	"github.com/salaviva/backend/internal/validation"
)

// SettingsHandler serves the admin policy knobs (cancellation window,
// PIX discount, installment rules and so on).
type SettingsHandler struct {
	Handler
	settings *service.SettingsService
}

func NewSettingsHandler(s *server.Server, settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{Handler: NewHandler(s), settings: settings}
}

// UpdateSettingsRequest carries a partial map of keys to JSON numbers.
// Key and range validation happens in the service, which knows the
// catalogue.
type UpdateSettingsRequest struct {
	Settings map[string]json.RawMessage `json:"settings" validate:"required"`
}

func (r *UpdateSettingsRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}

	if len(r.Settings) == 0 {
		return validation.CustomValidationErrors{
			{Field: "settings", Message: "must contain at least one key"},
		}
	}

	return nil
}

type SettingsResponse struct {
	Settings map[string]json.RawMessage `json:"settings"`
}

func (h *SettingsHandler) Get(c echo.Context, _ *EmptyRequest) (*SettingsResponse, error) {
	settings, err := h.settings.Effective(c.Request().Context())
	if err != nil {
		return nil, err
	}

	return &SettingsResponse{Settings: settings}, nil
}

func (h *SettingsHandler) Update(c echo.Context, req *UpdateSettingsRequest) (*SettingsResponse, error) {
	settings, err := h.settings.Update(c.Request().Context(), middleware.CurrentUser(c), req.Settings)
	if err != nil {
		return nil, err
	}

	return &SettingsResponse{Settings: settings}, nil
}
