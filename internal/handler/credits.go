package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/salaviva/backend/internal/middleware"
	"github.com/salaviva/backend/internal/model"
	"github.com/salaviva/backend/internal/server"
	"github.com/salaviva/backend/internal/service"
	"github.com/salaviva/backend/internal/validation"
)

// CreditsHandler serves the customer credit statement and admin manual
// adjustments.
type CreditsHandler struct {
	Handler
	credits *service.CreditService
}

func NewCreditsHandler(s *server.Server, credits *service.CreditService) *CreditsHandler {
	return &CreditsHandler{Handler: NewHandler(s), credits: credits}
}

// AdjustCreditsRequest grants or revokes hours on a user's ledger. The
// delta sign decides the direction; the service rejects zero.
type AdjustCreditsRequest struct {
	ID         int64  `param:"id" validate:"required,gt=0"`
	DeltaHours int    `json:"delta_hours"`
	Note       string `json:"note" validate:"omitempty,max=500"`
}

func (r *AdjustCreditsRequest) Validate() error { return validation.Struct(r) }

type CreditEntryResponse struct {
	Entry *model.CreditEntry `json:"entry"`
}

func (h *CreditsHandler) Summary(c echo.Context, req *PageRequest) (*service.CreditSummary, error) {
	user, err := requireUser(c)
	if err != nil {
		return nil, err
	}

	return h.credits.Summary(c.Request().Context(), user.ID, req.pagination())
}

func (h *CreditsHandler) AdminAdjust(c echo.Context, req *AdjustCreditsRequest) (*CreditEntryResponse, error) {
	entry, err := h.credits.Adjust(c.Request().Context(), middleware.CurrentUser(c), req.ID, req.DeltaHours, req.Note)
	if err != nil {
		return nil, err
	}

	return &CreditEntryResponse{Entry: entry}, nil
}
