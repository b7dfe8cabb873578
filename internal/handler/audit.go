package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/salaviva/backend/internal/model"
	"github.com/salaviva/backend/internal/repository"
	"github.com/salaviva/backend/internal/server"
	"github.com/salaviva/backend/internal/service"
	"github.com/salaviva/backend/internal/validation"
)

// AuditHandler serves the admin audit trail.
type AuditHandler struct {
	Handler
	audit *service.AuditService
}

func NewAuditHandler(s *server.Server, audit *service.AuditService) *AuditHandler {
	return &AuditHandler{Handler: NewHandler(s), audit: audit}
}

// AdminListAuditRequest filters the trail by entity type or acting user.
type AdminListAuditRequest struct {
	PageRequest
	Entity  string `query:"entity" validate:"omitempty,max=60"`
	ActorID int64  `query:"actor_id" validate:"omitempty,gt=0"`
}

func (r *AdminListAuditRequest) Validate() error { return validation.Struct(r) }

func (r *AdminListAuditRequest) filter() repository.AuditLogFilter {
	filter := repository.AuditLogFilter{Entity: r.Entity}
	if r.ActorID > 0 {
		filter.ActorID = &r.ActorID
	}
	return filter
}

type AuditListResponse struct {
	Logs  []*model.AuditLog `json:"logs"`
	Pages service.PageInfo  `json:"pages"`
}

func (h *AuditHandler) AdminList(c echo.Context, req *AdminListAuditRequest) (*AuditListResponse, error) {
	logs, pages, err := h.audit.List(c.Request().Context(), req.filter(), req.pagination())
	if err != nil {
		return nil, err
	}

	return &AuditListResponse{Logs: logs, Pages: pages}, nil
}
