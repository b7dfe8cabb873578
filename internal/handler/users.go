package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/salaviva/backend/internal/model"
	"github.com/salaviva/backend/internal/server"
	"github.com/salaviva/backend/internal/service"
	"github.com/salaviva/backend/internal/validation"
)

// UsersHandler serves the admin customer directory.
type UsersHandler struct {
	Handler
	users *service.UsersService
}

func NewUsersHandler(s *server.Server, users *service.UsersService) *UsersHandler {
	return &UsersHandler{Handler: NewHandler(s), users: users}
}

// AdminListUsersRequest searches users by name, email or CPF fragment.
type AdminListUsersRequest struct {
	PageRequest
	Query string `query:"q" validate:"omitempty,max=120"`
}

func (r *AdminListUsersRequest) Validate() error { return validation.Struct(r) }

type UserListResponse struct {
	Users []*model.User    `json:"users"`
	Pages service.PageInfo `json:"pages"`
}

func (h *UsersHandler) AdminList(c echo.Context, req *AdminListUsersRequest) (*UserListResponse, error) {
	users, pages, err := h.users.List(c.Request().Context(), req.Query, req.pagination())
	if err != nil {
		return nil, err
	}

	return &UserListResponse{Users: users, Pages: pages}, nil
}

func (h *UsersHandler) AdminGet(c echo.Context, req *IDRequest) (*service.UserDetail, error) {
	return h.users.Get(c.Request().Context(), req.ID)
}
