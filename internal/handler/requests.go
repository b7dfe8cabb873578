package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/salaviva/backend/internal/errs"
	"github.com/salaviva/backend/internal/middleware"
	"github.com/salaviva/backend/internal/model"
	"github.com/salaviva/backend/internal/service"
	"github.com/salaviva/backend/internal/validation"
)

// requireUser returns the authenticated user stored by the auth
// middleware. Routes behind RequireAuth always have one; the error path
// covers misregistered routes.
func requireUser(c echo.Context) (*model.User, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, errs.NewUnauthorizedError("Authentication required", true)
	}
	return user, nil
}

// EmptyRequest is the payload for endpoints that take no input.
type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error { return nil }

// IDRequest captures a numeric :id path parameter.
type IDRequest struct {
	ID int64 `param:"id" validate:"required,gt=0"`
}

func (r *IDRequest) Validate() error { return validation.Struct(r) }

// PageRequest captures the standard pagination query parameters. Values
// are normalized downstream, so out-of-range input clamps instead of
// failing.
type PageRequest struct {
	Page    int `query:"page"`
	PerPage int `query:"per_page"`
}

func (r *PageRequest) Validate() error { return nil }

func (r *PageRequest) pagination() service.Pagination {
	return service.Pagination{Page: r.Page, PerPage: r.PerPage}
}
