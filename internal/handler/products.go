package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/salaviva/backend/internal/middleware"
	"github.com/salaviva/backend/internal/model"
	"github.com/salaviva/backend/internal/server"
	"github.com/salaviva/backend/internal/service"
	"github.com/salaviva/backend/internal/validation"
)

// ProductsHandler serves the public credit-package catalog and the admin
// product CRUD.
type ProductsHandler struct {
	Handler
	catalog *service.CatalogService
}

func NewProductsHandler(s *server.Server, catalog *service.CatalogService) *ProductsHandler {
	return &ProductsHandler{
		Handler: NewHandler(s),
		catalog: catalog,
	}
}

type ProductListResponse struct {
	Products []*model.Product `json:"products"`
}

type ProductResponse struct {
	Product *model.Product `json:"product"`
}

func (h *ProductsHandler) List(c echo.Context, _ *EmptyRequest) (*ProductListResponse, error) {
	products, err := h.catalog.ListProducts(c.Request().Context(), false)
	if err != nil {
		return nil, err
	}

	return &ProductListResponse{Products: products}, nil
}

// ProductPayload is the admin create/update body for a credit package.
type ProductPayload struct {
	Name        string          `json:"name" validate:"required,min=2,max=120"`
	Description string          `json:"description" validate:"max=2000"`
	CreditHours int             `json:"credit_hours" validate:"min=1,max=1000"`
	Price       decimal.Decimal `json:"price"`
	Active      *bool           `json:"active"`
	Position    int             `json:"position" validate:"gte=0"`
}

func (r *ProductPayload) input() service.ProductInput {
	active := true
	if r.Active != nil {
		active = *r.Active
	}

	return service.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		CreditHours: r.CreditHours,
		Price:       r.Price,
		Active:      active,
		Position:    r.Position,
	}
}

type CreateProductRequest struct {
	ProductPayload
}

func (r *CreateProductRequest) Validate() error { return validation.Struct(r) }

type UpdateProductRequest struct {
	ID int64 `param:"id" validate:"required,gt=0"`
	ProductPayload
}

func (r *UpdateProductRequest) Validate() error { return validation.Struct(r) }

func (h *ProductsHandler) AdminList(c echo.Context, _ *EmptyRequest) (*ProductListResponse, error) {
	products, err := h.catalog.ListProducts(c.Request().Context(), true)
	if err != nil {
		return nil, err
	}

	return &ProductListResponse{Products: products}, nil
}

func (h *ProductsHandler) AdminGet(c echo.Context, req *IDRequest) (*ProductResponse, error) {
	product, err := h.catalog.GetProduct(c.Request().Context(), req.ID)
	if err != nil {
		return nil, err
	}

	return &ProductResponse{Product: product}, nil
}

func (h *ProductsHandler) Create(c echo.Context, req *CreateProductRequest) (*ProductResponse, error) {
	product, err := h.catalog.CreateProduct(c.Request().Context(), middleware.CurrentUser(c), req.input())
	if err != nil {
		return nil, err
	}

	return &ProductResponse{Product: product}, nil
}

func (h *ProductsHandler) Update(c echo.Context, req *UpdateProductRequest) (*ProductResponse, error) {
	product, err := h.catalog.UpdateProduct(c.Request().Context(), middleware.CurrentUser(c), req.ID, req.input())
	if err != nil {
		return nil, err
	}

	return &ProductResponse{Product: product}, nil
}

func (h *ProductsHandler) Delete(c echo.Context, req *IDRequest) error {
	return h.catalog.DeleteProduct(c.Request().Context(), middleware.CurrentUser(c), req.ID)
}
