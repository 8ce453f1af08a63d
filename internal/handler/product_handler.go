package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"markethub/internal/middleware"
	"markethub/internal/repository"
	"markethub/internal/service"
)

// ProductHandler bundles product endpoints.
type ProductHandler struct {
	svc service.ProductService
}

// NewProductHandler creates a handler layer.
func NewProductHandler(svc service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// ProductRequest represents a product create/update payload.
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	IsAvailable bool            `json:"is_available"`
}

func (r ProductRequest) input() service.ProductInput {
	return service.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		IsAvailable: r.IsAvailable,
	}
}

// ListProducts godoc
// @Summary List all products
// @Tags products
// @Produce json
// @Success 200 {array} model.Product
// @Failure 500 {object} errors.ErrorResponse
// @Router /products [get]
func (h *ProductHandler) ListProducts(c echo.Context) error {
	products, err := h.svc.GetAll(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// GetProduct godoc
// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} model.Product
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [get]
func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	product, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// SearchProducts godoc
// @Summary Search products
// @Tags products
// @Produce json
// @Param search_term query string false "Name or description substring"
// @Param min_price query number false "Minimum price"
// @Param max_price query number false "Maximum price"
// @Param is_available query bool false "Availability filter"
// @Param created_by query int false "Creator user id"
// @Param page query int false "Page number (1-based)"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {array} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Router /products/search [get]
func (h *ProductHandler) SearchProducts(c echo.Context) error {
	filter := repository.ProductFilter{
		SearchTerm: c.QueryParam("search_term"),
	}
	if v := c.QueryParam("min_price"); v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid min_price")
		}
		filter.MinPrice = &p
	}
	if v := c.QueryParam("max_price"); v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid max_price")
		}
		filter.MaxPrice = &p
	}
	if v := c.QueryParam("is_available"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid is_available")
		}
		filter.IsAvailable = &b
	}
	if v := c.QueryParam("created_by"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid created_by")
		}
		uid := uint(id)
		filter.CreatedByUserID = &uid
	}
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.PageSize, _ = strconv.Atoi(c.QueryParam("page_size"))

	products, err := h.svc.Search(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// CreateProduct godoc
// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProductRequest true "Product payload"
// @Success 201 {object} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Router /products [post]
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	product, err := h.svc.Create(c.Request().Context(), req.input(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct godoc
// @Summary Update product owned by the caller
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param request body ProductRequest true "Product payload"
// @Success 200 {object} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [put]
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	product, err := h.svc.Update(c.Request().Context(), id, req.input(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct godoc
// @Summary Delete product owned by the caller
// @Tags products
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 204 "No Content"
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id, userID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeactivateByUser godoc
// @Summary Deactivate all products owned by a user
// @Description Called by the users service when an account is deactivated. Idempotent.
// @Tags products
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]string
// @Failure 500 {object} errors.ErrorResponse
// @Router /products/deactivate-by-user/{userId} [patch]
func (h *ProductHandler) DeactivateByUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if err := h.svc.DeactivateByUserID(c.Request().Context(), uint(id)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "products deactivated"})
}
