package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fekuna/storefront-inventory-service/internal/apperr"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/logger"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/response"
	"github.com/fekuna/storefront-inventory-service/internal/product"
	"github.com/fekuna/storefront-inventory-service/internal/product/dto"
)

type ProductHandler struct {
	uc       product.UseCase
	renderer *response.Renderer
	logger   logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, renderer *response.Renderer, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:       uc,
		renderer: renderer,
		logger:   log,
	}
}

func (h *ProductHandler) Register(g *echo.Group) {
	g.GET("", h.ListProducts)
	g.GET("/:id", h.GetProduct)
	g.POST("", h.CreateProduct)
	g.PATCH("/:id", h.UpdateProduct)
	g.DELETE("/:id", h.DeleteProduct)
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	filters := &dto.ProductFilters{
		CategoryID:    c.QueryParam("category_id"),
		SubcategoryID: c.QueryParam("subcategory_id"),
		SearchQuery:   c.QueryParam("q"),
		SortBy:        c.QueryParam("sort_by"),
		SortOrder:     c.QueryParam("sort_order"),
	}
	if v := c.QueryParam("is_active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return h.renderer.Error(c, apperr.Validation("error.validation.is_active", "is_active must be a boolean"))
		}
		filters.IsActive = &active
	}
	filters.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filters.PageSize, _ = strconv.Atoi(c.QueryParam("page_size"))

	products, total, err := h.uc.ListProducts(c.Request().Context(), filters)
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"products": products,
		"total":    total,
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	p, err := h.uc.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var input dto.CreateProductInput
	if err := c.Bind(&input); err != nil {
		return h.badRequest(c, err)
	}

	p, err := h.uc.CreateProduct(c.Request().Context(), &input)
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	var input dto.UpdateProductInput
	if err := c.Bind(&input); err != nil {
		return h.badRequest(c, err)
	}
	input.ID = c.Param("id")

	p, err := h.uc.UpdateProduct(c.Request().Context(), &input)
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	if err := h.uc.DeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		return h.renderer.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHandler) badRequest(c echo.Context, err error) error {
	h.logger.Warn("invalid product payload", zap.Error(err))
	return h.renderer.Error(c, apperr.Validation("error.validation.body", "could not parse request body"))
}
