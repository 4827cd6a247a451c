package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fekuna/storefront-inventory-service/internal/apperr"
	"github.com/fekuna/storefront-inventory-service/internal/attribute"
	"github.com/fekuna/storefront-inventory-service/internal/attribute/dto"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/logger"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/response"
)

type AttributeHandler struct {
	uc       attribute.UseCase
	renderer *response.Renderer
	logger   logger.ZapLogger
}

func NewAttributeHandler(uc attribute.UseCase, renderer *response.Renderer, log logger.ZapLogger) *AttributeHandler {
	return &AttributeHandler{
		uc:       uc,
		renderer: renderer,
		logger:   log,
	}
}

func (h *AttributeHandler) Register(g *echo.Group) {
	g.GET("", h.ListAttributes)
	g.GET("/:id", h.GetAttribute)
	g.POST("", h.CreateAttribute)
	g.PATCH("/:id", h.UpdateAttribute)
	g.DELETE("/:id", h.DeleteAttribute)
	g.POST("/:id/toggle", h.ToggleActive)
}

// ListAttributes serves the cached active list when only subcategory_id is given.
func (h *AttributeHandler) ListAttributes(c echo.Context) error {
	ctx := c.Request().Context()
	subcategoryID := c.QueryParam("subcategory_id")

	if subcategoryID != "" && c.QueryParam("include_inactive") == "" && c.QueryParam("type") == "" {
		items, err := h.uc.ListBySubcategory(ctx, subcategoryID)
		if err != nil {
			return h.renderer.Error(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"attributes": items})
	}

	filters := &dto.AttributeFilters{
		SubcategoryID: subcategoryID,
		Type:          c.QueryParam("type"),
	}
	if v := c.QueryParam("is_active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return h.renderer.Error(c, apperr.Validation("error.validation.is_active", "is_active must be a boolean"))
		}
		filters.IsActive = &active
	}

	items, err := h.uc.ListAttributes(ctx, filters)
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"attributes": items})
}

func (h *AttributeHandler) GetAttribute(c echo.Context) error {
	a, err := h.uc.GetAttribute(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AttributeHandler) CreateAttribute(c echo.Context) error {
	var input dto.CreateAttributeInput
	if err := c.Bind(&input); err != nil {
		h.logger.Warn("invalid attribute payload", zap.Error(err))
		return h.renderer.Error(c, apperr.Validation("error.validation.body", "could not parse request body"))
	}

	a, err := h.uc.CreateAttribute(c.Request().Context(), &input)
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *AttributeHandler) UpdateAttribute(c echo.Context) error {
	var input dto.UpdateAttributeInput
	if err := c.Bind(&input); err != nil {
		h.logger.Warn("invalid attribute payload", zap.Error(err))
		return h.renderer.Error(c, apperr.Validation("error.validation.body", "could not parse request body"))
	}
	input.ID = c.Param("id")

	a, err := h.uc.UpdateAttribute(c.Request().Context(), &input)
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AttributeHandler) DeleteAttribute(c echo.Context) error {
	if err := h.uc.DeleteAttribute(c.Request().Context(), c.Param("id")); err != nil {
		return h.renderer.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AttributeHandler) ToggleActive(c echo.Context) error {
	a, err := h.uc.ToggleActive(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, a)
}
