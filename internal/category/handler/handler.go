package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fekuna/storefront-inventory-service/internal/apperr"
	"github.com/fekuna/storefront-inventory-service/internal/category"
	"github.com/fekuna/storefront-inventory-service/internal/category/dto"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/logger"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/response"
)

type CategoryHandler struct {
	uc       category.UseCase
	renderer *response.Renderer
	logger   logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, renderer *response.Renderer, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:       uc,
		renderer: renderer,
		logger:   log,
	}
}

func (h *CategoryHandler) Register(api *echo.Group) {
	c := api.Group("/categories")
	c.GET("", h.ListCategories)
	c.GET("/:id", h.GetCategory)
	c.POST("", h.CreateCategory)
	c.PATCH("/:id", h.UpdateCategory)
	c.DELETE("/:id", h.DeleteCategory)

	s := api.Group("/subcategories")
	s.GET("", h.ListSubcategories)
	s.GET("/:id", h.GetSubcategory)
	s.POST("", h.CreateSubcategory)
	s.PATCH("/:id", h.UpdateSubcategory)
	s.DELETE("/:id", h.DeleteSubcategory)
}

func (h *CategoryHandler) ListCategories(c echo.Context) error {
	filters := &dto.CategoryFilters{
		IncludeSubcategories: c.QueryParam("include_subcategories") == "true",
	}
	active, err := boolParam(c, "is_active")
	if err != nil {
		return h.renderer.Error(c, err)
	}
	filters.IsActive = active
	filters.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filters.PageSize, _ = strconv.Atoi(c.QueryParam("page_size"))

	cats, count, err := h.uc.ListCategories(c.Request().Context(), filters)
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": cats, "total": count})
}

func (h *CategoryHandler) GetCategory(c echo.Context) error {
	cat, err := h.uc.GetCategory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var input dto.CreateCategoryInput
	if err := c.Bind(&input); err != nil {
		return h.badRequest(c, err)
	}
	cat, err := h.uc.CreateCategory(c.Request().Context(), &input)
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	var input dto.UpdateCategoryInput
	if err := c.Bind(&input); err != nil {
		return h.badRequest(c, err)
	}
	input.ID = c.Param("id")

	cat, err := h.uc.UpdateCategory(c.Request().Context(), &input)
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	if err := h.uc.DeleteCategory(c.Request().Context(), c.Param("id")); err != nil {
		return h.renderer.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CategoryHandler) ListSubcategories(c echo.Context) error {
	filters := &dto.SubcategoryFilters{CategoryID: c.QueryParam("category_id")}
	active, err := boolParam(c, "is_active")
	if err != nil {
		return h.renderer.Error(c, err)
	}
	filters.IsActive = active

	subs, err := h.uc.ListSubcategories(c.Request().Context(), filters)
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"subcategories": subs})
}

func (h *CategoryHandler) GetSubcategory(c echo.Context) error {
	sub, err := h.uc.GetSubcategory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, sub)
}

func (h *CategoryHandler) CreateSubcategory(c echo.Context) error {
	var input dto.CreateSubcategoryInput
	if err := c.Bind(&input); err != nil {
		return h.badRequest(c, err)
	}
	sub, err := h.uc.CreateSubcategory(c.Request().Context(), &input)
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusCreated, sub)
}

func (h *CategoryHandler) UpdateSubcategory(c echo.Context) error {
	var input dto.UpdateSubcategoryInput
	if err := c.Bind(&input); err != nil {
		return h.badRequest(c, err)
	}
	input.ID = c.Param("id")

	sub, err := h.uc.UpdateSubcategory(c.Request().Context(), &input)
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, sub)
}

func (h *CategoryHandler) DeleteSubcategory(c echo.Context) error {
	if err := h.uc.DeleteSubcategory(c.Request().Context(), c.Param("id")); err != nil {
		return h.renderer.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CategoryHandler) badRequest(c echo.Context, err error) error {
	h.logger.Warn("invalid category payload", zap.String("path", c.Path()), zap.Error(err))
	return h.renderer.Error(c, apperr.Validation("error.validation.body", "could not parse request body"))
}

func boolParam(c echo.Context, name string) (*bool, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, apperr.Validation("error.validation.is_active", "%s must be a boolean", name)
	}
	return &b, nil
}
