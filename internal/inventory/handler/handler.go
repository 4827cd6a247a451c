package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fekuna/storefront-inventory-service/internal/apperr"
	"github.com/fekuna/storefront-inventory-service/internal/inventory"
	"github.com/fekuna/storefront-inventory-service/internal/inventory/dto"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/logger"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/response"
)

type InventoryHandler struct {
	uc       inventory.UseCase
	renderer *response.Renderer
	logger   logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, renderer *response.Renderer, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:       uc,
		renderer: renderer,
		logger:   log,
	}
}

// Register mounts the ledger routes on the API root group.
func (h *InventoryHandler) Register(api *echo.Group) {
	api.GET("/products/:product_id/variants", h.ListByProduct)

	g := api.Group("/variants")
	g.POST("", h.CreateVariant)
	g.GET("/:id", h.GetVariant)
	g.PATCH("/:id", h.UpdateVariant)
	g.PUT("/:id/quantity", h.UpdateQuantity)
	g.POST("/:id/adjust", h.Adjust)
	g.DELETE("/:id", h.DeleteVariant)
}

func (h *InventoryHandler) ListByProduct(c echo.Context) error {
	rows, err := h.uc.GetByProduct(c.Request().Context(), c.Param("product_id"))
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"variants": rows})
}

func (h *InventoryHandler) GetVariant(c echo.Context) error {
	v, err := h.uc.GetVariant(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *InventoryHandler) CreateVariant(c echo.Context) error {
	var input dto.CreateVariantInput
	if err := c.Bind(&input); err != nil {
		return h.badRequest(c, err)
	}

	v, err := h.uc.CreateVariant(c.Request().Context(), &input)
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *InventoryHandler) UpdateVariant(c echo.Context) error {
	var input dto.UpdateVariantInput
	if err := c.Bind(&input); err != nil {
		return h.badRequest(c, err)
	}
	input.ID = c.Param("id")

	v, err := h.uc.UpdateVariant(c.Request().Context(), &input)
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *InventoryHandler) UpdateQuantity(c echo.Context) error {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}

	v, err := h.uc.UpdateQuantity(c.Request().Context(), c.Param("id"), req.Quantity)
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *InventoryHandler) Adjust(c echo.Context) error {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}

	v, err := h.uc.Adjust(c.Request().Context(), c.Param("id"), req.Delta)
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *InventoryHandler) DeleteVariant(c echo.Context) error {
	if err := h.uc.DeleteVariant(c.Request().Context(), c.Param("id")); err != nil {
		return h.renderer.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *InventoryHandler) badRequest(c echo.Context, err error) error {
	h.logger.Warn("invalid ledger payload", zap.String("path", c.Path()), zap.Error(err))
	return h.renderer.Error(c, apperr.Validation("error.validation.body", "could not parse request body"))
}
