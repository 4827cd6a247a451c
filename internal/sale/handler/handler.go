package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fekuna/storefront-inventory-service/internal/apperr"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/logger"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/response"
	"github.com/fekuna/storefront-inventory-service/internal/sale"
	"github.com/fekuna/storefront-inventory-service/internal/sale/dto"
)

type SaleHandler struct {
	uc       sale.UseCase
	renderer *response.Renderer
	logger   logger.ZapLogger
}

func NewSaleHandler(uc sale.UseCase, renderer *response.Renderer, log logger.ZapLogger) *SaleHandler {
	return &SaleHandler{
		uc:       uc,
		renderer: renderer,
		logger:   log,
	}
}

// Register mounts the resolver routes on the API root group.
func (h *SaleHandler) Register(api *echo.Group) {
	api.POST("/sales", h.RecordSale)
	api.GET("/products/:product_id/sales", h.ListSales)
	api.POST("/products/:product_id/restock", h.Increment)
	api.PUT("/products/:product_id/inventory", h.ReconcileProduct)

	g := api.Group("/stock-orders")
	g.POST("", h.RecordStockOrder)
	g.GET("", h.ListStockOrders)
	g.GET("/:id", h.GetStockOrder)
	g.POST("/:id/receive", h.ReceiveStockOrder)
}

// Successful responses that carry warnings still return 2xx; warnings are
// localized alongside the payload.
func (h *SaleHandler) RecordSale(c echo.Context) error {
	var input dto.RecordSaleInput
	if err := c.Bind(&input); err != nil {
		return h.badRequest(c, err)
	}

	res, err := h.uc.RecordSale(c.Request().Context(), &input)
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"sale":       res.Sale,
		"ledger_row": res.LedgerRow,
		"warnings":   h.renderer.Warnings(c, res.Warnings),
	})
}

func (h *SaleHandler) ListSales(c echo.Context) error {
	items, err := h.uc.ListSales(c.Request().Context(), c.Param("product_id"))
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"sales": items})
}

func (h *SaleHandler) Increment(c echo.Context) error {
	var req struct {
		AttributeID string `json:"attribute_id"`
		Quantity    int    `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return h.badRequest(c, err)
	}

	row, err := h.uc.Increment(c.Request().Context(), c.Param("product_id"), req.AttributeID, req.Quantity)
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, row)
}

func (h *SaleHandler) ReconcileProduct(c echo.Context) error {
	var input dto.ReconcileInput
	if err := c.Bind(&input); err != nil {
		return h.badRequest(c, err)
	}

	res, err := h.uc.ReconcileProduct(c.Request().Context(), c.Param("product_id"), &input)
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"product":  res.Product,
		"variants": res.Variants,
		"warnings": h.renderer.Warnings(c, res.Warnings),
	})
}

func (h *SaleHandler) RecordStockOrder(c echo.Context) error {
	var input dto.StockOrderInput
	if err := c.Bind(&input); err != nil {
		return h.badRequest(c, err)
	}

	o, err := h.uc.RecordStockOrder(c.Request().Context(), &input)
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *SaleHandler) ListStockOrders(c echo.Context) error {
	items, err := h.uc.ListStockOrders(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"stock_orders": items})
}

func (h *SaleHandler) GetStockOrder(c echo.Context) error {
	o, err := h.uc.GetStockOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *SaleHandler) ReceiveStockOrder(c echo.Context) error {
	res, err := h.uc.ReceiveStockOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.renderer.Error(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"order":    res.Order,
		"warnings": h.renderer.Warnings(c, res.Warnings),
	})
}

func (h *SaleHandler) badRequest(c echo.Context, err error) error {
	h.logger.Warn("invalid sale payload", zap.String("path", c.Path()), zap.Error(err))
	return h.renderer.Error(c, apperr.Validation("error.validation.body", "could not parse request body"))
}
