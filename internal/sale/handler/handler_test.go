package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	attrdto "github.com/fekuna/storefront-inventory-service/internal/attribute/dto"
	attrrepo "github.com/fekuna/storefront-inventory-service/internal/attribute/repository"
	attruc "github.com/fekuna/storefront-inventory-service/internal/attribute/usecase"
	invdto "github.com/fekuna/storefront-inventory-service/internal/inventory/dto"
	invrepo "github.com/fekuna/storefront-inventory-service/internal/inventory/repository"
	invuc "github.com/fekuna/storefront-inventory-service/internal/inventory/usecase"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/i18n"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/logger"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/response"
	proddto "github.com/fekuna/storefront-inventory-service/internal/product/dto"
	prodrepo "github.com/fekuna/storefront-inventory-service/internal/product/repository"
	produc "github.com/fekuna/storefront-inventory-service/internal/product/usecase"
	"github.com/fekuna/storefront-inventory-service/internal/sale/repository"
	"github.com/fekuna/storefront-inventory-service/internal/sale/usecase"
)

type fixture struct {
	e         *echo.Echo
	productID string
	rojoID    string
	azulID    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	log := logger.NewNop()

	productRepo := prodrepo.NewMemoryRepository()
	attributeRepo := attrrepo.NewMemoryRepository(nil)
	ledgerRepo := invrepo.NewMemoryRepository(productRepo.Exists)

	products := produc.NewProductUseCase(productRepo, nil, nil, "", log)
	attributes := attruc.NewAttributeUseCase(attributeRepo, ledgerRepo, nil, log)
	ledger := invuc.NewInventoryUseCase(ledgerRepo, attributeRepo, nil, log)
	uc := usecase.NewSaleUseCase(usecase.Dependencies{
		Repo:       repository.NewMemoryRepository(productRepo.Exists),
		Products:   products,
		Attributes: attributes,
		Ledger:     ledger,
		Logger:     log,
	})

	p, err := products.CreateProduct(ctx, &proddto.CreateProductInput{Name: "Candle", Price: decimal.NewFromInt(12)})
	require.NoError(t, err)
	rojo, err := attributes.CreateAttribute(ctx, &attrdto.CreateAttributeInput{SubcategoryID: "sub-velas", Name: "Color", Value: "Rojo"})
	require.NoError(t, err)
	azul, err := attributes.CreateAttribute(ctx, &attrdto.CreateAttributeInput{SubcategoryID: "sub-velas", Name: "Color", Value: "Azul"})
	require.NoError(t, err)
	_, err = ledger.CreateVariant(ctx, &invdto.CreateVariantInput{ProductID: p.ID, AttributeID: rojo.ID, Quantity: 10})
	require.NoError(t, err)

	tr, err := i18n.New("es")
	require.NoError(t, err)

	e := echo.New()
	NewSaleHandler(uc, response.NewRenderer(tr, log), log).Register(e.Group("/api"))
	return &fixture{e: e, productID: p.ID, rojoID: rojo.ID, azulID: azul.ID}
}

func (f *fixture) do(method, path, body, lang string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if lang != "" {
		req.Header.Set("Accept-Language", lang)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

type saleResponse struct {
	Sale struct {
		Quantity   int    `json:"quantity"`
		TotalPrice string `json:"total_price"`
	} `json:"sale"`
	LedgerRow *struct {
		Quantity int `json:"quantity"`
	} `json:"ledger_row"`
	Warnings []response.Warning `json:"warnings"`
}

func TestRecordSale_DecrementsLedger(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/sales",
		`{"product_id":"`+f.productID+`","attribute_id":"`+f.rojoID+`","quantity":3}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body saleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Sale.Quantity)
	assert.Equal(t, "36", body.Sale.TotalPrice)
	require.NotNil(t, body.LedgerRow)
	assert.Equal(t, 7, body.LedgerRow.Quantity)
	assert.Empty(t, body.Warnings)
}

func TestRecordSale_WarnsWithoutLedgerRow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/sales",
		`{"product_id":"`+f.productID+`","attribute_id":"`+f.azulID+`","quantity":1}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body saleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Nil(t, body.LedgerRow)
	require.Len(t, body.Warnings, 1)
	assert.Equal(t, "inventory_inconsistency", body.Warnings[0].Code)
	assert.Equal(t, "Venta registrada, pero no se encontró el stock del atributo seleccionado", body.Warnings[0].Message)
}

func TestRecordSale_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		body    string
		lang    string
		status  int
		code    string
		message string
	}{
		{
			name:    "zero quantity localized",
			body:    `{"product_id":"` + f.productID + `","quantity":0}`,
			lang:    "en",
			status:  http.StatusBadRequest,
			code:    "validation",
			message: "Quantity must be greater than 0",
		},
		{
			name:    "default language",
			body:    `{"product_id":"` + f.productID + `","quantity":0}`,
			status:  http.StatusBadRequest,
			code:    "validation",
			message: "La cantidad debe ser mayor a 0",
		},
		{
			name:   "malformed body",
			body:   `{"quantity":`,
			status: http.StatusBadRequest,
			code:   "validation",
		},
		{
			name:   "unknown product",
			body:   `{"product_id":"missing","quantity":1}`,
			status: http.StatusNotFound,
			code:   "not_found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/api/sales", tt.body, tt.lang)
			assert.Equal(t, tt.status, rec.Code)

			var body response.ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, body.Error)
			}
		})
	}
}

func TestStockOrderRoutes(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/stock-orders/missing", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPost, "/api/stock-orders",
		`{"notes":"restock","items":[{"product_id":"`+f.productID+`","attribute_id":"`+f.rojoID+`","quantity":4}]}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "pending", order.Status)

	rec = f.do(http.MethodPost, "/api/stock-orders/"+order.ID+"/receive", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/stock-orders/"+order.ID+"/receive", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
