package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/storefront-inventory-service/internal/apperr"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/logger"
	"github.com/fekuna/storefront-inventory-service/internal/product/dto"
	"github.com/fekuna/storefront-inventory-service/internal/product/repository"
)

func newTestUseCase() *productUseCase {
	return NewProductUseCase(repository.NewMemoryRepository(), nil, nil, "", logger.NewNop()).(*productUseCase)
}

func TestCreateProduct(t *testing.T) {
	uc := newTestUseCase()
	ctx := context.Background()

	p, err := uc.CreateProduct(ctx, &dto.CreateProductInput{
		Name:         " Vela aromática ",
		Price:        decimal.RequireFromString("12.50"),
		AttributeIDs: []string{"a1", "a2", "a1", " "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Vela aromática", p.Name)
	assert.Equal(t, []string{"a1", "a2"}, []string(p.AttributeIDs))
	assert.True(t, p.IsActive)
	assert.Zero(t, p.Stock)

	_, err = uc.CreateProduct(ctx, &dto.CreateProductInput{Name: ""})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = uc.CreateProduct(ctx, &dto.CreateProductInput{Name: "x", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestStockAndAttributes(t *testing.T) {
	uc := newTestUseCase()
	ctx := context.Background()

	p, err := uc.CreateProduct(ctx, &dto.CreateProductInput{Name: "Vela", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)

	got, err := uc.SetAttributes(ctx, p.ID, []string{"a2", "a1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a2", "a1"}, []string(got.AttributeIDs))

	got, err = uc.SetStock(ctx, p.ID, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Stock)

	stock, err := uc.AdjustStock(ctx, p.ID, -10)
	require.NoError(t, err)
	assert.Equal(t, 0, stock)

	_, err = uc.SetStock(ctx, p.ID, -1)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = uc.AdjustStock(ctx, "missing", 1)
	assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.KindNotFound, Ref: apperr.RefProduct})
}

func TestUpdateProduct_KeepsStock(t *testing.T) {
	uc := newTestUseCase()
	ctx := context.Background()

	p, err := uc.CreateProduct(ctx, &dto.CreateProductInput{Name: "Vela", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)
	_, err = uc.SetStock(ctx, p.ID, 5)
	require.NoError(t, err)

	price := decimal.NewFromInt(15)
	got, err := uc.UpdateProduct(ctx, &dto.UpdateProductInput{ID: p.ID, Price: &price})
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(price))

	reloaded, err := uc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.Stock)
}

func TestListProducts(t *testing.T) {
	uc := newTestUseCase()
	ctx := context.Background()

	for _, name := range []string{"Vela roja", "Incienso", "Vela azul"} {
		_, err := uc.CreateProduct(ctx, &dto.CreateProductInput{Name: name, Price: decimal.NewFromInt(1)})
		require.NoError(t, err)
	}

	items, count, err := uc.ListProducts(ctx, &dto.ProductFilters{SearchQuery: "vela", SortBy: "name", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, items, 2)
	assert.Equal(t, "Vela azul", items[0].Name)

	items, count, err = uc.ListProducts(ctx, &dto.ProductFilters{PageSize: 2, Page: 2, SortBy: "name", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.Len(t, items, 1)
	assert.Equal(t, "Vela roja", items[0].Name)
}
