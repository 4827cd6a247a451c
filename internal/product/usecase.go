package product

import (
	"context"

	"github.com/fekuna/storefront-inventory-service/internal/model"
	"github.com/fekuna/storefront-inventory-service/internal/product/dto"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	SetAttributes(ctx context.Context, id string, attributeIDs []string) (*model.Product, error)
	SetStock(ctx context.Context, id string, stock int) (*model.Product, error)
	AdjustStock(ctx context.Context, id string, delta int) (int, error)
}
