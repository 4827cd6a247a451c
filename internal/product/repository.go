package product

import (
	"context"

	"github.com/fekuna/storefront-inventory-service/internal/model"
	"github.com/fekuna/storefront-inventory-service/internal/product/dto"
)

// Repository persists products. Failures are *store.Error.
type Repository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) error

	UpdateAttributeIDs(ctx context.Context, id string, attributeIDs []string) error
	UpdateStock(ctx context.Context, id string, stock int) error

	// AdjustStock adds delta to the aggregate stock in one statement, flooring
	// at zero, and returns the new value.
	AdjustStock(ctx context.Context, id string, delta int) (int, error)
}
