package inventory

import (
	"context"

	"github.com/fekuna/storefront-inventory-service/internal/inventory/dto"
	"github.com/fekuna/storefront-inventory-service/internal/model"
)

type UseCase interface {
	GetByProduct(ctx context.Context, productID string) ([]model.VariantInventory, error)
	GetVariant(ctx context.Context, id string) (*model.VariantInventory, error)
	CreateVariant(ctx context.Context, input *dto.CreateVariantInput) (*model.VariantInventory, error)
	UpdateVariant(ctx context.Context, input *dto.UpdateVariantInput) (*model.VariantInventory, error)
	UpdateQuantity(ctx context.Context, id string, quantity int) (*model.VariantInventory, error)
	Adjust(ctx context.Context, id string, delta int) (*model.VariantInventory, error)
	DeleteVariant(ctx context.Context, id string) error

	// FindForAttribute resolves the ledger row of (productID, attr). It returns
	// nil without error when the product has no row for attr.
	FindForAttribute(ctx context.Context, productID string, attr *model.Attribute) (*model.VariantInventory, error)
	BulkReconcile(ctx context.Context, productID string, updates []dto.StockUpdate) error
	Deactivate(ctx context.Context, productID string, keepAttributeIDs []string) (int, error)
}
