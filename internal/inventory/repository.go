package inventory

import (
	"context"

	"github.com/fekuna/storefront-inventory-service/internal/model"
)

// Repository persists ledger rows. Failures are *store.Error.
type Repository interface {
	// FindByProduct returns the product's rows, most recently created first.
	FindByProduct(ctx context.Context, productID string) ([]model.VariantInventory, error)
	FindByID(ctx context.Context, id string) (*model.VariantInventory, error)
	Create(ctx context.Context, v *model.VariantInventory) error
	Update(ctx context.Context, v *model.VariantInventory) error

	// Adjust adds delta to quantity in one statement, flooring at zero.
	Adjust(ctx context.Context, id string, delta int) (*model.VariantInventory, error)
	Delete(ctx context.Context, id string) error

	// CountByAttribute counts active rows whose variant_data carries attributeID.
	CountByAttribute(ctx context.Context, attributeID string) (int, error)
}
