package attribute

import (
	"context"

	"github.com/fekuna/storefront-inventory-service/internal/attribute/dto"
	"github.com/fekuna/storefront-inventory-service/internal/model"
)

// Repository persists catalog options. Failures are *store.Error; FindByID
// reports a missing row with store code not_found.
type Repository interface {
	Create(ctx context.Context, attr *model.Attribute) error
	FindByID(ctx context.Context, id string) (*model.Attribute, error)
	FindAll(ctx context.Context, filters *dto.AttributeFilters) ([]model.Attribute, error)
	Update(ctx context.Context, attr *model.Attribute) error
	Delete(ctx context.Context, id string) error
}
