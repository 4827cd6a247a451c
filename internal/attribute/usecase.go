package attribute

import (
	"context"

	"github.com/fekuna/storefront-inventory-service/internal/attribute/dto"
	"github.com/fekuna/storefront-inventory-service/internal/model"
)

type UseCase interface {
	ListAttributes(ctx context.Context, filters *dto.AttributeFilters) ([]model.Attribute, error)
	ListBySubcategory(ctx context.Context, subcategoryID string) ([]model.Attribute, error)
	GetAttribute(ctx context.Context, id string) (*model.Attribute, error)
	CreateAttribute(ctx context.Context, input *dto.CreateAttributeInput) (*model.Attribute, error)
	UpdateAttribute(ctx context.Context, input *dto.UpdateAttributeInput) (*model.Attribute, error)
	DeleteAttribute(ctx context.Context, id string) error
	ToggleActive(ctx context.Context, id string) (*model.Attribute, error)
}
