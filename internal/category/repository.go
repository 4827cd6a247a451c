package category

import (
	"context"

	"github.com/fekuna/storefront-inventory-service/internal/category/dto"
	"github.com/fekuna/storefront-inventory-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindAll(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id string) error

	CreateSubcategory(ctx context.Context, sub *model.Subcategory) error
	FindSubcategory(ctx context.Context, id string) (*model.Subcategory, error)
	ListSubcategories(ctx context.Context, filters *dto.SubcategoryFilters) ([]model.Subcategory, error)
	UpdateSubcategory(ctx context.Context, sub *model.Subcategory) error
	DeleteSubcategory(ctx context.Context, id string) error
}
