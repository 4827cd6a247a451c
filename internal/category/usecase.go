package category

import (
	"context"

	"github.com/fekuna/storefront-inventory-service/internal/category/dto"
	"github.com/fekuna/storefront-inventory-service/internal/model"
)

type UseCase interface {
	CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error)
	UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	CreateSubcategory(ctx context.Context, input *dto.CreateSubcategoryInput) (*model.Subcategory, error)
	GetSubcategory(ctx context.Context, id string) (*model.Subcategory, error)
	ListSubcategories(ctx context.Context, filters *dto.SubcategoryFilters) ([]model.Subcategory, error)
	UpdateSubcategory(ctx context.Context, input *dto.UpdateSubcategoryInput) (*model.Subcategory, error)
	DeleteSubcategory(ctx context.Context, id string) error
}
