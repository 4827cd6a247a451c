package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/storefront-inventory-service/internal/apperr"
	"github.com/fekuna/storefront-inventory-service/internal/category"
	"github.com/fekuna/storefront-inventory-service/internal/category/dto"
	"github.com/fekuna/storefront-inventory-service/internal/model"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/logger"
	"github.com/fekuna/storefront-inventory-service/internal/store"
)

const duplicateMsg = "error.duplicate.category"

type categoryUseCase struct {
	repo   category.Repository
	logger logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation("error.validation.category_name_required", "name is required")
	}

	now := time.Now()
	cat := &model.Category{
		BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:        name,
		Description: optional(input.Description),
		ImageURL:    optional(input.ImageURL),
		SortOrder:   input.SortOrder,
		IsActive:    true,
	}
	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, apperr.FromStore(err, duplicateMsg, apperr.RefCategory)
	}
	return cat, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	cat, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromStore(err, duplicateMsg, apperr.RefCategory)
	}
	return cat, nil
}

// ListCategories returns a flat page, or a one level tree when
// IncludeSubcategories is set.
func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error) {
	if filters == nil {
		filters = &dto.CategoryFilters{}
	}
	categories, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, apperr.FromStore(err, duplicateMsg, apperr.RefCategory)
	}
	if !filters.IncludeSubcategories || len(categories) == 0 {
		return categories, count, nil
	}

	subs, err := uc.repo.ListSubcategories(ctx, &dto.SubcategoryFilters{IsActive: filters.IsActive})
	if err != nil {
		return nil, 0, apperr.FromStore(err, duplicateMsg, apperr.RefSubcategory)
	}
	byCategory := make(map[string][]model.Subcategory, len(categories))
	for _, s := range subs {
		byCategory[s.CategoryID] = append(byCategory[s.CategoryID], s)
	}
	for i := range categories {
		categories[i].Subcategories = byCategory[categories[i].ID]
	}
	return categories, count, nil
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	cat, err := uc.GetCategory(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		cat.Name = strings.TrimSpace(*input.Name)
		if cat.Name == "" {
			return nil, apperr.Validation("error.validation.category_name_required", "name is required")
		}
	}
	if input.Description != nil {
		cat.Description = optional(*input.Description)
	}
	if input.ImageURL != nil {
		cat.ImageURL = optional(*input.ImageURL)
	}
	if input.SortOrder != nil {
		cat.SortOrder = *input.SortOrder
	}
	if input.IsActive != nil {
		cat.IsActive = *input.IsActive
	}
	cat.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, cat); err != nil {
		return nil, apperr.FromStore(err, duplicateMsg, apperr.RefCategory)
	}
	return cat, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id string) error {
	err := uc.repo.Delete(ctx, id)
	if store.CodeOf(err) == store.CodeForeignKeyViolation {
		uc.logger.Info("category delete blocked by subcategories", zap.String("category_id", id))
		return apperr.Validation("error.validation.category_in_use", "category %s still has subcategories", id)
	}
	return apperr.FromStore(err, duplicateMsg, apperr.RefCategory)
}

func (uc *categoryUseCase) CreateSubcategory(ctx context.Context, input *dto.CreateSubcategoryInput) (*model.Subcategory, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation("error.validation.category_name_required", "name is required")
	}
	categoryID := strings.TrimSpace(input.CategoryID)
	if categoryID == "" {
		return nil, apperr.Validation("error.validation.category_required", "category_id is required")
	}

	now := time.Now()
	sub := &model.Subcategory{
		BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		CategoryID:  categoryID,
		Name:        name,
		Description: optional(input.Description),
		SortOrder:   input.SortOrder,
		IsActive:    true,
	}
	if err := uc.repo.CreateSubcategory(ctx, sub); err != nil {
		return nil, apperr.FromStore(err, duplicateMsg, apperr.RefCategory)
	}
	return sub, nil
}

func (uc *categoryUseCase) GetSubcategory(ctx context.Context, id string) (*model.Subcategory, error) {
	sub, err := uc.repo.FindSubcategory(ctx, id)
	if err != nil {
		return nil, apperr.FromStore(err, duplicateMsg, apperr.RefSubcategory)
	}
	return sub, nil
}

func (uc *categoryUseCase) ListSubcategories(ctx context.Context, filters *dto.SubcategoryFilters) ([]model.Subcategory, error) {
	if filters == nil {
		filters = &dto.SubcategoryFilters{}
	}
	subs, err := uc.repo.ListSubcategories(ctx, filters)
	if err != nil {
		return nil, apperr.FromStore(err, duplicateMsg, apperr.RefSubcategory)
	}
	return subs, nil
}

func (uc *categoryUseCase) UpdateSubcategory(ctx context.Context, input *dto.UpdateSubcategoryInput) (*model.Subcategory, error) {
	sub, err := uc.GetSubcategory(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		sub.CategoryID = strings.TrimSpace(*input.CategoryID)
		if sub.CategoryID == "" {
			return nil, apperr.Validation("error.validation.category_required", "category_id is required")
		}
	}
	if input.Name != nil {
		sub.Name = strings.TrimSpace(*input.Name)
		if sub.Name == "" {
			return nil, apperr.Validation("error.validation.category_name_required", "name is required")
		}
	}
	if input.Description != nil {
		sub.Description = optional(*input.Description)
	}
	if input.SortOrder != nil {
		sub.SortOrder = *input.SortOrder
	}
	if input.IsActive != nil {
		sub.IsActive = *input.IsActive
	}
	sub.UpdatedAt = time.Now()

	if err := uc.repo.UpdateSubcategory(ctx, sub); err != nil {
		return nil, apperr.FromStore(err, duplicateMsg, apperr.RefCategory)
	}
	return sub, nil
}

func (uc *categoryUseCase) DeleteSubcategory(ctx context.Context, id string) error {
	err := uc.repo.DeleteSubcategory(ctx, id)
	if store.CodeOf(err) == store.CodeForeignKeyViolation {
		uc.logger.Info("subcategory delete blocked by attributes", zap.String("subcategory_id", id))
		return apperr.Validation("error.validation.subcategory_in_use", "subcategory %s still has attributes", id)
	}
	return apperr.FromStore(err, duplicateMsg, apperr.RefSubcategory)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
