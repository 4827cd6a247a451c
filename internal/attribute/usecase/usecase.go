package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fekuna/storefront-inventory-service/internal/apperr"
	"github.com/fekuna/storefront-inventory-service/internal/attribute"
	"github.com/fekuna/storefront-inventory-service/internal/attribute/dto"
	"github.com/fekuna/storefront-inventory-service/internal/model"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/cache"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/logger"
)

const (
	cacheTTL          = 5 * time.Minute
	duplicateMessage  = "error.duplicate.attribute"
	subcategoryPrefix = "attributes:subcategory:"
)

// LedgerCounter counts active ledger rows that still point at an attribute.
type LedgerCounter interface {
	CountByAttribute(ctx context.Context, attributeID string) (int, error)
}

type attributeUseCase struct {
	repo   attribute.Repository
	ledger LedgerCounter
	cache  *cache.RedisClient
	logger logger.ZapLogger
}

// NewAttributeUseCase wires the catalog. cache and ledger may be nil.
func NewAttributeUseCase(repo attribute.Repository, ledger LedgerCounter, cache *cache.RedisClient, log logger.ZapLogger) attribute.UseCase {
	return &attributeUseCase{
		repo:   repo,
		ledger: ledger,
		cache:  cache,
		logger: log,
	}
}

func (uc *attributeUseCase) ListAttributes(ctx context.Context, filters *dto.AttributeFilters) ([]model.Attribute, error) {
	if filters == nil {
		filters = &dto.AttributeFilters{}
	}
	items, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, apperr.FromStore(err, duplicateMessage, apperr.RefSubcategory)
	}
	return items, nil
}

func (uc *attributeUseCase) ListBySubcategory(ctx context.Context, subcategoryID string) ([]model.Attribute, error) {
	if strings.TrimSpace(subcategoryID) == "" {
		return nil, apperr.Validation("error.validation.subcategory_required", "subcategory_id is required")
	}

	key := subcategoryPrefix + subcategoryID
	if uc.cache != nil {
		var cached []model.Attribute
		err := uc.cache.GetJSON(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			uc.logger.Warn("attribute cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	active := true
	items, err := uc.ListAttributes(ctx, &dto.AttributeFilters{SubcategoryID: subcategoryID, IsActive: &active})
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.SetJSON(ctx, key, items, cacheTTL); err != nil {
			uc.logger.Warn("attribute cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return items, nil
}

func (uc *attributeUseCase) GetAttribute(ctx context.Context, id string) (*model.Attribute, error) {
	a, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromStore(err, duplicateMessage, apperr.RefAttribute)
	}
	return a, nil
}

func (uc *attributeUseCase) CreateAttribute(ctx context.Context, input *dto.CreateAttributeInput) (*model.Attribute, error) {
	now := time.Now()
	a := &model.Attribute{
		BaseModel:     model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		SubcategoryID: strings.TrimSpace(input.SubcategoryID),
		Name:          strings.TrimSpace(input.Name),
		Type:          input.Type,
		Value:         strings.TrimSpace(input.Value),
		Description:   optional(input.Description),
		ColorHex:      optional(input.ColorHex),
		SortOrder:     input.SortOrder,
		IsActive:      true,
	}
	if a.Type == "" {
		a.Type = model.AttributeTypeVariant
	}
	if input.IsActive != nil {
		a.IsActive = *input.IsActive
	}

	if err := validate(a); err != nil {
		return nil, err
	}
	if a.IsActive {
		if err := uc.ensureUnique(ctx, a); err != nil {
			return nil, err
		}
	}

	if err := uc.repo.Create(ctx, a); err != nil {
		return nil, apperr.FromStore(err, duplicateMessage, apperr.RefSubcategory)
	}

	uc.invalidate(ctx, a.SubcategoryID)
	return a, nil
}

func (uc *attributeUseCase) UpdateAttribute(ctx context.Context, input *dto.UpdateAttributeInput) (*model.Attribute, error) {
	current, err := uc.GetAttribute(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	a := *current
	if input.SubcategoryID != nil {
		a.SubcategoryID = strings.TrimSpace(*input.SubcategoryID)
	}
	if input.Name != nil {
		a.Name = strings.TrimSpace(*input.Name)
	}
	if input.Type != nil {
		a.Type = *input.Type
	}
	if input.Value != nil {
		a.Value = strings.TrimSpace(*input.Value)
	}
	if input.Description != nil {
		a.Description = optional(*input.Description)
	}
	if input.ColorHex != nil {
		a.ColorHex = optional(*input.ColorHex)
	}
	if input.SortOrder != nil {
		a.SortOrder = *input.SortOrder
	}
	if input.IsActive != nil {
		a.IsActive = *input.IsActive
	}

	if err := validate(&a); err != nil {
		return nil, err
	}

	keyChanged := !current.SameOption(a.SubcategoryID, a.Name, a.Value)
	if a.IsActive && (keyChanged || !current.IsActive) {
		if err := uc.ensureUnique(ctx, &a); err != nil {
			return nil, err
		}
	}

	a.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, &a); err != nil {
		return nil, apperr.FromStore(err, duplicateMessage, apperr.RefSubcategory)
	}

	uc.invalidate(ctx, current.SubcategoryID, a.SubcategoryID)
	return &a, nil
}

func (uc *attributeUseCase) ToggleActive(ctx context.Context, id string) (*model.Attribute, error) {
	current, err := uc.GetAttribute(ctx, id)
	if err != nil {
		return nil, err
	}
	next := !current.IsActive
	return uc.UpdateAttribute(ctx, &dto.UpdateAttributeInput{ID: id, IsActive: &next})
}

// DeleteAttribute removes the option without touching ledger rows or product
// attribute lists that still reference it.
func (uc *attributeUseCase) DeleteAttribute(ctx context.Context, id string) error {
	a, err := uc.GetAttribute(ctx, id)
	if err != nil {
		return err
	}

	if uc.ledger != nil {
		n, err := uc.ledger.CountByAttribute(ctx, id)
		switch {
		case err != nil:
			uc.logger.Warn("count ledger references failed", zap.String("attribute_id", id), zap.Error(err))
		case n > 0:
			uc.logger.Warn("deleting attribute still referenced by ledger rows",
				zap.String("attribute_id", id),
				zap.String("attribute", a.Name+"="+a.Value),
				zap.Int("ledger_rows", n),
			)
		}
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return apperr.FromStore(err, duplicateMessage, apperr.RefAttribute)
	}

	uc.invalidate(ctx, a.SubcategoryID)
	return nil
}

// ensureUnique rejects a when another active attribute of its subcategory has
// the same case-insensitive name and value.
func (uc *attributeUseCase) ensureUnique(ctx context.Context, a *model.Attribute) error {
	active := true
	siblings, err := uc.repo.FindAll(ctx, &dto.AttributeFilters{SubcategoryID: a.SubcategoryID, IsActive: &active})
	if err != nil {
		return apperr.FromStore(err, duplicateMessage, apperr.RefSubcategory)
	}
	for i := range siblings {
		if siblings[i].ID != a.ID && siblings[i].SameOption(a.SubcategoryID, a.Name, a.Value) {
			return apperr.Duplicate(duplicateMessage, nil)
		}
	}
	return nil
}

func (uc *attributeUseCase) invalidate(ctx context.Context, subcategoryIDs ...string) {
	if uc.cache == nil {
		return
	}
	keys := make([]string, 0, len(subcategoryIDs))
	seen := map[string]bool{}
	for _, id := range subcategoryIDs {
		if id != "" && !seen[id] {
			seen[id] = true
			keys = append(keys, subcategoryPrefix+id)
		}
	}
	if err := uc.cache.Delete(ctx, keys...); err != nil {
		uc.logger.Warn("attribute cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func validate(a *model.Attribute) error {
	switch {
	case a.SubcategoryID == "":
		return apperr.Validation("error.validation.subcategory_required", "subcategory_id is required")
	case a.Name == "":
		return apperr.Validation("error.validation.name_required", "name is required")
	case a.Value == "":
		return apperr.Validation("error.validation.value_required", "value is required")
	case !a.Type.Valid():
		return apperr.Validation("error.validation.attribute_type", "unknown attribute type %q", a.Type)
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
