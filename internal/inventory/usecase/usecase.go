package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/fekuna/storefront-inventory-service/internal/apperr"
	"github.com/fekuna/storefront-inventory-service/internal/inventory"
	"github.com/fekuna/storefront-inventory-service/internal/inventory/dto"
	"github.com/fekuna/storefront-inventory-service/internal/model"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/logger"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/metrics"
	"github.com/fekuna/storefront-inventory-service/internal/store"
)

const duplicateMessage = "error.duplicate.variant"

// AttributeLookup reads catalog entries. attribute.Repository satisfies it.
type AttributeLookup interface {
	FindByID(ctx context.Context, id string) (*model.Attribute, error)
}

type inventoryUseCase struct {
	repo       inventory.Repository
	attributes AttributeLookup
	metrics    *metrics.Metrics
	logger     logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, attributes AttributeLookup, m *metrics.Metrics, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:       repo,
		attributes: attributes,
		metrics:    m,
		logger:     log,
	}
}

func (uc *inventoryUseCase) GetByProduct(ctx context.Context, productID string) ([]model.VariantInventory, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, apperr.Validation("error.validation.product_required", "product_id is required")
	}
	rows, err := uc.repo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, apperr.FromStore(err, duplicateMessage, apperr.RefProduct)
	}
	return rows, nil
}

func (uc *inventoryUseCase) GetVariant(ctx context.Context, id string) (*model.VariantInventory, error) {
	v, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.FromStore(err, duplicateMessage, apperr.RefVariant)
	}
	return v, nil
}

func (uc *inventoryUseCase) CreateVariant(ctx context.Context, input *dto.CreateVariantInput) (*model.VariantInventory, error) {
	switch {
	case strings.TrimSpace(input.ProductID) == "":
		return nil, apperr.Validation("error.validation.product_required", "product_id is required")
	case strings.TrimSpace(input.AttributeID) == "":
		return nil, apperr.Validation("error.validation.attribute_required", "attribute_id is required")
	case input.Quantity < 0 || input.ReservedQuantity < 0:
		return nil, apperr.Validation("error.validation.quantity_negative", "quantities cannot be negative")
	}

	attr, err := uc.attribute(ctx, input.AttributeID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	v := &model.VariantInventory{
		ID:               uuid.New().String(),
		ProductID:        input.ProductID,
		VariantData:      model.NewVariantData(attr),
		Quantity:         input.Quantity,
		ReservedQuantity: input.ReservedQuantity,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if input.IsActive != nil {
		v.IsActive = *input.IsActive
	}

	if err := uc.repo.Create(ctx, v); err != nil {
		return nil, apperr.FromStore(err, duplicateMessage, apperr.RefProduct)
	}
	return v, nil
}

func (uc *inventoryUseCase) UpdateVariant(ctx context.Context, input *dto.UpdateVariantInput) (*model.VariantInventory, error) {
	v, err := uc.GetVariant(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Quantity != nil {
		v.Quantity = *input.Quantity
	}
	if input.ReservedQuantity != nil {
		v.ReservedQuantity = *input.ReservedQuantity
	}
	if input.IsActive != nil {
		v.IsActive = *input.IsActive
	}
	if v.Quantity < 0 || v.ReservedQuantity < 0 {
		return nil, apperr.Validation("error.validation.quantity_negative", "quantities cannot be negative")
	}

	v.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, v); err != nil {
		return nil, apperr.FromStore(err, duplicateMessage, apperr.RefVariant)
	}
	return v, nil
}

func (uc *inventoryUseCase) UpdateQuantity(ctx context.Context, id string, quantity int) (*model.VariantInventory, error) {
	return uc.UpdateVariant(ctx, &dto.UpdateVariantInput{ID: id, Quantity: &quantity})
}

func (uc *inventoryUseCase) Adjust(ctx context.Context, id string, delta int) (*model.VariantInventory, error) {
	direction := "increment"
	if delta < 0 {
		direction = "decrement"
	}

	v, err := uc.repo.Adjust(ctx, id, delta)
	uc.metrics.ObserveAdjustment(direction, err)
	if err != nil {
		return nil, apperr.FromStore(err, duplicateMessage, apperr.RefVariant)
	}
	return v, nil
}

func (uc *inventoryUseCase) DeleteVariant(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return apperr.FromStore(err, duplicateMessage, apperr.RefVariant)
	}
	return nil
}

func (uc *inventoryUseCase) FindForAttribute(ctx context.Context, productID string, attr *model.Attribute) (*model.VariantInventory, error) {
	rows, err := uc.GetByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return uc.pick(productID, attr, rows), nil
}

// pick applies the matching rule and logs when several rows claim attr.
func (uc *inventoryUseCase) pick(productID string, attr *model.Attribute, rows []model.VariantInventory) *model.VariantInventory {
	matches := inventory.Match(rows, attr)
	if len(matches) == 0 {
		return nil
	}
	if len(matches) > 1 {
		ids := make([]string, 0, len(matches))
		for _, m := range matches {
			ids = append(ids, m.ID)
		}
		uc.logger.Warn("multiple ledger rows for one attribute, using most recent",
			zap.String("product_id", productID),
			zap.String("attribute_id", attr.ID),
			zap.Strings("variant_ids", ids),
		)
		uc.metrics.ObserveWarning("duplicate_ledger_rows")
	}
	v := matches[0]
	if !v.IsActive {
		uc.logger.Warn("ledger row for attribute is inactive",
			zap.String("product_id", productID),
			zap.String("attribute_id", attr.ID),
			zap.String("variant_id", v.ID),
		)
		uc.metrics.ObserveWarning("inactive_ledger_row")
	}
	return &v
}

// BulkReconcile sets each attribute's quantity, creating missing rows. Pairs are
// applied independently; the returned error is an inventory inconsistency that
// aggregates the failed pairs. Applied pairs stay applied.
func (uc *inventoryUseCase) BulkReconcile(ctx context.Context, productID string, updates []dto.StockUpdate) error {
	rows, err := uc.GetByProduct(ctx, productID)
	if err != nil {
		return err
	}

	var errs error
	failed := 0
	for _, u := range updates {
		if err := uc.reconcileOne(ctx, productID, &rows, u); err != nil {
			failed++
			errs = multierr.Append(errs, err)
			uc.logger.Warn("stock reconcile failed",
				zap.String("product_id", productID),
				zap.String("attribute_id", u.AttributeID),
				zap.Error(err),
			)
		}
	}
	if errs == nil {
		return nil
	}

	uc.metrics.ObserveWarning("reconcile_partial")
	return &apperr.Error{
		Kind:      apperr.KindInventoryInconsistency,
		MessageID: "warning.inventory.reconcile_partial",
		Ref:       apperr.RefProduct,
		Detail:    fmt.Sprintf("%d of %d stock updates failed", failed, len(updates)),
		Err:       errs,
	}
}

// reconcileOne applies u and writes the resulting row back into rows, so a
// later pair for the same attribute sees it.
func (uc *inventoryUseCase) reconcileOne(ctx context.Context, productID string, rows *[]model.VariantInventory, u dto.StockUpdate) error {
	if u.Quantity < 0 {
		return apperr.Validation("error.validation.quantity_negative", "quantity for %s cannot be negative", u.AttributeID)
	}
	attr, err := uc.attribute(ctx, u.AttributeID)
	if err != nil {
		return err
	}

	if existing := uc.pick(productID, attr, *rows); existing != nil {
		if existing.Quantity == u.Quantity && existing.IsActive {
			return nil
		}
		existing.Quantity = u.Quantity
		existing.IsActive = true
		existing.VariantData = refreshVariantData(existing.VariantData, attr)
		existing.UpdatedAt = time.Now()
		if err := uc.repo.Update(ctx, existing); err != nil {
			return apperr.FromStore(err, duplicateMessage, apperr.RefVariant)
		}
		for i := range *rows {
			if (*rows)[i].ID == existing.ID {
				(*rows)[i] = *existing
			}
		}
		return nil
	}

	now := time.Now()
	v := &model.VariantInventory{
		ID:          uuid.New().String(),
		ProductID:   productID,
		VariantData: model.NewVariantData(attr),
		Quantity:    u.Quantity,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, v); err != nil {
		return apperr.FromStore(err, duplicateMessage, apperr.RefProduct)
	}
	*rows = append([]model.VariantInventory{*v}, *rows...)
	return nil
}

// Deactivate marks active rows whose attribute is not in keepAttributeIDs as
// inactive. Legacy rows without an attribute id are left alone.
func (uc *inventoryUseCase) Deactivate(ctx context.Context, productID string, keepAttributeIDs []string) (int, error) {
	rows, err := uc.GetByProduct(ctx, productID)
	if err != nil {
		return 0, err
	}

	keep := make(map[string]bool, len(keepAttributeIDs))
	for _, id := range keepAttributeIDs {
		keep[id] = true
	}

	var errs error
	n := 0
	for i := range rows {
		row := &rows[i]
		if !row.IsActive || row.VariantData.AttributeID == "" || keep[row.VariantData.AttributeID] {
			continue
		}
		row.IsActive = false
		row.UpdatedAt = time.Now()
		if err := uc.repo.Update(ctx, row); err != nil {
			errs = multierr.Append(errs, apperr.FromStore(err, duplicateMessage, apperr.RefVariant))
			continue
		}
		n++
	}
	return n, errs
}

func (uc *inventoryUseCase) attribute(ctx context.Context, id string) (*model.Attribute, error) {
	attr, err := uc.attributes.FindByID(ctx, id)
	if store.IsNotFound(err) {
		return nil, apperr.Referential(apperr.RefAttribute, err)
	}
	if err != nil {
		return nil, apperr.FromStore(err, duplicateMessage, apperr.RefAttribute)
	}
	return attr, nil
}

// refreshVariantData upgrades legacy rows to carry the attribute id and keeps
// the display cache in line with the catalog.
func refreshVariantData(d model.VariantData, attr *model.Attribute) model.VariantData {
	fresh := model.NewVariantData(attr)
	fresh.Legacy = d.Legacy
	return fresh
}
