package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fekuna/storefront-inventory-service/internal/apperr"
	"github.com/fekuna/storefront-inventory-service/internal/attribute"
	"github.com/fekuna/storefront-inventory-service/internal/inventory"
	invdto "github.com/fekuna/storefront-inventory-service/internal/inventory/dto"
	"github.com/fekuna/storefront-inventory-service/internal/model"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/logger"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/metrics"
	"github.com/fekuna/storefront-inventory-service/internal/product"
	"github.com/fekuna/storefront-inventory-service/internal/sale"
	"github.com/fekuna/storefront-inventory-service/internal/sale/dto"
)

const (
	receiveLockTTL = 30 * time.Second
	duplicateMsg   = "error.duplicate.sale"
)

// Locker serializes stock order receipts across instances. *cache.RedisClient satisfies it.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

// Publisher emits domain events. *broker.KafkaProducer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Dependencies of the resolver. Locker, Publisher and Metrics are optional.
type Dependencies struct {
	Repo       sale.Repository
	Products   product.UseCase
	Attributes attribute.UseCase
	Ledger     inventory.UseCase
	Locker     Locker
	Publisher  Publisher
	Metrics    *metrics.Metrics
	Logger     logger.ZapLogger
}

type saleUseCase struct {
	Dependencies
}

func NewSaleUseCase(deps Dependencies) sale.UseCase {
	return &saleUseCase{Dependencies: deps}
}

// RecordSale appends the sale first and then decrements the ledger row of the
// chosen attribute. Ledger trouble never undoes the sale; it is reported as a
// warning on the result.
func (uc *saleUseCase) RecordSale(ctx context.Context, input *dto.RecordSaleInput) (*dto.SaleResult, error) {
	if strings.TrimSpace(input.ProductID) == "" {
		return nil, apperr.Validation("error.validation.product_required", "product_id is required")
	}
	if input.Quantity <= 0 {
		return nil, apperr.Validation("error.validation.quantity_positive", "quantity must be greater than 0")
	}

	p, err := uc.Products.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	unitPrice := p.Price
	if input.UnitPrice != nil {
		unitPrice = *input.UnitPrice
	}
	if unitPrice.IsNegative() {
		return nil, apperr.Validation("error.validation.unit_price", "unit price cannot be negative")
	}

	s := &model.Sale{
		ID:         uuid.New().String(),
		ProductID:  p.ID,
		Quantity:   input.Quantity,
		UnitPrice:  unitPrice,
		TotalPrice: unitPrice.Mul(decimal.NewFromInt(int64(input.Quantity))),
		CreatedAt:  time.Now(),
	}
	// sales.attribute_id is a soft reference, so existence is checked here and
	// a later attribute delete leaves the recorded id untouched.
	var attr *model.Attribute
	attributeID := strings.TrimSpace(input.AttributeID)
	if attributeID != "" {
		attr, err = uc.Attributes.GetAttribute(ctx, attributeID)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				return nil, apperr.Referential(apperr.RefAttribute, err)
			}
			return nil, err
		}
		s.AttributeID = &attributeID
	}

	if err := uc.Repo.CreateSale(ctx, s); err != nil {
		return nil, apperr.FromStore(err, duplicateMsg, apperr.RefProduct)
	}
	uc.Metrics.ObserveSale(s.AttributeID != nil)

	result := &dto.SaleResult{Sale: s}
	if s.AttributeID == nil {
		return result, nil
	}

	log := uc.Logger.With(
		zap.String("sale_id", s.ID),
		zap.String("product_id", s.ProductID),
		zap.String("attribute_id", attributeID),
	)

	row, err := uc.Ledger.FindForAttribute(ctx, s.ProductID, attr)
	if err != nil {
		log.Warn("sale recorded but ledger lookup failed", zap.Error(err))
		result.Warnings = append(result.Warnings, uc.warn("ledger_update_failed", "ledger lookup: %v", err))
		return result, nil
	}
	if row == nil {
		log.Warn("sale recorded without matching ledger row")
		result.Warnings = append(result.Warnings,
			uc.warn("no_matching_variant", "no ledger row for %s=%s", attr.Name, attr.Value))
		return result, nil
	}

	updated, err := uc.Ledger.Adjust(ctx, row.ID, -s.Quantity)
	if err != nil {
		log.Warn("sale recorded but ledger decrement failed", zap.String("variant_id", row.ID), zap.Error(err))
		result.Warnings = append(result.Warnings, uc.warn("ledger_update_failed", "decrement %s: %v", row.ID, err))
		return result, nil
	}
	result.LedgerRow = updated
	return result, nil
}

func (uc *saleUseCase) ListSales(ctx context.Context, productID string) ([]model.Sale, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, apperr.Validation("error.validation.product_required", "product_id is required")
	}
	items, err := uc.Repo.ListSalesByProduct(ctx, productID)
	if err != nil {
		return nil, apperr.FromStore(err, duplicateMsg, apperr.RefProduct)
	}
	return items, nil
}

// RecordStockOrder saves a pending replenishment order with product and
// attribute labels snapshotted. Stock is only added when the order is received.
func (uc *saleUseCase) RecordStockOrder(ctx context.Context, input *dto.StockOrderInput) (*model.StockOrder, error) {
	if len(input.Items) == 0 {
		return nil, apperr.Validation("error.validation.items_required", "at least one item is required")
	}

	now := time.Now()
	o := &model.StockOrder{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		OrderDate: now,
		Status:    model.StockOrderPending,
		Items:     make([]model.StockOrderItem, 0, len(input.Items)),
	}
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		o.Notes = &notes
	}

	for _, in := range input.Items {
		item, err := uc.snapshotItem(ctx, o.ID, in)
		if err != nil {
			return nil, err
		}
		o.Items = append(o.Items, *item)
	}

	if err := uc.Repo.CreateStockOrder(ctx, o); err != nil {
		return nil, apperr.FromStore(err, "error.duplicate.stock_order", apperr.RefProduct)
	}
	uc.Metrics.ObserveStockOrder("submitted")
	uc.publish(ctx, dto.EventStockOrderSubmitted, o.ID, o)

	return o, nil
}

func (uc *saleUseCase) snapshotItem(ctx context.Context, orderID string, in dto.StockOrderItemInput) (*model.StockOrderItem, error) {
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, apperr.Validation("error.validation.product_required", "product_id is required")
	}
	if in.Quantity <= 0 {
		return nil, apperr.Validation("error.validation.quantity_positive", "quantity must be greater than 0")
	}

	p, err := uc.Products.GetProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	item := &model.StockOrderItem{
		ID:           uuid.New().String(),
		StockOrderID: orderID,
		ProductID:    p.ID,
		ProductName:  p.Name,
		Quantity:     in.Quantity,
	}

	if attributeID := strings.TrimSpace(in.AttributeID); attributeID != "" {
		attr, err := uc.Attributes.GetAttribute(ctx, attributeID)
		if err != nil {
			return nil, err
		}
		item.AttributeID = &attr.ID
		item.AttributeName = &attr.Name
		item.AttributeValue = &attr.Value
	}
	return item, nil
}

func (uc *saleUseCase) GetStockOrder(ctx context.Context, id string) (*model.StockOrder, error) {
	o, err := uc.Repo.FindStockOrder(ctx, id)
	if err != nil {
		return nil, apperr.FromStore(err, "error.duplicate.stock_order", apperr.RefStockOrder)
	}
	return o, nil
}

func (uc *saleUseCase) ListStockOrders(ctx context.Context, status string) ([]model.StockOrder, error) {
	st := model.StockOrderStatus(status)
	switch st {
	case "", model.StockOrderPending, model.StockOrderReceived, model.StockOrderCancelled:
	default:
		return nil, apperr.Validation("error.validation.status", "unknown status %q", status)
	}
	items, err := uc.Repo.ListStockOrders(ctx, st)
	if err != nil {
		return nil, apperr.FromStore(err, "error.duplicate.stock_order", apperr.RefStockOrder)
	}
	return items, nil
}

// ReceiveStockOrder applies a pending order to stock exactly once. Attributed
// items restock their ledger row; attribute-less items raise the product's
// aggregate stock. Item failures do not stop the others.
func (uc *saleUseCase) ReceiveStockOrder(ctx context.Context, id string) (*dto.ReceiveResult, error) {
	if uc.Locker != nil {
		key, token := "stock_order:receive:"+id, uuid.New().String()
		ok, err := uc.Locker.AcquireLock(ctx, key, token, receiveLockTTL)
		if err != nil {
			uc.Logger.Warn("stock order lock unavailable, relying on status transition",
				zap.String("stock_order_id", id), zap.Error(err))
		} else if !ok {
			return nil, apperr.Validation("error.validation.stock_order_busy", "stock order %s is being received", id)
		} else {
			defer func() {
				if err := uc.Locker.ReleaseLock(context.Background(), key, token); err != nil {
					uc.Logger.Warn("release stock order lock failed", zap.String("stock_order_id", id), zap.Error(err))
				}
			}()
		}
	}

	o, err := uc.GetStockOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != model.StockOrderPending {
		return nil, apperr.Validation("error.validation.stock_order_not_pending", "stock order %s is %s", id, o.Status)
	}

	now := time.Now()
	moved, err := uc.Repo.MarkReceived(ctx, id, now)
	if err != nil {
		return nil, apperr.FromStore(err, "error.duplicate.stock_order", apperr.RefStockOrder)
	}
	if !moved {
		return nil, apperr.Validation("error.validation.stock_order_not_pending", "stock order %s is no longer pending", id)
	}
	o.Status = model.StockOrderReceived
	o.ReceivedAt = &now
	o.UpdatedAt = now

	result := &dto.ReceiveResult{Order: o}
	for _, it := range o.Items {
		var err error
		if it.AttributeID != nil {
			var row *model.VariantInventory
			row, err = uc.Increment(ctx, it.ProductID, *it.AttributeID, it.Quantity)
			if err == nil && !row.IsActive {
				// Retired rows are left out of the aggregate until the attribute is reassigned.
				result.Warnings = append(result.Warnings,
					uc.warn("receive_item_inactive", "%s x%d went to inactive row %s", it.ProductName, it.Quantity, row.ID))
			}
		} else {
			_, err = uc.Products.AdjustStock(ctx, it.ProductID, it.Quantity)
		}
		if err != nil {
			uc.Logger.Warn("stock order item not applied",
				zap.String("stock_order_id", id),
				zap.String("product_id", it.ProductID),
				zap.Int("quantity", it.Quantity),
				zap.Error(err),
			)
			result.Warnings = append(result.Warnings,
				uc.warn("receive_item_failed", "%s x%d: %v", it.ProductName, it.Quantity, err))
		}
	}

	uc.Metrics.ObserveStockOrder("received")
	return result, nil
}

func (uc *saleUseCase) Increment(ctx context.Context, productID, attributeID string, quantity int) (*model.VariantInventory, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("error.validation.quantity_positive", "quantity must be greater than 0")
	}
	attr, err := uc.Attributes.GetAttribute(ctx, attributeID)
	if err != nil {
		return nil, err
	}

	row, err := uc.Ledger.FindForAttribute(ctx, productID, attr)
	if err != nil {
		return nil, err
	}
	if row != nil {
		return uc.Ledger.Adjust(ctx, row.ID, quantity)
	}
	return uc.Ledger.CreateVariant(ctx, &invdto.CreateVariantInput{
		ProductID:   productID,
		AttributeID: attr.ID,
		Quantity:    quantity,
	})
}

// ReconcileProduct applies the admin form: it stores the attribute set,
// overwrites per attribute stock, retires rows of removed attributes and
// recomputes the aggregate from the active rows.
func (uc *saleUseCase) ReconcileProduct(ctx context.Context, productID string, input *dto.ReconcileInput) (*dto.ReconcileResult, error) {
	if _, err := uc.Products.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	assigned := make(map[string]bool, len(input.AttributeIDs))
	for _, id := range input.AttributeIDs {
		assigned[strings.TrimSpace(id)] = true
	}
	for _, s := range input.Stocks {
		if !assigned[s.AttributeID] {
			return nil, apperr.Validation("error.validation.attribute_not_assigned",
				"attribute %s is not assigned to the product", s.AttributeID)
		}
	}

	p, err := uc.Products.SetAttributes(ctx, productID, input.AttributeIDs)
	if err != nil {
		return nil, err
	}

	result := &dto.ReconcileResult{}
	if err := uc.Ledger.BulkReconcile(ctx, productID, input.Stocks); err != nil {
		if apperr.KindOf(err) != apperr.KindInventoryInconsistency {
			return nil, err
		}
		result.Warnings = append(result.Warnings, err)
	}

	if n, err := uc.Ledger.Deactivate(ctx, productID, p.AttributeIDs); err != nil {
		uc.Logger.Warn("deactivate removed attributes failed", zap.String("product_id", productID), zap.Error(err))
		result.Warnings = append(result.Warnings, uc.warn("reconcile_partial", "deactivate: %v", err))
	} else if n > 0 {
		uc.Logger.Info("deactivated ledger rows of removed attributes",
			zap.String("product_id", productID), zap.Int("rows", n))
	}

	rows, err := uc.Ledger.GetByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, r := range rows {
		if r.IsActive {
			total += r.Quantity
		}
	}

	p, err = uc.Products.SetStock(ctx, productID, total)
	if err != nil {
		return nil, err
	}
	result.Product = p
	result.Variants = rows
	return result, nil
}

func (uc *saleUseCase) warn(reason, format string, args ...any) error {
	uc.Metrics.ObserveWarning(reason)
	return apperr.Inconsistency("warning.inventory."+reason, format, args...)
}

// publish is best effort; the order is already stored.
func (uc *saleUseCase) publish(ctx context.Context, eventType, key string, payload any) {
	if uc.Publisher == nil {
		return
	}
	body, err := json.Marshal(dto.Envelope[any]{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	})
	if err != nil {
		uc.Logger.Error("marshal event failed", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	if err := uc.Publisher.Publish(ctx, key, body); err != nil {
		uc.Logger.Warn("publish event failed",
			zap.String("event_type", eventType), zap.String("key", key), zap.Error(err))
	}
}
