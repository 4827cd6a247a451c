package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/storefront-inventory-service/internal/apperr"
	attrdto "github.com/fekuna/storefront-inventory-service/internal/attribute/dto"
	attrrepo "github.com/fekuna/storefront-inventory-service/internal/attribute/repository"
	attruc "github.com/fekuna/storefront-inventory-service/internal/attribute/usecase"
	invdto "github.com/fekuna/storefront-inventory-service/internal/inventory/dto"
	invrepo "github.com/fekuna/storefront-inventory-service/internal/inventory/repository"
	invuc "github.com/fekuna/storefront-inventory-service/internal/inventory/usecase"
	"github.com/fekuna/storefront-inventory-service/internal/model"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/logger"
	"github.com/fekuna/storefront-inventory-service/internal/product"
	proddto "github.com/fekuna/storefront-inventory-service/internal/product/dto"
	prodrepo "github.com/fekuna/storefront-inventory-service/internal/product/repository"
	produc "github.com/fekuna/storefront-inventory-service/internal/product/usecase"
	"github.com/fekuna/storefront-inventory-service/internal/sale/dto"
	"github.com/fekuna/storefront-inventory-service/internal/sale/repository"
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages map[string][]byte
}

func (p *recordingPublisher) Publish(_ context.Context, key string, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages[key] = value
	return nil
}

type stubLocker struct {
	held     map[string]string
	released int
}

func (l *stubLocker) AcquireLock(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	if _, ok := l.held[key]; ok {
		return false, nil
	}
	l.held[key] = value
	return true, nil
}

func (l *stubLocker) ReleaseLock(_ context.Context, key, value string) error {
	if l.held[key] == value {
		delete(l.held, key)
		l.released++
	}
	return nil
}

type world struct {
	uc        *saleUseCase
	sales     *repository.MemoryRepository
	ledger    *invrepo.MemoryRepository
	products  product.UseCase
	publisher *recordingPublisher
	locker    *stubLocker

	candle *model.Product
	rojo   *model.Attribute
	azul   *model.Attribute
	verde  *model.Attribute
}

func newWorld(t *testing.T) *world {
	t.Helper()
	ctx := context.Background()
	log := logger.NewNop()

	productRepo := prodrepo.NewMemoryRepository()
	attributeRepo := attrrepo.NewMemoryRepository(nil)
	ledgerRepo := invrepo.NewMemoryRepository(productRepo.Exists)
	saleRepo := repository.NewMemoryRepository(productRepo.Exists)

	products := produc.NewProductUseCase(productRepo, nil, nil, "", log)
	attributes := attruc.NewAttributeUseCase(attributeRepo, ledgerRepo, nil, log)
	ledger := invuc.NewInventoryUseCase(ledgerRepo, attributeRepo, nil, log)

	w := &world{
		sales:     saleRepo,
		ledger:    ledgerRepo,
		products:  products,
		publisher: &recordingPublisher{messages: map[string][]byte{}},
		locker:    &stubLocker{held: map[string]string{}},
	}
	w.uc = NewSaleUseCase(Dependencies{
		Repo:       saleRepo,
		Products:   products,
		Attributes: attributes,
		Ledger:     ledger,
		Locker:     w.locker,
		Publisher:  w.publisher,
		Logger:     log,
	}).(*saleUseCase)

	var err error
	w.candle, err = products.CreateProduct(ctx, &proddto.CreateProductInput{Name: "Vela", Price: decimal.RequireFromString("4.50")})
	require.NoError(t, err)

	mk := func(value string) *model.Attribute {
		a, err := attributes.CreateAttribute(ctx, &attrdto.CreateAttributeInput{SubcategoryID: "sub-velas", Name: "Color", Type: model.AttributeTypeColor, Value: value})
		require.NoError(t, err)
		return a
	}
	w.rojo, w.azul, w.verde = mk("Rojo"), mk("Azul"), mk("Verde")
	return w
}

func (w *world) reconcile(t *testing.T, stocks map[*model.Attribute]int) *dto.ReconcileResult {
	t.Helper()
	in := &dto.ReconcileInput{}
	for attr, qty := range stocks {
		in.AttributeIDs = append(in.AttributeIDs, attr.ID)
		in.Stocks = append(in.Stocks, invdto.StockUpdate{AttributeID: attr.ID, Quantity: qty})
	}
	res, err := w.uc.ReconcileProduct(context.Background(), w.candle.ID, in)
	require.NoError(t, err)
	require.Empty(t, res.Warnings)
	return res
}

func (w *world) quantities(t *testing.T) map[string]int {
	t.Helper()
	rows, err := w.ledger.FindByProduct(context.Background(), w.candle.ID)
	require.NoError(t, err)
	out := map[string]int{}
	for _, r := range rows {
		out[r.VariantData.AttributeValue] = r.Quantity
	}
	return out
}

func TestRecordSale(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements only the chosen attribute", func(t *testing.T) {
		w := newWorld(t)
		w.reconcile(t, map[*model.Attribute]int{w.rojo: 10, w.azul: 5})

		res, err := w.uc.RecordSale(ctx, &dto.RecordSaleInput{ProductID: w.candle.ID, AttributeID: w.rojo.ID, Quantity: 3})
		require.NoError(t, err)
		assert.Empty(t, res.Warnings)
		require.NotNil(t, res.LedgerRow)
		assert.Equal(t, 7, res.LedgerRow.Quantity)
		assert.Equal(t, map[string]int{"Rojo": 7, "Azul": 5}, w.quantities(t))

		assert.True(t, res.Sale.UnitPrice.Equal(decimal.RequireFromString("4.50")))
		assert.True(t, res.Sale.TotalPrice.Equal(decimal.RequireFromString("13.50")))
	})

	t.Run("overselling clamps at zero", func(t *testing.T) {
		w := newWorld(t)
		w.reconcile(t, map[*model.Attribute]int{w.rojo: 10, w.azul: 6})

		price := decimal.NewFromInt(3)
		res, err := w.uc.RecordSale(ctx, &dto.RecordSaleInput{ProductID: w.candle.ID, AttributeID: w.rojo.ID, Quantity: 12, UnitPrice: &price})
		require.NoError(t, err)
		assert.Equal(t, 0, res.LedgerRow.Quantity)
		assert.Equal(t, map[string]int{"Rojo": 0, "Azul": 6}, w.quantities(t))
		assert.True(t, res.Sale.TotalPrice.Equal(decimal.NewFromInt(36)))
	})

	t.Run("sale stands when the ledger fails", func(t *testing.T) {
		w := newWorld(t)
		w.reconcile(t, map[*model.Attribute]int{w.rojo: 10})
		w.ledger.FailAdjust = errors.New("connection reset")

		res, err := w.uc.RecordSale(ctx, &dto.RecordSaleInput{ProductID: w.candle.ID, AttributeID: w.rojo.ID, Quantity: 2})
		require.NoError(t, err)
		assert.Nil(t, res.LedgerRow)
		require.Len(t, res.Warnings, 1)
		e, ok := apperr.As(res.Warnings[0])
		require.True(t, ok)
		assert.Equal(t, apperr.KindInventoryInconsistency, e.Kind)
		assert.Equal(t, "warning.inventory.ledger_update_failed", e.MessageID)

		sales, err := w.uc.ListSales(ctx, w.candle.ID)
		require.NoError(t, err)
		require.Len(t, sales, 1)
		assert.Equal(t, res.Sale.ID, sales[0].ID)
	})

	t.Run("no ledger row is a warning", func(t *testing.T) {
		w := newWorld(t)
		w.reconcile(t, map[*model.Attribute]int{w.rojo: 10})

		res, err := w.uc.RecordSale(ctx, &dto.RecordSaleInput{ProductID: w.candle.ID, AttributeID: w.verde.ID, Quantity: 1})
		require.NoError(t, err)
		require.Len(t, res.Warnings, 1)
		assert.ErrorIs(t, res.Warnings[0], apperr.ErrInventoryInconsistency)
		e, _ := apperr.As(res.Warnings[0])
		assert.Equal(t, "warning.inventory.no_matching_variant", e.MessageID)
		assert.Equal(t, map[string]int{"Rojo": 10}, w.quantities(t))
	})

	t.Run("without attribute the ledger and aggregate are untouched", func(t *testing.T) {
		w := newWorld(t)
		w.reconcile(t, map[*model.Attribute]int{w.rojo: 4})

		res, err := w.uc.RecordSale(ctx, &dto.RecordSaleInput{ProductID: w.candle.ID, Quantity: 1})
		require.NoError(t, err)
		assert.Nil(t, res.Sale.AttributeID)
		assert.Empty(t, res.Warnings)

		p, err := w.products.GetProduct(ctx, w.candle.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, p.Stock)
	})

	t.Run("deleting the attribute keeps the sale record", func(t *testing.T) {
		w := newWorld(t)
		w.reconcile(t, map[*model.Attribute]int{w.rojo: 5})

		res, err := w.uc.RecordSale(ctx, &dto.RecordSaleInput{ProductID: w.candle.ID, AttributeID: w.rojo.ID, Quantity: 1})
		require.NoError(t, err)
		require.NoError(t, w.uc.Attributes.DeleteAttribute(ctx, w.rojo.ID))

		sales, err := w.uc.ListSales(ctx, w.candle.ID)
		require.NoError(t, err)
		require.Len(t, sales, 1)
		assert.Equal(t, res.Sale.ID, sales[0].ID)
		require.NotNil(t, sales[0].AttributeID)
		assert.Equal(t, w.rojo.ID, *sales[0].AttributeID)
	})

	t.Run("rejections", func(t *testing.T) {
		w := newWorld(t)
		tests := []struct {
			name  string
			input dto.RecordSaleInput
			want  error
		}{
			{"zero quantity", dto.RecordSaleInput{ProductID: w.candle.ID, Quantity: 0}, apperr.ErrValidation},
			{"missing product", dto.RecordSaleInput{ProductID: "nope", Quantity: 1}, &apperr.Error{Kind: apperr.KindNotFound, Ref: apperr.RefProduct}},
			{"unknown attribute", dto.RecordSaleInput{ProductID: w.candle.ID, AttributeID: "nope", Quantity: 1}, apperr.ErrReferential},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := w.uc.RecordSale(ctx, &tt.input)
				assert.ErrorIs(t, err, tt.want)
			})
		}

		sales, err := w.uc.ListSales(ctx, w.candle.ID)
		require.NoError(t, err)
		assert.Empty(t, sales)
	})
}

func TestIncrement(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.reconcile(t, map[*model.Attribute]int{w.rojo: 2})

	row, err := w.uc.Increment(ctx, w.candle.ID, w.rojo.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 7, row.Quantity)

	row, err = w.uc.Increment(ctx, w.candle.ID, w.azul.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, row.Quantity)
	assert.Equal(t, 0, row.ReservedQuantity)
	assert.True(t, row.IsActive)

	assert.Equal(t, map[string]int{"Rojo": 7, "Azul": 3}, w.quantities(t))

	_, err = w.uc.Increment(ctx, w.candle.ID, w.rojo.ID, 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestStockOrders(t *testing.T) {
	ctx := context.Background()

	t.Run("submit snapshots and leaves stock alone", func(t *testing.T) {
		w := newWorld(t)
		w.reconcile(t, map[*model.Attribute]int{w.rojo: 1})

		o, err := w.uc.RecordStockOrder(ctx, &dto.StockOrderInput{
			Notes: " proveedor ",
			Items: []dto.StockOrderItemInput{
				{ProductID: w.candle.ID, AttributeID: w.rojo.ID, Quantity: 4},
				{ProductID: w.candle.ID, Quantity: 2},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, model.StockOrderPending, o.Status)
		require.NotNil(t, o.Notes)
		assert.Equal(t, "proveedor", *o.Notes)
		require.Len(t, o.Items, 2)
		assert.Equal(t, "Vela", o.Items[0].ProductName)
		require.NotNil(t, o.Items[0].AttributeValue)
		assert.Equal(t, "Rojo", *o.Items[0].AttributeValue)
		assert.Nil(t, o.Items[1].AttributeID)
		assert.Equal(t, 6, o.TotalQuantity())

		assert.Equal(t, map[string]int{"Rojo": 1}, w.quantities(t))

		var event dto.Envelope[model.StockOrder]
		require.NoError(t, json.Unmarshal(w.publisher.messages[o.ID], &event))
		assert.Equal(t, dto.EventStockOrderSubmitted, event.EventType)
		assert.Equal(t, o.ID, event.Payload.ID)

		pending, err := w.uc.ListStockOrders(ctx, "pending")
		require.NoError(t, err)
		assert.Len(t, pending, 1)
	})

	t.Run("validation", func(t *testing.T) {
		w := newWorld(t)
		_, err := w.uc.RecordStockOrder(ctx, &dto.StockOrderInput{})
		assert.ErrorIs(t, err, apperr.ErrValidation)

		_, err = w.uc.RecordStockOrder(ctx, &dto.StockOrderInput{Items: []dto.StockOrderItemInput{{ProductID: w.candle.ID, Quantity: -1}}})
		assert.ErrorIs(t, err, apperr.ErrValidation)

		_, err = w.uc.ListStockOrders(ctx, "shipped")
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("receive applies once", func(t *testing.T) {
		w := newWorld(t)
		w.reconcile(t, map[*model.Attribute]int{w.rojo: 1})

		o, err := w.uc.RecordStockOrder(ctx, &dto.StockOrderInput{Items: []dto.StockOrderItemInput{
			{ProductID: w.candle.ID, AttributeID: w.rojo.ID, Quantity: 4},
			{ProductID: w.candle.ID, AttributeID: w.azul.ID, Quantity: 2},
			{ProductID: w.candle.ID, Quantity: 5},
		}})
		require.NoError(t, err)

		res, err := w.uc.ReceiveStockOrder(ctx, o.ID)
		require.NoError(t, err)
		assert.Empty(t, res.Warnings)
		assert.Equal(t, model.StockOrderReceived, res.Order.Status)
		assert.NotNil(t, res.Order.ReceivedAt)
		assert.Equal(t, map[string]int{"Rojo": 5, "Azul": 2}, w.quantities(t))

		p, err := w.products.GetProduct(ctx, w.candle.ID)
		require.NoError(t, err)
		assert.Equal(t, 6, p.Stock, "aggregate was 1, attribute-less item adds 5")

		_, err = w.uc.ReceiveStockOrder(ctx, o.ID)
		assert.ErrorIs(t, err, apperr.ErrValidation)
		assert.Equal(t, map[string]int{"Rojo": 5, "Azul": 2}, w.quantities(t))
		assert.Empty(t, w.locker.held)
	})

	t.Run("receipt into a retired row is a warning", func(t *testing.T) {
		w := newWorld(t)
		w.reconcile(t, map[*model.Attribute]int{w.rojo: 1})
		w.reconcile(t, map[*model.Attribute]int{w.azul: 2})

		o, err := w.uc.RecordStockOrder(ctx, &dto.StockOrderInput{Items: []dto.StockOrderItemInput{
			{ProductID: w.candle.ID, AttributeID: w.rojo.ID, Quantity: 3},
		}})
		require.NoError(t, err)

		res, err := w.uc.ReceiveStockOrder(ctx, o.ID)
		require.NoError(t, err)
		require.Len(t, res.Warnings, 1)
		e, ok := apperr.As(res.Warnings[0])
		require.True(t, ok)
		assert.Equal(t, "warning.inventory.receive_item_inactive", e.MessageID)
		assert.Equal(t, map[string]int{"Rojo": 4, "Azul": 2}, w.quantities(t))
	})

	t.Run("concurrent receive is refused", func(t *testing.T) {
		w := newWorld(t)
		o, err := w.uc.RecordStockOrder(ctx, &dto.StockOrderInput{Items: []dto.StockOrderItemInput{{ProductID: w.candle.ID, Quantity: 1}}})
		require.NoError(t, err)

		w.locker.held["stock_order:receive:"+o.ID] = "other-instance"
		_, err = w.uc.ReceiveStockOrder(ctx, o.ID)
		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, "error.validation.stock_order_busy", e.MessageID)
	})

	t.Run("missing order", func(t *testing.T) {
		w := newWorld(t)
		_, err := w.uc.ReceiveStockOrder(ctx, "nope")
		assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.KindNotFound, Ref: apperr.RefStockOrder})
	})
}

func TestReconcileProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregate follows active rows", func(t *testing.T) {
		w := newWorld(t)
		res := w.reconcile(t, map[*model.Attribute]int{w.rojo: 10, w.azul: 5})
		assert.Equal(t, 15, res.Product.Stock)
		assert.ElementsMatch(t, []string{w.rojo.ID, w.azul.ID}, []string(res.Product.AttributeIDs))

		res = w.reconcile(t, map[*model.Attribute]int{w.rojo: 8})
		assert.Equal(t, 8, res.Product.Stock)
		assert.Equal(t, []string{w.rojo.ID}, []string(res.Product.AttributeIDs))

		active := 0
		for _, v := range res.Variants {
			if v.IsActive {
				active++
			}
		}
		assert.Equal(t, 1, active)
		assert.Len(t, res.Variants, 2)
	})

	t.Run("idempotent", func(t *testing.T) {
		w := newWorld(t)
		in := &dto.ReconcileInput{
			AttributeIDs: []string{w.rojo.ID, w.azul.ID},
			Stocks:       []invdto.StockUpdate{{AttributeID: w.rojo.ID, Quantity: 3}, {AttributeID: w.azul.ID, Quantity: 4}},
		}
		first, err := w.uc.ReconcileProduct(ctx, w.candle.ID, in)
		require.NoError(t, err)
		second, err := w.uc.ReconcileProduct(ctx, w.candle.ID, in)
		require.NoError(t, err)

		assert.Equal(t, first.Product.Stock, second.Product.Stock)
		assert.Equal(t, first.Variants, second.Variants)
	})

	t.Run("repeated stock entry counts once", func(t *testing.T) {
		w := newWorld(t)
		res, err := w.uc.ReconcileProduct(ctx, w.candle.ID, &dto.ReconcileInput{
			AttributeIDs: []string{w.verde.ID},
			Stocks:       []invdto.StockUpdate{{AttributeID: w.verde.ID, Quantity: 10}, {AttributeID: w.verde.ID, Quantity: 4}},
		})
		require.NoError(t, err)
		assert.Empty(t, res.Warnings)
		assert.Equal(t, 4, res.Product.Stock)
		require.Len(t, res.Variants, 1)
		assert.Equal(t, 4, res.Variants[0].Quantity)
	})

	t.Run("stock for an unassigned attribute", func(t *testing.T) {
		w := newWorld(t)
		_, err := w.uc.ReconcileProduct(ctx, w.candle.ID, &dto.ReconcileInput{
			AttributeIDs: []string{w.rojo.ID},
			Stocks:       []invdto.StockUpdate{{AttributeID: w.azul.ID, Quantity: 1}},
		})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("failed pairs become warnings", func(t *testing.T) {
		w := newWorld(t)
		res, err := w.uc.ReconcileProduct(ctx, w.candle.ID, &dto.ReconcileInput{
			AttributeIDs: []string{w.rojo.ID, "attr-gone"},
			Stocks:       []invdto.StockUpdate{{AttributeID: w.rojo.ID, Quantity: 2}, {AttributeID: "attr-gone", Quantity: 9}},
		})
		require.NoError(t, err)
		require.Len(t, res.Warnings, 1)
		assert.ErrorIs(t, res.Warnings[0], apperr.ErrInventoryInconsistency)
		assert.Equal(t, 2, res.Product.Stock)
	})
}
