package listener

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/storefront-inventory-service/internal/model"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/logger"
	"github.com/fekuna/storefront-inventory-service/internal/sale"
	"github.com/fekuna/storefront-inventory-service/internal/sale/dto"
)

type fakeUseCase struct {
	sale.UseCase
	sales    []dto.RecordSaleInput
	received []string
}

func (f *fakeUseCase) RecordSale(_ context.Context, in *dto.RecordSaleInput) (*dto.SaleResult, error) {
	f.sales = append(f.sales, *in)
	if in.ProductID == "bad" {
		return nil, errors.New("rejected")
	}
	return &dto.SaleResult{Sale: &model.Sale{ID: "s"}}, nil
}

func (f *fakeUseCase) ReceiveStockOrder(_ context.Context, id string) (*dto.ReceiveResult, error) {
	f.received = append(f.received, id)
	return &dto.ReceiveResult{}, nil
}

type scriptedReader struct {
	messages [][]byte
	cancel   context.CancelFunc
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.messages) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return kafka.Message{Value: msg}, nil
}

func TestSaleListener(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &scriptedReader{cancel: cancel, messages: [][]byte{
		[]byte(`{"event_id":"e1","event_type":"OrderCreated","payload":{"id":"o1","items":[
			{"product_id":"p1","attribute_id":"a1","quantity":2},
			{"product_id":"bad","quantity":1},
			{"product_id":"p2","quantity":3,"unit_price":"9.90"}
		]}}`),
		[]byte(`not json`),
		[]byte(`{"event_id":"e2","event_type":"SomethingElse","payload":{}}`),
		[]byte(`{"event_id":"e3","event_type":"StockOrderReceived","payload":{"id":"so-1"}}`),
	}}
	uc := &fakeUseCase{}

	NewSaleListener(reader, uc, logger.NewNop()).Start(ctx)

	require.Len(t, uc.sales, 3)
	assert.Equal(t, dto.RecordSaleInput{ProductID: "p1", AttributeID: "a1", Quantity: 2}, uc.sales[0])
	require.NotNil(t, uc.sales[2].UnitPrice)
	assert.Equal(t, "9.9", uc.sales[2].UnitPrice.String())
	assert.Equal(t, []string{"so-1"}, uc.received)
}

type failingDeduper struct{}

func (failingDeduper) AcquireLock(context.Context, string, string, time.Duration) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func TestSaleListenerRedelivery(t *testing.T) {
	order := []byte(`{"event_id":"e7","event_type":"OrderCreated","payload":{"id":"o7","items":[
		{"product_id":"p1","attribute_id":"a1","quantity":1}
	]}}`)
	received := []byte(`{"event_id":"e8","event_type":"StockOrderReceived","payload":{"id":"so-8"}}`)

	t.Run("same event id is processed once", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		reader := &scriptedReader{cancel: cancel, messages: [][]byte{order, received, order, received}}
		uc := &fakeUseCase{}

		NewSaleListener(reader, uc, logger.NewNop()).Start(ctx)

		assert.Len(t, uc.sales, 1)
		assert.Equal(t, []string{"so-8"}, uc.received)
	})

	t.Run("events without id are not deduplicated", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		anon := []byte(`{"event_type":"OrderCreated","payload":{"id":"o9","items":[{"product_id":"p1","quantity":1}]}}`)
		reader := &scriptedReader{cancel: cancel, messages: [][]byte{anon, anon}}
		uc := &fakeUseCase{}

		NewSaleListener(reader, uc, logger.NewNop()).Start(ctx)

		assert.Len(t, uc.sales, 2)
	})

	t.Run("unreachable deduper falls back to processing", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		reader := &scriptedReader{cancel: cancel, messages: [][]byte{order, order}}
		uc := &fakeUseCase{}

		NewSaleListener(reader, uc, logger.NewNop()).WithDeduper(failingDeduper{}).Start(ctx)

		assert.Len(t, uc.sales, 2)
	})
}
