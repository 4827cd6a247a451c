package listener

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/fekuna/storefront-inventory-service/internal/pkg/logger"
	"github.com/fekuna/storefront-inventory-service/internal/sale"
	"github.com/fekuna/storefront-inventory-service/internal/sale/dto"
)

// Reader is the consuming side of *broker.KafkaConsumer.
type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Deduper claims an event id once across listener instances. *cache.RedisClient
// satisfies it through SETNX.
type Deduper interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}

const (
	processedKeyPrefix = "event:processed:"
	processedTTL       = 24 * time.Hour
)

type SaleListener struct {
	consumer Reader
	uc       sale.UseCase
	logger   logger.ZapLogger
	dedupe   Deduper
}

// NewSaleListener remembers processed event ids in process. Use WithDeduper to
// share them between replicas.
func NewSaleListener(consumer Reader, uc sale.UseCase, logger logger.ZapLogger) *SaleListener {
	return &SaleListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
		dedupe:   newMemoryDeduper(),
	}
}

func (l *SaleListener) WithDeduper(d Deduper) *SaleListener {
	if d != nil {
		l.dedupe = d
	}
	return l
}

// Start consumes until ctx is cancelled. Messages are processed one at a time.
func (l *SaleListener) Start(ctx context.Context) {
	l.logger.Info("Starting Sale Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Sale Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type eventHeader struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
}

func (l *SaleListener) processMessage(ctx context.Context, value []byte) {
	var head eventHeader
	if err := json.Unmarshal(value, &head); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if !l.claim(ctx, head) {
		return
	}

	switch head.EventType {
	case dto.EventOrderCreated:
		var event dto.Envelope[dto.OrderPayload]
		if err := json.Unmarshal(value, &event); err != nil {
			l.logger.Error("Failed to unmarshal OrderCreated", zap.String("event_id", head.EventID), zap.Error(err))
			return
		}
		l.handleOrderCreated(ctx, event.Payload)
	case dto.EventStockOrderReceived:
		var event dto.Envelope[dto.StockOrderReceivedPayload]
		if err := json.Unmarshal(value, &event); err != nil {
			l.logger.Error("Failed to unmarshal StockOrderReceived", zap.String("event_id", head.EventID), zap.Error(err))
			return
		}
		l.handleStockOrderReceived(ctx, event.Payload)
	}
}

// claim reports whether the event should be processed. Redelivered ids are
// skipped; when the deduper is unreachable the event is processed anyway.
func (l *SaleListener) claim(ctx context.Context, head eventHeader) bool {
	if head.EventID == "" {
		return true
	}
	ok, err := l.dedupe.AcquireLock(ctx, processedKeyPrefix+head.EventID, head.EventType, processedTTL)
	if err != nil {
		l.logger.Warn("Event dedupe unavailable, processing anyway",
			zap.String("event_id", head.EventID), zap.Error(err))
		return true
	}
	if !ok {
		l.logger.Info("Skipping already processed event",
			zap.String("event_id", head.EventID), zap.String("event_type", head.EventType))
	}
	return ok
}

func (l *SaleListener) handleOrderCreated(ctx context.Context, order dto.OrderPayload) {
	l.logger.Info("Processing OrderCreated event", zap.String("order_id", order.ID))

	for _, item := range order.Items {
		res, err := l.uc.RecordSale(ctx, &dto.RecordSaleInput{
			ProductID:   item.ProductID,
			AttributeID: item.AttributeID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
		if err != nil {
			l.logger.Error("Failed to record sale for order item",
				zap.String("order_id", order.ID),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
			continue
		}
		for _, w := range res.Warnings {
			l.logger.Warn("Order item recorded with inventory warning",
				zap.String("order_id", order.ID),
				zap.String("sale_id", res.Sale.ID),
				zap.Error(w),
			)
		}
	}
}

func (l *SaleListener) handleStockOrderReceived(ctx context.Context, payload dto.StockOrderReceivedPayload) {
	res, err := l.uc.ReceiveStockOrder(ctx, payload.ID)
	if err != nil {
		l.logger.Error("Failed to receive stock order", zap.String("stock_order_id", payload.ID), zap.Error(err))
		return
	}
	for _, w := range res.Warnings {
		l.logger.Warn("Stock order received with inventory warning",
			zap.String("stock_order_id", payload.ID), zap.Error(w))
	}
}

type memoryDeduper struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

func newMemoryDeduper() *memoryDeduper {
	return &memoryDeduper{seen: make(map[string]time.Time)}
}

func (d *memoryDeduper) AcquireLock(_ context.Context, key, _ string, ttl time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	for k, exp := range d.seen {
		if now.After(exp) {
			delete(d.seen, k)
		}
	}
	if _, ok := d.seen[key]; ok {
		return false, nil
	}
	d.seen[key] = now.Add(ttl)
	return true, nil
}
