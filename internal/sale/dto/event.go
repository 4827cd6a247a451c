package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fekuna/storefront-inventory-service/internal/model"
)

const (
	EventOrderCreated        = "OrderCreated"
	EventStockOrderSubmitted = "StockOrderSubmitted"
	EventStockOrderReceived  = "StockOrderReceived"
)

// Envelope is the shape of every message on the order and stock order topics.
type Envelope[T any] struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Payload   T         `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

type OrderPayload struct {
	ID    string             `json:"id"`
	Items []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	ProductID   string           `json:"product_id"`
	AttributeID string           `json:"attribute_id"`
	Quantity    int              `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

type StockOrderReceivedPayload struct {
	ID string `json:"id"`
}

type StockOrderSubmittedPayload = model.StockOrder
