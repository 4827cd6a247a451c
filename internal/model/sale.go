package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is write-once.
type Sale struct {
	ID          string          `db:"id" json:"id"`
	ProductID   string          `db:"product_id" json:"product_id"`
	AttributeID *string         `db:"attribute_id" json:"attribute_id,omitempty"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	TotalPrice  decimal.Decimal `db:"total_price" json:"total_price"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

type StockOrderStatus string

const (
	StockOrderPending   StockOrderStatus = "pending"
	StockOrderReceived  StockOrderStatus = "received"
	StockOrderCancelled StockOrderStatus = "cancelled"
)

type StockOrder struct {
	BaseModel
	OrderDate  time.Time        `db:"order_date" json:"order_date"`
	Status     StockOrderStatus `db:"status" json:"status"`
	Notes      *string          `db:"notes" json:"notes,omitempty"`
	ReceivedAt *time.Time       `db:"received_at" json:"received_at,omitempty"`
	Items      []StockOrderItem `db:"-" json:"items"`
}

// StockOrderItem snapshots product and attribute labels at submission time.
type StockOrderItem struct {
	ID             string  `db:"id" json:"id"`
	StockOrderID   string  `db:"stock_order_id" json:"stock_order_id"`
	ProductID      string  `db:"product_id" json:"product_id"`
	ProductName    string  `db:"product_name" json:"product_name"`
	AttributeID    *string `db:"attribute_id" json:"attribute_id,omitempty"`
	AttributeName  *string `db:"attribute_name" json:"attribute_name,omitempty"`
	AttributeValue *string `db:"attribute_value" json:"attribute_value,omitempty"`
	Quantity       int     `db:"quantity" json:"quantity"`
}

func (o *StockOrder) TotalQuantity() int {
	total := 0
	for _, it := range o.Items {
		total += it.Quantity
	}
	return total
}
