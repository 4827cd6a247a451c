package dto

import (
	"github.com/shopspring/decimal"

	invdto "github.com/fekuna/storefront-inventory-service/internal/inventory/dto"
	"github.com/fekuna/storefront-inventory-service/internal/model"
)

type RecordSaleInput struct {
	ProductID   string           `json:"product_id"`
	AttributeID string           `json:"attribute_id"`
	Quantity    int              `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// SaleResult carries the recorded sale even when the ledger could not follow.
type SaleResult struct {
	Sale      *model.Sale             `json:"sale"`
	LedgerRow *model.VariantInventory `json:"ledger_row,omitempty"`
	Warnings  []error                 `json:"-"`
}

type StockOrderItemInput struct {
	ProductID   string `json:"product_id"`
	AttributeID string `json:"attribute_id"`
	Quantity    int    `json:"quantity"`
}

type StockOrderInput struct {
	Notes string                `json:"notes"`
	Items []StockOrderItemInput `json:"items"`
}

type ReceiveResult struct {
	Order    *model.StockOrder `json:"order"`
	Warnings []error           `json:"-"`
}

// ReconcileInput is the admin form: the product's attribute set and the
// absolute stock of each attribute.
type ReconcileInput struct {
	AttributeIDs []string             `json:"attribute_ids"`
	Stocks       []invdto.StockUpdate `json:"stocks"`
}

type ReconcileResult struct {
	Product  *model.Product           `json:"product"`
	Variants []model.VariantInventory `json:"variants"`
	Warnings []error                  `json:"-"`
}
