package sale

import (
	"context"

	"github.com/fekuna/storefront-inventory-service/internal/model"
	"github.com/fekuna/storefront-inventory-service/internal/sale/dto"
)

type UseCase interface {
	RecordSale(ctx context.Context, input *dto.RecordSaleInput) (*dto.SaleResult, error)
	ListSales(ctx context.Context, productID string) ([]model.Sale, error)

	RecordStockOrder(ctx context.Context, input *dto.StockOrderInput) (*model.StockOrder, error)
	GetStockOrder(ctx context.Context, id string) (*model.StockOrder, error)
	ListStockOrders(ctx context.Context, status string) ([]model.StockOrder, error)
	ReceiveStockOrder(ctx context.Context, id string) (*dto.ReceiveResult, error)

	// Increment restocks one (product, attribute) ledger row, creating it when missing.
	Increment(ctx context.Context, productID, attributeID string, quantity int) (*model.VariantInventory, error)
	ReconcileProduct(ctx context.Context, productID string, input *dto.ReconcileInput) (*dto.ReconcileResult, error)
}
