package sale

import (
	"context"
	"time"

	"github.com/fekuna/storefront-inventory-service/internal/model"
)

// Repository persists sales and stock orders. Failures are *store.Error.
type Repository interface {
	CreateSale(ctx context.Context, s *model.Sale) error
	// ListSalesByProduct returns newest first.
	ListSalesByProduct(ctx context.Context, productID string) ([]model.Sale, error)

	// CreateStockOrder writes the header and its items atomically.
	CreateStockOrder(ctx context.Context, o *model.StockOrder) error
	FindStockOrder(ctx context.Context, id string) (*model.StockOrder, error)
	// ListStockOrders returns newest first; an empty status lists all.
	ListStockOrders(ctx context.Context, status model.StockOrderStatus) ([]model.StockOrder, error)
	// MarkReceived moves a pending order to received. It reports false when the
	// order was no longer pending.
	MarkReceived(ctx context.Context, id string, at time.Time) (bool, error)
}
