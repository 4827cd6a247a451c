package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/fekuna/storefront-inventory-service/internal/model"
	"github.com/fekuna/storefront-inventory-service/internal/store"
)

// Checker stands in for a foreign key of the postgres schema.
type Checker func(id string) bool

// MemoryRepository keeps sales and stock orders in process.
type MemoryRepository struct {
	mu        sync.RWMutex
	sales     []model.Sale
	orders    map[string]model.StockOrder
	product Checker

	// FailSales, when set, is returned by CreateSale.
	FailSales error
}

// NewMemoryRepository checks product ids only. Attribute ids are soft
// references in both tables, as in the postgres schema.
func NewMemoryRepository(product Checker) *MemoryRepository {
	return &MemoryRepository{
		orders:  make(map[string]model.StockOrder),
		product: product,
	}
}

func (r *MemoryRepository) CreateSale(_ context.Context, s *model.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailSales != nil {
		return store.Wrap(r.FailSales)
	}
	if err := r.references(s.ProductID, "sales"); err != nil {
		return err
	}
	r.sales = append(r.sales, *s)
	return nil
}

func (r *MemoryRepository) ListSalesByProduct(_ context.Context, productID string) ([]model.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []model.Sale{}
	for i := len(r.sales) - 1; i >= 0; i-- {
		if r.sales[i].ProductID == productID {
			items = append(items, r.sales[i])
		}
	}
	return items, nil
}

func (r *MemoryRepository) CreateStockOrder(_ context.Context, o *model.StockOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[o.ID]; ok {
		return store.NewError(store.CodeUniqueViolation, "stock_orders_pkey", errors.New("duplicate id"))
	}
	for _, it := range o.Items {
		if err := r.references(it.ProductID, "stock_order_items"); err != nil {
			return err
		}
	}
	r.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (r *MemoryRepository) FindStockOrder(_ context.Context, id string) (*model.StockOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r *MemoryRepository) ListStockOrders(_ context.Context, status model.StockOrderStatus) ([]model.StockOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []model.StockOrder{}
	for _, o := range r.orders {
		if status == "" || o.Status == status {
			items = append(items, cloneOrder(o))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].OrderDate.Equal(items[j].OrderDate) {
			return items[i].OrderDate.After(items[j].OrderDate)
		}
		return items[i].ID > items[j].ID
	})
	return items, nil
}

func (r *MemoryRepository) MarkReceived(_ context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok || o.Status != model.StockOrderPending {
		return false, nil
	}
	o.Status = model.StockOrderReceived
	o.ReceivedAt = &at
	o.UpdatedAt = at
	r.orders[id] = o
	return true, nil
}

// references must be called with mu held.
func (r *MemoryRepository) references(productID string, table string) error {
	if r.product != nil && !r.product(productID) {
		return store.NewError(store.CodeForeignKeyViolation, table+"_product_id_fkey",
			errors.New("product "+productID+" does not exist"))
	}
	return nil
}

func cloneOrder(o model.StockOrder) model.StockOrder {
	o.Items = append([]model.StockOrderItem{}, o.Items...)
	return o
}
