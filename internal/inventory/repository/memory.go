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

// ProductChecker stands in for the product_id foreign key.
type ProductChecker func(id string) bool

type memoryRow struct {
	model.VariantInventory
	seq int64
}

// MemoryRepository keeps ledger rows in process with the same ordering and
// zero floor as the postgres repository.
type MemoryRepository struct {
	mu      sync.RWMutex
	rows    map[string]*memoryRow
	seq     int64
	product ProductChecker

	// FailAdjust, when set, is returned by Adjust. Tests use it to simulate a
	// ledger outage after the sale was written.
	FailAdjust error
}

func NewMemoryRepository(product ProductChecker) *MemoryRepository {
	return &MemoryRepository{
		rows:    make(map[string]*memoryRow),
		product: product,
	}
}

func (r *MemoryRepository) FindByProduct(_ context.Context, productID string) ([]model.VariantInventory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*memoryRow
	for _, row := range r.rows {
		if row.ProductID == productID {
			matched = append(matched, row)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].seq > matched[j].seq
	})

	items := make([]model.VariantInventory, 0, len(matched))
	for _, row := range matched {
		items = append(items, row.VariantInventory)
	}
	return items, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*model.VariantInventory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	v := row.VariantInventory
	return &v, nil
}

func (r *MemoryRepository) Create(_ context.Context, v *model.VariantInventory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[v.ID]; ok {
		return store.NewError(store.CodeUniqueViolation, "product_variant_inventory_pkey", errors.New("duplicate id"))
	}
	if r.product != nil && !r.product(v.ProductID) {
		return store.NewError(store.CodeForeignKeyViolation, "product_variant_inventory_product_id_fkey",
			errors.New("product "+v.ProductID+" does not exist"))
	}
	r.seq++
	r.rows[v.ID] = &memoryRow{VariantInventory: *v, seq: r.seq}
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, v *model.VariantInventory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[v.ID]
	if !ok {
		return store.ErrNotFound
	}
	row.VariantData = v.VariantData
	row.Quantity = v.Quantity
	row.ReservedQuantity = v.ReservedQuantity
	row.IsActive = v.IsActive
	row.UpdatedAt = v.UpdatedAt
	return nil
}

func (r *MemoryRepository) Adjust(_ context.Context, id string, delta int) (*model.VariantInventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailAdjust != nil {
		return nil, store.Wrap(r.FailAdjust)
	}
	row, ok := r.rows[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	row.Quantity += delta
	if row.Quantity < 0 {
		row.Quantity = 0
	}
	row.UpdatedAt = time.Now()
	v := row.VariantInventory
	return &v, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *MemoryRepository) CountByAttribute(_ context.Context, attributeID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, row := range r.rows {
		if row.IsActive && row.VariantData.AttributeID == attributeID {
			n++
		}
	}
	return n, nil
}
