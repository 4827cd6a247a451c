package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/fekuna/storefront-inventory-service/internal/model"
	"github.com/fekuna/storefront-inventory-service/internal/product/dto"
	"github.com/fekuna/storefront-inventory-service/internal/store"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]model.Product
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]model.Product)}
}

// Exists backs the product foreign key of the other memory repositories.
func (r *MemoryRepository) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[id]
	return ok
}

func (r *MemoryRepository) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[p.ID]; ok {
		return store.NewError(store.CodeUniqueViolation, "products_pkey", errors.New("duplicate id"))
	}
	r.items[p.ID] = clone(*p)
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p = clone(p)
	return &p, nil
}

func (r *MemoryRepository) FindAll(_ context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []model.Product{}
	for _, p := range r.items {
		if f.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != f.CategoryID) {
			continue
		}
		if f.SubcategoryID != "" && (p.SubcategoryID == nil || *p.SubcategoryID != f.SubcategoryID) {
			continue
		}
		if f.IsActive != nil && p.IsActive != *f.IsActive {
			continue
		}
		if f.SearchQuery != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.SearchQuery)) {
			continue
		}
		items = append(items, clone(p))
	}

	asc := strings.EqualFold(f.SortOrder, "asc")
	sort.Slice(items, func(i, j int) bool {
		c := compare(f.SortBy, &items[i], &items[j])
		if c == 0 {
			c = strings.Compare(items[i].ID, items[j].ID)
		}
		if asc {
			return c < 0
		}
		return c > 0
	})

	count := len(items)
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * f.PageSize
		if start > len(items) {
			start = len(items)
		}
		end := start + f.PageSize
		if end > len(items) {
			end = len(items)
		}
		items = items[start:end]
	}
	return items, count, nil
}

func (r *MemoryRepository) Update(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[p.ID]
	if !ok {
		return store.ErrNotFound
	}
	next := clone(*p)
	next.Stock = current.Stock
	next.AttributeIDs = current.AttributeIDs
	next.CreatedAt = current.CreatedAt
	r.items[p.ID] = next
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryRepository) UpdateAttributeIDs(_ context.Context, id string, attributeIDs []string) error {
	return r.mutate(id, func(p *model.Product) {
		p.AttributeIDs = append(pq.StringArray{}, attributeIDs...)
	})
}

func (r *MemoryRepository) UpdateStock(_ context.Context, id string, stock int) error {
	return r.mutate(id, func(p *model.Product) { p.Stock = stock })
}

func (r *MemoryRepository) AdjustStock(_ context.Context, id string, delta int) (int, error) {
	var stock int
	err := r.mutate(id, func(p *model.Product) {
		p.Stock += delta
		if p.Stock < 0 {
			p.Stock = 0
		}
		stock = p.Stock
	})
	return stock, err
}

func (r *MemoryRepository) mutate(id string, fn func(p *model.Product)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return store.ErrNotFound
	}
	fn(&p)
	p.UpdatedAt = time.Now()
	r.items[id] = p
	return nil
}

func compare(sortBy string, a, b *model.Product) int {
	switch sortBy {
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "price":
		return a.Price.Cmp(b.Price)
	case "stock":
		return a.Stock - b.Stock
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func clone(p model.Product) model.Product {
	p.AttributeIDs = append(pq.StringArray(nil), p.AttributeIDs...)
	p.ProductImages = append(pq.StringArray(nil), p.ProductImages...)
	return p
}
