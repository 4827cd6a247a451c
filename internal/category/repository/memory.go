package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/fekuna/storefront-inventory-service/internal/category/dto"
	"github.com/fekuna/storefront-inventory-service/internal/model"
	"github.com/fekuna/storefront-inventory-service/internal/store"
)

// MemoryRepository keeps categories and subcategories in process, with the
// same restrict-on-delete references as the postgres schema.
type MemoryRepository struct {
	mu            sync.RWMutex
	categories    map[string]model.Category
	subcategories map[string]model.Subcategory

	// SubcategoryInUse reports whether attributes still reference a
	// subcategory. Nil means never.
	SubcategoryInUse func(id string) bool
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		categories:    make(map[string]model.Category),
		subcategories: make(map[string]model.Subcategory),
	}
}

// SubcategoryExists backs the subcategory foreign key of the attribute catalog.
func (r *MemoryRepository) SubcategoryExists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.subcategories[id]
	return ok
}

func (r *MemoryRepository) Create(_ context.Context, c *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[c.ID]; ok {
		return store.NewError(store.CodeUniqueViolation, "categories_pkey", errors.New("duplicate id"))
	}
	r.categories[c.ID] = *c
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (r *MemoryRepository) FindAll(_ context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []model.Category{}
	for _, c := range r.categories {
		if f.IsActive != nil && c.IsActive != *f.IsActive {
			continue
		}
		items = append(items, c)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].SortOrder != items[j].SortOrder {
			return items[i].SortOrder < items[j].SortOrder
		}
		return items[i].Name < items[j].Name
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

func (r *MemoryRepository) Update(_ context.Context, c *model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[c.ID]; !ok {
		return store.ErrNotFound
	}
	r.categories[c.ID] = *c
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return store.ErrNotFound
	}
	for _, s := range r.subcategories {
		if s.CategoryID == id {
			return store.NewError(store.CodeForeignKeyViolation, "subcategories_category_id_fkey",
				errors.New("category "+id+" has subcategories"))
		}
	}
	delete(r.categories, id)
	return nil
}

func (r *MemoryRepository) CreateSubcategory(_ context.Context, s *model.Subcategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subcategories[s.ID]; ok {
		return store.NewError(store.CodeUniqueViolation, "subcategories_pkey", errors.New("duplicate id"))
	}
	if err := r.checkCategory(s.CategoryID); err != nil {
		return err
	}
	r.subcategories[s.ID] = *s
	return nil
}

func (r *MemoryRepository) FindSubcategory(_ context.Context, id string) (*model.Subcategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.subcategories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

func (r *MemoryRepository) ListSubcategories(_ context.Context, f *dto.SubcategoryFilters) ([]model.Subcategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []model.Subcategory{}
	for _, s := range r.subcategories {
		if f.CategoryID != "" && s.CategoryID != f.CategoryID {
			continue
		}
		if f.IsActive != nil && s.IsActive != *f.IsActive {
			continue
		}
		items = append(items, s)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].SortOrder != items[j].SortOrder {
			return items[i].SortOrder < items[j].SortOrder
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (r *MemoryRepository) UpdateSubcategory(_ context.Context, s *model.Subcategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subcategories[s.ID]; !ok {
		return store.ErrNotFound
	}
	if err := r.checkCategory(s.CategoryID); err != nil {
		return err
	}
	r.subcategories[s.ID] = *s
	return nil
}

func (r *MemoryRepository) DeleteSubcategory(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subcategories[id]; !ok {
		return store.ErrNotFound
	}
	if r.SubcategoryInUse != nil && r.SubcategoryInUse(id) {
		return store.NewError(store.CodeForeignKeyViolation, "product_attributes_subcategory_id_fkey",
			errors.New("subcategory "+id+" has attributes"))
	}
	delete(r.subcategories, id)
	return nil
}

// checkCategory must be called with mu held.
func (r *MemoryRepository) checkCategory(id string) error {
	if _, ok := r.categories[id]; !ok {
		return store.NewError(store.CodeForeignKeyViolation, "subcategories_category_id_fkey",
			errors.New("category "+id+" does not exist"))
	}
	return nil
}
