package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/fekuna/storefront-inventory-service/internal/attribute/dto"
	"github.com/fekuna/storefront-inventory-service/internal/model"
	"github.com/fekuna/storefront-inventory-service/internal/store"
)

const uniqueOptionConstraint = "product_attributes_unique_active_option"

// SubcategoryChecker reports whether a subcategory exists. It stands in for the
// foreign key the postgres schema declares.
type SubcategoryChecker func(id string) bool

// MemoryRepository keeps attributes in process. It enforces the same active
// option uniqueness and subcategory reference as the postgres schema.
type MemoryRepository struct {
	mu          sync.RWMutex
	items       map[string]model.Attribute
	subcategory SubcategoryChecker
}

func NewMemoryRepository(subcategory SubcategoryChecker) *MemoryRepository {
	return &MemoryRepository{
		items:       make(map[string]model.Attribute),
		subcategory: subcategory,
	}
}

// Exists backs the attribute foreign key of the other memory repositories.
func (r *MemoryRepository) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[id]
	return ok
}

// InSubcategory reports whether any attribute references the subcategory.
func (r *MemoryRepository) InSubcategory(subcategoryID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.items {
		if a.SubcategoryID == subcategoryID {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) Create(_ context.Context, a *model.Attribute) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[a.ID]; ok {
		return store.NewError(store.CodeUniqueViolation, "product_attributes_pkey", errors.New("duplicate id"))
	}
	if err := r.check(a); err != nil {
		return err
	}
	r.items[a.ID] = *a
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*model.Attribute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (r *MemoryRepository) FindAll(_ context.Context, f *dto.AttributeFilters) ([]model.Attribute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []model.Attribute{}
	for _, a := range r.items {
		if f.SubcategoryID != "" && a.SubcategoryID != f.SubcategoryID {
			continue
		}
		if f.Type != "" && string(a.Type) != f.Type {
			continue
		}
		if f.IsActive != nil && a.IsActive != *f.IsActive {
			continue
		}
		items = append(items, a)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].SortOrder != items[j].SortOrder {
			return items[i].SortOrder < items[j].SortOrder
		}
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].Value < items[j].Value
	})
	return items, nil
}

func (r *MemoryRepository) Update(_ context.Context, a *model.Attribute) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[a.ID]; !ok {
		return store.ErrNotFound
	}
	if err := r.check(a); err != nil {
		return err
	}
	r.items[a.ID] = *a
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

// check must be called with mu held.
func (r *MemoryRepository) check(a *model.Attribute) error {
	if r.subcategory != nil && !r.subcategory(a.SubcategoryID) {
		return store.NewError(store.CodeForeignKeyViolation, "product_attributes_subcategory_id_fkey",
			errors.New("subcategory "+a.SubcategoryID+" does not exist"))
	}
	if !a.IsActive {
		return nil
	}
	for id, other := range r.items {
		if id != a.ID && other.IsActive && other.SameOption(a.SubcategoryID, a.Name, a.Value) {
			return store.NewError(store.CodeUniqueViolation, uniqueOptionConstraint,
				errors.New("active option "+strings.ToLower(a.Name)+"="+strings.ToLower(a.Value)+" exists"))
		}
	}
	return nil
}
