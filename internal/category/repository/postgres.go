package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/storefront-inventory-service/internal/category/dto"
	"github.com/fekuna/storefront-inventory-service/internal/model"
	"github.com/fekuna/storefront-inventory-service/internal/store"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
        INSERT INTO categories (id, name, description, image_url, sort_order, is_active, created_at, updated_at)
        VALUES (:id, :name, :description, :image_url, :sort_order, :is_active, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return store.Wrap(err)
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	if err := r.DB.GetContext(ctx, &c, `SELECT * FROM categories WHERE id = $1`, id); err != nil {
		return nil, store.Wrap(err)
	}
	return &c, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM categories"+whereClause, args)
	if err != nil {
		return nil, 0, store.Wrap(err)
	}
	var count int
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, store.Wrap(err)
	}

	query := "SELECT * FROM categories" + whereClause + " ORDER BY sort_order ASC, name ASC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, store.Wrap(err)
	}
	defer nstmt.Close()

	categories := []model.Category{}
	if err := nstmt.SelectContext(ctx, &categories, args); err != nil {
		return nil, 0, store.Wrap(err)
	}
	return categories, count, nil
}

func (r *PGRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
        UPDATE categories
        SET name = :name,
            description = :description,
            image_url = :image_url,
            sort_order = :sort_order,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	res, err := r.DB.NamedExecContext(ctx, query, c)
	if err != nil {
		return store.Wrap(err)
	}
	return requireRow(res.RowsAffected())
}

// Delete fails with a foreign key violation while subcategories remain.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return store.Wrap(err)
	}
	return requireRow(res.RowsAffected())
}

func (r *PGRepository) CreateSubcategory(ctx context.Context, s *model.Subcategory) error {
	query := `
        INSERT INTO subcategories (id, category_id, name, description, sort_order, is_active, created_at, updated_at)
        VALUES (:id, :category_id, :name, :description, :sort_order, :is_active, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, s)
	return store.Wrap(err)
}

func (r *PGRepository) FindSubcategory(ctx context.Context, id string) (*model.Subcategory, error) {
	var s model.Subcategory
	if err := r.DB.GetContext(ctx, &s, `SELECT * FROM subcategories WHERE id = $1`, id); err != nil {
		return nil, store.Wrap(err)
	}
	return &s, nil
}

func (r *PGRepository) ListSubcategories(ctx context.Context, f *dto.SubcategoryFilters) ([]model.Subcategory, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.CategoryID != "" {
		conditions = append(conditions, "category_id = :category_id")
		args["category_id"] = f.CategoryID
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, "SELECT * FROM subcategories"+whereClause+" ORDER BY sort_order ASC, name ASC")
	if err != nil {
		return nil, store.Wrap(err)
	}
	defer nstmt.Close()

	items := []model.Subcategory{}
	if err := nstmt.SelectContext(ctx, &items, args); err != nil {
		return nil, store.Wrap(err)
	}
	return items, nil
}

func (r *PGRepository) UpdateSubcategory(ctx context.Context, s *model.Subcategory) error {
	query := `
        UPDATE subcategories
        SET category_id = :category_id,
            name = :name,
            description = :description,
            sort_order = :sort_order,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	res, err := r.DB.NamedExecContext(ctx, query, s)
	if err != nil {
		return store.Wrap(err)
	}
	return requireRow(res.RowsAffected())
}

// DeleteSubcategory fails with a foreign key violation while attributes remain.
func (r *PGRepository) DeleteSubcategory(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM subcategories WHERE id = $1`, id)
	if err != nil {
		return store.Wrap(err)
	}
	return requireRow(res.RowsAffected())
}

func requireRow(n int64, err error) error {
	if err != nil {
		return store.Wrap(err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
