package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/fekuna/storefront-inventory-service/internal/model"
	"github.com/fekuna/storefront-inventory-service/internal/product/dto"
	"github.com/fekuna/storefront-inventory-service/internal/store"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
        INSERT INTO products (
            id, name, description, price, cost, stock, attribute_ids,
            category_id, subcategory_id, cover_image, hover_image, product_images,
            is_active, is_featured, is_new, created_at, updated_at
        )
        VALUES (
            :id, :name, :description, :price, :cost, :stock, :attribute_ids,
            :category_id, :subcategory_id, :cover_image, :hover_image, :product_images,
            :is_active, :is_featured, :is_new, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return store.Wrap(err)
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	if err := r.DB.GetContext(ctx, &p, `SELECT * FROM products WHERE id = $1 LIMIT 1`, id); err != nil {
		return nil, store.Wrap(err)
	}
	return &p, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.CategoryID != "" {
		conditions = append(conditions, "category_id = :category_id")
		args["category_id"] = f.CategoryID
	}
	if f.SubcategoryID != "" {
		conditions = append(conditions, "subcategory_id = :subcategory_id")
		args["subcategory_id"] = f.SubcategoryID
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(name ILIKE :search OR description ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM products"+whereClause, args)
	if err != nil {
		return nil, 0, store.Wrap(err)
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, store.Wrap(err)
	}

	query := fmt.Sprintf("SELECT * FROM products%s ORDER BY %s", whereClause, orderBy(f))
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

	products := []model.Product{}
	if err := nstmt.SelectContext(ctx, &products, args); err != nil {
		return nil, 0, store.Wrap(err)
	}
	return products, count, nil
}

// orderBy whitelists sortable columns.
func orderBy(f *dto.ProductFilters) string {
	column := "created_at"
	switch f.SortBy {
	case "name":
		column = "name"
	case "price":
		column = "price"
	case "stock":
		column = "stock"
	}
	if strings.EqualFold(f.SortOrder, "asc") {
		return column + " ASC, id ASC"
	}
	return column + " DESC, id DESC"
}

func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products
        SET name = :name,
            description = :description,
            price = :price,
            cost = :cost,
            category_id = :category_id,
            subcategory_id = :subcategory_id,
            cover_image = :cover_image,
            hover_image = :hover_image,
            product_images = :product_images,
            is_active = :is_active,
            is_featured = :is_featured,
            is_new = :is_new,
            updated_at = :updated_at
        WHERE id = :id
    `
	res, err := r.DB.NamedExecContext(ctx, query, p)
	if err != nil {
		return store.Wrap(err)
	}
	return requireRow(res.RowsAffected())
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return store.Wrap(err)
	}
	return requireRow(res.RowsAffected())
}

func (r *PGRepository) UpdateAttributeIDs(ctx context.Context, id string, attributeIDs []string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE products SET attribute_ids = $1, updated_at = NOW() WHERE id = $2`,
		pq.StringArray(attributeIDs), id)
	if err != nil {
		return store.Wrap(err)
	}
	return requireRow(res.RowsAffected())
}

func (r *PGRepository) UpdateStock(ctx context.Context, id string, stock int) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE products SET stock = $1, updated_at = NOW() WHERE id = $2`, stock, id)
	if err != nil {
		return store.Wrap(err)
	}
	return requireRow(res.RowsAffected())
}

func (r *PGRepository) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	var stock int
	query := `
        UPDATE products
        SET stock = GREATEST(0, stock + $1), updated_at = NOW()
        WHERE id = $2
        RETURNING stock
    `
	if err := r.DB.GetContext(ctx, &stock, query, delta, id); err != nil {
		return 0, store.Wrap(err)
	}
	return stock, nil
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
