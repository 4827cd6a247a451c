package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/storefront-inventory-service/internal/attribute/dto"
	"github.com/fekuna/storefront-inventory-service/internal/model"
	"github.com/fekuna/storefront-inventory-service/internal/store"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, a *model.Attribute) error {
	query := `
        INSERT INTO product_attributes (
            id, subcategory_id, name, type, value, description, color_hex,
            sort_order, is_active, created_at, updated_at
        )
        VALUES (
            :id, :subcategory_id, :name, :type, :value, :description, :color_hex,
            :sort_order, :is_active, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, a)
	return store.Wrap(err)
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Attribute, error) {
	var a model.Attribute
	err := r.DB.GetContext(ctx, &a, `SELECT * FROM product_attributes WHERE id = $1`, id)
	if err != nil {
		return nil, store.Wrap(err)
	}
	return &a, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.AttributeFilters) ([]model.Attribute, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.SubcategoryID != "" {
		conditions = append(conditions, "subcategory_id = :subcategory_id")
		args["subcategory_id"] = f.SubcategoryID
	}
	if f.Type != "" {
		conditions = append(conditions, "type = :type")
		args["type"] = f.Type
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := "SELECT * FROM product_attributes" + whereClause + " ORDER BY sort_order ASC, name ASC, value ASC"
	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, store.Wrap(err)
	}
	defer nstmt.Close()

	items := []model.Attribute{}
	if err := nstmt.SelectContext(ctx, &items, args); err != nil {
		return nil, store.Wrap(err)
	}
	return items, nil
}

func (r *PGRepository) Update(ctx context.Context, a *model.Attribute) error {
	query := `
        UPDATE product_attributes SET
            subcategory_id = :subcategory_id,
            name = :name,
            type = :type,
            value = :value,
            description = :description,
            color_hex = :color_hex,
            sort_order = :sort_order,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	res, err := r.DB.NamedExecContext(ctx, query, a)
	if err != nil {
		return store.Wrap(err)
	}
	return requireRow(res.RowsAffected())
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM product_attributes WHERE id = $1`, id)
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
