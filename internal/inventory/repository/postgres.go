package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/storefront-inventory-service/internal/model"
	"github.com/fekuna/storefront-inventory-service/internal/store"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByProduct(ctx context.Context, productID string) ([]model.VariantInventory, error) {
	items := []model.VariantInventory{}
	query := `
        SELECT * FROM product_variant_inventory
        WHERE product_id = $1
        ORDER BY created_at DESC, id DESC
    `
	if err := r.DB.SelectContext(ctx, &items, query, productID); err != nil {
		return nil, store.Wrap(err)
	}
	return items, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.VariantInventory, error) {
	var v model.VariantInventory
	if err := r.DB.GetContext(ctx, &v, `SELECT * FROM product_variant_inventory WHERE id = $1`, id); err != nil {
		return nil, store.Wrap(err)
	}
	return &v, nil
}

func (r *PGRepository) Create(ctx context.Context, v *model.VariantInventory) error {
	query := `
        INSERT INTO product_variant_inventory (
            id, product_id, variant_data, quantity, reserved_quantity,
            is_active, created_at, updated_at
        )
        VALUES (
            :id, :product_id, :variant_data, :quantity, :reserved_quantity,
            :is_active, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, v)
	return store.Wrap(err)
}

func (r *PGRepository) Update(ctx context.Context, v *model.VariantInventory) error {
	query := `
        UPDATE product_variant_inventory SET
            variant_data = :variant_data,
            quantity = :quantity,
            reserved_quantity = :reserved_quantity,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	res, err := r.DB.NamedExecContext(ctx, query, v)
	if err != nil {
		return store.Wrap(err)
	}
	return requireRow(res.RowsAffected())
}

func (r *PGRepository) Adjust(ctx context.Context, id string, delta int) (*model.VariantInventory, error) {
	var v model.VariantInventory
	query := `
        UPDATE product_variant_inventory
        SET quantity = GREATEST(0, quantity + $1), updated_at = NOW()
        WHERE id = $2
        RETURNING *
    `
	if err := r.DB.GetContext(ctx, &v, query, delta, id); err != nil {
		return nil, store.Wrap(err)
	}
	return &v, nil
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM product_variant_inventory WHERE id = $1`, id)
	if err != nil {
		return store.Wrap(err)
	}
	return requireRow(res.RowsAffected())
}

func (r *PGRepository) CountByAttribute(ctx context.Context, attributeID string) (int, error) {
	var n int
	query := `
        SELECT count(*) FROM product_variant_inventory
        WHERE is_active AND variant_data->>'attribute_id' = $1
    `
	if err := r.DB.GetContext(ctx, &n, query, attributeID); err != nil {
		return 0, store.Wrap(err)
	}
	return n, nil
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
