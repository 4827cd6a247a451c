package repository

import (
	"context"
	"fmt"
	"time"

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

func (r *PGRepository) CreateSale(ctx context.Context, s *model.Sale) error {
	query := `
        INSERT INTO sales (id, product_id, attribute_id, quantity, unit_price, total_price, created_at)
        VALUES (:id, :product_id, :attribute_id, :quantity, :unit_price, :total_price, :created_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, s)
	return store.Wrap(err)
}

func (r *PGRepository) ListSalesByProduct(ctx context.Context, productID string) ([]model.Sale, error) {
	items := []model.Sale{}
	query := `SELECT * FROM sales WHERE product_id = $1 ORDER BY created_at DESC, id DESC`
	if err := r.DB.SelectContext(ctx, &items, query, productID); err != nil {
		return nil, store.Wrap(err)
	}
	return items, nil
}

func (r *PGRepository) CreateStockOrder(ctx context.Context, o *model.StockOrder) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return store.Wrap(err)
	}
	defer tx.Rollback()

	headerQuery := `
        INSERT INTO stock_orders (id, order_date, status, notes, received_at, created_at, updated_at)
        VALUES (:id, :order_date, :status, :notes, :received_at, :created_at, :updated_at)
    `
	if _, err := tx.NamedExecContext(ctx, headerQuery, o); err != nil {
		return store.Wrap(fmt.Errorf("insert stock order: %w", err))
	}

	itemQuery := `
        INSERT INTO stock_order_items (
            id, stock_order_id, product_id, product_name,
            attribute_id, attribute_name, attribute_value, quantity
        )
        VALUES (
            :id, :stock_order_id, :product_id, :product_name,
            :attribute_id, :attribute_name, :attribute_value, :quantity
        )
    `
	for i := range o.Items {
		if _, err := tx.NamedExecContext(ctx, itemQuery, &o.Items[i]); err != nil {
			return store.Wrap(fmt.Errorf("insert stock order item: %w", err))
		}
	}

	return store.Wrap(tx.Commit())
}

func (r *PGRepository) FindStockOrder(ctx context.Context, id string) (*model.StockOrder, error) {
	var o model.StockOrder
	if err := r.DB.GetContext(ctx, &o, `SELECT * FROM stock_orders WHERE id = $1`, id); err != nil {
		return nil, store.Wrap(err)
	}
	orders := []model.StockOrder{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *PGRepository) ListStockOrders(ctx context.Context, status model.StockOrderStatus) ([]model.StockOrder, error) {
	orders := []model.StockOrder{}
	query := `SELECT * FROM stock_orders`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY order_date DESC, id DESC`

	if err := r.DB.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, store.Wrap(err)
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads the items of every order in one query.
func (r *PGRepository) attachItems(ctx context.Context, orders []model.StockOrder) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, 0, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids = append(ids, o.ID)
		index[o.ID] = i
		orders[i].Items = []model.StockOrderItem{}
	}

	query, args, err := sqlx.In(`SELECT * FROM stock_order_items WHERE stock_order_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return store.Wrap(err)
	}

	var items []model.StockOrderItem
	if err := r.DB.SelectContext(ctx, &items, r.DB.Rebind(query), args...); err != nil {
		return store.Wrap(err)
	}
	for _, it := range items {
		i := index[it.StockOrderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return nil
}

func (r *PGRepository) MarkReceived(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE stock_orders
        SET status = $1, received_at = $2, updated_at = $2
        WHERE id = $3 AND status = $4
    `, model.StockOrderReceived, at, id, model.StockOrderPending)
	if err != nil {
		return false, store.Wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, store.Wrap(err)
	}
	return n == 1, nil
}
