package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/shopfabric/orderflow/internal/order/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// Save assigns an id on first save and inserts the order with all its line
// items in one transaction. Later saves only touch status and updated_at;
// line items are immutable after creation.
func (r *Repository) Save(ctx context.Context, o *domain.Order) error {
	if o.ID != "" {
		_, err := r.pool.Exec(ctx,
			`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
			o.ID, o.Status.String(), o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update order %s: %w", o.ID, err)
		}
		return nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	id := uuid.NewString()
	_, err = tx.Exec(ctx,
		`INSERT INTO orders (id, user_id, total_amount, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, o.UserID, o.TotalAmount.StringFixed(2), o.Status.String(), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	batch := &pgx.Batch{}
	for pos, item := range o.Items {
		batch.Queue(
			`INSERT INTO order_items (order_id, position, product_id, quantity, unit_price, subtotal)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			id, pos, item.ProductID, item.Quantity,
			item.UnitPrice.StringFixed(2), item.Subtotal.StringFixed(2))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	o.ID = id
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (domain.Order, error) {
	o, err := r.scanOrder(r.pool.QueryRow(ctx,
		`SELECT id, user_id, total_amount::text, status, created_at, updated_at
		 FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.OrderNotFoundError{OrderID: id}
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("query order %s: %w", id, err)
	}

	o.Items, err = r.loadItems(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, total_amount::text, status, created_at, updated_at
		 FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders for user %s: %w", userID, err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read orders: %w", err)
	}

	for i := range orders {
		orders[i].Items, err = r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *Repository) loadItems(ctx context.Context, orderID string) ([]domain.LineItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT product_id, quantity, unit_price::text, subtotal::text
		 FROM order_items WHERE order_id = $1 ORDER BY position`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query items for order %s: %w", orderID, err)
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var item domain.LineItem
		var price, subtotal string
		if err := rows.Scan(&item.ProductID, &item.Quantity, &price, &subtotal); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if item.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse unit price: %w", err)
		}
		if item.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
			return nil, fmt.Errorf("parse subtotal: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *Repository) scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var total, status string
	if err := row.Scan(&o.ID, &o.UserID, &total, &status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return domain.Order{}, err
	}
	var err error
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return domain.Order{}, fmt.Errorf("parse total amount: %w", err)
	}
	if o.Status, err = domain.ParseStatus(status); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}
