package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopfabric/orderflow/internal/inventory"
)

// Ledger enforces per-product reservation atomicity with a single-row
// conditional update instead of an application-level lock: the decrement
// only happens when the row still holds enough stock, so concurrent
// reservations against one product serialize on the row while other
// products stay unaffected.
type Ledger struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewLedger(log *slog.Logger, pool *pgxpool.Pool) *Ledger {
	return &Ledger{log: log, pool: pool}
}

func (l *Ledger) Reserve(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("reserve %s: %w", productID, inventory.ErrInvalidQuantity)
	}
	ct, err := l.pool.Exec(ctx,
		`UPDATE products
		 SET stock_quantity = stock_quantity - $2, updated_at = now()
		 WHERE id = $1 AND stock_quantity >= $2`, productID, qty)
	if err != nil {
		return fmt.Errorf("reserve stock for %s: %w", productID, err)
	}
	if ct.RowsAffected() > 0 {
		return nil
	}

	var available int
	err = l.pool.QueryRow(ctx,
		`SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		available = 0
	} else if err != nil {
		return fmt.Errorf("read stock for %s: %w", productID, err)
	}
	return inventory.InsufficientStockError{ProductID: productID, Available: available, Requested: qty}
}

func (l *Ledger) Release(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("release %s: %w", productID, inventory.ErrInvalidQuantity)
	}
	ct, err := l.pool.Exec(ctx,
		`UPDATE products
		 SET stock_quantity = stock_quantity + $2, updated_at = now()
		 WHERE id = $1`, productID, qty)
	if err != nil {
		return fmt.Errorf("release stock for %s: %w", productID, err)
	}
	if ct.RowsAffected() == 0 {
		l.log.Warn("release for unknown product", "product_id", productID, "quantity", qty)
	}
	return nil
}
