package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/shopfabric/orderflow/internal/catalog"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// FindByIDs resolves product snapshots in one batch. Ids absent from the
// catalog are simply omitted from the result; callers detect them by set
// difference.
func (r *Repository) FindByIDs(ctx context.Context, ids []string) (map[string]catalog.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, price::text, stock_quantity FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	found := make(map[string]catalog.Product, len(ids))
	for rows.Next() {
		var p catalog.Product
		var price string
		if err := rows.Scan(&p.ID, &p.Name, &price, &p.StockQuantity); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.UnitPrice, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("parse price for product %s: %w", p.ID, err)
		}
		found[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	return found, nil
}
