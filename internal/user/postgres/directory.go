package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Directory answers user-existence checks against the users table. Profile
// data and authentication are owned by other services.
type Directory struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewDirectory(log *slog.Logger, pool *pgxpool.Pool) *Directory {
	return &Directory{log: log, pool: pool}
}

func (d *Directory) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := d.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user %s: %w", userID, err)
	}
	return exists, nil
}
