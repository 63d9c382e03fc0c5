package application

import (
	"context"

	"github.com/shopfabric/orderflow/internal/catalog"
	"github.com/shopfabric/orderflow/internal/order/domain"
)

// Catalog resolves product snapshots in one batch. Ids the catalog does not
// know are omitted from the result.
type Catalog interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]catalog.Product, error)
}

type UserDirectory interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

type OrderRepository interface {
	// Save assigns an id on first save and upserts afterwards.
	Save(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id string) (domain.Order, error)
	FindByUserID(ctx context.Context, userID string) ([]domain.Order, error)
}

// InventoryLedger owns the stock invariants. Reserve must observe the
// availability check and the decrement as one atomic unit per product.
type InventoryLedger interface {
	Reserve(ctx context.Context, productID string, qty int) error
	Release(ctx context.Context, productID string, qty int) error
}

type EventPublisher interface {
	Publish(ctx context.Context, ev domain.OrderEvent) error
}
