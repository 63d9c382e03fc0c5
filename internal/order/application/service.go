package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopfabric/orderflow/internal/inventory"
	"github.com/shopfabric/orderflow/internal/order/domain"
)

// ItemRequest is one proposed line of a purchase: which product, how many.
type ItemRequest struct {
	ProductID string
	Quantity  int
}

// Service orchestrates the order workflow: catalog resolution, stock
// reservation, aggregate construction, persistence and event emission.
type Service struct {
	log    *slog.Logger
	repo   OrderRepository
	users  UserDirectory
	cat    Catalog
	ledger InventoryLedger
	events EventPublisher
}

func NewService(log *slog.Logger, repo OrderRepository, users UserDirectory, cat Catalog, ledger InventoryLedger, events EventPublisher) *Service {
	return &Service{log: log, repo: repo, users: users, cat: cat, ledger: ledger, events: events}
}

// CreateOrder validates the request, reserves stock all-or-nothing, persists
// the order and emits a creation event best-effort. No stock is touched until
// every line has passed validation.
func (s *Service) CreateOrder(ctx context.Context, userID string, items []ItemRequest) (domain.Order, error) {
	if len(items) == 0 {
		return domain.Order{}, domain.ErrEmptyOrder
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return domain.Order{}, domain.InvalidQuantityError{ProductID: it.ProductID, Quantity: it.Quantity}
		}
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return domain.Order{}, domain.UserNotFoundError{UserID: userID}
	}

	ids := distinctProductIDs(items)
	products, err := s.cat.FindByIDs(ctx, ids)
	if err != nil {
		return domain.Order{}, fmt.Errorf("resolve products: %w", err)
	}
	var missing []string
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return domain.Order{}, domain.ProductNotFoundError{Missing: missing}
	}

	// Advisory pre-check across every line before any reservation, so a
	// single shortfall rejects the whole order without partial reservations.
	// The ledger remains the authoritative guard against races.
	for _, it := range items {
		if p := products[it.ProductID]; p.StockQuantity < it.Quantity {
			return domain.Order{}, inventory.InsufficientStockError{
				ProductID: it.ProductID,
				Available: p.StockQuantity,
				Requested: it.Quantity,
			}
		}
	}

	reserved := make([]ItemRequest, 0, len(items))
	for _, it := range items {
		if err := s.ledger.Reserve(ctx, it.ProductID, it.Quantity); err != nil {
			s.releaseAll(ctx, reserved)
			return domain.Order{}, err
		}
		reserved = append(reserved, it)
	}

	lines := make([]domain.LineItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, domain.LineItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: products[it.ProductID].UnitPrice,
		})
	}
	order, err := domain.NewOrder(userID, lines)
	if err != nil {
		s.releaseAll(ctx, reserved)
		return domain.Order{}, err
	}

	if err := s.repo.Save(ctx, &order); err != nil {
		s.releaseAll(ctx, reserved)
		return domain.Order{}, fmt.Errorf("save order: %w", err)
	}
	s.log.Info("order created", "order_id", order.ID, "user_id", userID, "total", order.TotalAmount)

	s.publish(ctx, order)
	return order, nil
}

// UpdateStatus moves an order through its lifecycle. Cancellation releases
// every line's reserved quantity back to the ledger; the transition table
// rejects a second cancellation, so the release can never run twice.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, to domain.Status) (domain.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if err := order.Transition(to); err != nil {
		return domain.Order{}, err
	}
	if err := s.repo.Save(ctx, &order); err != nil {
		return domain.Order{}, fmt.Errorf("save order: %w", err)
	}
	// Release only after CANCELED is persisted. If the save fails the order
	// stays cancellable and a retry will not release the lines twice; a failed
	// release here is logged for compensation, same as a create-side rollback.
	if to == domain.StatusCanceled {
		for _, item := range order.Items {
			if err := s.ledger.Release(ctx, item.ProductID, item.Quantity); err != nil {
				s.log.Error("stock release failed for canceled order", "order_id", order.ID, "product_id", item.ProductID, "quantity", item.Quantity, "err", err)
			}
		}
	}
	s.log.Info("order status updated", "order_id", order.ID, "status", order.Status)

	s.publish(ctx, order)
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return s.repo.FindByID(ctx, orderID)
}

func (s *Service) ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return nil, domain.UserNotFoundError{UserID: userID}
	}
	return s.repo.FindByUserID(ctx, userID)
}

// publish is best-effort: a sink failure is logged with the order id and
// swallowed. Persistence stays the source of truth regardless of downstream
// availability.
func (s *Service) publish(ctx context.Context, o domain.Order) {
	if err := s.events.Publish(ctx, domain.NewOrderEvent(o)); err != nil {
		s.log.Warn("order event publish failed", "order_id", o.ID, "err", err)
	}
}

func (s *Service) releaseAll(ctx context.Context, reserved []ItemRequest) {
	for _, it := range reserved {
		if err := s.ledger.Release(ctx, it.ProductID, it.Quantity); err != nil {
			s.log.Error("reservation rollback failed", "product_id", it.ProductID, "quantity", it.Quantity, "err", err)
		}
	}
}

func distinctProductIDs(items []ItemRequest) []string {
	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}
