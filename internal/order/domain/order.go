package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one product+quantity entry of an order. UnitPrice is captured
// from the catalog at order time and never changes afterwards.
type LineItem struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

type Order struct {
	ID          string
	UserID      string
	Items       []LineItem
	TotalAmount decimal.Decimal
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrder builds an order in status NEW from already-priced line items,
// computing each subtotal and the total explicitly. The ID is left empty;
// the store assigns it on first save.
func NewOrder(userID string, items []LineItem) (Order, error) {
	if len(items) == 0 {
		return Order{}, ErrEmptyOrder
	}
	total := decimal.Zero
	lines := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return Order{}, InvalidQuantityError{ProductID: item.ProductID, Quantity: item.Quantity}
		}
		item.Subtotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(item.Subtotal)
		lines = append(lines, item)
	}
	now := time.Now().UTC()
	return Order{
		UserID:      userID,
		Items:       lines,
		TotalAmount: total,
		Status:      StatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Transition moves the order to the requested status if the state graph
// allows it and bumps the update timestamp.
func (o *Order) Transition(to Status) error {
	if !CanTransition(o.Status, to) {
		return IllegalTransitionError{From: o.Status, To: to}
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// CanBeCanceled reports whether cancellation is still legal. Only orders
// that have not left the NEW/PAID stage can be canceled.
func (o *Order) CanBeCanceled() bool {
	return o.Status == StatusNew || o.Status == StatusPaid
}
