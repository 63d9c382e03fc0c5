package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderEvent is the payload published to the order-events topic. The shape
// is a cross-service contract consumed by the notification service; field
// names must stay stable.
type OrderEvent struct {
	OrderID     string          `json:"orderId"`
	UserID      string          `json:"userId"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CreatedAt   string          `json:"createdAt"`
}

func NewOrderEvent(o Order) OrderEvent {
	return OrderEvent{
		OrderID:     o.ID,
		UserID:      o.UserID,
		Status:      o.Status.String(),
		TotalAmount: o.TotalAmount,
		CreatedAt:   o.CreatedAt.UTC().Format(time.RFC3339),
	}
}
