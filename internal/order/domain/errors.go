package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyOrder rejects order creation with no line items.
var ErrEmptyOrder = errors.New("order must contain at least one item")

type UserNotFoundError struct {
	UserID string
}

func (e UserNotFoundError) Error() string {
	return "user not found: " + e.UserID
}

type OrderNotFoundError struct {
	OrderID string
}

func (e OrderNotFoundError) Error() string {
	return "order not found: " + e.OrderID
}

// ProductNotFoundError carries every requested product id absent from the
// catalog, not just the first one encountered.
type ProductNotFoundError struct {
	Missing []string
}

func (e ProductNotFoundError) Error() string {
	return "products not found: " + strings.Join(e.Missing, ", ")
}

type InvalidQuantityError struct {
	ProductID string
	Quantity  int
}

func (e InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for product %s", e.Quantity, e.ProductID)
}

type IllegalTransitionError struct {
	From Status
	To   Status
}

func (e IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition from %s to %s", e.From, e.To)
}
