// Package inventory defines the stock-reservation contract shared by the
// in-memory and Postgres ledgers. Reserve and release are the only legal
// stock mutations in this service.
package inventory

import (
	"errors"
	"fmt"
)

// ErrInvalidQuantity flags a caller contract violation: reserve and release
// quantities must be positive, never silently no-oped.
var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}
