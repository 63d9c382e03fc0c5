package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopfabric/orderflow/internal/inventory"
)

// entry is one product's availability with its own mutex, so reservations for
// the same product serialize while unrelated products proceed in parallel.
type entry struct {
	mu  sync.Mutex
	qty int
}

// Ledger keeps available quantities in memory, one entry per product. The
// outer mutex guards only the map itself; quantities are mutated under the
// entry's mutex.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewLedger(initial map[string]int) *Ledger {
	l := &Ledger{entries: make(map[string]*entry, len(initial))}
	for id, qty := range initial {
		l.entries[id] = &entry{qty: qty}
	}
	return l
}

func (l *Ledger) entryFor(productID string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[productID]
	if !ok {
		e = &entry{}
		l.entries[productID] = e
	}
	return e
}

// Reserve atomically checks availability and decrements it by qty. The check
// and the decrement happen under the product's lock; two concurrent reserves
// can never both succeed past the available quantity.
func (l *Ledger) Reserve(_ context.Context, productID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("reserve %s: %w", productID, inventory.ErrInvalidQuantity)
	}
	e := l.entryFor(productID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.qty < qty {
		return inventory.InsufficientStockError{ProductID: productID, Available: e.qty, Requested: qty}
	}
	e.qty -= qty
	return nil
}

// Release returns qty units to the product's availability. Used only to
// reverse a reservation on cancellation.
func (l *Ledger) Release(_ context.Context, productID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("release %s: %w", productID, inventory.ErrInvalidQuantity)
	}
	e := l.entryFor(productID)
	e.mu.Lock()
	defer e.mu.Unlock()

	e.qty += qty
	return nil
}

// Available reports the current quantity for a product.
func (l *Ledger) Available(productID string) int {
	e := l.entryFor(productID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.qty
}

// SetStock overwrites a product's availability. Intended for seeding.
func (l *Ledger) SetStock(productID string, qty int) {
	e := l.entryFor(productID)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.qty = qty
}
