// Package catalog holds the read-side product snapshot the order workflow
// consumes. The catalog itself (CRUD, categories) lives outside this service.
package catalog

import "github.com/shopspring/decimal"

type Product struct {
	ID            string
	Name          string
	UnitPrice     decimal.Decimal
	StockQuantity int
}
