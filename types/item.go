package types

import "time"

// SalesHistory maps an ISO calendar date (YYYY-MM-DD) to the number of
// units sold on that date. A missing key means zero; a key may also be
// explicitly removed, which reads the same as zero.
type SalesHistory map[string]int64

// InventoryItem represents a stocked product and its per-date sales ledger.
type InventoryItem struct {
	// ID is the store-assigned identifier of the item.
	ID int64 `json:"id" db:"id"`

	// Name is the product name.
	Name string `json:"name" db:"name"`

	// Quantity is the current stock count. Adjustment operations keep it
	// non-negative; recording a sale decrements it atomically together
	// with the sales entry for that date.
	Quantity int64 `json:"quantity" db:"quantity"`

	// Price is the unit price.
	Price float64 `json:"price" db:"price"`

	// Supplier is free-text supplier or description information.
	Supplier string `json:"supplier" db:"supplier"`

	// Sales is the per-date sale counter mapping. Stored as a JSONB
	// document so a sale and its stock decrement apply in one
	// conditional row update.
	Sales SalesHistory `json:"sales" db:"sales"`

	// CreatedAt is the timestamp at which the item was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the item.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SaleCount returns the recorded count for date, 0 when absent.
func (s SalesHistory) SaleCount(date string) int64 {
	return s[date]
}
