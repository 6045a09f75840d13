package model

import "github.com/shopspring/decimal"

// Item status values as stored in the items sheet.
const (
	StatusNormal       = "normal"
	StatusNeedsRestock = "needs-restock"
)

// Item is one ingredient row of the items sheet.
// Quantity, Status and Value are a materialized view of the transaction
// ledger; only ledger recomputation rewrites them after creation.
type Item struct {
	Row           int             `json:"row"` // 1-based sheet row, header is row 1
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Unit          string          `json:"unit"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	MinStock      decimal.Decimal `json:"min_stock"`
	Quantity      decimal.Decimal `json:"quantity"`
	Status        string          `json:"status"`
	Value         decimal.Decimal `json:"value"`
	ShelfLifeDays int             `json:"shelf_life_days"`
}

// StatusFor returns the restock status for qty against a minimum threshold.
func StatusFor(qty, minStock decimal.Decimal) string {
	if qty.LessThan(minStock) {
		return StatusNeedsRestock
	}
	return StatusNormal
}

// RestockEntry is an item below its threshold together with the shortfall.
type RestockEntry struct {
	Item
	Needed decimal.Decimal `json:"needed"`
}
