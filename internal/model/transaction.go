package model

import "github.com/shopspring/decimal"

// Movement types.
const (
	MovementIn  = "in"
	MovementOut = "out"
)

// DateLayout is the dd/mm/yy layout used by the Date and Expiry columns.
const DateLayout = "02/01/06"

// Transaction is one append-only row of the stock ledger sheet.
type Transaction struct {
	Row           int             `json:"row"`
	Approved      bool            `json:"approved"`
	Order         string          `json:"order"`
	Date          string          `json:"date"`
	ItemCode      string          `json:"item_code"`
	ItemName      string          `json:"item_name"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	ShelfLifeDays int             `json:"shelf_life_days"`
	Expiry        string          `json:"expiry"`
	// RemainingDays is captured when the row is written and never re-derived.
	RemainingDays int    `json:"remaining_days"`
	Requester     string `json:"requester"`
}
