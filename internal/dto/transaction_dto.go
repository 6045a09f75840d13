package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RecordTransactionRequest struct {
	ItemCode      string          `json:"item_code"       validate:"required"`
	Type          string          `json:"type"            validate:"required,oneof=in out"`
	Quantity      decimal.Decimal `json:"quantity"        validate:"gt=0"`
	ShelfLifeDays int             `json:"shelf_life_days" validate:"min=0"`
	// Approved defaults to true when omitted.
	Approved *bool `json:"approved"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type TransactionFilter struct {
	Date     string `form:"date"      validate:"omitempty,datetime=02/01/06"`
	Type     string `form:"type"      validate:"omitempty,oneof=in out"`
	ItemCode string `form:"item_code"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TransactionResponse struct {
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
	RemainingDays int             `json:"remaining_days"`
	Requester     string          `json:"requester"`
}

type RecordTransactionResponse struct {
	Order string        `json:"order"`
	Row   int           `json:"row"`
	Item  *ItemResponse `json:"item,omitempty"`
}
