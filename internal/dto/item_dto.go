package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateItemRequest struct {
	Name          string          `json:"name"            validate:"required,min=1,max=120"`
	Category      string          `json:"category"        validate:"required"`
	Unit          string          `json:"unit"            validate:"required,max=20"`
	UnitPrice     decimal.Decimal `json:"unit_price"      validate:"gte=0"`
	MinStock      decimal.Decimal `json:"min_stock"       validate:"gte=0"`
	Quantity      decimal.Decimal `json:"quantity"        validate:"gte=0"`
	ShelfLifeDays int             `json:"shelf_life_days" validate:"min=0"`
}

type UpdateItemRequest struct {
	Name          string          `json:"name"            validate:"required,min=1,max=120"`
	Category      string          `json:"category"        validate:"required"`
	Unit          string          `json:"unit"            validate:"required,max=20"`
	UnitPrice     decimal.Decimal `json:"unit_price"      validate:"gte=0"`
	MinStock      decimal.Decimal `json:"min_stock"       validate:"gte=0"`
	ShelfLifeDays int             `json:"shelf_life_days" validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemResponse struct {
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

type CreateItemResponse struct {
	Code string `json:"code"`
}

type RestockResponse struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Unit     string          `json:"unit"`
	Quantity decimal.Decimal `json:"quantity"`
	MinStock decimal.Decimal `json:"min_stock"`
	Needed   decimal.Decimal `json:"needed"`
}

type DashboardResponse struct {
	ItemCount         int               `json:"item_count"`
	RestockCount      int               `json:"restock_count"`
	TotalValue        decimal.Decimal   `json:"total_value"`
	TodayTransactions int               `json:"today_transactions"`
	Restock           []RestockResponse `json:"restock"`
}
