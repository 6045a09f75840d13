package repository

import (
	"context"
	"fmt"

	"sukiism/internal/config"
	"sukiism/internal/sheet"
)

// Backend is a Store that holds a file or client until closed.
type Backend interface {
	sheet.Store
	Close() error
}

// StoreOptions declares how the ledger tables are laid out on the backend:
// the order sequence of the transactions table and the typed columns of both
// tables. Columns not listed here are written as text.
func StoreOptions(itemsTable, txTable string) []sheet.Option {
	return []sheet.Option{
		sheet.WithOrderSequence(txTable, txColOrder, "PO-"),
		sheet.WithColumnKinds(itemsTable, map[int]sheet.Kind{
			itemColUnitPrice: sheet.Number,
			itemColMinStock:  sheet.Number,
			itemColQuantity:  sheet.Number,
			itemColValue:     sheet.Number,
			itemColShelfLife: sheet.Number,
		}),
		sheet.WithColumnKinds(txTable, map[int]sheet.Kind{
			txColApprove:   sheet.Bool,
			txColQuantity:  sheet.Number,
			txColShelfLife: sheet.Number,
			txColRemaining: sheet.Number,
		}),
	}
}

// OpenStore opens the backend selected by cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg *config.Config) (Backend, error) {
	opts := StoreOptions(cfg.ItemsSheet, cfg.TransactionsSheet)
	switch cfg.StoreDriver {
	case "", "workbook":
		wb, err := sheet.OpenWorkbook(cfg.WorkbookPath, opts...)
		if err != nil {
			return nil, fmt.Errorf("open workbook %s: %w", cfg.WorkbookPath, err)
		}
		return wb, nil
	case "gsheets":
		if cfg.GoogleSheetID == "" {
			return nil, fmt.Errorf("STORE_DRIVER=gsheets requires GOOGLE_SHEET_ID")
		}
		gs, err := sheet.OpenGoogleSheet(ctx, cfg.GoogleCredentialsFile, cfg.GoogleSheetID, opts...)
		if err != nil {
			return nil, fmt.Errorf("open google sheet %s: %w", cfg.GoogleSheetID, err)
		}
		return gs, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
