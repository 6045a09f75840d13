package repository

import (
	"context"
	"fmt"

	"sukiism/internal/cache"
	"sukiism/internal/model"
	"sukiism/internal/sheet"

	"github.com/shopspring/decimal"
)

// ItemRepository maps the items table to model.Item. Reads go through the
// read cache; writes never touch the cache, callers own invalidation.
type ItemRepository interface {
	EnsureSchema(ctx context.Context) error
	List(ctx context.Context) ([]model.Item, error)
	Append(ctx context.Context, it model.Item) (int, error)
	// UpdateDetails rewrites the editable columns (Name..MinStock, ShelfLife).
	UpdateDetails(ctx context.Context, it model.Item) error
	// UpdateLedger rewrites Quantity, Status and Value in one write.
	UpdateLedger(ctx context.Context, row int, qty decimal.Decimal, status string, value decimal.Decimal) error
	Delete(ctx context.Context, row int) error
	// Retire records a deleted code so it is never allocated again, even
	// when no transaction ever referenced it.
	Retire(ctx context.Context, code, date, actor string) error
	RetiredCodes(ctx context.Context) ([]string, error)
	Invalidate(ctx context.Context) error
}

type itemRepo struct {
	store   sheet.Store
	cache   cache.Cache
	table   string
	retired string
}

// NewItemRepository maps table; deleted codes are kept in retiredTable.
func NewItemRepository(store sheet.Store, c cache.Cache, table, retiredTable string) ItemRepository {
	return &itemRepo{store: store, cache: c, table: table, retired: retiredTable}
}

func (r *itemRepo) EnsureSchema(ctx context.Context) error {
	if err := r.store.EnsureHeaders(ctx, r.table, ItemHeaders); err != nil {
		return err
	}
	return r.store.EnsureHeaders(ctx, r.retired, RetiredHeaders)
}

func (r *itemRepo) List(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	if hit, err := r.cache.Load(ctx, cache.KeyItems, &items); err == nil && hit {
		return items, nil
	}

	rows, err := r.store.ReadAllRows(ctx, r.table)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	items = decodeItems(rows)
	// Populate cache: best effort
	_ = r.cache.Store(ctx, cache.KeyItems, items)
	return items, nil
}

func decodeItems(rows [][]string) []model.Item {
	items := make([]model.Item, 0, len(rows))
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		name := cell(row, itemColName)
		if name == "" {
			continue
		}
		items = append(items, model.Item{
			Row:           i + 1,
			Code:          cell(row, itemColCode),
			Name:          name,
			Category:      cell(row, itemColCategory),
			Unit:          cell(row, itemColUnit),
			UnitPrice:     parseDecimal(cell(row, itemColUnitPrice)),
			MinStock:      parseDecimal(cell(row, itemColMinStock)),
			Quantity:      parseDecimal(cell(row, itemColQuantity)),
			Status:        cell(row, itemColStatus),
			Value:         parseDecimal(cell(row, itemColValue)),
			ShelfLifeDays: parseInt(cell(row, itemColShelfLife)),
		})
	}
	return items
}

func (r *itemRepo) Append(ctx context.Context, it model.Item) (int, error) {
	row := []string{
		it.Code, it.Name, it.Category, it.Unit,
		it.UnitPrice.String(), it.MinStock.String(), it.Quantity.String(),
		it.Status, it.Value.String(), itoa(it.ShelfLifeDays),
	}
	n, err := r.store.AppendRow(ctx, r.table, row)
	if err != nil {
		return 0, fmt.Errorf("append item %s: %w", it.Code, err)
	}
	return n, nil
}

func (r *itemRepo) UpdateDetails(ctx context.Context, it model.Item) error {
	if err := r.store.WriteCells(ctx, r.table, sheet.RowRange("B", "F", it.Row), [][]string{{
		it.Name, it.Category, it.Unit, it.UnitPrice.String(), it.MinStock.String(),
	}}); err != nil {
		return fmt.Errorf("update item %s: %w", it.Code, err)
	}
	if err := r.store.WriteCells(ctx, r.table, sheet.RowRange("J", "J", it.Row), [][]string{{
		itoa(it.ShelfLifeDays),
	}}); err != nil {
		return fmt.Errorf("update item %s shelf life: %w", it.Code, err)
	}
	return nil
}

func (r *itemRepo) UpdateLedger(ctx context.Context, row int, qty decimal.Decimal, status string, value decimal.Decimal) error {
	if err := r.store.WriteCells(ctx, r.table, sheet.RowRange("G", "I", row), [][]string{{
		qty.String(), status, value.String(),
	}}); err != nil {
		return fmt.Errorf("update ledger columns row %d: %w", row, err)
	}
	return nil
}

func (r *itemRepo) Delete(ctx context.Context, row int) error {
	if err := r.store.DeleteRow(ctx, r.table, row); err != nil {
		return fmt.Errorf("delete item row %d: %w", row, err)
	}
	return nil
}

func (r *itemRepo) Retire(ctx context.Context, code, date, actor string) error {
	if _, err := r.store.AppendRow(ctx, r.retired, []string{code, date, actor}); err != nil {
		return fmt.Errorf("retire code %s: %w", code, err)
	}
	return nil
}

// RetiredCodes is read uncached; it is only consulted on code allocation.
func (r *itemRepo) RetiredCodes(ctx context.Context) ([]string, error) {
	rows, err := r.store.ReadAllRows(ctx, r.retired)
	if err != nil {
		return nil, fmt.Errorf("read retired codes: %w", err)
	}
	var codes []string
	for i := 1; i < len(rows); i++ {
		if c := cell(rows[i], 1); c != "" {
			codes = append(codes, c)
		}
	}
	return codes, nil
}

func (r *itemRepo) Invalidate(ctx context.Context) error {
	return r.cache.Invalidate(ctx, cache.KeyItems)
}
