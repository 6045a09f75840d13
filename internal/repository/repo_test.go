package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"sukiism/internal/cache"
	"sukiism/internal/model"
	"sukiism/internal/sheet"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStores() (*sheet.Memory, *cache.Memory) {
	return sheet.NewMemory(sheet.WithOrderSequence("RP-PO", txColOrder, "PO-")), cache.NewMemory(time.Minute)
}

func TestItemRepo_ListParsesLeniently(t *testing.T) {
	store, c := newStores()
	store.Seed("Items", [][]string{
		ItemHeaders,
		{"MT-0001", "Pork belly", "Meat", "kg", "1,250.50", "5", "#N/A", "normal", "", "3"},
		{"", "", "", "", "", "", "", "", "", ""},
		{"OT-0002", "Napkins", "Other", "pack"},
	})
	repo := NewItemRepository(store, c, "Items", "Retired")

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, 2, items[0].Row)
	assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("1250.50")))
	assert.True(t, items[0].Quantity.IsZero())
	assert.True(t, items[0].Value.IsZero())
	assert.Equal(t, 3, items[0].ShelfLifeDays)

	assert.Equal(t, 4, items[1].Row, "row numbers follow the sheet, blank rows included")
	assert.True(t, items[1].MinStock.IsZero())
}

func TestItemRepo_ListServesFromCacheUntilInvalidated(t *testing.T) {
	store, c := newStores()
	store.Seed("Items", [][]string{ItemHeaders, {"MT-0001", "Pork belly"}})
	repo := NewItemRepository(store, c, "Items", "Retired")
	ctx := context.Background()

	_, err := repo.List(ctx)
	require.NoError(t, err)
	_, err = repo.Append(ctx, model.Item{Code: "MT-0002", Name: "Beef"})
	require.NoError(t, err)

	items, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1, "writes do not invalidate on their own")
	assert.Equal(t, 1, store.Calls("ReadAllRows"))

	require.NoError(t, repo.Invalidate(ctx))
	items, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestItemRepo_UpdateLedgerWritesOneBlock(t *testing.T) {
	store, c := newStores()
	store.Seed("Items", [][]string{ItemHeaders, {"MT-0001", "Pork belly", "Meat", "kg", "100", "5", "0", "normal", "0", "3"}})
	repo := NewItemRepository(store, c, "Items", "Retired")
	ctx := context.Background()

	require.NoError(t, repo.UpdateLedger(ctx, 2, decimal.NewFromInt(4), model.StatusNeedsRestock, decimal.NewFromInt(400)))
	assert.Equal(t, 1, store.Calls("WriteCells"))

	rows, err := store.ReadAllRows(ctx, "Items")
	require.NoError(t, err)
	assert.Equal(t, []string{"4", model.StatusNeedsRestock, "400"}, rows[1][6:9])
}

func TestTransactionRepo_SkipsTemplateAndEmptyRows(t *testing.T) {
	store, c := newStores()
	store.Seed("RP-PO", [][]string{
		TransactionHeaders,
		{"FALSE", "PO-00001", "01/03/25", "MT-0001", templateRowName, "in", "5"},
		{"FALSE", "", "", "", "", "", ""},
		{"true", "PO-00003", "02/03/25", "MT-0001", "Pork belly", "in", "10", "3", "05/03/25", "3", "somchai"},
		{"FALSE", "", "03/03/25", "MT-0001", "Pork belly", "out", "2"},
	})
	repo := NewTransactionRepository(store, c, "RP-PO")

	txs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, 4, txs[0].Row)
	assert.True(t, txs[0].Approved)
	assert.Equal(t, "somchai", txs[0].Requester)
	assert.Equal(t, 5, txs[1].Row)
	assert.False(t, txs[1].Approved)
}

func TestTransactionRepo_AppendAssignsOrder(t *testing.T) {
	store, c := newStores()
	repo := NewTransactionRepository(store, c, "RP-PO")
	ctx := context.Background()
	require.NoError(t, repo.EnsureSchema(ctx))

	row, err := repo.Append(ctx, model.Transaction{
		Date: "01/03/25", ItemCode: "MT-0001", ItemName: "Pork belly",
		Type: model.MovementIn, Quantity: decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, row)
	assert.Equal(t, 1, store.Calls("AppendRow"))

	order, err := repo.OrderAt(ctx, row)
	require.NoError(t, err)
	assert.Equal(t, "PO-00001", order)

	code, err := repo.ItemCodeAt(ctx, row)
	require.NoError(t, err)
	assert.Equal(t, "MT-0001", code)

	require.NoError(t, repo.SetApproved(ctx, row, true))
	require.NoError(t, repo.Invalidate(ctx))
	txs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Approved)
}

func TestItemRepo_RetiredCodes(t *testing.T) {
	store, c := newStores()
	repo := NewItemRepository(store, c, "Items", "Retired")
	ctx := context.Background()
	require.NoError(t, repo.EnsureSchema(ctx))

	codes, err := repo.RetiredCodes(ctx)
	require.NoError(t, err)
	assert.Empty(t, codes)

	require.NoError(t, repo.Retire(ctx, "MT-0001", "01/03/25", "somchai"))
	codes, err = repo.RetiredCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"MT-0001"}, codes)
}

func TestItemRepo_WorkbookKeepsTextAndExactQuantities(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stock.xlsx")
	opts := StoreOptions("Items", "RP-PO")

	wb, err := sheet.OpenWorkbook(path, opts...)
	require.NoError(t, err)
	repo := NewItemRepository(wb, cache.NewMemory(0), "Items", "Retired")
	require.NoError(t, repo.EnsureSchema(ctx))

	qty := decimal.RequireFromString("12345678901234567.25")
	_, err = repo.Append(ctx, model.Item{
		Code: "OT-0001", Name: "1e3", Category: "Other", Unit: "0012",
		UnitPrice: decimal.RequireFromString("0.10"), Quantity: qty, Value: qty,
	})
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	reopened, err := sheet.OpenWorkbook(path, opts...)
	require.NoError(t, err)
	defer reopened.Close()
	items, err := NewItemRepository(reopened, cache.NewMemory(0), "Items", "Retired").List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "1e3", items[0].Name)
	assert.Equal(t, "0012", items[0].Unit)
	assert.True(t, items[0].Quantity.Equal(qty), "got %s", items[0].Quantity)
	assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("0.1")))
}

func TestTransactionRepo_WorkbookApprovalFlagRoundTrips(t *testing.T) {
	ctx := context.Background()
	wb, err := sheet.OpenWorkbook(filepath.Join(t.TempDir(), "stock.xlsx"), StoreOptions("Items", "RP-PO")...)
	require.NoError(t, err)
	defer wb.Close()
	repo := NewTransactionRepository(wb, cache.NewMemory(0), "RP-PO")
	require.NoError(t, repo.EnsureSchema(ctx))

	row, err := repo.Append(ctx, model.Transaction{
		Approved: false, Date: "15/10/26", ItemCode: "MT-0001", ItemName: "Pork belly",
		Type: model.MovementIn, Quantity: decimal.NewFromInt(4), Requester: "007",
	})
	require.NoError(t, err)
	require.NoError(t, repo.SetApproved(ctx, row, true))

	txs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Approved)
	assert.Equal(t, "PO-00001", txs[0].Order)
	assert.Equal(t, "15/10/26", txs[0].Date)
	assert.Equal(t, "007", txs[0].Requester)
}
