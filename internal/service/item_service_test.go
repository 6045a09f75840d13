package service

import (
	"context"
	"errors"
	"testing"

	"sukiism/internal/model"
	"sukiism/internal/sheet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func porkBelly(qty string) AddItemInput {
	return AddItemInput{
		Name: "Pork belly", Category: CategoryMeat, Unit: "kg",
		UnitPrice: dec("120"), MinStock: dec("10"), Quantity: dec(qty), ShelfLifeDays: 3,
	}
}

// ── Add ──────────────────────────────────────────────────────────────────────

func TestAdd_WithoutOpeningStock(t *testing.T) {
	f := newFixture(t)
	code, err := f.itemSvc.Add(context.Background(), porkBelly("0"), "somchai")
	require.NoError(t, err)
	assert.Equal(t, "MT-0001", code)

	it := f.item(t, code)
	assert.True(t, it.Quantity.IsZero())
	assert.Equal(t, model.StatusNeedsRestock, it.Status)
	assert.Equal(t, 3, it.ShelfLifeDays)

	txs, err := f.recorder.List(context.Background(), TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.Equal(t, []string{model.AuditItemCreated + ":MT-0001"}, f.audit.actions)
}

func TestAdd_OpeningStockGoesThroughLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code, err := f.itemSvc.Add(ctx, porkBelly("12"), "somchai")
	require.NoError(t, err)

	txs, err := f.recorder.List(ctx, TransactionFilter{ItemCode: code})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Approved)
	assert.Equal(t, model.MovementIn, txs[0].Type)

	// A later recompute keeps the opening stock
	rc, err := f.ledger.Recompute(ctx, code)
	require.NoError(t, err)
	assert.True(t, rc.Item.Quantity.Equal(dec("12")))
	assert.True(t, rc.Item.Value.Equal(dec("1440")))
	assert.Equal(t, model.StatusNormal, rc.Item.Status)
}

func TestAdd_FailedOpeningStockLeavesConsistentRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.FailAppendTo(txTable, sheet.ErrUnavailable)

	code, err := f.itemSvc.Add(ctx, porkBelly("12"), "somchai")
	require.ErrorIs(t, err, sheet.ErrUnavailable)
	assert.Equal(t, "MT-0001", code)

	it := f.item(t, code)
	assert.True(t, it.Quantity.IsZero(), "no quantity without a ledger row behind it")
	assert.True(t, it.Value.IsZero())
	assert.Equal(t, model.StatusNeedsRestock, it.Status)

	rc, err := f.ledger.Recompute(ctx, code)
	require.NoError(t, err)
	assert.True(t, rc.Item.Quantity.Equal(it.Quantity), "recompute agrees with the stored row")
	assert.Equal(t, it.Status, rc.Item.Status)
}

func TestAdd_Validation(t *testing.T) {
	f := newFixture(t)
	bad := []AddItemInput{
		{Name: "  ", Category: CategoryMeat},
		{Name: "x", UnitPrice: dec("-1")},
		{Name: "x", MinStock: dec("-1")},
		{Name: "x", Quantity: dec("-1")},
		{Name: "x", ShelfLifeDays: -1},
	}
	for _, in := range bad {
		_, err := f.itemSvc.Add(context.Background(), in, "somchai")
		assert.True(t, errors.Is(err, ErrValidation), "%+v: %v", in, err)
	}
	assert.Equal(t, 0, f.store.Calls("AppendRow"))
}

// ── Delete ───────────────────────────────────────────────────────────────────

func TestDelete_CodeIsNeverReissued(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code, err := f.itemSvc.Add(ctx, porkBelly("5"), "somchai")
	require.NoError(t, err)
	require.Equal(t, "MT-0001", code)

	require.NoError(t, f.itemSvc.Delete(ctx, code, "manager"))
	_, err = f.itemSvc.Get(ctx, code)
	assert.True(t, errors.Is(err, ErrItemNotFound))

	next, err := f.itemSvc.Add(ctx, porkBelly("0"), "somchai")
	require.NoError(t, err)
	assert.Equal(t, "MT-0002", next)

	// History of the deleted code is retained
	txs, err := f.recorder.List(ctx, TransactionFilter{ItemCode: "MT-0001"})
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestDelete_CodeWithoutHistoryIsNeverReissued(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code, err := f.itemSvc.Add(ctx, porkBelly("0"), "somchai")
	require.NoError(t, err)
	require.NoError(t, f.itemSvc.Delete(ctx, code, "manager"))

	next, err := f.itemSvc.Add(ctx, porkBelly("0"), "somchai")
	require.NoError(t, err)
	assert.Equal(t, "MT-0002", next)
}

func TestDelete_ShiftsRowsAndKeepsLookupsCorrect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, err := f.itemSvc.Add(ctx, porkBelly("0"), "somchai")
	require.NoError(t, err)
	second, err := f.itemSvc.Add(ctx, porkBelly("0"), "somchai")
	require.NoError(t, err)

	require.NoError(t, f.itemSvc.Delete(ctx, first, "manager"))

	// second moved up a row; an update must land on it
	upd := UpdateItemInput{Name: "Pork shoulder", Category: CategoryMeat, Unit: "kg", UnitPrice: dec("90"), MinStock: dec("0")}
	it, err := f.itemSvc.Update(ctx, second, upd, "manager")
	require.NoError(t, err)
	assert.Equal(t, 2, it.Row)
	assert.Equal(t, "Pork shoulder", f.item(t, second).Name)
}

func TestDelete_Unknown(t *testing.T) {
	f := newFixture(t)
	err := f.itemSvc.Delete(context.Background(), "MT-0404", "manager")
	assert.True(t, errors.Is(err, ErrItemNotFound))
}

// ── Update ───────────────────────────────────────────────────────────────────

func TestUpdate_RecomputesStatusAndValue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code, err := f.itemSvc.Add(ctx, porkBelly("12"), "somchai")
	require.NoError(t, err)

	upd := UpdateItemInput{
		Name: "Pork belly (skin on)", Category: CategoryMeat, Unit: "kg",
		UnitPrice: dec("150"), MinStock: dec("20"), ShelfLifeDays: 2,
	}
	it, err := f.itemSvc.Update(ctx, code, upd, "manager")
	require.NoError(t, err)
	assert.Equal(t, code, it.Code)
	assert.True(t, it.Value.Equal(dec("1800")))
	assert.Equal(t, model.StatusNeedsRestock, it.Status)

	stored := f.item(t, code)
	assert.Equal(t, "Pork belly (skin on)", stored.Name)
	assert.Equal(t, 2, stored.ShelfLifeDays)
	assert.True(t, stored.Quantity.Equal(dec("12")), "quantity is not editable")
}

func TestUpdate_Unknown(t *testing.T) {
	f := newFixture(t)
	_, err := f.itemSvc.Update(context.Background(), "MT-0404", UpdateItemInput{Name: "x"}, "manager")
	assert.True(t, errors.Is(err, ErrItemNotFound))
}

// ── Dashboard ────────────────────────────────────────────────────────────────

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.itemSvc.Add(ctx, porkBelly("12"), "somchai")
	require.NoError(t, err)
	_, err = f.itemSvc.Add(ctx, AddItemInput{
		Name: "Shrimp", Category: CategorySeafood, Unit: "kg",
		UnitPrice: dec("250"), MinStock: dec("5"), Quantity: dec("2"),
	}, "somchai")
	require.NoError(t, err)

	d, err := f.itemSvc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, d.ItemCount)
	assert.Equal(t, 1, d.RestockCount)
	assert.True(t, d.TotalValue.Equal(dec("1940")))
	assert.Equal(t, 2, d.TodayTransactions)
	require.Len(t, d.Restock, 1)
	assert.Equal(t, "SP-0001", d.Restock[0].Code)
}

func TestRefresh_DropsCaches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.itemSvc.List(ctx)
	require.NoError(t, err)
	before := f.store.Calls("ReadAllRows")

	// Out-of-band edit of the sheet
	f.seedItem(t, "MT-0001", "Pork belly", 1, 1, "1")
	require.NoError(t, f.itemSvc.Refresh(ctx))

	items, err := f.itemSvc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, before+1, f.store.Calls("ReadAllRows"))
}
