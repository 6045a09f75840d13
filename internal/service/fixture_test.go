package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"sukiism/internal/cache"
	"sukiism/internal/model"
	"sukiism/internal/repository"
	"sukiism/internal/sheet"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	itemsTable   = "Items"
	txTable      = "RP-PO"
	retiredTable = "Retired"
)

// ── Recording notifier stub ──────────────────────────────────────────────────

type stubNotifier struct {
	mu      sync.Mutex
	entries []model.RestockEntry
	err     error
}

func (n *stubNotifier) NotifyRestock(_ context.Context, e model.RestockEntry) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = append(n.entries, e)
	return n.err
}

// ── Recording auditor stub ───────────────────────────────────────────────────

type stubAuditor struct {
	actions []string
}

func (a *stubAuditor) Record(_ context.Context, _, action, code, _ string) {
	a.actions = append(a.actions, action+":"+code)
}

// ── Fixture ──────────────────────────────────────────────────────────────────

type fixture struct {
	store    *sheet.Memory
	cache    *cache.Memory
	items    repository.ItemRepository
	txs      repository.TransactionRepository
	notifier *stubNotifier
	audit    *stubAuditor
	ledger   LedgerService
	recorder *transactionService
	itemSvc  *itemService
}

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, sheet.NewMemory(sheet.WithOrderSequence(txTable, 2, "PO-")), cache.NewMemory(time.Minute))
}

func newFixtureOn(t *testing.T, store *sheet.Memory, c *cache.Memory) *fixture {
	t.Helper()
	items := repository.NewItemRepository(store, c, itemsTable, retiredTable)
	txs := repository.NewTransactionRepository(store, c, txTable)

	ctx := context.Background()
	require.NoError(t, items.EnsureSchema(ctx))
	require.NoError(t, txs.EnsureSchema(ctx))

	notifier := &stubNotifier{}
	audit := &stubAuditor{}
	ledger := NewLedgerService(items, txs, notifier)
	recorder := NewTransactionService(items, txs, ledger, audit).(*transactionService)
	recorder.now = func() time.Time { return fixedNow }
	itemSvc := NewItemService(items, txs, ledger, recorder, audit).(*itemService)
	itemSvc.now = func() time.Time { return fixedNow }

	return &fixture{
		store:    store,
		cache:    c,
		items:    items,
		txs:      txs,
		notifier: notifier,
		audit:    audit,
		ledger:   ledger,
		recorder: recorder,
		itemSvc:  itemSvc,
	}
}

// seedItem appends an item row directly, bypassing the service.
func (f *fixture) seedItem(t *testing.T, code, name string, minStock, qty int64, price string) {
	t.Helper()
	q := decimal.NewFromInt(qty)
	p := decimal.RequireFromString(price)
	_, err := f.items.Append(context.Background(), model.Item{
		Code: code, Name: name, Category: CategoryMeat, Unit: "kg",
		UnitPrice: p, MinStock: decimal.NewFromInt(minStock), Quantity: q,
		Status: model.StatusFor(q, decimal.NewFromInt(minStock)), Value: q.Mul(p),
	})
	require.NoError(t, err)
	require.NoError(t, f.items.Invalidate(context.Background()))
}

// seedTx appends a ledger row directly, bypassing validation.
func (f *fixture) seedTx(t *testing.T, code, typ string, qty int64, approved bool) int {
	t.Helper()
	row, err := f.txs.Append(context.Background(), model.Transaction{
		Approved: approved, Date: fixedNow.Format(model.DateLayout),
		ItemCode: code, ItemName: code, Type: typ, Quantity: decimal.NewFromInt(qty),
	})
	require.NoError(t, err)
	require.NoError(t, f.txs.Invalidate(context.Background()))
	return row
}

func (f *fixture) item(t *testing.T, code string) model.Item {
	t.Helper()
	require.NoError(t, f.items.Invalidate(context.Background()))
	it, err := f.itemSvc.Get(context.Background(), code)
	require.NoError(t, err)
	return *it
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
