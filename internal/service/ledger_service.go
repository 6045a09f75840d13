package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"sukiism/internal/model"
	"sukiism/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// LedgerService keeps the derived stock columns of every item in line with
// the transaction history and hands out item codes.
type LedgerService interface {
	// Recompute folds the approved transactions of itemCode into the item's
	// Quantity, Status and Value. A missing item yields (nil, nil).
	Recompute(ctx context.Context, itemCode string) (*Recomputation, error)
	AllocateCode(ctx context.Context, category string) (string, error)
	RestockReport(ctx context.Context) ([]model.RestockEntry, error)
}

// Recomputation is the item as persisted by Recompute together with the
// status it had before.
type Recomputation struct {
	Item           model.Item
	PreviousStatus string
}

// Crossed reports whether the item just dropped below its threshold.
func (r *Recomputation) Crossed() bool {
	return r.Item.Status == model.StatusNeedsRestock && r.PreviousStatus != model.StatusNeedsRestock
}

// RestockNotifier is told when an item crosses below its minimum stock.
type RestockNotifier interface {
	NotifyRestock(ctx context.Context, entry model.RestockEntry) error
}

type ledgerService struct {
	items    repository.ItemRepository
	txs      repository.TransactionRepository
	notifier RestockNotifier
}

// NewLedgerService builds the ledger. notifier may be nil.
func NewLedgerService(items repository.ItemRepository, txs repository.TransactionRepository, notifier RestockNotifier) LedgerService {
	return &ledgerService{items: items, txs: txs, notifier: notifier}
}

// ── Recompute ────────────────────────────────────────────────────────────────

func (s *ledgerService) Recompute(ctx context.Context, itemCode string) (*Recomputation, error) {
	// Always fold over a fresh read of both tables
	if err := invalidateAll(ctx, s.items, s.txs); err != nil {
		return nil, err
	}
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	item, ok := findItem(items, itemCode)
	if !ok {
		log.Debug().Str("item_code", itemCode).Msg("recompute: item not found, skipping")
		return nil, nil
	}
	txs, err := s.txs.List(ctx)
	if err != nil {
		return nil, err
	}

	qty := ApprovedBalance(txs, itemCode)
	prev := item.Status
	item.Quantity = qty
	item.Status = model.StatusFor(qty, item.MinStock)
	item.Value = qty.Mul(item.UnitPrice)

	if err := s.items.UpdateLedger(ctx, item.Row, item.Quantity, item.Status, item.Value); err != nil {
		return nil, err
	}
	if err := s.items.Invalidate(ctx); err != nil {
		return nil, err
	}

	rc := &Recomputation{Item: item, PreviousStatus: prev}
	log.Info().
		Str("item_code", itemCode).
		Str("quantity", qty.String()).
		Str("status", item.Status).
		Msg("ledger recomputed")

	if rc.Crossed() && s.notifier != nil {
		entry := model.RestockEntry{Item: item, Needed: item.MinStock.Sub(item.Quantity)}
		// Alert delivery must never fail the stock write
		if err := s.notifier.NotifyRestock(ctx, entry); err != nil {
			log.Warn().Err(err).Str("item_code", itemCode).Msg("restock alert not queued")
		}
	}
	return rc, nil
}

// ApprovedBalance is Σ approved in − Σ approved out for itemCode.
func ApprovedBalance(txs []model.Transaction, itemCode string) decimal.Decimal {
	qty := decimal.Zero
	for _, tx := range txs {
		if !tx.Approved || tx.ItemCode != itemCode {
			continue
		}
		switch tx.Type {
		case model.MovementIn:
			qty = qty.Add(tx.Quantity)
		case model.MovementOut:
			qty = qty.Sub(tx.Quantity)
		}
	}
	return qty
}

// ── Code allocation ──────────────────────────────────────────────────────────

func (s *ledgerService) AllocateCode(ctx context.Context, category string) (string, error) {
	prefix := PrefixFor(category)

	items, err := s.items.List(ctx)
	if err != nil {
		return "", err
	}
	txs, err := s.txs.List(ctx)
	if err != nil {
		return "", err
	}
	retired, err := s.items.RetiredCodes(ctx)
	if err != nil {
		return "", err
	}

	maxSeen := 0
	see := func(code string) {
		if n, ok := codeSuffix(code, prefix); ok && n > maxSeen {
			maxSeen = n
		}
	}
	for _, it := range items {
		see(it.Code)
	}
	for _, tx := range txs {
		see(tx.ItemCode)
	}
	for _, c := range retired {
		see(c)
	}
	return FormatCode(prefix, maxSeen+1), nil
}

// FormatCode renders prefix and sequence number as an item code.
func FormatCode(prefix string, n int) string {
	return fmt.Sprintf("%s-%04d", prefix, n)
}

// codeSuffix extracts the number of a "<prefix>-<n>" code. Anything after a
// second dash is ignored; a non-numeric suffix is rejected.
func codeSuffix(code, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(code, prefix+"-")
	if !ok {
		return 0, false
	}
	num, _, _ := strings.Cut(rest, "-")
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ── Restock report ───────────────────────────────────────────────────────────

func (s *ledgerService) RestockReport(ctx context.Context) ([]model.RestockEntry, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	return RestockEntries(items), nil
}

// RestockEntries returns the items strictly below their minimum with the
// shortfall, in sheet order.
func RestockEntries(items []model.Item) []model.RestockEntry {
	out := make([]model.RestockEntry, 0)
	for _, it := range items {
		if it.Quantity.LessThan(it.MinStock) {
			out = append(out, model.RestockEntry{Item: it, Needed: it.MinStock.Sub(it.Quantity)})
		}
	}
	return out
}

// ── helpers ──────────────────────────────────────────────────────────────────

func findItem(items []model.Item, code string) (model.Item, bool) {
	for _, it := range items {
		if it.Code == code {
			return it, true
		}
	}
	return model.Item{}, false
}

func invalidateAll(ctx context.Context, items repository.ItemRepository, txs repository.TransactionRepository) error {
	if err := items.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate items cache: %w", err)
	}
	if err := txs.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate transactions cache: %w", err)
	}
	return nil
}
