package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sukiism/internal/model"
	"sukiism/internal/repository"
	"sukiism/internal/sheet"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// RecordInput describes one stock movement. ItemName may be left empty; the
// item's current name is snapshotted then.
type RecordInput struct {
	ItemCode      string
	ItemName      string
	Type          string
	Quantity      decimal.Decimal
	ShelfLifeDays int
	Requester     string
	Approved      bool
}

// RecordResult identifies the appended ledger row.
type RecordResult struct {
	Order string
	Row   int
	// Item is the item after recomputation, nil if it vanished meanwhile.
	Item *model.Item
}

// TransactionFilter narrows List; zero fields match everything.
type TransactionFilter struct {
	Date     string // dd/mm/yy
	Type     string
	ItemCode string
}

// TransactionService appends stock movements and keeps items in sync.
type TransactionService interface {
	Record(ctx context.Context, in RecordInput) (*RecordResult, error)
	Approve(ctx context.Context, row int, actor string) (*model.Item, error)
	List(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	TodayCount(ctx context.Context) (int, error)
}

type transactionService struct {
	items  repository.ItemRepository
	txs    repository.TransactionRepository
	ledger LedgerService
	audit  Auditor
	now    func() time.Time
}

func NewTransactionService(
	items repository.ItemRepository,
	txs repository.TransactionRepository,
	ledger LedgerService,
	audit Auditor,
) TransactionService {
	return &transactionService{
		items:  items,
		txs:    txs,
		ledger: ledger,
		audit:  auditorOrNop(audit),
		now:    time.Now,
	}
}

// ── Record ───────────────────────────────────────────────────────────────────

func (s *transactionService) Record(ctx context.Context, in RecordInput) (*RecordResult, error) {
	item, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	name := in.ItemName
	if name == "" {
		name = item.Name
	}
	today := s.now()
	tx := model.Transaction{
		Approved:      in.Approved,
		Date:          today.Format(model.DateLayout),
		ItemCode:      in.ItemCode,
		ItemName:      name,
		Type:          in.Type,
		Quantity:      in.Quantity,
		ShelfLifeDays: in.ShelfLifeDays,
		Expiry:        today.AddDate(0, 0, in.ShelfLifeDays).Format(model.DateLayout),
		// Snapshot at write time; later reads never re-derive it.
		RemainingDays: in.ShelfLifeDays,
		Requester:     in.Requester,
	}

	row, err := s.txs.Append(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := invalidateAll(ctx, s.items, s.txs); err != nil {
		return nil, err
	}

	rc, err := s.ledger.Recompute(ctx, in.ItemCode)
	if err != nil {
		return nil, fmt.Errorf("recompute %s after row %d: %w", in.ItemCode, row, err)
	}

	order, err := s.txs.OrderAt(ctx, row)
	if err != nil {
		return nil, err
	}
	if order == "" {
		order = fmt.Sprintf("ROW-%d", row)
	}

	s.audit.Record(ctx, in.Requester, model.AuditTransactionCreated, in.ItemCode,
		fmt.Sprintf("%s %s %s (%s)", order, in.Type, in.Quantity.String(), approvalLabel(in.Approved)))
	log.Info().
		Str("order", order).
		Int("row", row).
		Str("item_code", in.ItemCode).
		Str("type", in.Type).
		Str("quantity", in.Quantity.String()).
		Msg("transaction recorded")

	res := &RecordResult{Order: order, Row: row}
	if rc != nil {
		res.Item = &rc.Item
	}
	return res, nil
}

// validate runs every check before anything is written.
func (s *transactionService) validate(ctx context.Context, in RecordInput) (model.Item, error) {
	if strings.TrimSpace(in.ItemCode) == "" {
		return model.Item{}, fmt.Errorf("%w: item code is required", ErrValidation)
	}
	if !in.Quantity.IsPositive() {
		return model.Item{}, fmt.Errorf("%w: quantity must be greater than zero", ErrValidation)
	}
	if in.Type != model.MovementIn && in.Type != model.MovementOut {
		return model.Item{}, fmt.Errorf("%w: type must be %q or %q", ErrValidation, model.MovementIn, model.MovementOut)
	}
	if in.ShelfLifeDays < 0 {
		return model.Item{}, fmt.Errorf("%w: shelf life cannot be negative", ErrValidation)
	}

	items, err := s.items.List(ctx)
	if err != nil {
		return model.Item{}, err
	}
	item, ok := findItem(items, in.ItemCode)
	if !ok {
		return model.Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, in.ItemCode)
	}
	if in.Type == model.MovementOut && in.Quantity.GreaterThan(item.Quantity) {
		return model.Item{}, fmt.Errorf("%w: %s has %s %s, requested %s",
			ErrInsufficientStock, item.Code, item.Quantity.String(), item.Unit, in.Quantity.String())
	}
	return item, nil
}

func approvalLabel(approved bool) string {
	if approved {
		return "approved"
	}
	return "pending"
}

// ── Approve ──────────────────────────────────────────────────────────────────

func (s *transactionService) Approve(ctx context.Context, row int, actor string) (*model.Item, error) {
	if row < 2 {
		return nil, fmt.Errorf("%w: row %d", ErrTransactionNotFound, row)
	}
	code, err := s.txs.ItemCodeAt(ctx, row)
	if errors.Is(err, sheet.ErrRowNotFound) || (err == nil && code == "") {
		return nil, fmt.Errorf("%w: row %d", ErrTransactionNotFound, row)
	}
	if err != nil {
		return nil, err
	}

	if err := s.txs.SetApproved(ctx, row, true); err != nil {
		return nil, err
	}
	rc, err := s.ledger.Recompute(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := invalidateAll(ctx, s.items, s.txs); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor, model.AuditTransactionApprove, code, fmt.Sprintf("row %d", row))
	if rc == nil {
		return nil, nil
	}
	return &rc.Item, nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *transactionService) List(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error) {
	txs, err := s.txs.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if filter.Date != "" && tx.Date != filter.Date {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		if filter.ItemCode != "" && tx.ItemCode != filter.ItemCode {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (s *transactionService) TodayCount(ctx context.Context) (int, error) {
	txs, err := s.List(ctx, TransactionFilter{Date: s.now().Format(model.DateLayout)})
	if err != nil {
		return 0, err
	}
	return len(txs), nil
}
