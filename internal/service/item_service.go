package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sukiism/internal/model"
	"sukiism/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// AddItemInput describes a new item. Quantity is the opening stock.
type AddItemInput struct {
	Name          string
	Category      string
	Unit          string
	UnitPrice     decimal.Decimal
	MinStock      decimal.Decimal
	Quantity      decimal.Decimal
	ShelfLifeDays int
}

// UpdateItemInput replaces the editable fields of an item. The code and the
// ledger-derived columns cannot be edited.
type UpdateItemInput struct {
	Name          string
	Category      string
	Unit          string
	UnitPrice     decimal.Decimal
	MinStock      decimal.Decimal
	ShelfLifeDays int
}

// Dashboard summarises the current stock.
type Dashboard struct {
	ItemCount         int
	RestockCount      int
	TotalValue        decimal.Decimal
	TodayTransactions int
	Restock           []model.RestockEntry
}

// ItemService manages the items table. Stock columns are only ever written
// by the ledger.
type ItemService interface {
	Add(ctx context.Context, in AddItemInput, actor string) (string, error)
	Get(ctx context.Context, code string) (*model.Item, error)
	List(ctx context.Context) ([]model.Item, error)
	Update(ctx context.Context, code string, in UpdateItemInput, actor string) (*model.Item, error)
	Delete(ctx context.Context, code, actor string) error
	Dashboard(ctx context.Context) (*Dashboard, error)
	// Refresh drops both cached reads.
	Refresh(ctx context.Context) error
}

type itemService struct {
	items  repository.ItemRepository
	txs    repository.TransactionRepository
	ledger LedgerService
	txSvc  TransactionService
	audit  Auditor
	now    func() time.Time
}

func NewItemService(
	items repository.ItemRepository,
	txs repository.TransactionRepository,
	ledger LedgerService,
	txSvc TransactionService,
	audit Auditor,
) ItemService {
	return &itemService{
		items:  items,
		txs:    txs,
		ledger: ledger,
		txSvc:  txSvc,
		audit:  auditorOrNop(audit),
		now:    time.Now,
	}
}

// ── Add ──────────────────────────────────────────────────────────────────────

func (s *itemService) Add(ctx context.Context, in AddItemInput, actor string) (string, error) {
	if err := validateDetails(in.Name, in.UnitPrice, in.MinStock, in.ShelfLifeDays); err != nil {
		return "", err
	}
	if in.Quantity.IsNegative() {
		return "", fmt.Errorf("%w: opening quantity cannot be negative", ErrValidation)
	}

	code, err := s.ledger.AllocateCode(ctx, in.Category)
	if err != nil {
		return "", err
	}
	// The row starts empty; opening stock only arrives through the ledger, so
	// a failed opening movement leaves a row that agrees with its history.
	item := model.Item{
		Code:          code,
		Name:          strings.TrimSpace(in.Name),
		Category:      in.Category,
		Unit:          in.Unit,
		UnitPrice:     in.UnitPrice,
		MinStock:      in.MinStock,
		Quantity:      decimal.Zero,
		Status:        model.StatusFor(decimal.Zero, in.MinStock),
		Value:         decimal.Zero,
		ShelfLifeDays: in.ShelfLifeDays,
	}
	if _, err := s.items.Append(ctx, item); err != nil {
		return "", err
	}
	if err := s.items.Invalidate(ctx); err != nil {
		return "", err
	}
	s.audit.Record(ctx, actor, model.AuditItemCreated, code, item.Name)

	if in.Quantity.IsPositive() {
		if _, err := s.txSvc.Record(ctx, RecordInput{
			ItemCode:      code,
			ItemName:      item.Name,
			Type:          model.MovementIn,
			Quantity:      in.Quantity,
			ShelfLifeDays: in.ShelfLifeDays,
			Requester:     actor,
			Approved:      true,
		}); err != nil {
			log.Error().Err(err).Str("item_code", code).Msg("opening stock transaction failed")
			return code, fmt.Errorf("item %s created but opening stock not recorded: %w", code, err)
		}
	}

	log.Info().Str("item_code", code).Str("category", in.Category).Msg("item added")
	return code, nil
}

func validateDetails(name string, price, minStock decimal.Decimal, shelfLife int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if price.IsNegative() {
		return fmt.Errorf("%w: unit price cannot be negative", ErrValidation)
	}
	if minStock.IsNegative() {
		return fmt.Errorf("%w: minimum stock cannot be negative", ErrValidation)
	}
	if shelfLife < 0 {
		return fmt.Errorf("%w: shelf life cannot be negative", ErrValidation)
	}
	return nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *itemService) Get(ctx context.Context, code string) (*model.Item, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	it, ok := findItem(items, code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, code)
	}
	return &it, nil
}

func (s *itemService) List(ctx context.Context) ([]model.Item, error) {
	return s.items.List(ctx)
}

func (s *itemService) Dashboard(ctx context.Context) (*Dashboard, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	today, err := s.txSvc.TodayCount(ctx)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Value)
	}
	restock := RestockEntries(items)
	return &Dashboard{
		ItemCount:         len(items),
		RestockCount:      len(restock),
		TotalValue:        total,
		TodayTransactions: today,
		Restock:           restock,
	}, nil
}

func (s *itemService) Refresh(ctx context.Context) error {
	return invalidateAll(ctx, s.items, s.txs)
}

// ── Update / Delete ──────────────────────────────────────────────────────────

// lookupFresh resolves code against an uncached read so the row number used
// by a write is current.
func (s *itemService) lookupFresh(ctx context.Context, code string) (model.Item, error) {
	if err := s.items.Invalidate(ctx); err != nil {
		return model.Item{}, err
	}
	items, err := s.items.List(ctx)
	if err != nil {
		return model.Item{}, err
	}
	it, ok := findItem(items, code)
	if !ok {
		return model.Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, code)
	}
	return it, nil
}

func (s *itemService) Update(ctx context.Context, code string, in UpdateItemInput, actor string) (*model.Item, error) {
	if err := validateDetails(in.Name, in.UnitPrice, in.MinStock, in.ShelfLifeDays); err != nil {
		return nil, err
	}
	it, err := s.lookupFresh(ctx, code)
	if err != nil {
		return nil, err
	}

	it.Name = strings.TrimSpace(in.Name)
	it.Category = in.Category
	it.Unit = in.Unit
	it.UnitPrice = in.UnitPrice
	it.MinStock = in.MinStock
	it.ShelfLifeDays = in.ShelfLifeDays
	if err := s.items.UpdateDetails(ctx, it); err != nil {
		return nil, err
	}
	if err := s.items.Invalidate(ctx); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor, model.AuditItemUpdated, code, it.Name)

	// Price or threshold may have changed Status and Value
	rc, err := s.ledger.Recompute(ctx, code)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, code)
	}
	return &rc.Item, nil
}

func (s *itemService) Delete(ctx context.Context, code, actor string) error {
	it, err := s.lookupFresh(ctx, code)
	if err != nil {
		return err
	}
	// Retire before removing the row so a failure in between never frees the code
	if err := s.items.Retire(ctx, code, s.now().Format(model.DateLayout), actor); err != nil {
		return err
	}
	if err := s.items.Delete(ctx, it.Row); err != nil {
		return err
	}
	if err := s.items.Invalidate(ctx); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, model.AuditItemDeleted, code, it.Name)
	log.Info().Str("item_code", code).Int("row", it.Row).Msg("item deleted")
	return nil
}
