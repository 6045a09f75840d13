package repository

import (
	"context"
	"fmt"
	"strings"

	"sukiism/internal/cache"
	"sukiism/internal/model"
	"sukiism/internal/sheet"
)

// TransactionRepository maps the append-only ledger table.
type TransactionRepository interface {
	EnsureSchema(ctx context.Context) error
	List(ctx context.Context) ([]model.Transaction, error)
	// Append writes the whole row, approval flag included, in one call.
	Append(ctx context.Context, tx model.Transaction) (int, error)
	SetApproved(ctx context.Context, row int, approved bool) error
	ItemCodeAt(ctx context.Context, row int) (string, error)
	OrderAt(ctx context.Context, row int) (string, error)
	Invalidate(ctx context.Context) error
}

type transactionRepo struct {
	store sheet.Store
	cache cache.Cache
	table string
}

func NewTransactionRepository(store sheet.Store, c cache.Cache, table string) TransactionRepository {
	return &transactionRepo{store: store, cache: c, table: table}
}

func (r *transactionRepo) EnsureSchema(ctx context.Context) error {
	return r.store.EnsureHeaders(ctx, r.table, TransactionHeaders)
}

func (r *transactionRepo) List(ctx context.Context) ([]model.Transaction, error) {
	var txs []model.Transaction
	if hit, err := r.cache.Load(ctx, cache.KeyTransactions, &txs); err == nil && hit {
		return txs, nil
	}

	rows, err := r.store.ReadAllRows(ctx, r.table)
	if err != nil {
		return nil, fmt.Errorf("read transactions: %w", err)
	}
	txs = decodeTransactions(rows)
	_ = r.cache.Store(ctx, cache.KeyTransactions, txs)
	return txs, nil
}

func decodeTransactions(rows [][]string) []model.Transaction {
	txs := make([]model.Transaction, 0, len(rows))
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		order := cell(row, txColOrder)
		code := cell(row, txColCode)
		name := cell(row, txColName)
		if order == "" && code == "" {
			continue
		}
		if name == templateRowName {
			continue
		}
		txs = append(txs, model.Transaction{
			Row:           i + 1,
			Approved:      strings.EqualFold(cell(row, txColApprove), "TRUE"),
			Order:         order,
			Date:          cell(row, txColDate),
			ItemCode:      code,
			ItemName:      name,
			Type:          cell(row, txColType),
			Quantity:      parseDecimal(cell(row, txColQuantity)),
			ShelfLifeDays: parseInt(cell(row, txColShelfLife)),
			Expiry:        cell(row, txColExpiry),
			RemainingDays: parseInt(cell(row, txColRemaining)),
			Requester:     cell(row, txColRequester),
		})
	}
	return txs
}

func (r *transactionRepo) Append(ctx context.Context, tx model.Transaction) (int, error) {
	row := []string{
		formatBool(tx.Approved), tx.Order, tx.Date, tx.ItemCode, tx.ItemName,
		tx.Type, tx.Quantity.String(), itoa(tx.ShelfLifeDays), tx.Expiry,
		itoa(tx.RemainingDays), tx.Requester,
	}
	n, err := r.store.AppendRow(ctx, r.table, row)
	if err != nil {
		return 0, fmt.Errorf("append transaction for %s: %w", tx.ItemCode, err)
	}
	return n, nil
}

func (r *transactionRepo) SetApproved(ctx context.Context, row int, approved bool) error {
	if err := r.store.WriteCells(ctx, r.table, sheet.RowRange("A", "A", row), [][]string{{formatBool(approved)}}); err != nil {
		return fmt.Errorf("approve transaction row %d: %w", row, err)
	}
	return nil
}

func (r *transactionRepo) ItemCodeAt(ctx context.Context, row int) (string, error) {
	v, err := r.store.ReadCell(ctx, r.table, row, txColCode)
	if err != nil {
		return "", fmt.Errorf("read transaction row %d: %w", row, err)
	}
	return strings.TrimSpace(v), nil
}

func (r *transactionRepo) OrderAt(ctx context.Context, row int) (string, error) {
	v, err := r.store.ReadCell(ctx, r.table, row, txColOrder)
	if err != nil {
		return "", fmt.Errorf("read order row %d: %w", row, err)
	}
	return strings.TrimSpace(v), nil
}

func (r *transactionRepo) Invalidate(ctx context.Context) error {
	return r.cache.Invalidate(ctx, cache.KeyTransactions)
}
