package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tradepro/internal/apperrors"
	"tradepro/internal/models"
)

// GetWallet loads the wallet row (locked on Postgres) without its ledger.
func (q *Queries) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	var w models.Wallet
	err := q.get(ctx, &w, `SELECT user_id, balance, currency, created_at, updated_at FROM wallets WHERE user_id = ?`+q.forUpdate, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrWalletNotFound
	}
	if err != nil {
		return nil, mapErr(err)
	}
	w.Transactions = []models.LedgerEntry{}
	return &w, nil
}

// CreateWallet inserts a new wallet row with its entries. The wallet's balance must already
// equal the sum of entries.
func (q *Queries) CreateWallet(ctx context.Context, w *models.Wallet) error {
	_, err := q.exec(ctx, `INSERT INTO wallets (user_id, balance, currency, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		w.UserID, w.Balance, w.Currency, w.CreatedAt, w.UpdatedAt)
	if err = mapErr(err); errors.Is(err, apperrors.ErrDuplicateEntry) {
		return apperrors.ErrWalletAlreadyInitialized
	}
	if err != nil {
		return err
	}
	for i := range w.Transactions {
		if err := q.appendEntry(ctx, &w.Transactions[i]); err != nil {
			return err
		}
	}
	return nil
}

// ApplyEntry persists a balance change together with the ledger entry that caused it.
func (q *Queries) ApplyEntry(ctx context.Context, w *models.Wallet, e *models.LedgerEntry) error {
	res, err := q.exec(ctx, `UPDATE wallets SET balance = ?, updated_at = ? WHERE user_id = ?`, w.Balance, w.UpdatedAt, w.UserID)
	if err := affectedOne(res, err, apperrors.ErrWalletNotFound); err != nil {
		return err
	}
	return q.appendEntry(ctx, e)
}

func (q *Queries) appendEntry(ctx context.Context, e *models.LedgerEntry) error {
	if err := q.get(ctx, &e.Seq, `SELECT COALESCE(MAX(seq), 0) + 1 FROM ledger_entries WHERE user_id = ?`, e.UserID); err != nil {
		return mapErr(fmt.Errorf("next ledger seq: %w", err))
	}
	_, err := q.exec(ctx, `INSERT INTO ledger_entries (id, user_id, seq, entry_type, amount, description, symbol, quantity,
		price_per_share, payment_id, order_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Seq, e.Type, e.Amount, e.Description, e.Symbol, e.Quantity,
		e.PricePerShare, e.PaymentID, e.OrderID, e.CreatedAt)
	return mapErr(err)
}

// LedgerEntries returns the newest entries first. limit <= 0 returns all of them.
func (q *Queries) LedgerEntries(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error) {
	entries := []models.LedgerEntry{}
	query := `SELECT id, user_id, seq, entry_type, amount, description, symbol, quantity, price_per_share,
		payment_id, order_id, created_at FROM ledger_entries WHERE user_id = ? ORDER BY seq DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	err := q.selectAll(ctx, &entries, query, args...)
	return entries, mapErr(err)
}

func (q *Queries) LedgerSum(ctx context.Context, userID string) (models.Money, error) {
	var sum int64
	err := q.get(ctx, &sum, `SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE user_id = ?`, userID)
	return models.Money(sum), mapErr(err)
}
