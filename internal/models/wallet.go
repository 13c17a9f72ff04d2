package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"tradepro/internal/apperrors"
)

// EntryType tags a wallet ledger entry.
type EntryType string

const (
	EntryDeposit       EntryType = "DEPOSIT"
	EntryWithdrawal    EntryType = "WITHDRAWAL"
	EntryStockPurchase EntryType = "STOCK_PURCHASE"
	EntryStockSale     EntryType = "STOCK_SALE"
	EntryDividend      EntryType = "DIVIDEND"
)

// LedgerEntry is one immutable line of a wallet's history. Amount is signed:
// debits are negative and credits positive.
type LedgerEntry struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"-"`
	Seq           int64     `db:"seq" json:"seq"`
	Type          EntryType `db:"entry_type" json:"type"`
	Amount        Money     `db:"amount" json:"amount"`
	Description   string    `db:"description" json:"description"`
	Symbol        string    `db:"symbol" json:"stockSymbol,omitempty"`
	Quantity      int64     `db:"quantity" json:"quantity,omitempty"`
	PricePerShare Money     `db:"price_per_share" json:"pricePerShare,omitempty"`
	PaymentID     string    `db:"payment_id" json:"paymentId,omitempty"`
	OrderID       string    `db:"order_id" json:"orderId,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"date"`
}

// TradeMeta links a purchase or sale entry to the trade that caused it.
type TradeMeta struct {
	Symbol        string
	Quantity      int64
	PricePerShare Money
}

// Wallet is a user's cash balance. The balance is authoritative and every change to it
// produces exactly one LedgerEntry, so Balance always equals the sum of the entries.
type Wallet struct {
	UserID       string        `db:"user_id" json:"-"`
	Balance      Money         `db:"balance" json:"balance"`
	Currency     string        `db:"currency" json:"currency"`
	CreatedAt    time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updatedAt"`
	Transactions []LedgerEntry `db:"-" json:"transactions"`
}

// NewWallet returns an empty wallet. Use Deposit to seed the opening balance.
func NewWallet(userID, currency string, now time.Time) *Wallet {
	return &Wallet{
		UserID:       userID,
		Currency:     currency,
		CreatedAt:    now,
		UpdatedAt:    now,
		Transactions: []LedgerEntry{},
	}
}

// Deposit credits amount as a DEPOSIT entry.
func (w *Wallet) Deposit(amount Money, description string, now time.Time) (LedgerEntry, error) {
	if amount <= 0 {
		return LedgerEntry{}, apperrors.ErrInvalidAmount
	}
	if _, ok := w.Balance.AddChecked(amount); !ok {
		return LedgerEntry{}, apperrors.ErrInvalidAmount
	}
	return w.apply(EntryDeposit, amount, description, TradeMeta{}, now), nil
}

// Withdraw debits amount as a WITHDRAWAL entry. The balance may not go negative.
func (w *Wallet) Withdraw(amount Money, description string, now time.Time) (LedgerEntry, error) {
	if amount <= 0 {
		return LedgerEntry{}, apperrors.ErrInvalidAmount
	}
	if amount > w.Balance {
		return LedgerEntry{}, apperrors.ErrInsufficientFunds
	}
	return w.apply(EntryWithdrawal, -amount, description, TradeMeta{}, now), nil
}

// Debit pays for a stock purchase.
func (w *Wallet) Debit(amount Money, meta TradeMeta, now time.Time) (LedgerEntry, error) {
	if amount <= 0 {
		return LedgerEntry{}, apperrors.ErrInvalidAmount
	}
	if amount > w.Balance {
		return LedgerEntry{}, apperrors.ErrInsufficientFunds
	}
	desc := fmt.Sprintf("Purchased %d shares of %s", meta.Quantity, meta.Symbol)
	return w.apply(EntryStockPurchase, -amount, desc, meta, now), nil
}

// Credit receives the proceeds of a stock sale.
func (w *Wallet) Credit(amount Money, meta TradeMeta, now time.Time) (LedgerEntry, error) {
	if amount <= 0 {
		return LedgerEntry{}, apperrors.ErrInvalidAmount
	}
	if _, ok := w.Balance.AddChecked(amount); !ok {
		return LedgerEntry{}, apperrors.ErrInvalidAmount
	}
	desc := fmt.Sprintf("Sold %d shares of %s", meta.Quantity, meta.Symbol)
	return w.apply(EntryStockSale, amount, desc, meta, now), nil
}

func (w *Wallet) apply(t EntryType, signed Money, description string, meta TradeMeta, now time.Time) LedgerEntry {
	e := LedgerEntry{
		ID:            uuid.NewString(),
		UserID:        w.UserID,
		Type:          t,
		Amount:        signed,
		Description:   description,
		Symbol:        meta.Symbol,
		Quantity:      meta.Quantity,
		PricePerShare: meta.PricePerShare,
		CreatedAt:     now,
	}
	w.Balance += signed
	w.UpdatedAt = now
	w.Transactions = append(w.Transactions, e)
	return e
}

// LedgerSum adds up the signed amounts of entries.
func LedgerSum(entries []LedgerEntry) Money {
	var sum Money
	for _, e := range entries {
		sum += e.Amount
	}
	return sum
}
