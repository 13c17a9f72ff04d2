package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"tradepro/internal/apperrors"
)

var testNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func seededWallet(t *testing.T, opening Money) *Wallet {
	t.Helper()
	w := NewWallet("u1", "USD", testNow)
	if opening > 0 {
		_, err := w.Deposit(opening, "Initial wallet setup", testNow)
		require.NoError(t, err)
	}
	return w
}

func TestWallet_DepositWithdraw(t *testing.T) {
	w := seededWallet(t, MustParseMoney("1000"))

	e, err := w.Deposit(MustParseMoney("250.50"), "top up", testNow)
	require.NoError(t, err)
	assert.Equal(t, EntryDeposit, e.Type)
	assert.Equal(t, Money(25050), e.Amount)
	assert.Equal(t, MustParseMoney("1250.50"), w.Balance)

	e, err = w.Withdraw(MustParseMoney("0.50"), "out", testNow)
	require.NoError(t, err)
	assert.Equal(t, EntryWithdrawal, e.Type)
	assert.Equal(t, Money(-50), e.Amount)
	assert.Equal(t, MustParseMoney("1250"), w.Balance)
	assert.Len(t, w.Transactions, 3)
}

func TestWallet_RejectsNonPositiveAmounts(t *testing.T) {
	w := seededWallet(t, 1000)
	for _, amt := range []Money{0, -1} {
		_, err := w.Deposit(amt, "", testNow)
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
		_, err = w.Withdraw(amt, "", testNow)
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
		_, err = w.Debit(amt, TradeMeta{Symbol: "X", Quantity: 1}, testNow)
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
		_, err = w.Credit(amt, TradeMeta{Symbol: "X", Quantity: 1}, testNow)
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
	}
	assert.Equal(t, Money(1000), w.Balance)
	assert.Len(t, w.Transactions, 1)
}

func TestWallet_CreditsCannotOverflowBalance(t *testing.T) {
	cases := []struct {
		name    string
		balance Money
		amount  Money
		ok      bool
	}{
		{"fits exactly", 1000, MaxMoney - 1000, true},
		{"one past max", 1000, MaxMoney - 999, false},
		{"max on max", MaxMoney, MaxMoney, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := seededWallet(t, tc.balance)
			_, depErr := w.Deposit(tc.amount, "", testNow)
			w2 := seededWallet(t, tc.balance)
			_, credErr := w2.Credit(tc.amount, TradeMeta{Symbol: "X", Quantity: 1}, testNow)
			if tc.ok {
				require.NoError(t, depErr)
				require.NoError(t, credErr)
				assert.Equal(t, MaxMoney, w.Balance)
				return
			}
			assert.ErrorIs(t, depErr, apperrors.ErrInvalidAmount)
			assert.ErrorIs(t, credErr, apperrors.ErrInvalidAmount)
			assert.Equal(t, tc.balance, w.Balance)
			assert.Equal(t, tc.balance, w2.Balance)
			assert.Len(t, w.Transactions, 1)
		})
	}
}

func TestWallet_FailedDebitLeavesBalance(t *testing.T) {
	w := seededWallet(t, 500)

	_, err := w.Withdraw(501, "too much", testNow)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	_, err = w.Debit(501, TradeMeta{Symbol: "ACME", Quantity: 1, PricePerShare: 501}, testNow)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)

	assert.Equal(t, Money(500), w.Balance)
	assert.Len(t, w.Transactions, 1)

	e, err := w.Debit(500, TradeMeta{Symbol: "ACME", Quantity: 1, PricePerShare: 500}, testNow)
	require.NoError(t, err)
	assert.Equal(t, EntryStockPurchase, e.Type)
	assert.Equal(t, "ACME", e.Symbol)
	assert.Equal(t, "Purchased 1 shares of ACME", e.Description)
	assert.Equal(t, Money(0), w.Balance)
}

func TestWallet_LedgerSumMatchesBalance(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		opening := Money(rapid.Int64Range(0, 1_000_000).Draw(t, "opening"))
		w := NewWallet("u1", "USD", testNow)
		if opening > 0 {
			if _, err := w.Deposit(opening, "seed", testNow); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
		ops := rapid.IntRange(0, 40).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			amt := Money(rapid.Int64Range(1, 200_000).Draw(t, "amount"))
			before := w.Balance
			var err error
			switch rapid.IntRange(0, 3).Draw(t, "kind") {
			case 0:
				_, err = w.Deposit(amt, "d", testNow)
			case 1:
				_, err = w.Withdraw(amt, "w", testNow)
			case 2:
				_, err = w.Debit(amt, TradeMeta{Symbol: "S", Quantity: 1, PricePerShare: amt}, testNow)
			case 3:
				_, err = w.Credit(amt, TradeMeta{Symbol: "S", Quantity: 1, PricePerShare: amt}, testNow)
			}
			if err != nil {
				if w.Balance != before {
					t.Fatalf("balance changed on failed op: %d -> %d", before, w.Balance)
				}
				if amt <= before {
					t.Fatalf("unexpected error for amount %d with balance %d: %v", amt, before, err)
				}
			}
			if w.Balance < 0 {
				t.Fatalf("negative balance %d", w.Balance)
			}
		}
		if got := LedgerSum(w.Transactions); got != w.Balance {
			t.Fatalf("ledger sum %d != balance %d", got, w.Balance)
		}
	})
}
