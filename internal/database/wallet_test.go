package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradepro/internal/apperrors"
	"tradepro/internal/models"
)

func TestWalletLedgerPersistence(t *testing.T) {
	_, r := setupDB(t)
	u := createUser(t, r, "ledger@example.com")
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, r.InTx(ctx, func(ctx context.Context, q *Queries) error {
		w := models.NewWallet(u.ID, "USD", now)
		if _, err := w.Deposit(models.MustParseMoney("1000"), "Initial wallet setup", now); err != nil {
			return err
		}
		return q.CreateWallet(ctx, w)
	}))

	require.NoError(t, r.InTx(ctx, func(ctx context.Context, q *Queries) error {
		w, err := q.GetWallet(ctx, u.ID)
		if err != nil {
			return err
		}
		e, err := w.Withdraw(models.MustParseMoney("150.25"), "cash out", now.Add(time.Second))
		if err != nil {
			return err
		}
		return q.ApplyEntry(ctx, w, &e)
	}))

	var (
		w       *models.Wallet
		entries []models.LedgerEntry
		sum     models.Money
	)
	require.NoError(t, r.View(ctx, func(ctx context.Context, q *Queries) error {
		var err error
		if w, err = q.GetWallet(ctx, u.ID); err != nil {
			return err
		}
		if entries, err = q.LedgerEntries(ctx, u.ID, 0); err != nil {
			return err
		}
		sum, err = q.LedgerSum(ctx, u.ID)
		return err
	}))

	assert.Equal(t, models.MustParseMoney("849.75"), w.Balance)
	assert.Equal(t, w.Balance, sum)
	require.Len(t, entries, 2)
	assert.Equal(t, models.EntryWithdrawal, entries[0].Type)
	assert.Equal(t, int64(2), entries[0].Seq)
	assert.Equal(t, models.EntryDeposit, entries[1].Type)
	assert.Equal(t, "Initial wallet setup", entries[1].Description)
}

func TestCreateWallet_Twice(t *testing.T) {
	_, r := setupDB(t)
	u := createUser(t, r, "twice@example.com")
	ctx := context.Background()

	create := func() error {
		return r.InTx(ctx, func(ctx context.Context, q *Queries) error {
			return q.CreateWallet(ctx, models.NewWallet(u.ID, "USD", time.Now().UTC()))
		})
	}
	require.NoError(t, create())
	assert.ErrorIs(t, create(), apperrors.ErrWalletAlreadyInitialized)
}

func TestWalletBalanceCheckConstraint(t *testing.T) {
	db, r := setupDB(t)
	u := createUser(t, r, "check@example.com")
	require.NoError(t, r.InTx(context.Background(), func(ctx context.Context, q *Queries) error {
		return q.CreateWallet(ctx, models.NewWallet(u.ID, "USD", time.Now().UTC()))
	}))

	_, err := db.Exec(`UPDATE wallets SET balance = -1 WHERE user_id = ?`, u.ID)
	assert.Error(t, err)
}

func TestPositionsAndTrades(t *testing.T) {
	_, r := setupDB(t)
	u := createUser(t, r, "positions@example.com")
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, r.InTx(ctx, func(ctx context.Context, q *Queries) error {
		p := models.NewPosition(u.ID, "INFY", "Infosys Ltd", now)
		if err := p.Increase(3, models.MustParseMoney("1456.25"), now); err != nil {
			return err
		}
		if err := q.SavePosition(ctx, p); err != nil {
			return err
		}
		if err := p.Increase(1, models.MustParseMoney("1460"), now); err != nil {
			return err
		}
		if err := q.SavePosition(ctx, p); err != nil {
			return err
		}
		return q.InsertTrade(ctx, &models.TradeRecord{ID: "t1", UserID: u.ID, Side: models.SideBuy, Symbol: "INFY",
			Quantity: 4, Price: 100, Total: 400, CreatedAt: now})
	}))

	var p *models.Position
	var holdings []Holding
	require.NoError(t, r.View(ctx, func(ctx context.Context, q *Queries) error {
		var err error
		if p, err = q.GetPosition(ctx, u.ID, "INFY"); err != nil {
			return err
		}
		holdings, err = q.NetHoldings(ctx, u.ID)
		return err
	}))
	assert.Equal(t, int64(4), p.Quantity)
	assert.Equal(t, "1457.187500", p.AvgPrice.StringFixed(6))
	assert.Equal(t, []Holding{{Symbol: "INFY", Quantity: 4}}, holdings)

	require.NoError(t, r.InTx(ctx, func(ctx context.Context, q *Queries) error {
		return q.DeletePosition(ctx, u.ID, "INFY")
	}))
	err := r.InTx(ctx, func(ctx context.Context, q *Queries) error {
		return q.DeletePosition(ctx, u.ID, "INFY")
	})
	assert.ErrorIs(t, err, apperrors.ErrPositionNotFound)
}

func TestWatchlistDuplicate(t *testing.T) {
	_, r := setupDB(t)
	u := createUser(t, r, "watch@example.com")
	ctx := context.Background()

	add := func() error {
		return r.InTx(ctx, func(ctx context.Context, q *Queries) error {
			return q.AddWatch(ctx, &models.WatchlistEntry{UserID: u.ID, Symbol: "TCS", Name: "TCS", AddedAt: time.Now().UTC()})
		})
	}
	require.NoError(t, add())
	assert.ErrorIs(t, add(), apperrors.ErrAlreadyWatched)
}

func TestMarkOrderPaid_Once(t *testing.T) {
	_, r := setupDB(t)
	u := createUser(t, r, "pay@example.com")
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, r.InTx(ctx, func(ctx context.Context, q *Queries) error {
		if err := q.CreateOrder(ctx, &models.PaymentOrder{OrderID: "order_1", UserID: u.ID, Amount: 5000, Currency: "INR",
			Status: models.OrderCreated, CreatedAt: now}); err != nil {
			return err
		}
		return q.CreateOrder(ctx, &models.PaymentOrder{OrderID: "order_2", UserID: u.ID, Amount: 5000, Currency: "INR",
			Status: models.OrderCreated, CreatedAt: now})
	}))

	mark := func(orderID, paymentID string) error {
		return r.InTx(ctx, func(ctx context.Context, q *Queries) error {
			return q.MarkOrderPaid(ctx, orderID, paymentID, now)
		})
	}
	require.NoError(t, mark("order_1", "pay_1"))
	assert.ErrorIs(t, mark("order_1", "pay_1"), apperrors.ErrPaymentAlreadyProcessed)
	assert.ErrorIs(t, mark("order_2", "pay_1"), apperrors.ErrPaymentAlreadyProcessed)

	var o *models.PaymentOrder
	require.NoError(t, r.View(ctx, func(ctx context.Context, q *Queries) error {
		var err error
		o, err = q.GetOrder(ctx, "order_1")
		return err
	}))
	assert.True(t, o.Paid())
	require.NotNil(t, o.PaymentID)
	assert.Equal(t, "pay_1", *o.PaymentID)
}

func TestListStocksFilterAndSort(t *testing.T) {
	_, r := setupDB(t)
	ctx := context.Background()

	var banks, search []models.Stock
	require.NoError(t, r.View(ctx, func(ctx context.Context, q *Queries) error {
		var err error
		if banks, err = q.ListStocks(ctx, models.StockFilter{Sector: "Banking", SortBy: models.SortByPrice, Limit: 50}); err != nil {
			return err
		}
		search, err = q.ListStocks(ctx, models.StockFilter{Search: "infosys", Limit: 50})
		return err
	}))
	require.Len(t, banks, 4)
	assert.Equal(t, "KOTAKBANK", banks[0].Symbol)
	for i := 1; i < len(banks); i++ {
		assert.GreaterOrEqual(t, banks[i-1].Price, banks[i].Price)
	}
	require.Len(t, search, 1)
	assert.Equal(t, "INFY", search[0].Symbol)
}
