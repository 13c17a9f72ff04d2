package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tradepro/internal/auth"
	"tradepro/internal/config"
	"tradepro/internal/database"
	"tradepro/internal/models"
	"tradepro/internal/testutil"
)

type fixture struct {
	repo      *database.Repo
	locks     *UserLocks
	wallets   *WalletService
	trades    *TradeService
	portfolio *PortfolioService
	watchlist *WatchlistService
	dashboard *DashboardService
	stocks    *StockService
	prices    *CleanPriceService
	payments  *PaymentService
	auth      *AuthService
	users     *UserService
}

func testConfig() *config.Config {
	return &config.Config{
		Env: "test",
		Auth: config.AuthConfig{
			JWTSecret: "test-secret",
			TokenTTL:  time.Hour,
		},
		Wallet: config.WalletConfig{
			OpeningBalance: models.MustParseMoney("1000"),
			Currency:       "USD",
		},
		Trading: config.TradingConfig{
			Fees: models.DefaultFees,
		},
		Payment: config.PaymentConfig{
			Currency: "USD",
			MockMode: true,
		},
	}
}

func newFixture(t *testing.T, opts ...func(*config.Config)) *fixture {
	t.Helper()
	cfg := testConfig()
	for _, o := range opts {
		o(cfg)
	}

	log := testutil.Logger()
	repo := testutil.SetupTestDB(t)
	locks := NewUserLocks()
	cipher, err := auth.NewFieldCipher(cfg.Auth.FieldKey)
	require.NoError(t, err)

	f := &fixture{repo: repo, locks: locks}
	f.wallets = NewWalletService(repo, locks, cfg.Wallet, log)
	f.trades = NewTradeService(repo, locks, f.wallets, cfg.Trading, log)
	f.portfolio = NewPortfolioService(repo, log)
	f.watchlist = NewWatchlistService(repo, log)
	f.dashboard = NewDashboardService(f.wallets, f.portfolio, f.trades, f.watchlist, log)
	f.stocks = NewStockService(repo, log)
	f.prices = NewCleanPriceService(repo, nil, log)
	f.payments = NewPaymentService(repo, locks, f.wallets, cfg.Payment, log)
	f.auth = NewAuthService(repo, f.wallets, auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), log)
	f.users = NewUserService(repo, cipher, log)
	return f
}

// userWithWallet creates a user whose wallet holds the opening balance.
func (f *fixture) userWithWallet(t *testing.T) *models.User {
	t.Helper()
	u := testutil.NewUser().Build(t, f.repo)
	_, err := f.wallets.Initialize(context.Background(), u.ID)
	require.NoError(t, err)
	return u
}

func (f *fixture) balance(t *testing.T, userID string) models.Money {
	t.Helper()
	w, err := f.wallets.Get(context.Background(), userID)
	require.NoError(t, err)
	return w.Balance
}

func (f *fixture) requireReconciled(t *testing.T, userID string) {
	t.Helper()
	r, err := f.wallets.Reconcile(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, r.OK, "balance %s != ledger %s", r.Balance, r.LedgerSum)
}

func money(s string) models.Money { return models.MustParseMoney(s) }
