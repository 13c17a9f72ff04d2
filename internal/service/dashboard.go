package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"tradepro/internal/models"
)

const recentTradeCount = 5

// DashboardStats aggregates a user's account for the dashboard.
type DashboardStats struct {
	PortfolioValue     decimal.Decimal      `json:"portfolioValue"`
	TotalInvestment    decimal.Decimal      `json:"totalInvestment"`
	TotalGain          decimal.Decimal      `json:"totalGain"`
	GainPercentage     decimal.Decimal      `json:"gainPercentage"`
	AvailableBalance   models.Money         `json:"availableBalance"`
	Currency           string               `json:"currency"`
	TotalHoldings      int                  `json:"totalHoldings"`
	WatchlistCount     int                  `json:"watchlistCount"`
	RecentTransactions []models.TradeRecord `json:"recentTransactions"`
}

type DashboardService struct {
	wallets   *WalletService
	portfolio *PortfolioService
	trades    *TradeService
	watchlist *WatchlistService
	log       *logrus.Logger
}

func NewDashboardService(wallets *WalletService, portfolio *PortfolioService, trades *TradeService, watchlist *WatchlistService, log *logrus.Logger) *DashboardService {
	return &DashboardService{wallets: wallets, portfolio: portfolio, trades: trades, watchlist: watchlist, log: log}
}

// Stats loads the wallet, holdings, recent trades and watchlist size concurrently.
// The wallet is initialized on first use.
func (s *DashboardService) Stats(ctx context.Context, userID string) (*DashboardStats, error) {
	var (
		stats    DashboardStats
		wallet   *models.Wallet
		holdings []Holding
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		wallet, err = s.wallets.Initialize(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		holdings, err = s.portfolio.Holdings(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		stats.RecentTransactions, _, err = s.trades.History(ctx, userID, 1, recentTradeCount)
		return err
	})
	g.Go(func() error {
		var err error
		stats.WatchlistCount, err = s.watchlist.Count(ctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	t := Summarize(holdings)
	stats.PortfolioValue = t.CurrentValue
	stats.TotalInvestment = t.InvestedValue
	stats.TotalGain = t.PnL
	stats.GainPercentage = t.PnLPercentage
	stats.AvailableBalance = wallet.Balance
	stats.Currency = wallet.Currency
	stats.TotalHoldings = len(holdings)
	return &stats, nil
}

// Summarize totals the valuations of holdings.
func Summarize(holdings []Holding) models.Valuation {
	var t models.Valuation
	for _, h := range holdings {
		t.CurrentValue = t.CurrentValue.Add(h.CurrentValue)
		t.InvestedValue = t.InvestedValue.Add(h.InvestedValue)
	}
	t.PnL = t.CurrentValue.Sub(t.InvestedValue)
	if !t.InvestedValue.IsZero() {
		t.PnLPercentage = t.PnL.Div(t.InvestedValue).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return t
}
