package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"tradepro/internal/database"
	"tradepro/internal/models"
)

// Holding is an open position marked to the current quote.
type Holding struct {
	models.Position
	models.Valuation
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	StockName    string          `json:"stockName"`
	Logo         string          `json:"logo,omitempty"`
}

type PortfolioService struct {
	repo *database.Repo
	log  *logrus.Logger
}

func NewPortfolioService(repo *database.Repo, log *logrus.Logger) *PortfolioService {
	return &PortfolioService{repo: repo, log: log}
}

// Holdings returns every open position valuated at its quote. A position whose quote
// has disappeared is valued at its average price.
func (s *PortfolioService) Holdings(ctx context.Context, userID string) ([]Holding, error) {
	var (
		positions []models.Position
		stocks    []models.Stock
	)
	err := s.repo.View(ctx, func(ctx context.Context, q *database.Queries) error {
		var err error
		if positions, err = q.ListPositions(ctx, userID); err != nil {
			return err
		}
		stocks, err = q.AllStocks(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return valuate(positions, stocks), nil
}

func valuate(positions []models.Position, stocks []models.Stock) []Holding {
	bySymbol := make(map[string]models.Stock, len(stocks))
	for _, st := range stocks {
		bySymbol[st.Symbol] = st
	}

	out := make([]Holding, 0, len(positions))
	for _, p := range positions {
		h := Holding{Position: p, StockName: p.Name}
		if st, ok := bySymbol[p.Symbol]; ok {
			h.CurrentPrice = st.Price.Decimal()
			h.StockName = st.Name
			h.Logo = st.Logo
			h.Valuation = p.Valuate(st.Price)
		} else {
			h.CurrentPrice = p.AvgPrice
			h.Valuation = p.Valuate(0)
			h.Valuation.CurrentValue = h.Valuation.InvestedValue
			h.Valuation.PnL = decimal.Zero
			h.Valuation.PnLPercentage = decimal.Zero
		}
		out = append(out, h)
	}
	return out
}
