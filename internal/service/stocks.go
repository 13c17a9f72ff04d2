package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"tradepro/internal/apperrors"
	"tradepro/internal/database"
	"tradepro/internal/models"
)

const (
	defaultListLimit     = 50
	defaultTrendingLimit = 10
	maxLimit             = 100
)

// Chart is the price history of one symbol over a period.
type Chart struct {
	Symbol string              `json:"symbol"`
	Period string              `json:"period"`
	Points []models.PricePoint `json:"data"`
}

type StockService struct {
	repo *database.Repo
	log  *logrus.Logger
	now  func() time.Time
}

func NewStockService(repo *database.Repo, log *logrus.Logger) *StockService {
	return &StockService{repo: repo, log: log, now: utcNow}
}

func (s *StockService) List(ctx context.Context, f models.StockFilter) ([]models.Stock, error) {
	f.Limit = clampLimit(f.Limit, defaultListLimit)
	var res []models.Stock
	err := s.repo.View(ctx, func(ctx context.Context, q *database.Queries) error {
		var err error
		res, err = q.ListStocks(ctx, f)
		return err
	})
	return res, err
}

func (s *StockService) Get(ctx context.Context, symbol string) (*models.Stock, error) {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, apperrors.ErrInvalidSymbol
	}
	var st *models.Stock
	err := s.repo.View(ctx, func(ctx context.Context, q *database.Queries) error {
		var err error
		st, err = q.GetStock(ctx, symbol)
		return err
	})
	return st, err
}

// Chart returns points inside the period window, oldest first. Unknown periods use 1M.
func (s *StockService) Chart(ctx context.Context, symbol, period string) (*Chart, error) {
	symbol = models.NormalizeSymbol(symbol)
	period, days := models.ChartWindow(period)
	since := s.now().AddDate(0, 0, -days)

	c := &Chart{Symbol: symbol, Period: period}
	err := s.repo.View(ctx, func(ctx context.Context, q *database.Queries) error {
		if _, err := q.GetStock(ctx, symbol); err != nil {
			return err
		}
		var err error
		c.Points, err = q.PricePoints(ctx, symbol, since)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Trending ranks quotes by category: gainers (default), losers or volume.
func (s *StockService) Trending(ctx context.Context, category string, limit int) ([]models.Stock, error) {
	switch category {
	case "gainers", "losers", "volume":
	default:
		category = "gainers"
	}
	limit = clampLimit(limit, defaultTrendingLimit)
	var res []models.Stock
	err := s.repo.View(ctx, func(ctx context.Context, q *database.Queries) error {
		var err error
		res, err = q.Trending(ctx, category, limit)
		return err
	})
	return res, err
}

func (s *StockService) Indices() []models.MarketIndex {
	return models.MarketIndices()
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxLimit)
}
