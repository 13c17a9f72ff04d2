package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"tradepro/internal/apperrors"
	"tradepro/internal/models"
)

const stockColumns = `symbol, name, sector, price, change_amount, change_bps, market_cap, pe_ratio,
	volume, high_52w, low_52w, logo, updated_at`

var stockOrder = map[string]string{
	models.SortByName:      "name ASC",
	models.SortByPrice:     "price DESC",
	models.SortByChange:    "change_bps DESC",
	models.SortByMarketCap: "market_cap DESC",
}

// ListStocks filters by case-insensitive symbol/name search and exact sector.
func (q *Queries) ListStocks(ctx context.Context, f models.StockFilter) ([]models.Stock, error) {
	var where []string
	var args []any
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		where = append(where, "(LOWER(symbol) LIKE ? OR LOWER(name) LIKE ?)")
		args = append(args, like, like)
	}
	if f.Sector != "" {
		where = append(where, "sector = ?")
		args = append(args, f.Sector)
	}
	query := `SELECT ` + stockColumns + ` FROM stocks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	order, ok := stockOrder[f.SortBy]
	if !ok {
		order = stockOrder[models.SortByName]
	}
	query += " ORDER BY " + order + ", symbol LIMIT ?"
	args = append(args, f.Limit)

	res := []models.Stock{}
	err := q.selectAll(ctx, &res, query, args...)
	return res, mapErr(err)
}

func (q *Queries) GetStock(ctx context.Context, symbol string) (*models.Stock, error) {
	var s models.Stock
	err := q.get(ctx, &s, `SELECT `+stockColumns+` FROM stocks WHERE symbol = ?`, symbol)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrStockNotFound
	}
	if err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (q *Queries) AllStocks(ctx context.Context) ([]models.Stock, error) {
	res := []models.Stock{}
	err := q.selectAll(ctx, &res, `SELECT `+stockColumns+` FROM stocks ORDER BY symbol`)
	return res, mapErr(err)
}

// Trending orders quotes by daily move or volume.
func (q *Queries) Trending(ctx context.Context, category string, limit int) ([]models.Stock, error) {
	order := "change_bps DESC"
	switch category {
	case "losers":
		order = "change_bps ASC"
	case "volume":
		order = "volume DESC"
	}
	res := []models.Stock{}
	err := q.selectAll(ctx, &res, `SELECT `+stockColumns+` FROM stocks ORDER BY `+order+`, symbol LIMIT ?`, limit)
	return res, mapErr(err)
}

func (q *Queries) UpdateQuote(ctx context.Context, s *models.Stock) error {
	res, err := q.exec(ctx, `UPDATE stocks SET price = ?, change_amount = ?, change_bps = ?, high_52w = ?, low_52w = ?,
		volume = ?, updated_at = ? WHERE symbol = ?`,
		s.Price, s.Change, s.ChangeBps, s.High52W, s.Low52W, s.Volume, s.UpdatedAt, s.Symbol)
	return affectedOne(res, err, apperrors.ErrStockNotFound)
}

func (q *Queries) InsertPricePoint(ctx context.Context, p models.PricePoint) error {
	_, err := q.exec(ctx, `INSERT INTO price_history (symbol, price, recorded_at) VALUES (?, ?, ?)`, p.Symbol, p.Price, p.Timestamp)
	return mapErr(err)
}

// PricePoints returns the history of symbol since the given time, oldest first.
func (q *Queries) PricePoints(ctx context.Context, symbol string, since time.Time) ([]models.PricePoint, error) {
	res := []models.PricePoint{}
	err := q.selectAll(ctx, &res, `SELECT symbol, price, recorded_at FROM price_history
		WHERE symbol = ? AND recorded_at >= ? ORDER BY recorded_at ASC`, symbol, since)
	return res, mapErr(err)
}

// CountPricePoints is used to decide whether a symbol needs a history backfill.
func (q *Queries) CountPricePoints(ctx context.Context, symbol string) (int, error) {
	var n int
	err := q.get(ctx, &n, `SELECT COUNT(*) FROM price_history WHERE symbol = ?`, symbol)
	return n, mapErr(err)
}
