package database

import (
	"context"

	"tradepro/internal/models"
)

func (q *Queries) InsertTrade(ctx context.Context, t *models.TradeRecord) error {
	_, err := q.exec(ctx, `INSERT INTO trades (id, user_id, side, symbol, name, quantity, price, total, fees, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Side, t.Symbol, t.Name, t.Quantity, t.Price, t.Total, t.Fees, t.CreatedAt)
	return mapErr(err)
}

// ListTrades returns trades newest first.
func (q *Queries) ListTrades(ctx context.Context, userID string, limit, offset int) ([]models.TradeRecord, error) {
	res := []models.TradeRecord{}
	err := q.selectAll(ctx, &res, `SELECT id, user_id, side, symbol, name, quantity, price, total, fees, created_at
		FROM trades WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, userID, limit, offset)
	return res, mapErr(err)
}

func (q *Queries) CountTrades(ctx context.Context, userID string) (int, error) {
	var n int
	err := q.get(ctx, &n, `SELECT COUNT(*) FROM trades WHERE user_id = ?`, userID)
	return n, mapErr(err)
}

// NetHoldings sums buys minus sells per symbol, omitting symbols that net to zero.
func (q *Queries) NetHoldings(ctx context.Context, userID string) ([]Holding, error) {
	res := []Holding{}
	err := q.selectAll(ctx, &res, `SELECT symbol,
			SUM(CASE WHEN side = 'BUY' THEN quantity ELSE -quantity END) AS quantity
		FROM trades WHERE user_id = ?
		GROUP BY symbol
		HAVING SUM(CASE WHEN side = 'BUY' THEN quantity ELSE -quantity END) <> 0
		ORDER BY symbol`, userID)
	return res, mapErr(err)
}
