package database

import (
	"context"
	"database/sql"
	"errors"

	"tradepro/internal/apperrors"
	"tradepro/internal/models"
)

const positionColumns = `user_id, symbol, name, quantity, avg_price, created_at, updated_at`

func (q *Queries) GetPosition(ctx context.Context, userID, symbol string) (*models.Position, error) {
	var p models.Position
	err := q.get(ctx, &p, `SELECT `+positionColumns+` FROM positions WHERE user_id = ? AND symbol = ?`+q.forUpdate, userID, symbol)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrPositionNotFound
	}
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

// SavePosition inserts or updates the position row.
func (q *Queries) SavePosition(ctx context.Context, p *models.Position) error {
	_, err := q.exec(ctx, `INSERT INTO positions (user_id, symbol, name, quantity, avg_price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, symbol) DO UPDATE SET name = excluded.name, quantity = excluded.quantity,
			avg_price = excluded.avg_price, updated_at = excluded.updated_at`,
		p.UserID, p.Symbol, p.Name, p.Quantity, p.AvgPrice.StringFixed(models.AvgPricePlaces), p.CreatedAt, p.UpdatedAt)
	return mapErr(err)
}

func (q *Queries) DeletePosition(ctx context.Context, userID, symbol string) error {
	res, err := q.exec(ctx, `DELETE FROM positions WHERE user_id = ? AND symbol = ?`, userID, symbol)
	return affectedOne(res, err, apperrors.ErrPositionNotFound)
}

func (q *Queries) ListPositions(ctx context.Context, userID string) ([]models.Position, error) {
	res := []models.Position{}
	err := q.selectAll(ctx, &res, `SELECT `+positionColumns+` FROM positions WHERE user_id = ? ORDER BY symbol`, userID)
	return res, mapErr(err)
}
