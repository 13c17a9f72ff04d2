package database

import (
	"context"
	"errors"

	"tradepro/internal/apperrors"
	"tradepro/internal/models"
)

func (q *Queries) AddWatch(ctx context.Context, e *models.WatchlistEntry) error {
	_, err := q.exec(ctx, `INSERT INTO watchlist (user_id, symbol, name, added_at) VALUES (?, ?, ?, ?)`,
		e.UserID, e.Symbol, e.Name, e.AddedAt)
	if err = mapErr(err); errors.Is(err, apperrors.ErrDuplicateEntry) {
		return apperrors.ErrAlreadyWatched
	}
	return err
}

// RemoveWatch reports whether an entry was deleted.
func (q *Queries) RemoveWatch(ctx context.Context, userID, symbol string) (bool, error) {
	res, err := q.exec(ctx, `DELETE FROM watchlist WHERE user_id = ? AND symbol = ?`, userID, symbol)
	if err != nil {
		return false, mapErr(err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (q *Queries) ListWatch(ctx context.Context, userID string) ([]models.WatchlistEntry, error) {
	res := []models.WatchlistEntry{}
	err := q.selectAll(ctx, &res, `SELECT user_id, symbol, name, added_at FROM watchlist WHERE user_id = ? ORDER BY added_at DESC, symbol`, userID)
	return res, mapErr(err)
}

func (q *Queries) CountWatch(ctx context.Context, userID string) (int, error) {
	var n int
	err := q.get(ctx, &n, `SELECT COUNT(*) FROM watchlist WHERE user_id = ?`, userID)
	return n, mapErr(err)
}
