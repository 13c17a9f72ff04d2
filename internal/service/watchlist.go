package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"tradepro/internal/apperrors"
	"tradepro/internal/database"
	"tradepro/internal/models"
)

type WatchlistService struct {
	repo *database.Repo
	log  *logrus.Logger
	now  func() time.Time
}

func NewWatchlistService(repo *database.Repo, log *logrus.Logger) *WatchlistService {
	return &WatchlistService{repo: repo, log: log, now: utcNow}
}

// Add watches symbol. An empty name is filled from the quote when one exists.
func (s *WatchlistService) Add(ctx context.Context, userID, symbol, name string) (*models.WatchlistEntry, error) {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, apperrors.ErrInvalidSymbol
	}
	e := &models.WatchlistEntry{UserID: userID, Symbol: symbol, Name: name, AddedAt: s.now()}
	err := s.repo.InTx(ctx, func(ctx context.Context, q *database.Queries) error {
		if e.Name == "" {
			st, err := q.GetStock(ctx, symbol)
			switch {
			case err == nil:
				e.Name = st.Name
			case errors.Is(err, apperrors.ErrStockNotFound):
				e.Name = symbol
			default:
				return err
			}
		}
		return q.AddWatch(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Remove is idempotent: removing a symbol that is not watched succeeds.
func (s *WatchlistService) Remove(ctx context.Context, userID, symbol string) error {
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		return apperrors.ErrInvalidSymbol
	}
	return s.repo.InTx(ctx, func(ctx context.Context, q *database.Queries) error {
		removed, err := q.RemoveWatch(ctx, userID, symbol)
		if err == nil && !removed {
			s.log.Debugf("watchlist remove: %s not watched by %s", symbol, userID)
		}
		return err
	})
}

func (s *WatchlistService) List(ctx context.Context, userID string) ([]models.WatchlistEntry, error) {
	var res []models.WatchlistEntry
	err := s.repo.View(ctx, func(ctx context.Context, q *database.Queries) error {
		var err error
		res, err = q.ListWatch(ctx, userID)
		return err
	})
	return res, err
}

func (s *WatchlistService) Count(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.repo.View(ctx, func(ctx context.Context, q *database.Queries) error {
		var err error
		n, err = q.CountWatch(ctx, userID)
		return err
	})
	return n, err
}
