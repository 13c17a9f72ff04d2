package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tradepro/internal/apperrors"
	"tradepro/internal/config"
	"tradepro/internal/database"
	"tradepro/internal/models"
)

// BuyOrder asks to buy Quantity shares. A zero Price means the current quote price.
type BuyOrder struct {
	UserID   string
	Symbol   string
	Name     string
	Quantity int64
	Price    models.Money
}

// SellOrder asks to sell Quantity shares. A zero Price means the current quote price.
type SellOrder struct {
	UserID   string
	Symbol   string
	Quantity int64
	Price    models.Money
}

// TradeResult is returned by Buy and Sell. Position is nil once a sale closes it.
type TradeResult struct {
	Balance  models.Money       `json:"walletBalance"`
	Trade    models.TradeRecord `json:"transaction"`
	Position *models.Position   `json:"position,omitempty"`
}

// TradeService executes orders. Each order is one transaction covering the wallet,
// the position and the trade record, run under the user's lock.
type TradeService struct {
	repo    *database.Repo
	locks   *UserLocks
	wallets *WalletService
	cfg     config.TradingConfig
	log     *logrus.Logger
	now     func() time.Time
}

func NewTradeService(repo *database.Repo, locks *UserLocks, wallets *WalletService, cfg config.TradingConfig, log *logrus.Logger) *TradeService {
	return &TradeService{repo: repo, locks: locks, wallets: wallets, cfg: cfg, log: log, now: utcNow}
}

func (s *TradeService) Buy(ctx context.Context, o BuyOrder) (*TradeResult, error) {
	o.Symbol = models.NormalizeSymbol(o.Symbol)
	if err := validateOrder(o.Symbol, o.Quantity, o.Price); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(o.UserID)
	defer unlock()

	var res TradeResult
	err := s.repo.InTx(ctx, func(ctx context.Context, q *database.Queries) error {
		price, name, err := s.quote(ctx, q, o.Symbol, o.Price)
		if err != nil {
			return err
		}
		if o.Name != "" {
			name = o.Name
		}
		notional, err := notionalOf(price, o.Quantity)
		if err != nil {
			return err
		}
		fee := s.cfg.Fees.Calculate(notional)
		cost := notional
		if s.cfg.ChargeFees {
			var ok bool
			if cost, ok = notional.AddChecked(fee); !ok {
				return apperrors.ErrInsufficientFunds
			}
		}

		w, err := s.wallets.loadOrCreate(ctx, q, o.UserID)
		if err != nil {
			return err
		}
		if cost > w.Balance {
			return apperrors.ErrInsufficientFunds
		}

		now := s.now()
		pos, err := q.GetPosition(ctx, o.UserID, o.Symbol)
		if errors.Is(err, apperrors.ErrPositionNotFound) {
			pos = models.NewPosition(o.UserID, o.Symbol, name, now)
		} else if err != nil {
			return err
		}
		if err := pos.Increase(o.Quantity, price, now); err != nil {
			return err
		}

		entry, err := w.Debit(cost, models.TradeMeta{Symbol: o.Symbol, Quantity: o.Quantity, PricePerShare: price}, now)
		if err != nil {
			return err
		}
		if err := q.SavePosition(ctx, pos); err != nil {
			return err
		}
		if err := q.ApplyEntry(ctx, w, &entry); err != nil {
			return err
		}

		res.Trade = models.TradeRecord{
			ID:        uuid.NewString(),
			UserID:    o.UserID,
			Side:      models.SideBuy,
			Symbol:    o.Symbol,
			Name:      name,
			Quantity:  o.Quantity,
			Price:     price,
			Total:     notional,
			Fees:      fee,
			CreatedAt: now,
		}
		if err := q.InsertTrade(ctx, &res.Trade); err != nil {
			return err
		}
		res.Balance = w.Balance
		res.Position = pos
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":  o.UserID,
		"symbol":   o.Symbol,
		"quantity": o.Quantity,
		"price":    res.Trade.Price.String(),
	}).Info("buy executed")
	return &res, nil
}

func (s *TradeService) Sell(ctx context.Context, o SellOrder) (*TradeResult, error) {
	o.Symbol = models.NormalizeSymbol(o.Symbol)
	if err := validateOrder(o.Symbol, o.Quantity, o.Price); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(o.UserID)
	defer unlock()

	var res TradeResult
	err := s.repo.InTx(ctx, func(ctx context.Context, q *database.Queries) error {
		// wallet row first, same as Buy, so concurrent orders lock in one order
		w, err := s.wallets.loadOrCreate(ctx, q, o.UserID)
		if err != nil {
			return err
		}
		pos, err := q.GetPosition(ctx, o.UserID, o.Symbol)
		if err != nil {
			return err
		}
		if o.Quantity > pos.Quantity {
			return apperrors.ErrInsufficientShares
		}
		price, _, err := s.quote(ctx, q, o.Symbol, o.Price)
		if err != nil {
			return err
		}
		notional, err := notionalOf(price, o.Quantity)
		if err != nil {
			return err
		}
		fee := s.cfg.Fees.Calculate(notional)
		proceeds := notional
		if s.cfg.ChargeFees {
			// a fee never turns a sale into a debit
			proceeds -= min(fee, notional)
		}

		now := s.now()
		closed, err := pos.Reduce(o.Quantity, now)
		if err != nil {
			return err
		}
		if closed {
			err = q.DeletePosition(ctx, o.UserID, o.Symbol)
		} else {
			err = q.SavePosition(ctx, pos)
			res.Position = pos
		}
		if err != nil {
			return err
		}

		if proceeds > 0 {
			entry, err := w.Credit(proceeds, models.TradeMeta{Symbol: o.Symbol, Quantity: o.Quantity, PricePerShare: price}, now)
			if err != nil {
				return err
			}
			if err := q.ApplyEntry(ctx, w, &entry); err != nil {
				return err
			}
		}

		res.Trade = models.TradeRecord{
			ID:        uuid.NewString(),
			UserID:    o.UserID,
			Side:      models.SideSell,
			Symbol:    o.Symbol,
			Name:      pos.Name,
			Quantity:  o.Quantity,
			Price:     price,
			Total:     notional,
			Fees:      fee,
			CreatedAt: now,
		}
		if err := q.InsertTrade(ctx, &res.Trade); err != nil {
			return err
		}
		res.Balance = w.Balance
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":  o.UserID,
		"symbol":   o.Symbol,
		"quantity": o.Quantity,
		"price":    res.Trade.Price.String(),
	}).Info("sell executed")
	return &res, nil
}

// History returns one page of the user's trades, newest first.
func (s *TradeService) History(ctx context.Context, userID string, page, limit int) ([]models.TradeRecord, models.Pagination, error) {
	var (
		trades []models.TradeRecord
		p      models.Pagination
	)
	err := s.repo.View(ctx, func(ctx context.Context, q *database.Queries) error {
		total, err := q.CountTrades(ctx, userID)
		if err != nil {
			return err
		}
		p = models.NewPagination(page, limit, total)
		trades, err = q.ListTrades(ctx, userID, p.Limit, p.Offset())
		return err
	})
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return trades, p, nil
}

// quote resolves the execution price. A client price is accepted for symbols
// without a quote; otherwise the quote must exist.
func (s *TradeService) quote(ctx context.Context, q *database.Queries, symbol string, price models.Money) (models.Money, string, error) {
	stock, err := q.GetStock(ctx, symbol)
	switch {
	case err == nil:
		if price == 0 {
			price = stock.Price
		}
		return price, stock.Name, nil
	case errors.Is(err, apperrors.ErrStockNotFound) && price > 0:
		return price, symbol, nil
	default:
		return 0, "", err
	}
}

func validateOrder(symbol string, quantity int64, price models.Money) error {
	if symbol == "" {
		return apperrors.ErrInvalidSymbol
	}
	if quantity <= 0 {
		return apperrors.ErrInvalidQuantity
	}
	if price < 0 {
		return apperrors.ErrInvalidPrice
	}
	return nil
}

func notionalOf(price models.Money, quantity int64) (models.Money, error) {
	if price <= 0 {
		return 0, apperrors.ErrInvalidPrice
	}
	if quantity > math.MaxInt64/int64(price) {
		return 0, apperrors.ErrInvalidQuantity
	}
	return price.Times(quantity), nil
}
