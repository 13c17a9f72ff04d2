package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"tradepro/internal/database"
	"tradepro/internal/models"
)

// maxDriftBps bounds one simulated move to +/-2 %.
const maxDriftBps = 200

// PriceUpdate is broadcast to stream subscribers after every simulated move.
type PriceUpdate struct {
	Symbol        string          `json:"symbol"`
	Price         models.Money    `json:"price"`
	Change        models.Money    `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Publisher receives price updates. Publish must not block.
type Publisher interface {
	Publish(u PriceUpdate)
}

// CleanPriceService simulates quotes: it drifts every stock on a schedule, records the
// price history that charts read and backfills history for stocks that have none.
type CleanPriceService struct {
	repo *database.Repo
	pub  Publisher
	log  *logrus.Logger
	now  func() time.Time
}

func NewCleanPriceService(r *database.Repo, pub Publisher, log *logrus.Logger) *CleanPriceService {
	return &CleanPriceService{
		repo: r,
		pub:  pub,
		log:  log,
		now:  utcNow,
	}
}

// Start runs UpdateAll on schedule until ctx is done.
func (p *CleanPriceService) Start(ctx context.Context, schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		n, err := p.UpdateAll(ctx)
		if err != nil {
			p.log.Warnf("price update failed: %v", err)
			return
		}
		p.log.Debugf("updated %d quotes", n)
	})
	if err != nil {
		return fmt.Errorf("price schedule %q: %w", schedule, err)
	}
	c.Start()
	go func() {
		<-ctx.Done()
		p.log.Info("price updater stopping")
		<-c.Stop().Done()
	}()
	return nil
}

// UpdateAll moves every quote once and returns how many were updated.
func (p *CleanPriceService) UpdateAll(ctx context.Context) (int, error) {
	var stocks []models.Stock
	err := p.repo.View(ctx, func(ctx context.Context, q *database.Queries) error {
		var err error
		stocks, err = q.AllStocks(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("load quotes: %w", err)
	}

	updated := 0
	for i := range stocks {
		s := &stocks[i]
		now := p.now()
		s.Reprice(drift(s.Price), now)
		err := p.repo.InTx(ctx, func(ctx context.Context, q *database.Queries) error {
			if err := q.UpdateQuote(ctx, s); err != nil {
				return err
			}
			return q.InsertPricePoint(ctx, models.PricePoint{Symbol: s.Symbol, Price: s.Price, Timestamp: now})
		})
		if err != nil {
			p.log.Warnf("update quote %s: %v", s.Symbol, err)
			continue
		}
		updated++
		if p.pub != nil {
			p.pub.Publish(PriceUpdate{
				Symbol:        s.Symbol,
				Price:         s.Price,
				Change:        s.Change,
				ChangePercent: s.ChangePercent(),
				Timestamp:     now,
			})
		}
	}
	return updated, nil
}

// Backfill generates one daily point per day for the last days days for every stock
// that has no history. The series ends at the current quote price.
func (p *CleanPriceService) Backfill(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		return 0, nil
	}
	var stocks []models.Stock
	err := p.repo.View(ctx, func(ctx context.Context, q *database.Queries) error {
		var err error
		stocks, err = q.AllStocks(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}

	filled := 0
	for _, s := range stocks {
		err := p.repo.InTx(ctx, func(ctx context.Context, q *database.Queries) error {
			n, err := q.CountPricePoints(ctx, s.Symbol)
			if err != nil || n > 0 {
				return err
			}
			for _, pt := range p.history(s, days) {
				if err := q.InsertPricePoint(ctx, pt); err != nil {
					return err
				}
			}
			filled++
			return nil
		})
		if err != nil {
			return filled, fmt.Errorf("backfill %s: %w", s.Symbol, err)
		}
	}
	if filled > 0 {
		p.log.Infof("backfilled %d days of price history for %d stocks", days, filled)
	}
	return filled, nil
}

// history walks backwards from the current price so the newest point equals it.
func (p *CleanPriceService) history(s models.Stock, days int) []models.PricePoint {
	points := make([]models.PricePoint, days)
	end := p.now().Truncate(24 * time.Hour)
	price := s.Price
	for i := days - 1; i >= 0; i-- {
		points[i] = models.PricePoint{Symbol: s.Symbol, Price: price, Timestamp: end.AddDate(0, 0, i-days+1)}
		price = drift(price)
	}
	return points
}

// drift applies a uniform move of at most maxDriftBps and never goes below one minor unit.
func drift(price models.Money) models.Money {
	bps := rand.Int63n(2*maxDriftBps+1) - maxDriftBps
	next := price + models.Money(int64(price)*bps/10000)
	if next < 1 {
		return 1
	}
	return next
}
