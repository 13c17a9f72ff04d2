package models

import (
	"time"

	"github.com/shopspring/decimal"

	"tradepro/internal/apperrors"
)

// AvgPricePlaces is the fixed scale of a position's average price.
const AvgPricePlaces = 6

// Position is a user's holding in one symbol. A position with zero quantity does not exist.
type Position struct {
	UserID    string          `db:"user_id" json:"-"`
	Symbol    string          `db:"symbol" json:"symbol"`
	Name      string          `db:"name" json:"name"`
	Quantity  int64           `db:"quantity" json:"quantity"`
	AvgPrice  decimal.Decimal `db:"avg_price" json:"avgPrice"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}

// NewPosition returns an empty position; the first Increase sets the average price.
func NewPosition(userID, symbol, name string, now time.Time) *Position {
	return &Position{
		UserID:    userID,
		Symbol:    symbol,
		Name:      name,
		AvgPrice:  decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Increase adds quantity shares bought at price and recomputes the weighted average:
// (oldAvg*oldQty + qty*price) / (oldQty+qty), rounded half-up to AvgPricePlaces.
func (p *Position) Increase(quantity int64, price Money, now time.Time) error {
	if quantity <= 0 {
		return apperrors.ErrInvalidQuantity
	}
	if price <= 0 {
		return apperrors.ErrInvalidPrice
	}
	if p.Quantity == 0 {
		p.AvgPrice = price.Decimal().Round(AvgPricePlaces)
	} else {
		p.AvgPrice = WeightedAverage(p.AvgPrice, p.Quantity, price, quantity)
	}
	p.Quantity += quantity
	p.UpdatedAt = now
	return nil
}

// Reduce removes quantity shares. closed reports that the position is now empty and
// should be deleted. The average price never changes on a sale.
func (p *Position) Reduce(quantity int64, now time.Time) (closed bool, err error) {
	if quantity <= 0 {
		return false, apperrors.ErrInvalidQuantity
	}
	if quantity > p.Quantity {
		return false, apperrors.ErrInsufficientShares
	}
	p.Quantity -= quantity
	p.UpdatedAt = now
	return p.Quantity == 0, nil
}

// WeightedAverage blends an existing average with a new lot.
func WeightedAverage(oldAvg decimal.Decimal, oldQty int64, price Money, qty int64) decimal.Decimal {
	held := oldAvg.Mul(decimal.NewFromInt(oldQty))
	added := price.Decimal().Mul(decimal.NewFromInt(qty))
	return held.Add(added).DivRound(decimal.NewFromInt(oldQty+qty), AvgPricePlaces)
}

// Valuation is a position marked to a current price, in currency units.
type Valuation struct {
	CurrentValue  decimal.Decimal `json:"currentValue"`
	InvestedValue decimal.Decimal `json:"investedValue"`
	PnL           decimal.Decimal `json:"pnl"`
	PnLPercentage decimal.Decimal `json:"pnlPercentage"`
}

// Valuate marks the position to currentPrice. PnLPercentage is zero when nothing is invested.
func (p *Position) Valuate(currentPrice Money) Valuation {
	qty := decimal.NewFromInt(p.Quantity)
	current := currentPrice.Decimal().Mul(qty).Round(2)
	invested := p.AvgPrice.Mul(qty).Round(2)
	pnl := current.Sub(invested)
	pct := decimal.Zero
	if !invested.IsZero() {
		pct = pnl.Div(invested).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return Valuation{
		CurrentValue:  current,
		InvestedValue: invested,
		PnL:           pnl,
		PnLPercentage: pct,
	}
}
