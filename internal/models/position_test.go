package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"tradepro/internal/apperrors"
)

func TestPosition_FirstBuySetsAverage(t *testing.T) {
	p := NewPosition("u1", "ACME", "Acme Corp", testNow)
	require.NoError(t, p.Increase(10, MustParseMoney("50"), testNow))

	assert.Equal(t, int64(10), p.Quantity)
	assert.True(t, p.AvgPrice.Equal(decimal.NewFromInt(50)), p.AvgPrice.String())
}

func TestPosition_IncreaseValidation(t *testing.T) {
	p := NewPosition("u1", "ACME", "", testNow)
	assert.ErrorIs(t, p.Increase(0, 100, testNow), apperrors.ErrInvalidQuantity)
	assert.ErrorIs(t, p.Increase(-3, 100, testNow), apperrors.ErrInvalidQuantity)
	assert.ErrorIs(t, p.Increase(1, 0, testNow), apperrors.ErrInvalidPrice)
	assert.Equal(t, int64(0), p.Quantity)
}

func TestPosition_TwoBuysWeightedAverage(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		q1 := rapid.Int64Range(1, 10_000).Draw(t, "q1")
		q2 := rapid.Int64Range(1, 10_000).Draw(t, "q2")
		p1 := Money(rapid.Int64Range(1, 10_000_000).Draw(t, "p1"))
		p2 := Money(rapid.Int64Range(1, 10_000_000).Draw(t, "p2"))

		pos := NewPosition("u1", "SYM", "", testNow)
		if err := pos.Increase(q1, p1, testNow); err != nil {
			t.Fatal(err)
		}
		if err := pos.Increase(q2, p2, testNow); err != nil {
			t.Fatal(err)
		}

		want := p1.Decimal().Mul(decimal.NewFromInt(q1)).
			Add(p2.Decimal().Mul(decimal.NewFromInt(q2))).
			DivRound(decimal.NewFromInt(q1+q2), AvgPricePlaces)
		if pos.Quantity != q1+q2 {
			t.Fatalf("quantity %d, want %d", pos.Quantity, q1+q2)
		}
		if !pos.AvgPrice.Equal(want) {
			t.Fatalf("avg %s, want %s", pos.AvgPrice, want)
		}
		lo, hi := p1, p2
		if lo > hi {
			lo, hi = hi, lo
		}
		if pos.AvgPrice.LessThan(lo.Decimal()) || pos.AvgPrice.GreaterThan(hi.Decimal()) {
			t.Fatalf("avg %s outside [%s, %s]", pos.AvgPrice, lo, hi)
		}
	})
}

func TestPosition_Reduce(t *testing.T) {
	p := NewPosition("u1", "ACME", "", testNow)
	require.NoError(t, p.Increase(15, MustParseMoney("40"), testNow))

	closed, err := p.Reduce(16, testNow)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientShares)
	assert.False(t, closed)
	assert.Equal(t, int64(15), p.Quantity)

	_, err = p.Reduce(0, testNow)
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuantity)

	closed, err = p.Reduce(5, testNow)
	require.NoError(t, err)
	assert.False(t, closed)
	assert.Equal(t, int64(10), p.Quantity)
	assert.True(t, p.AvgPrice.Equal(decimal.NewFromInt(40)))

	closed, err = p.Reduce(10, testNow)
	require.NoError(t, err)
	assert.True(t, closed)
	assert.Equal(t, int64(0), p.Quantity)
}

func TestPosition_Valuate(t *testing.T) {
	p := NewPosition("u1", "ACME", "", testNow)
	require.NoError(t, p.Increase(4, MustParseMoney("25"), testNow))

	v := p.Valuate(MustParseMoney("30"))
	assert.Equal(t, "120.00", v.CurrentValue.StringFixed(2))
	assert.Equal(t, "100.00", v.InvestedValue.StringFixed(2))
	assert.Equal(t, "20.00", v.PnL.StringFixed(2))
	assert.Equal(t, "20.00", v.PnLPercentage.StringFixed(2))

	empty := NewPosition("u1", "NONE", "", testNow)
	assert.True(t, empty.Valuate(100).PnLPercentage.IsZero())
}

// Balance 1000, buy 10@50, buy 5@60, sell 15@70.
func TestAcmeScenario(t *testing.T) {
	w := seededWallet(t, MustParseMoney("1000"))
	p := NewPosition("u1", "ACME", "Acme", testNow)

	buy := func(q int64, price Money) {
		require.NoError(t, p.Increase(q, price, testNow))
		_, err := w.Debit(price.Times(q), TradeMeta{Symbol: "ACME", Quantity: q, PricePerShare: price}, testNow)
		require.NoError(t, err)
	}

	buy(10, MustParseMoney("50"))
	assert.Equal(t, MustParseMoney("500"), w.Balance)
	assert.Equal(t, int64(10), p.Quantity)
	assert.True(t, p.AvgPrice.Equal(decimal.NewFromInt(50)))

	buy(5, MustParseMoney("60"))
	assert.Equal(t, MustParseMoney("200"), w.Balance)
	assert.Equal(t, int64(15), p.Quantity)
	assert.Equal(t, "53.33", p.AvgPrice.StringFixed(2))

	closed, err := p.Reduce(15, testNow)
	require.NoError(t, err)
	assert.True(t, closed)
	sale := MustParseMoney("70").Times(15)
	_, err = w.Credit(sale, TradeMeta{Symbol: "ACME", Quantity: 15, PricePerShare: MustParseMoney("70")}, testNow)
	require.NoError(t, err)

	assert.Equal(t, MustParseMoney("1250"), w.Balance)
	assert.Equal(t, w.Balance, LedgerSum(w.Transactions))
}
