package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradepro/internal/apperrors"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in      string
		want    Money
		wantErr bool
	}{
		{"1000", 100000, false},
		{"0.1", 10, false},
		{"12.34", 1234, false},
		{"-5.25", -525, false},
		{"1.234", 0, true},
		{"abc", 0, true},
		{"92233720368547758.07", MaxMoney, false},
		{"92233720368547758.08", 0, true},
		{"184467440737095516.17", 0, true},
		{"-184467440737095516.17", 0, true},
		{"1e30", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseMoney_OutOfRangeIsInvalidAmount(t *testing.T) {
	_, err := ParseMoney("1e30")
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
}

func TestMoney_AddChecked(t *testing.T) {
	sum, ok := Money(100).AddChecked(250)
	assert.True(t, ok)
	assert.Equal(t, Money(350), sum)

	_, ok = MaxMoney.AddChecked(1)
	assert.False(t, ok)
	_, ok = Money(math.MinInt64).AddChecked(-1)
	assert.False(t, ok)
	sum, ok = MaxMoney.AddChecked(-1)
	assert.True(t, ok)
	assert.Equal(t, MaxMoney-1, sum)
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{Amount: 150005})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount": 1500.05}`, string(b))

	var in struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 99.9, "b": "100"}`), &in))
	assert.Equal(t, Money(9990), in.A)
	assert.Equal(t, Money(10000), in.B)

	assert.Error(t, json.Unmarshal([]byte(`{"a": 0.001}`), &in))
}

func TestFeeSchedule(t *testing.T) {
	f := DefaultFees
	assert.Equal(t, Money(0), f.Calculate(0))
	// 0.10% of 50.00 is 0.05, below the minimum.
	assert.Equal(t, Money(10), f.Calculate(MustParseMoney("50")))
	assert.Equal(t, MustParseMoney("1.05"), f.Calculate(MustParseMoney("1050")))
	// 0.10% of 1234.50 = 1.2345, half-up to 1.23
	assert.Equal(t, MustParseMoney("1.23"), f.Calculate(MustParseMoney("1234.50")))

	// large notionals must not overflow the intermediate product
	assert.Equal(t, Money(9223372036854776), f.Calculate(MaxMoney))
	full := FeeSchedule{RateBps: MaxFeeRateBps}
	assert.Equal(t, MaxMoney, full.Calculate(MaxMoney))
	// 0.10% of 1235.00 = 1.235 rounds up
	assert.Equal(t, MustParseMoney("1.24"), f.Calculate(MustParseMoney("1235")))
}

func TestPagination(t *testing.T) {
	p := NewPagination(0, 0, 45)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 3, p.Pages)
	assert.Equal(t, 0, p.Offset())

	p = NewPagination(2, 10, 0)
	assert.Equal(t, 0, p.Pages)
	assert.Equal(t, 10, p.Offset())

	p = NewPagination(math.MaxInt, 100, 3)
	assert.Equal(t, MaxPage, p.Page)
	assert.Equal(t, (MaxPage-1)*100, p.Offset())
	assert.Positive(t, p.Offset())
}

func TestStockReprice(t *testing.T) {
	s := Stock{Symbol: "TCS", Price: 10000, High52W: 10500, Low52W: 9000}
	s.Reprice(10200, testNow)
	assert.Equal(t, Money(200), s.Change)
	assert.Equal(t, int64(200), s.ChangeBps)
	assert.Equal(t, "2", s.ChangePercent().String())

	s.Reprice(8000, testNow)
	assert.Equal(t, Money(8000), s.Low52W)
	assert.Equal(t, Money(10500), s.High52W)
}

func TestChartWindow(t *testing.T) {
	p, d := ChartWindow("1W")
	assert.Equal(t, "1W", p)
	assert.Equal(t, 7, d)
	p, d = ChartWindow("5Y")
	assert.Equal(t, "1M", p)
	assert.Equal(t, 30, d)
}

func TestProfileValidate(t *testing.T) {
	p := DefaultProfile()
	assert.NoError(t, p.Validate())
	p.RiskProfile = "YOLO"
	assert.Error(t, p.Validate())
}
