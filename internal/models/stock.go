package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Stock is a simulated quote.
type Stock struct {
	Symbol    string    `db:"symbol" json:"symbol"`
	Name      string    `db:"name" json:"name"`
	Sector    string    `db:"sector" json:"sector"`
	Price     Money     `db:"price" json:"price"`
	Change    Money     `db:"change_amount" json:"change"`
	ChangeBps int64     `db:"change_bps" json:"-"`
	MarketCap int64     `db:"market_cap" json:"marketCap"`
	PERatio   string    `db:"pe_ratio" json:"peRatio"`
	Volume    int64     `db:"volume" json:"volume"`
	High52W   Money     `db:"high_52w" json:"high52Week"`
	Low52W    Money     `db:"low_52w" json:"low52Week"`
	Logo      string    `db:"logo" json:"logo"`
	UpdatedAt time.Time `db:"updated_at" json:"lastUpdated"`
}

// ChangePercent returns ChangeBps as a percentage with two decimals.
func (s Stock) ChangePercent() decimal.Decimal {
	return decimal.New(s.ChangeBps, -2)
}

func (s Stock) MarshalJSON() ([]byte, error) {
	type plain Stock
	return json.Marshal(struct {
		plain
		ChangePercent decimal.Decimal `json:"changePercent"`
	}{plain(s), s.ChangePercent()})
}

// Reprice moves the quote to price and derives the change from the previous price.
func (s *Stock) Reprice(price Money, now time.Time) {
	prev := s.Price
	s.Price = price
	s.Change = price - prev
	if prev > 0 {
		s.ChangeBps = int64(s.Change) * 10000 / int64(prev)
	}
	if price > s.High52W {
		s.High52W = price
	}
	if s.Low52W == 0 || price < s.Low52W {
		s.Low52W = price
	}
	s.UpdatedAt = now
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

type PricePoint struct {
	Symbol    string    `db:"symbol" json:"-"`
	Price     Money     `db:"price" json:"price"`
	Timestamp time.Time `db:"recorded_at" json:"timestamp"`
}

// StockFilter selects and orders quotes for the listing endpoint.
type StockFilter struct {
	Search string
	Sector string
	SortBy string
	Limit  int
}

const (
	SortByName      = "name"
	SortByPrice     = "price"
	SortByChange    = "change"
	SortByMarketCap = "marketCap"
)

// ChartPeriods maps a chart period to its window in days.
var ChartPeriods = map[string]int{
	"1D": 1,
	"1W": 7,
	"1M": 30,
	"3M": 90,
	"1Y": 365,
}

// ChartWindow returns the number of days for period, defaulting to one month.
func ChartWindow(period string) (string, int) {
	if d, ok := ChartPeriods[period]; ok {
		return period, d
	}
	return "1M", ChartPeriods["1M"]
}

// MarketIndex is a static reference index shown on the market overview.
type MarketIndex struct {
	Name          string          `json:"name"`
	Value         decimal.Decimal `json:"value"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
}

func MarketIndices() []MarketIndex {
	d := decimal.RequireFromString
	return []MarketIndex{
		{Name: "NIFTY 50", Value: d("19674.25"), Change: d("142.30"), ChangePercent: d("0.73")},
		{Name: "SENSEX", Value: d("65953.48"), Change: d("481.06"), ChangePercent: d("0.73")},
		{Name: "NIFTY BANK", Value: d("44612.10"), Change: d("-98.45"), ChangePercent: d("-0.22")},
		{Name: "NIFTY IT", Value: d("31245.60"), Change: d("256.80"), ChangePercent: d("0.83")},
	}
}
