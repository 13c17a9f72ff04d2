package models

import "time"

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// TradeRecord is the append-only history of executed orders.
type TradeRecord struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"-"`
	Side      Side      `db:"side" json:"type"`
	Symbol    string    `db:"symbol" json:"symbol"`
	Name      string    `db:"name" json:"name"`
	Quantity  int64     `db:"quantity" json:"quantity"`
	Price     Money     `db:"price" json:"price"`
	Total     Money     `db:"total" json:"total"`
	Fees      Money     `db:"fees" json:"fees"`
	CreatedAt time.Time `db:"created_at" json:"date"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// MaxPage bounds the page number so Offset cannot overflow.
const MaxPage = 1 << 20

// NewPagination clamps page and limit and computes the page count.
func NewPagination(page, limit, total int) Pagination {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	pages := (total + limit - 1) / limit
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// Offset is the number of rows to skip for the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}
