package database

// TableCounts is reported by the readiness endpoint.
type TableCounts struct {
	Users       int64 `json:"users"`
	Wallets     int64 `json:"wallets"`
	Positions   int64 `json:"positions"`
	Trades      int64 `json:"trades"`
	Watchlist   int64 `json:"watchlist"`
	Stocks      int64 `json:"stocks"`
	PricePoints int64 `json:"priceHistory"`
}

// Holding is the net share count for a symbol derived from trade history.
type Holding struct {
	Symbol   string `db:"symbol" json:"symbol"`
	Quantity int64  `db:"quantity" json:"quantity"`
}
