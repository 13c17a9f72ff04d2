package models

import "time"

type WatchlistEntry struct {
	UserID  string    `db:"user_id" json:"-"`
	Symbol  string    `db:"symbol" json:"symbol"`
	Name    string    `db:"name" json:"name"`
	AddedAt time.Time `db:"added_at" json:"addedAt"`
}
