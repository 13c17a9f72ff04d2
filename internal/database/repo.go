package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"tradepro/internal/apperrors"
)

const DefaultTimeout = 5 * time.Second

type Repo struct {
	db      *sqlx.DB
	log     *logrus.Logger
	timeout time.Duration
	retries uint64
}

type Option func(*Repo)

// WithTimeout bounds every read and every transaction.
func WithTimeout(d time.Duration) Option {
	return func(r *Repo) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func New(db *sqlx.DB, log *logrus.Logger, opts ...Option) *Repo {
	r := &Repo{db: db, log: log, timeout: DefaultTimeout, retries: 3}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Queries runs statements against either the pool or an open transaction.
type Queries struct {
	ext       sqlx.ExtContext
	forUpdate string
	log       *logrus.Logger
}

func (r *Repo) queries(ext sqlx.ExtContext, inTx bool) *Queries {
	q := &Queries{ext: ext, log: r.log}
	if inTx && r.db.DriverName() == DriverPostgres {
		q.forUpdate = " FOR UPDATE"
	}
	return q
}

func (r *Repo) backoff() retry.Backoff {
	return retry.WithMaxRetries(r.retries, retry.NewExponential(50*time.Millisecond))
}

// View runs read-only work with the storage timeout, retrying when storage is unavailable.
func (r *Repo) View(ctx context.Context, fn func(ctx context.Context, q *Queries) error) error {
	return retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		err := mapErr(fn(ctx, r.queries(r.db, false)))
		if errors.Is(err, apperrors.ErrStorageUnavailable) {
			r.log.Warnf("read failed, retrying: %v", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

// InTx runs fn in a single transaction. Any error or panic rolls the transaction back.
// Only BeginTxx is retried; once fn has run nothing is replayed.
func (r *Repo) InTx(ctx context.Context, fn func(ctx context.Context, q *Queries) error) (err error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var tx *sqlx.Tx
	err = retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		var berr error
		tx, berr = r.db.BeginTxx(ctx, nil)
		if berr = mapErr(berr); errors.Is(berr, apperrors.ErrStorageUnavailable) {
			return retry.RetryableError(berr)
		}
		return berr
	})
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.log.Warnf("rollback failed: %v", rbErr)
			}
		}
	}()

	if err = fn(ctx, r.queries(tx, true)); err != nil {
		return mapErr(err)
	}
	if err = tx.Commit(); err != nil {
		return mapErr(err)
	}
	return nil
}

func (r *Repo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return mapErr(r.db.PingContext(ctx))
}

// Counts returns row counts for the main tables.
func (r *Repo) Counts(ctx context.Context) (TableCounts, error) {
	var c TableCounts
	err := r.View(ctx, func(ctx context.Context, q *Queries) error {
		targets := []struct {
			table string
			dst   *int64
		}{
			{"users", &c.Users},
			{"wallets", &c.Wallets},
			{"positions", &c.Positions},
			{"trades", &c.Trades},
			{"watchlist", &c.Watchlist},
			{"stocks", &c.Stocks},
			{"price_history", &c.PricePoints},
		}
		for _, t := range targets {
			if err := sqlx.GetContext(ctx, q.ext, t.dst, "SELECT COUNT(*) FROM "+t.table); err != nil {
				return fmt.Errorf("count %s: %w", t.table, err)
			}
		}
		return nil
	})
	return c, err
}

func (q *Queries) get(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.GetContext(ctx, q.ext, dest, q.ext.Rebind(query), args...)
}

func (q *Queries) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, q.ext, dest, q.ext.Rebind(query), args...)
}

func (q *Queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.ext.ExecContext(ctx, q.ext.Rebind(query), args...)
}

// mapErr translates driver errors into the shared sentinels and leaves everything else alone.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, apperrors.ErrDuplicateEntry) || errors.Is(err, apperrors.ErrStorageUnavailable) {
		return err
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", apperrors.ErrDuplicateEntry, err)
	}
	if isUnavailable(err) {
		return fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		return sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// connection exception, insufficient resources, operator intervention
		switch pqErr.Code.Class() {
		case "08", "53", "57":
			return true
		}
	}
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		switch sqErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
	}
	return false
}
