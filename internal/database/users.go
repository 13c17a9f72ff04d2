package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tradepro/internal/apperrors"
	"tradepro/internal/models"
)

const userColumns = `id, email, password_hash, name, profile, preferences, legacy_balance,
	login_attempts, lock_until, last_login, joined_at, updated_at`

func (q *Queries) CreateUser(ctx context.Context, u *models.User) error {
	_, err := q.exec(ctx, `INSERT INTO users (id, email, password_hash, name, profile, preferences, legacy_balance, joined_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Profile, u.Preferences, u.LegacyBalance, u.JoinedAt, u.UpdatedAt)
	if err = mapErr(err); errors.Is(err, apperrors.ErrDuplicateEntry) {
		return apperrors.ErrEmailTaken
	}
	return err
}

func (q *Queries) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := q.get(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`+q.forUpdate, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := q.get(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (q *Queries) UpdateProfile(ctx context.Context, id, name string, profile models.Profile, prefs models.Preferences, at time.Time) error {
	res, err := q.exec(ctx, `UPDATE users SET name = ?, profile = ?, preferences = ?, updated_at = ? WHERE id = ?`,
		name, profile, prefs, at, id)
	return affectedOne(res, err, apperrors.ErrUserNotFound)
}

// RecordLoginFailure stores the failed-attempt counter and an optional lock.
func (q *Queries) RecordLoginFailure(ctx context.Context, id string, attempts int, lockUntil *time.Time) error {
	_, err := q.exec(ctx, `UPDATE users SET login_attempts = ?, lock_until = ? WHERE id = ?`, attempts, lockUntil, id)
	return mapErr(err)
}

// RecordLoginSuccess clears the failure counter and stamps the login time.
func (q *Queries) RecordLoginSuccess(ctx context.Context, id string, at time.Time) error {
	_, err := q.exec(ctx, `UPDATE users SET login_attempts = 0, lock_until = NULL, last_login = ? WHERE id = ?`, at, id)
	return mapErr(err)
}

func (q *Queries) ClearLegacyBalance(ctx context.Context, id string) error {
	_, err := q.exec(ctx, `UPDATE users SET legacy_balance = NULL WHERE id = ?`, id)
	return mapErr(err)
}

// UsersWithoutWallet lists users created before wallets existed.
func (q *Queries) UsersWithoutWallet(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := q.selectAll(ctx, &ids, `SELECT u.id FROM users u LEFT JOIN wallets w ON w.user_id = u.id
		WHERE w.user_id IS NULL ORDER BY u.joined_at`)
	return ids, mapErr(err)
}

func affectedOne(res sql.Result, err error, notFound error) error {
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
