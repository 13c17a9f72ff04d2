package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"tradepro/internal/auth"
	"tradepro/internal/database"
	"tradepro/internal/models"
)

// Password is the plain-text password of every user built by UserBuilder.
const Password = "secret123"

var (
	userCounter atomic.Int64
	// hashing is slow, so all builders share one hash of Password
	passwordHash = func() string {
		h, err := auth.HashPassword(Password)
		if err != nil {
			panic(err)
		}
		return h
	}()
)

// UserBuilder provides a fluent interface for creating test users.
//
// Example usage:
//
//	user := testutil.NewUser().Build(t, repo)
//
//	legacy := testutil.NewUser().
//	    WithEmail("old@example.com").
//	    WithLegacyBalance(models.MustParseMoney("250")).
//	    Build(t, repo)
type UserBuilder struct {
	ID            string
	Email         string
	Name          string
	LegacyBalance *models.Money
}

// NewUser creates a UserBuilder with a unique email.
func NewUser() *UserBuilder {
	n := userCounter.Add(1)
	return &UserBuilder{
		ID:    uuid.NewString(),
		Email: fmt.Sprintf("user%d@example.com", n),
		Name:  fmt.Sprintf("Test User %d", n),
	}
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.Email = email
	return b
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.Name = name
	return b
}

// WithLegacyBalance gives the user a pre-wallet flat balance.
func (b *UserBuilder) WithLegacyBalance(m models.Money) *UserBuilder {
	b.LegacyBalance = &m
	return b
}

// Build inserts the user without a wallet.
func (b *UserBuilder) Build(t *testing.T, repo *database.Repo) *models.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	u := &models.User{
		ID:            b.ID,
		Email:         b.Email,
		PasswordHash:  passwordHash,
		Name:          b.Name,
		Profile:       models.DefaultProfile(),
		Preferences:   models.DefaultPreferences(),
		LegacyBalance: b.LegacyBalance,
		JoinedAt:      now,
		UpdatedAt:     now,
	}
	err := repo.InTx(context.Background(), func(ctx context.Context, q *database.Queries) error {
		return q.CreateUser(ctx, u)
	})
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return u
}

// SetPrice moves a seeded quote to price so tests can assert exact amounts.
func SetPrice(t *testing.T, repo *database.Repo, symbol string, price models.Money) {
	t.Helper()
	err := repo.InTx(context.Background(), func(ctx context.Context, q *database.Queries) error {
		s, err := q.GetStock(ctx, symbol)
		if err != nil {
			return err
		}
		s.Reprice(price, time.Now().UTC())
		return q.UpdateQuote(ctx, s)
	})
	if err != nil {
		t.Fatalf("Failed to set price of %s: %v", symbol, err)
	}
}
