package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tradepro/internal/apperrors"
	"tradepro/internal/auth"
	"tradepro/internal/database"
	"tradepro/internal/models"
)

const (
	maxLoginAttempts = 5
	lockDuration     = 2 * time.Hour
	maxNameLength    = 100
)

// LoginResult is a session token with the public user fields. Profile fields stay
// sealed in storage and are only opened by UserService.
type LoginResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

type AuthService struct {
	repo    *database.Repo
	wallets *WalletService
	issuer  *auth.Issuer
	log     *logrus.Logger
	now     func() time.Time
}

func NewAuthService(repo *database.Repo, wallets *WalletService, issuer *auth.Issuer, log *logrus.Logger) *AuthService {
	return &AuthService{repo: repo, wallets: wallets, issuer: issuer, log: log, now: utcNow}
}

// Register creates the user and its wallet in one transaction.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, apperrors.Invalid("Please provide name, email, and password")
	}
	if len(password) < auth.MinPasswordLength {
		return nil, apperrors.Invalid("Password must be at least 6 characters long")
	}
	if len(name) > maxNameLength {
		return nil, apperrors.Invalid("Name cannot exceed 100 characters")
	}
	if !strings.Contains(email, "@") {
		return nil, apperrors.Invalid("Please provide a valid email")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Profile:      models.DefaultProfile(),
		Preferences:  models.DefaultPreferences(),
		JoinedAt:     now,
		UpdatedAt:    now,
	}
	err = s.repo.InTx(ctx, func(ctx context.Context, q *database.Queries) error {
		if err := q.CreateUser(ctx, u); err != nil {
			return err
		}
		_, err := s.wallets.create(ctx, q, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Infof("new user registered: %s (%s)", u.Email, u.ID)
	return u, nil
}

// Login verifies the password and issues a token. Five consecutive failures lock the
// account for two hours.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.Invalid("Please provide email and password")
	}

	var u *models.User
	err := s.repo.View(ctx, func(ctx context.Context, q *database.Queries) error {
		var err error
		u, err = q.GetUserByEmail(ctx, email)
		return err
	})
	if errors.Is(err, apperrors.ErrUserNotFound) {
		s.log.Warnf("login failed: unknown email %s", email)
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	if u.Locked(now) {
		return nil, apperrors.ErrAccountLocked
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		if err := s.recordFailure(ctx, u, now); err != nil {
			return nil, err
		}
		s.log.Warnf("login failed: invalid password for %s", email)
		return nil, apperrors.ErrInvalidCredentials
	}

	err = s.repo.InTx(ctx, func(ctx context.Context, q *database.Queries) error {
		return q.RecordLoginSuccess(ctx, u.ID, now)
	})
	if err != nil {
		return nil, err
	}
	token, err := s.issuer.Issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	u.LastLogin = &now
	s.log.Infof("user logged in: %s", u.Email)
	return &LoginResult{Token: token, User: u.Public()}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, u *models.User, now time.Time) error {
	attempts := u.LoginAttempts + 1
	var lockUntil *time.Time
	if u.LockUntil != nil && !u.LockUntil.After(now) {
		// an expired lock restarts the count
		attempts = 1
	}
	if attempts >= maxLoginAttempts {
		t := now.Add(lockDuration)
		lockUntil = &t
	}
	return s.repo.InTx(ctx, func(ctx context.Context, q *database.Queries) error {
		return q.RecordLoginFailure(ctx, u.ID, attempts, lockUntil)
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
