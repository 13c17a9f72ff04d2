package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"tradepro/internal/apperrors"
	"tradepro/internal/config"
	"tradepro/internal/database"
	"tradepro/internal/models"
)

const (
	openingDescription    = "Initial wallet setup"
	depositDescription    = "Wallet deposit"
	withdrawalDescription = "Wallet withdrawal"
)

// WalletResult is the outcome of a single wallet mutation.
type WalletResult struct {
	Balance  models.Money       `json:"balance"`
	Currency string             `json:"currency"`
	Entry    models.LedgerEntry `json:"transaction"`
}

// Reconciliation compares the stored balance with the ledger.
type Reconciliation struct {
	Balance   models.Money `json:"balance"`
	LedgerSum models.Money `json:"ledgerSum"`
	OK        bool         `json:"ok"`
}

type WalletService struct {
	repo  *database.Repo
	locks *UserLocks
	cfg   config.WalletConfig
	log   *logrus.Logger
	now   func() time.Time
}

func NewWalletService(repo *database.Repo, locks *UserLocks, cfg config.WalletConfig, log *logrus.Logger) *WalletService {
	return &WalletService{repo: repo, locks: locks, cfg: cfg, log: log, now: utcNow}
}

func utcNow() time.Time { return time.Now().UTC() }

// Initialize creates the user's wallet if it does not exist and returns it with its
// transactions. Calling it again returns the existing wallet unchanged.
func (s *WalletService) Initialize(ctx context.Context, userID string) (*models.Wallet, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	err := s.repo.InTx(ctx, func(ctx context.Context, q *database.Queries) error {
		_, err := s.loadOrCreate(ctx, q, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// Get returns the wallet with transactions newest first.
func (s *WalletService) Get(ctx context.Context, userID string) (*models.Wallet, error) {
	var w *models.Wallet
	err := s.repo.View(ctx, func(ctx context.Context, q *database.Queries) error {
		var err error
		if w, err = q.GetWallet(ctx, userID); err != nil {
			return err
		}
		w.Transactions, err = q.LedgerEntries(ctx, userID, 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WalletService) Deposit(ctx context.Context, userID string, amount models.Money, description string) (*WalletResult, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if description == "" {
		description = depositDescription
	}
	return s.mutate(ctx, userID, func(w *models.Wallet, now time.Time) (models.LedgerEntry, error) {
		return w.Deposit(amount, description, now)
	})
}

func (s *WalletService) Withdraw(ctx context.Context, userID string, amount models.Money, description string) (*WalletResult, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if description == "" {
		description = withdrawalDescription
	}
	return s.mutate(ctx, userID, func(w *models.Wallet, now time.Time) (models.LedgerEntry, error) {
		return w.Withdraw(amount, description, now)
	})
}

// Reconcile checks that the stored balance equals the sum of the ledger.
func (s *WalletService) Reconcile(ctx context.Context, userID string) (*Reconciliation, error) {
	var r Reconciliation
	err := s.repo.View(ctx, func(ctx context.Context, q *database.Queries) error {
		w, err := q.GetWallet(ctx, userID)
		if err != nil {
			return err
		}
		r.Balance = w.Balance
		r.LedgerSum, err = q.LedgerSum(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	r.OK = r.Balance == r.LedgerSum
	if !r.OK {
		s.log.WithFields(logrus.Fields{
			"user_id":    userID,
			"balance":    r.Balance.String(),
			"ledger_sum": r.LedgerSum.String(),
		}).Error("wallet does not reconcile with ledger")
	}
	return &r, nil
}

// MigrateLegacy creates wallets for users registered before wallets existed,
// carrying over their flat balance. It returns the number of wallets created.
func (s *WalletService) MigrateLegacy(ctx context.Context) (int, error) {
	var ids []string
	err := s.repo.View(ctx, func(ctx context.Context, q *database.Queries) error {
		var err error
		ids, err = q.UsersWithoutWallet(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	migrated := 0
	for _, id := range ids {
		w, err := s.Initialize(ctx, id)
		if err != nil {
			return migrated, err
		}
		migrated++
		s.log.Infof("migrated wallet for user %s with balance %s %s", id, w.Balance, w.Currency)
	}
	return migrated, nil
}

func (s *WalletService) mutate(ctx context.Context, userID string, fn func(w *models.Wallet, now time.Time) (models.LedgerEntry, error)) (*WalletResult, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	var res *WalletResult
	err := s.repo.InTx(ctx, func(ctx context.Context, q *database.Queries) error {
		var err error
		res, err = s.applyIn(ctx, q, userID, fn)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// applyIn runs one wallet mutation inside an open transaction. The caller holds the user lock.
func (s *WalletService) applyIn(ctx context.Context, q *database.Queries, userID string, fn func(w *models.Wallet, now time.Time) (models.LedgerEntry, error)) (*WalletResult, error) {
	w, err := s.loadOrCreate(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	e, err := fn(w, s.now())
	if err != nil {
		return nil, err
	}
	if err := q.ApplyEntry(ctx, w, &e); err != nil {
		return nil, err
	}
	return &WalletResult{Balance: w.Balance, Currency: w.Currency, Entry: e}, nil
}

func (s *WalletService) loadOrCreate(ctx context.Context, q *database.Queries, userID string) (*models.Wallet, error) {
	w, err := q.GetWallet(ctx, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, apperrors.ErrWalletNotFound) {
		return nil, err
	}
	u, err := q.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, q, u)
}

// create opens a wallet funded with the legacy balance, or the configured opening balance.
func (s *WalletService) create(ctx context.Context, q *database.Queries, u *models.User) (*models.Wallet, error) {
	now := s.now()
	w := models.NewWallet(u.ID, s.cfg.Currency, now)

	opening := s.cfg.OpeningBalance
	if u.LegacyBalance != nil {
		opening = *u.LegacyBalance
	}
	if opening > 0 {
		if _, err := w.Deposit(opening, openingDescription, now); err != nil {
			return nil, err
		}
	}
	if err := q.CreateWallet(ctx, w); err != nil {
		return nil, err
	}
	if u.LegacyBalance != nil {
		if err := q.ClearLegacyBalance(ctx, u.ID); err != nil {
			return nil, err
		}
	}
	s.log.WithFields(logrus.Fields{"user_id": u.ID, "balance": w.Balance.String()}).Info("wallet initialized")
	return w, nil
}
