package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"tradepro/internal/apperrors"
	"tradepro/internal/auth"
	"tradepro/internal/database"
	"tradepro/internal/models"
)

// ProfileUpdate changes only the fields that are set.
type ProfileUpdate struct {
	Name        *string             `json:"name"`
	Profile     *models.Profile     `json:"profile"`
	Preferences *models.Preferences `json:"preferences"`
}

// UserService reads and updates profiles. The PAN and the bank account number are
// sealed before they are stored and opened for the owner.
type UserService struct {
	repo   *database.Repo
	cipher *auth.FieldCipher
	log    *logrus.Logger
	now    func() time.Time
}

func NewUserService(repo *database.Repo, cipher *auth.FieldCipher, log *logrus.Logger) *UserService {
	return &UserService{repo: repo, cipher: cipher, log: log, now: utcNow}
}

func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	var u *models.User
	err := s.repo.View(ctx, func(ctx context.Context, q *database.Queries) error {
		var err error
		u, err = q.GetUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := s.open(&u.Profile); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error) {
	err := s.repo.InTx(ctx, func(ctx context.Context, q *database.Queries) error {
		u, err := q.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.open(&u.Profile); err != nil {
			return err
		}

		if upd.Name != nil {
			name := strings.TrimSpace(*upd.Name)
			if name == "" || len(name) > maxNameLength {
				return apperrors.Invalid("Name must be between 1 and 100 characters")
			}
			u.Name = name
		}
		if upd.Profile != nil {
			p := *upd.Profile
			if p.KYCStatus == "" {
				p.KYCStatus = u.Profile.KYCStatus
			}
			if p.RiskProfile == "" {
				p.RiskProfile = u.Profile.RiskProfile
			}
			if err := p.Validate(); err != nil {
				return apperrors.Invalid(err.Error())
			}
			u.Profile = p
		}
		if upd.Preferences != nil {
			if t := upd.Preferences.Theme; t != "" && t != "light" && t != "dark" {
				return apperrors.Invalid(fmt.Sprintf("invalid theme %q", t))
			}
			u.Preferences = *upd.Preferences
		}

		sealed := u.Profile
		if err := s.seal(&sealed); err != nil {
			return err
		}
		return q.UpdateProfile(ctx, userID, u.Name, sealed, u.Preferences, s.now())
	})
	if err != nil {
		return nil, err
	}
	return s.Profile(ctx, userID)
}

func (s *UserService) seal(p *models.Profile) error {
	var err error
	if p.PanCard, err = s.cipher.Seal(p.PanCard); err != nil {
		return fmt.Errorf("seal pan: %w", err)
	}
	if p.BankAccount.AccountNumber, err = s.cipher.Seal(p.BankAccount.AccountNumber); err != nil {
		return fmt.Errorf("seal account number: %w", err)
	}
	return nil
}

func (s *UserService) open(p *models.Profile) error {
	var err error
	if p.PanCard, err = s.cipher.Open(p.PanCard); err != nil {
		return fmt.Errorf("open pan: %w", err)
	}
	if p.BankAccount.AccountNumber, err = s.cipher.Open(p.BankAccount.AccountNumber); err != nil {
		return fmt.Errorf("open account number: %w", err)
	}
	return nil
}
