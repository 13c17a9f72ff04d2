package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	KYCPending  = "PENDING"
	KYCVerified = "VERIFIED"
	KYCRejected = "REJECTED"

	RiskConservative = "CONSERVATIVE"
	RiskModerate     = "MODERATE"
	RiskAggressive   = "AGGRESSIVE"
)

type User struct {
	ID            string      `db:"id" json:"id"`
	Email         string      `db:"email" json:"email"`
	PasswordHash  string      `db:"password_hash" json:"-"`
	Name          string      `db:"name" json:"name"`
	Profile       Profile     `db:"profile" json:"profile"`
	Preferences   Preferences `db:"preferences" json:"preferences"`
	LegacyBalance *Money      `db:"legacy_balance" json:"-"`
	LoginAttempts int         `db:"login_attempts" json:"-"`
	LockUntil     *time.Time  `db:"lock_until" json:"-"`
	LastLogin     *time.Time  `db:"last_login" json:"lastLogin,omitempty"`
	JoinedAt      time.Time   `db:"joined_at" json:"joinedDate"`
	UpdatedAt     time.Time   `db:"updated_at" json:"-"`
}

// PublicUser is the part of a user returned outside the profile endpoints.
type PublicUser struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, LastLogin: u.LastLogin}
}

// Locked reports whether failed logins have locked the account at now.
func (u *User) Locked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
	Country string `json:"country,omitempty"`
}

type BankAccount struct {
	AccountNumber string `json:"accountNumber,omitempty"`
	IFSCCode      string `json:"ifscCode,omitempty"`
	BankName      string `json:"bankName,omitempty"`
	AccountType   string `json:"accountType,omitempty"`
}

// Profile holds KYC details. PanCard and BankAccount.AccountNumber are sealed at rest.
type Profile struct {
	Phone       string      `json:"phone,omitempty"`
	Address     Address     `json:"address"`
	PanCard     string      `json:"panCard,omitempty"`
	BankAccount BankAccount `json:"bankAccount"`
	KYCStatus   string      `json:"kycStatus"`
	RiskProfile string      `json:"riskProfile"`
}

// DefaultProfile is the profile a new user starts with.
func DefaultProfile() Profile {
	return Profile{
		Address:     Address{Country: "India"},
		KYCStatus:   KYCPending,
		RiskProfile: RiskModerate,
	}
}

// Validate checks the enumerated fields.
func (p Profile) Validate() error {
	switch p.KYCStatus {
	case KYCPending, KYCVerified, KYCRejected:
	default:
		return fmt.Errorf("invalid kycStatus %q", p.KYCStatus)
	}
	switch p.RiskProfile {
	case RiskConservative, RiskModerate, RiskAggressive:
	default:
		return fmt.Errorf("invalid riskProfile %q", p.RiskProfile)
	}
	switch p.BankAccount.AccountType {
	case "", "Savings", "Current":
	default:
		return fmt.Errorf("invalid accountType %q", p.BankAccount.AccountType)
	}
	return nil
}

func (p Profile) Value() (driver.Value, error) { return jsonValue(p) }

func (p *Profile) Scan(src any) error { return jsonScan(src, p) }

type Notifications struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
	Push  bool `json:"push"`
}

type Preferences struct {
	Notifications Notifications `json:"notifications"`
	Theme         string        `json:"theme"`
	Language      string        `json:"language"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Notifications: Notifications{Email: true, SMS: false, Push: true},
		Theme:         "light",
		Language:      "en",
	}
}

func (p Preferences) Value() (driver.Value, error) { return jsonValue(p) }

func (p *Preferences) Scan(src any) error { return jsonScan(src, p) }

func jsonValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(src any, dst any) error {
	switch s := src.(type) {
	case nil:
		return nil
	case string:
		return json.Unmarshal([]byte(s), dst)
	case []byte:
		return json.Unmarshal(s, dst)
	default:
		return fmt.Errorf("cannot scan %T into %T", src, dst)
	}
}
