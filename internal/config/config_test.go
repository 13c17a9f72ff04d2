package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradepro/internal/models"
)

var envKeys = []string{
	"APP_ENV", "PORT", "DB_DRIVER", "POSTGRES_URL", "SQLITE_PATH", "DB_TIMEOUT", "JWT_SECRET", "JWT_TTL",
	"FIELD_KEY", "WALLET_OPENING_BALANCE", "WALLET_CURRENCY", "FEE_RATE_BPS", "FEE_MINIMUM",
	"TRADE_CHARGE_FEES", "RAZORPAY_KEY_ID", "RAZORPAY_KEY_SECRET", "PAYMENT_MOCK_MODE",
	"PAYMENT_MOCK_FALLBACK", "PAYMENT_CURRENCY", "PRICE_UPDATE_SCHEDULE", "PRICE_BACKFILL_DAYS",
}

// clearEnv blanks every key Load reads; an empty value means "use the default".
func clearEnv(t *testing.T) {
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", ":memory:")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, models.MustParseMoney("1000"), cfg.Wallet.OpeningBalance)
	assert.Equal(t, "USD", cfg.Wallet.Currency)
	assert.Equal(t, 5*time.Second, cfg.Database.Timeout)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, models.DefaultFees, cfg.Trading.Fees)
	assert.False(t, cfg.Trading.ChargeFees)
	assert.False(t, cfg.Payment.MockMode)
	assert.Equal(t, "@every 1h", cfg.Prices.Schedule)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_TIMEOUT", "soon")
	t.Setenv("WALLET_OPENING_BALANCE", "10.005")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_TIMEOUT")
	assert.Contains(t, err.Error(), "WALLET_OPENING_BALANCE")
}

func TestValidate_ProductionRejectsMockPayments(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("POSTGRES_URL", "postgres://u:p@localhost/db")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("FIELD_KEY", "key")
	t.Setenv("PAYMENT_MOCK_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAYMENT_MOCK_MODE")

	cfg.Payment.MockMode = false
	cfg.Payment.MockFallback = true
	assert.Error(t, cfg.Validate())

	cfg.Payment.MockFallback = false
	assert.NoError(t, cfg.Validate())
}

func TestValidate_FeeRateCapped(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Driver: "sqlite", URL: ":memory:"}}
	cfg.Trading.Fees = models.FeeSchedule{RateBps: models.MaxFeeRateBps}
	assert.NoError(t, cfg.Validate())

	cfg.Trading.Fees.RateBps = models.MaxFeeRateBps + 1
	assert.ErrorContains(t, cfg.Validate(), "FEE_RATE_BPS")
}

func TestValidate_MissingDSN(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("POSTGRES_URL", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.Validate(), "POSTGRES_URL")
}

func TestRedactedMasksSecrets(t *testing.T) {
	cfg := &Config{Auth: AuthConfig{JWTSecret: "supersecretvalue"}, Payment: PaymentConfig{KeySecret: "abc"}}
	r := cfg.Redacted()
	assert.Equal(t, "su************ue", r["jwt_secret"])
	assert.Equal(t, "****", r["razorpay_secret"])
}

func TestLogConfig_NewLogger(t *testing.T) {
	l := LogConfig{Level: "warn", Format: "json"}.NewLogger()
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)

	l = LogConfig{Level: "loud"}.NewLogger()
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
}
