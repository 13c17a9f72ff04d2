// Package apperrors defines the sentinel errors shared by the repository, service and
// handler layers, and classifies them into the kinds the HTTP layer maps to status codes.
package apperrors

import "errors"

// Entity errors indicate that a requested resource does not exist.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrPositionNotFound     = errors.New("position not found")
	ErrStockNotFound        = errors.New("stock not found")
	ErrPaymentOrderNotFound = errors.New("payment order not found")
)

// Validation errors indicate bad or missing input.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrInvalidSymbol    = errors.New("symbol is required")
	ErrInvalidSignature = errors.New("invalid payment signature")
)

// Business rule violations. These are reported to the caller and never retried.
var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares to sell")
)

// Conflict errors indicate a uniqueness constraint was hit.
var (
	ErrDuplicateEntry           = errors.New("duplicate entry")
	ErrEmailTaken               = errors.New("user with this email already exists")
	ErrAlreadyWatched           = errors.New("stock already in watchlist")
	ErrPaymentAlreadyProcessed  = errors.New("payment already processed")
	ErrWalletAlreadyInitialized = errors.New("wallet already initialized")
)

// Auth errors indicate a missing, invalid or rejected credential.
var (
	ErrTokenRequired      = errors.New("access token required")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account temporarily locked")
)

// Infrastructure errors.
var (
	// ErrStorageUnavailable indicates the database timed out or could not be reached.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrUpstreamPayment indicates the payment gateway call failed.
	ErrUpstreamPayment = errors.New("payment gateway unavailable")

	// ErrPaymentNotConfigured indicates no gateway credentials and no mock mode.
	ErrPaymentNotConfigured = errors.New("payment gateway not configured")
)

// ValidationError carries a caller-facing message for bad input.
// It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// Invalid returns a ValidationError with the given message.
func Invalid(msg string) error {
	return &ValidationError{Msg: msg}
}
