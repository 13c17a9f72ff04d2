package apperrors

import "errors"

// Kind groups errors by how they are reported to a client.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindBusinessRule
	KindStorage
	KindUpstream
)

type entry struct {
	err  error
	kind Kind
	msg  string
}

// registry is ordered: the first match wins, so specific errors precede generic ones.
var registry = []entry{
	{ErrUserNotFound, KindNotFound, "User not found"},
	{ErrWalletNotFound, KindNotFound, "Wallet not found"},
	{ErrPositionNotFound, KindNotFound, "Position not found"},
	{ErrStockNotFound, KindNotFound, "Stock not found"},
	{ErrPaymentOrderNotFound, KindNotFound, "Payment order not found"},

	{ErrInvalidAmount, KindValidation, "Invalid amount"},
	{ErrInvalidQuantity, KindValidation, "Quantity must be a positive whole number"},
	{ErrInvalidPrice, KindValidation, "Price must be positive"},
	{ErrInvalidSymbol, KindValidation, "Symbol is required"},
	{ErrInvalidSignature, KindValidation, "Invalid payment signature"},

	{ErrInsufficientFunds, KindBusinessRule, "Insufficient funds"},
	{ErrInsufficientShares, KindBusinessRule, "Insufficient shares to sell"},

	{ErrEmailTaken, KindConflict, "User with this email already exists"},
	{ErrAlreadyWatched, KindConflict, "Stock already in watchlist"},
	{ErrPaymentAlreadyProcessed, KindConflict, "Payment already processed"},
	{ErrWalletAlreadyInitialized, KindConflict, "Wallet already initialized"},
	{ErrDuplicateEntry, KindConflict, "Duplicate entry"},

	{ErrTokenRequired, KindUnauthorized, "Access token required"},
	{ErrInvalidCredentials, KindUnauthorized, "Invalid email or password"},
	{ErrInvalidToken, KindForbidden, "Invalid token"},
	{ErrAccountLocked, KindForbidden, "Account temporarily locked due to too many failed login attempts"},

	{ErrStorageUnavailable, KindStorage, "Service temporarily unavailable"},
	{ErrUpstreamPayment, KindUpstream, "Payment gateway unavailable"},
	{ErrPaymentNotConfigured, KindUpstream, "Payment gateway not configured"},
}

// Describe classifies err and returns the message that is safe to show a client.
// Unknown errors are KindInternal with a generic message.
func Describe(err error) (Kind, string) {
	if err == nil {
		return KindInternal, ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation, ve.Msg
	}
	for _, e := range registry {
		if errors.Is(err, e.err) {
			return e.kind, e.msg
		}
	}
	if errors.Is(err, ErrInvalidInput) {
		return KindValidation, "Invalid input"
	}
	return KindInternal, "Server error"
}

// KindOf is Describe without the message.
func KindOf(err error) Kind {
	k, _ := Describe(err)
	return k
}
