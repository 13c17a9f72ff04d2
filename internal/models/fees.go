package models

// FeeSchedule prices a trade: max(round_half_up(notional*RateBps/10000), Minimum).
// RateBps is at most MaxFeeRateBps.
type FeeSchedule struct {
	RateBps int64
	Minimum Money
}

// MaxFeeRateBps is a fee of 100 %.
const MaxFeeRateBps = 10000

// DefaultFees is 0.10 % with a 0.10 minimum.
var DefaultFees = FeeSchedule{RateBps: 10, Minimum: 10}

// Calculate returns the fee for a trade of the given notional value.
func (f FeeSchedule) Calculate(notional Money) Money {
	if notional <= 0 {
		return 0
	}
	// half-up in integer minor units, split so notional*RateBps cannot overflow
	whole, rest := int64(notional)/10000, int64(notional)%10000
	fee := Money(whole*f.RateBps + (rest*f.RateBps+5000)/10000)
	if fee < f.Minimum {
		return f.Minimum
	}
	return fee
}
