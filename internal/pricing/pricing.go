// Package pricing holds the money math for bidding sessions: minimum
// increments, bid suggestions and the post-session compensation split.
// All amounts are integers in the smallest currency unit; fractional
// intermediate values are rounded half-up via decimal arithmetic.
package pricing

import "github.com/shopspring/decimal"

var (
	incrementRate    = decimal.NewFromFloat(0.10)
	suggestedRate    = decimal.NewFromFloat(1.15)
	largeJumpRate    = decimal.NewFromFloat(1.5)
	compensationRate = decimal.NewFromFloat(0.25)
)

// MinimumIncrement returns the minimum amount a new bid must add on top of
// the current high bid: 10% of the high, rounded half-up.
func MinimumIncrement(currentHigh int64) int64 {
	return roundHalfUp(decimal.NewFromInt(currentHigh).Mul(incrementRate))
}

// SuggestedBid returns the advisory next bid: 115% of the current high.
func SuggestedBid(currentHigh int64) int64 {
	return roundHalfUp(decimal.NewFromInt(currentHigh).Mul(suggestedRate))
}

// ReasonableCeiling returns the maximum acceptable bid: twice the current
// high. Bids above it are rejected as excessive.
func ReasonableCeiling(currentHigh int64) int64 {
	return currentHigh * 2
}

// IsLargeJump reports whether an amount exceeds 1.5x the current high,
// which triggers a non-blocking warning.
func IsLargeJump(amount, currentHigh int64) bool {
	return decimal.NewFromInt(amount).GreaterThan(decimal.NewFromInt(currentHigh).Mul(largeJumpRate))
}

// Compensation returns the loser's share of the winning bid: 25%,
// rounded half-up.
func Compensation(winningAmount int64) int64 {
	return roundHalfUp(decimal.NewFromInt(winningAmount).Mul(compensationRate))
}

// PlatformShare returns the remainder of the winning bid retained by the
// marketplace. Compensation + PlatformShare always equals the winning amount.
func PlatformShare(winningAmount int64) int64 {
	return winningAmount - Compensation(winningAmount)
}

// roundHalfUp rounds to the nearest integer currency unit, halves away
// from zero. All engine amounts are non-negative, so this is half-up.
func roundHalfUp(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
