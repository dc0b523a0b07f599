package auctionerrors

import "errors"

// Validation errors. All of these are recoverable and user-facing; they are
// returned as structured results, never panicked across the session boundary.
var (
	ErrSessionEnded             = errors.New("session has ended")
	ErrAlreadyHighBidder        = errors.New("participant already owns the high bid")
	ErrBelowCurrentHigh         = errors.New("bid does not exceed the current high bid")
	ErrBelowMinimumIncrement    = errors.New("bid is below the minimum increment")
	ErrRoundsExhausted          = errors.New("participant has no bidding rounds left")
	ErrExceedsReasonableCeiling = errors.New("bid exceeds twice the current high bid")
	ErrInvalidWithdrawal        = errors.New("withdrawal not allowed")
	ErrInvalidProxyCeiling      = errors.New("invalid proxy ceiling")
)

// Lookup / resolution errors.
var (
	ErrNoBids             = errors.New("session has no bids")
	ErrSessionNotFound    = errors.New("session not found")
	ErrUnknownParticipant = errors.New("participant is not part of this session")
)

// ErrTerminalMutation indicates an attempt to mutate a session that already
// reached a terminal status. Reaching this from the serialized mutation path
// is a programming error, not a user-facing condition.
var ErrTerminalMutation = errors.New("mutation attempted on terminal session")

// Code returns a stable machine-readable code for a validation error, for use
// in API responses and outbound events.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrSessionEnded):
		return "session_ended"
	case errors.Is(err, ErrAlreadyHighBidder):
		return "already_high_bidder"
	case errors.Is(err, ErrBelowCurrentHigh):
		return "below_current_high"
	case errors.Is(err, ErrBelowMinimumIncrement):
		return "below_minimum_increment"
	case errors.Is(err, ErrRoundsExhausted):
		return "rounds_exhausted"
	case errors.Is(err, ErrExceedsReasonableCeiling):
		return "exceeds_reasonable_ceiling"
	case errors.Is(err, ErrInvalidWithdrawal):
		return "invalid_withdrawal"
	case errors.Is(err, ErrInvalidProxyCeiling):
		return "invalid_proxy_ceiling"
	case errors.Is(err, ErrNoBids):
		return "no_bids"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrUnknownParticipant):
		return "unknown_participant"
	default:
		return "internal_error"
	}
}
