// Package validation implements the bid acceptance rules. All functions are
// pure: they read a session snapshot and report a verdict without mutating
// anything. The orchestrator must call them inside the same critical section
// as the subsequent write so the snapshot cannot go stale.
package validation

import (
	"time"

	"nightbid/internal/auctionerrors"
	"nightbid/internal/models"
	"nightbid/internal/pricing"
)

// Warning messages surfaced alongside an accepted (or rejected) bid.
const (
	WarnLargeIncrease = "bid is an unusually large increase over the current high"
	WarnFinalRound    = "this would be your final allowed round"
)

// Result is the validator's verdict for a proposed bid. The advisory fields
// (MinimumNextBid, MaximumAllowed, SuggestedBid) let the caller guide
// correction without a second round-trip; they never alter the proposal.
type Result struct {
	Accepted       bool
	Errors         []error
	Warnings       []string
	MinimumNextBid int64
	MaximumAllowed int64 // zero when no standing high bid
	SuggestedBid   int64 // zero when no standing high bid
}

// Validate applies every acceptance rule in order and collects all failures;
// a rejected bid reports the full set of problems, not just the first one.
// The deadline is re-checked against now so a bid arriving after expiry is
// rejected even if the expiration watcher has not fired yet.
func Validate(sess *models.Session, proposedAmount int64, bidderID string, now time.Time) Result {
	res := Result{MinimumNextBid: proposedAmount}

	if sess.Status != models.StatusActive || !now.Before(sess.ExpiresAt) {
		res.Errors = append(res.Errors, auctionerrors.ErrSessionEnded)
	}

	high := sess.CurrentHigh()
	if high != nil {
		increment := pricing.MinimumIncrement(high.Amount)
		res.MinimumNextBid = high.Amount + increment
		res.MaximumAllowed = pricing.ReasonableCeiling(high.Amount)
		res.SuggestedBid = pricing.SuggestedBid(high.Amount)

		if high.ParticipantID == bidderID {
			res.Errors = append(res.Errors, auctionerrors.ErrAlreadyHighBidder)
		}
		if proposedAmount <= high.Amount {
			res.Errors = append(res.Errors, auctionerrors.ErrBelowCurrentHigh)
		}
		if proposedAmount < high.Amount+increment {
			res.Errors = append(res.Errors, auctionerrors.ErrBelowMinimumIncrement)
		}
	}

	priorRounds := sess.BidCountFor(bidderID)
	if priorRounds >= sess.MaxRounds {
		res.Errors = append(res.Errors, auctionerrors.ErrRoundsExhausted)
	}

	if high != nil && proposedAmount > res.MaximumAllowed {
		res.Errors = append(res.Errors, auctionerrors.ErrExceedsReasonableCeiling)
	}

	if high != nil && pricing.IsLargeJump(proposedAmount, high.Amount) {
		res.Warnings = append(res.Warnings, WarnLargeIncrease)
	}
	if priorRounds == sess.MaxRounds-1 {
		res.Warnings = append(res.Warnings, WarnFinalRound)
	}

	res.Accepted = len(res.Errors) == 0
	return res
}

// ValidateWithdrawal checks the cancel preconditions: the session must still
// be active (by status and by wall clock) and the withdrawing participant
// must never have been outbid. A participant who never bid may always cancel
// an active session.
func ValidateWithdrawal(sess *models.Session, participantID string, now time.Time) error {
	if sess.ParticipantByID(participantID) == nil {
		return auctionerrors.ErrUnknownParticipant
	}
	if sess.Status != models.StatusActive || !now.Before(sess.ExpiresAt) {
		return auctionerrors.ErrInvalidWithdrawal
	}
	if everOutbid(sess, participantID) {
		return auctionerrors.ErrInvalidWithdrawal
	}
	return nil
}

// everOutbid reports whether any opponent bid was accepted after one of the
// participant's own bids.
func everOutbid(sess *models.Session, participantID string) bool {
	seenOwn := false
	for _, b := range sess.History {
		if b.ParticipantID == participantID {
			seenOwn = true
		} else if seenOwn {
			return true
		}
	}
	return false
}

// ValidateProxyCeiling checks the preconditions for setting an auto-bid
// ceiling: active session, known participant, and a ceiling that exceeds
// both zero and the standing high bid.
func ValidateProxyCeiling(sess *models.Session, participantID string, maxAmount int64, now time.Time) error {
	if sess.ParticipantByID(participantID) == nil {
		return auctionerrors.ErrUnknownParticipant
	}
	if sess.Status != models.StatusActive || !now.Before(sess.ExpiresAt) {
		return auctionerrors.ErrSessionEnded
	}
	if maxAmount <= 0 {
		return auctionerrors.ErrInvalidProxyCeiling
	}
	if high := sess.CurrentHigh(); high != nil && maxAmount <= high.Amount {
		return auctionerrors.ErrInvalidProxyCeiling
	}
	return nil
}
