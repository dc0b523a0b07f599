// Package session is the state machine for a bidding session. It owns the
// single mutation path: every write to a session value goes through one of
// the functions here, called under the orchestrator's per-session lock.
//
// Functions here do not validate business rules (that is the validator's
// job against the pre-mutation snapshot); they enforce structural
// invariants and treat violations as programming errors.
package session

import (
	"fmt"
	"time"

	"nightbid/internal/auctionerrors"
	"nightbid/internal/models"
	"nightbid/internal/settlement"
)

// ApplyBid appends an already-validated bid to the history, moves the high
// bid pointer and stamps the bidder's bookkeeping. Structural invariants are
// re-checked here as a last line of defense: a failure means a caller
// bypassed the serialization discipline.
func ApplyBid(sess *models.Session, bid models.Bid) error {
	if sess.Status.IsTerminal() {
		return fmt.Errorf("apply bid %s: %w", bid.BidID, auctionerrors.ErrTerminalMutation)
	}

	p := sess.ParticipantByID(bid.ParticipantID)
	if p == nil {
		return fmt.Errorf("apply bid %s: %w", bid.BidID, auctionerrors.ErrUnknownParticipant)
	}

	if high := sess.CurrentHigh(); high != nil {
		if bid.Amount <= high.Amount {
			return fmt.Errorf("apply bid %s: amount %d not above high %d: %w",
				bid.BidID, bid.Amount, high.Amount, auctionerrors.ErrBelowCurrentHigh)
		}
		if bid.Origin == models.OriginHuman && high.ParticipantID == bid.ParticipantID {
			return fmt.Errorf("apply bid %s: %w", bid.BidID, auctionerrors.ErrAlreadyHighBidder)
		}
	}
	if sess.BidCountFor(bid.ParticipantID) >= sess.MaxRounds {
		return fmt.Errorf("apply bid %s: %w", bid.BidID, auctionerrors.ErrRoundsExhausted)
	}

	sess.History = append(sess.History, bid)
	sess.HighBid = &sess.History[len(sess.History)-1]

	amount := bid.Amount
	at := bid.CreatedAt
	p.CurrentBid = &amount
	p.LastBidAt = &at

	return nil
}

// Finalize completes an active session using the current high bid as the
// winning bid and stamps both participants' outcomes.
func Finalize(sess *models.Session, now time.Time) error {
	if sess.Status.IsTerminal() {
		return fmt.Errorf("finalize session %s: %w", sess.SessionID, auctionerrors.ErrTerminalMutation)
	}

	out, err := settlement.DetermineOutcome(sess)
	if err != nil {
		return err
	}

	sess.Status = models.StatusCompleted
	sess.EndedAt = &now

	winner := sess.ParticipantByID(out.Winner.ParticipantID)
	winner.Outcome = &models.Outcome{Won: true, Amount: out.WinningBid.Amount}
	loser := sess.Opponent(out.Winner.ParticipantID)
	loser.Outcome = &models.Outcome{Won: false, Amount: out.Compensation}

	return nil
}

// Expire marks an active session with an empty history as expired.
// Sessions with bids are completed via Finalize instead, even on deadline.
func Expire(sess *models.Session, now time.Time) error {
	if sess.Status.IsTerminal() {
		return fmt.Errorf("expire session %s: %w", sess.SessionID, auctionerrors.ErrTerminalMutation)
	}
	if len(sess.History) > 0 {
		return Finalize(sess, now)
	}

	sess.Status = models.StatusExpired
	sess.EndedAt = &now
	return nil
}

// Cancel marks an active session as cancelled. Withdrawal preconditions
// (never outbid, session still running) are the validator's responsibility.
func Cancel(sess *models.Session, byParticipant string, now time.Time) error {
	if sess.Status.IsTerminal() {
		return fmt.Errorf("cancel session %s: %w", sess.SessionID, auctionerrors.ErrTerminalMutation)
	}
	if sess.ParticipantByID(byParticipant) == nil {
		return fmt.Errorf("cancel session %s: %w", sess.SessionID, auctionerrors.ErrUnknownParticipant)
	}

	sess.Status = models.StatusCancelled
	sess.EndedAt = &now
	return nil
}

// SetProxyCeiling records a participant's pre-authorized maximum for
// auto-bidding.
func SetProxyCeiling(sess *models.Session, participantID string, maxAmount int64) error {
	if sess.Status.IsTerminal() {
		return fmt.Errorf("set proxy ceiling on session %s: %w", sess.SessionID, auctionerrors.ErrTerminalMutation)
	}
	p := sess.ParticipantByID(participantID)
	if p == nil {
		return fmt.Errorf("set proxy ceiling on session %s: %w", sess.SessionID, auctionerrors.ErrUnknownParticipant)
	}

	p.ProxyCeiling = &maxAmount
	return nil
}
