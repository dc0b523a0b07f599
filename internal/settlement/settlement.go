// Package settlement resolves the final outcome of a bidding session:
// who won, who gets compensated, and what the marketplace keeps.
package settlement

import (
	"fmt"

	"nightbid/internal/auctionerrors"
	"nightbid/internal/models"
	"nightbid/internal/pricing"
)

// Outcome is the resolved result of a session with at least one bid.
type Outcome struct {
	Winner        models.Participant `json:"winner"`
	Loser         models.Participant `json:"loser"`
	WinningBid    models.Bid         `json:"winning_bid"`
	Compensation  int64              `json:"compensation"`
	PlatformShare int64              `json:"platform_share"`
}

// DetermineOutcome resolves winner and loser from the bid history. The winner
// owns the highest bid; on an exact amount tie the earlier timestamp wins.
// The tie path is unreachable under normal validation (new bids must strictly
// exceed the high) and exists as a defensive invariant for repaired data.
func DetermineOutcome(sess *models.Session) (Outcome, error) {
	if len(sess.History) == 0 {
		return Outcome{}, fmt.Errorf("determine outcome for session %s: %w", sess.SessionID, auctionerrors.ErrNoBids)
	}

	winning := sess.History[0]
	for _, b := range sess.History[1:] {
		if b.Amount > winning.Amount || (b.Amount == winning.Amount && b.CreatedAt.Before(winning.CreatedAt)) {
			winning = b
		}
	}

	winner := sess.ParticipantByID(winning.ParticipantID)
	loser := sess.Opponent(winning.ParticipantID)
	if winner == nil || loser == nil {
		return Outcome{}, fmt.Errorf("determine outcome for session %s: %w", sess.SessionID, auctionerrors.ErrUnknownParticipant)
	}

	return Outcome{
		Winner:        *winner,
		Loser:         *loser,
		WinningBid:    winning,
		Compensation:  pricing.Compensation(winning.Amount),
		PlatformShare: pricing.PlatformShare(winning.Amount),
	}, nil
}
