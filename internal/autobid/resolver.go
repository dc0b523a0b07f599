// Package autobid resolves proxy counter-bids. With exactly two participants
// a single counter-bid fully answers a round, so resolution is one level
// deep: the synthetic bid it produces is never fed back into the resolver.
package autobid

import (
	"time"

	"nightbid/internal/models"
)

// Resolve computes the opponent's automatic counter-bid to an accepted human
// bid, or nil when no counter-bid applies: the opponent has no proxy ceiling,
// the accepted amount already meets or exceeds it, or the opponent has no
// rounds left.
//
// increment is the minimum increment that was in force when acceptedBid was
// validated. The counter-bid is min(acceptedBid.Amount+increment, ceiling);
// clamping to the ceiling may land below the next minimum increment, which is
// the intended ceiling semantics.
func Resolve(sess *models.Session, acceptedBid models.Bid, increment int64, bidID string, now time.Time) *models.Bid {
	other := sess.Opponent(acceptedBid.ParticipantID)
	if other == nil || other.ProxyCeiling == nil {
		return nil
	}
	ceiling := *other.ProxyCeiling
	if acceptedBid.Amount >= ceiling {
		return nil
	}
	if sess.BidCountFor(other.ParticipantID) >= sess.MaxRounds {
		return nil
	}

	amount := acceptedBid.Amount + increment
	if amount > ceiling {
		amount = ceiling
	}

	return &models.Bid{
		BidID:         bidID,
		SessionID:     sess.SessionID,
		ParticipantID: other.ParticipantID,
		Amount:        amount,
		Origin:        models.OriginSystem,
		Round:         sess.BidCountFor(other.ParticipantID) + 1,
		CreatedAt:     now,
	}
}
