// Package events defines the outbound event contract between the bidding
// engine and the real-time channel. Events are published strictly after a
// mutation commits, in per-session order; delivery is at-least-once and
// the channel owns its own retry policy.
package events

import "nightbid/internal/models"

// Event type names as they appear on the wire.
const (
	TypeBidPlaced          = "bid.placed"
	TypeBidAutoBid         = "bid.autobid"
	TypeSessionEnded       = "session.ended"
	TypeParticipantUpdated = "participant.updated"
)

// Participant change types for ParticipantUpdated events.
const (
	ChangeProxyCeilingSet = "proxy_ceiling_set"
	ChangeWithdrawn       = "withdrawn"
)

// BidPlaced announces an accepted human bid.
type BidPlaced struct {
	Bid     models.Bid     `json:"bid"`
	Session models.Session `json:"session"`
}

// BidAutoBid announces the proxy counter-bid triggered by a human bid.
// It always follows the BidPlaced event of its trigger.
type BidAutoBid struct {
	Bid              models.Bid     `json:"bid"`
	TriggeredByBidID string         `json:"triggered_by_bid_id"`
	Session          models.Session `json:"session"`
}

// SessionEnded announces a terminal transition. Winner fields are zero for
// expired and cancelled sessions.
type SessionEnded struct {
	WinnerID      string         `json:"winner_id,omitempty"`
	LoserID       string         `json:"loser_id,omitempty"`
	WinningAmount int64          `json:"winning_amount,omitempty"`
	Compensation  int64          `json:"compensation,omitempty"`
	PlatformShare int64          `json:"platform_share,omitempty"`
	Session       models.Session `json:"session"`
}

// ParticipantUpdated announces a participant-level change.
type ParticipantUpdated struct {
	Participant models.Participant `json:"participant"`
	ChangeType  string             `json:"change_type"`
}

// Publisher delivers committed events to the external real-time channel.
// Implementations must preserve per-session publish order and must not
// block the engine on delivery failures.
type Publisher interface {
	Publish(sessionID string, eventType string, payload any)
}
