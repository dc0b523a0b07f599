package models

import "time"

// Policy constants for every bidding session. These are product rules,
// not per-listing configuration.
const (
	MaxRoundsPerParticipant = 3
	MinIncrementPercent     = 10
)

// SessionStatus is the lifecycle state of a bidding session.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
	StatusExpired   SessionStatus = "expired"
	StatusCancelled SessionStatus = "cancelled"
)

// IsTerminal reports whether the status is absorbing.
func (s SessionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusExpired || s == StatusCancelled
}

// BidOrigin distinguishes human-submitted bids from proxy bids the engine
// generated on a participant's behalf.
type BidOrigin string

const (
	OriginHuman  BidOrigin = "human"
	OriginSystem BidOrigin = "system"
)

// Outcome is a participant's final result once a session completes.
// For the winner Amount is the winning bid they pay; for the loser it is
// the compensation they receive.
type Outcome struct {
	Won    bool  `json:"won"`
	Amount int64 `json:"amount"`
}

// Participant is one of the two parties competing in a session.
type Participant struct {
	ParticipantID string     `json:"participant_id"`
	DisplayName   string     `json:"display_name"`
	CurrentBid    *int64     `json:"current_bid,omitempty"`
	ProxyCeiling  *int64     `json:"proxy_ceiling,omitempty"` // nil means auto-bidding disabled
	LastBidAt     *time.Time `json:"last_bid_at,omitempty"`
	Outcome       *Outcome   `json:"outcome,omitempty"`
}

// Bid is a single accepted bid. Bids are immutable once recorded.
// Amount is in the smallest currency unit.
type Bid struct {
	BidID         string    `json:"bid_id"`
	SessionID     string    `json:"session_id"`
	ParticipantID string    `json:"participant_id"`
	Amount        int64     `json:"amount"`
	Origin        BidOrigin `json:"origin"`
	Round         int       `json:"round"` // 1-based, per participant
	CreatedAt     time.Time `json:"created_at"`
}

// Session is one competitive-bidding instance between exactly two
// participants for one contested reservation night.
type Session struct {
	SessionID    string         `json:"session_id"`
	ListingID    string         `json:"listing_id"` // contested night/property
	Participants [2]Participant `json:"participants"`
	History      []Bid          `json:"history"` // append-only, strictly increasing amounts
	HighBid      *Bid           `json:"high_bid,omitempty"`
	Status       SessionStatus  `json:"status"`
	MaxRounds    int            `json:"max_rounds"`
	IncrementPct int            `json:"increment_pct"`
	CreatedAt    time.Time      `json:"created_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
	EndedAt      *time.Time     `json:"ended_at,omitempty"`
}

// CurrentHigh returns the standing high bid, or nil if no bid was placed yet.
func (s *Session) CurrentHigh() *Bid {
	return s.HighBid
}

// BidCountFor returns how many accepted bids a participant has in the history.
func (s *Session) BidCountFor(participantID string) int {
	count := 0
	for _, b := range s.History {
		if b.ParticipantID == participantID {
			count++
		}
	}
	return count
}

// ParticipantByID returns a pointer to the participant with the given id,
// or nil if they are not part of this session.
func (s *Session) ParticipantByID(participantID string) *Participant {
	for i := range s.Participants {
		if s.Participants[i].ParticipantID == participantID {
			return &s.Participants[i]
		}
	}
	return nil
}

// Opponent returns the participant other than the given one.
func (s *Session) Opponent(participantID string) *Participant {
	for i := range s.Participants {
		if s.Participants[i].ParticipantID != participantID {
			return &s.Participants[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the session so callers can read it without
// holding the session lock.
func (s *Session) Clone() Session {
	out := *s
	out.History = append([]Bid(nil), s.History...)
	if s.HighBid != nil {
		hb := *s.HighBid
		out.HighBid = &hb
	}
	if s.EndedAt != nil {
		t := *s.EndedAt
		out.EndedAt = &t
	}
	for i := range s.Participants {
		out.Participants[i] = cloneParticipant(s.Participants[i])
	}
	return out
}

func cloneParticipant(p Participant) Participant {
	out := p
	if p.CurrentBid != nil {
		v := *p.CurrentBid
		out.CurrentBid = &v
	}
	if p.ProxyCeiling != nil {
		v := *p.ProxyCeiling
		out.ProxyCeiling = &v
	}
	if p.LastBidAt != nil {
		t := *p.LastBidAt
		out.LastBidAt = &t
	}
	if p.Outcome != nil {
		o := *p.Outcome
		out.Outcome = &o
	}
	return out
}
