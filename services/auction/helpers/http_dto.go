package helpers

// Request/Response DTOs

type ParticipantRequest struct {
	ParticipantID string `json:"participant_id" binding:"required"`
	DisplayName   string `json:"display_name"`
}

type CreateSessionRequest struct {
	ListingID    string             `json:"listing_id" binding:"required"`
	ParticipantA ParticipantRequest `json:"participant_a" binding:"required"`
	ParticipantB ParticipantRequest `json:"participant_b" binding:"required"`
	DurationMin  int                `json:"duration_min" binding:"omitempty,gt=0"`
}

type PlaceBidRequest struct {
	BidderID string `json:"bidder_id" binding:"required"`
	Amount   int64  `json:"amount" binding:"required,gt=0"`
}

type SetProxyCeilingRequest struct {
	BidderID  string `json:"bidder_id" binding:"required"`
	MaxAmount int64  `json:"max_amount" binding:"required,gt=0"`
}

type WithdrawRequest struct {
	BidderID string `json:"bidder_id" binding:"required"`
}

type BidResponse struct {
	BidID         string `json:"bid_id"`
	SessionID     string `json:"session_id"`
	ParticipantID string `json:"participant_id"`
	Amount        int64  `json:"amount"`
	Origin        string `json:"origin"`
	Round         int    `json:"round"`
	CreatedAt     string `json:"created_at"`
}

// BidResultResponse carries the verdict plus the advisory context the UI
// needs to guide correction without another round-trip.
type BidResultResponse struct {
	Accepted       bool         `json:"accepted"`
	Bid            *BidResponse `json:"bid,omitempty"`
	AutoBid        *BidResponse `json:"auto_bid,omitempty"`
	Errors         []string     `json:"errors,omitempty"`
	Warnings       []string     `json:"warnings,omitempty"`
	MinimumNextBid int64        `json:"minimum_next_bid"`
	MaximumAllowed int64        `json:"maximum_allowed,omitempty"`
	SuggestedBid   int64        `json:"suggested_bid,omitempty"`
}
