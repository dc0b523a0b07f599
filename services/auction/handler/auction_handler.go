package handler

import (
	"fmt"
	"net/http"
	"time"

	"nightbid/internal/engine"
	model "nightbid/internal/models"
	"nightbid/services/auction/helpers"
	"nightbid/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -source=auction_handler.go -destination=mock_service.go -package=handler

type AuctionServiceInterface interface {
	CreateSession(params engine.CreateSessionParams) (model.Session, error)
	PlaceBid(sessionID, bidderID string, amount int64) (engine.BidResult, error)
	SetProxyCeiling(sessionID, bidderID string, maxAmount int64) (model.Session, error)
	Withdraw(sessionID, bidderID string) (model.Session, error)
	Finalize(sessionID string) (model.Session, error)
	GetSessionSnapshot(sessionID string) (model.Session, error)
}

type AuctionHandler struct {
	service         AuctionServiceInterface
	defaultDuration time.Duration
}

func NewAuctionHandler(service AuctionServiceInterface, defaultDuration time.Duration) *AuctionHandler {
	return &AuctionHandler{service: service, defaultDuration: defaultDuration}
}

// CreateSessionHandler handles POST /sessions
func (h *AuctionHandler) CreateSessionHandler(c *gin.Context) {
	var req helpers.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateSessionHandler", err)
		return
	}

	duration := h.defaultDuration
	if req.DurationMin > 0 {
		duration = time.Duration(req.DurationMin) * time.Minute
	}

	sess, err := h.service.CreateSession(engine.CreateSessionParams{
		ListingID:    req.ListingID,
		ParticipantA: engine.ParticipantParams{ParticipantID: req.ParticipantA.ParticipantID, DisplayName: req.ParticipantA.DisplayName},
		ParticipantB: engine.ParticipantParams{ParticipantID: req.ParticipantB.ParticipantID, DisplayName: req.ParticipantB.DisplayName},
		ExpiresAt:    time.Now().Add(duration),
	})
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("CreateSessionHandler: failed to create session", map[string]any{
			"listing_id": req.ListingID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, sess, "session created successfully")
	helpers.LogSuccess("CreateSessionHandler", "session created successfully", map[string]any{
		"session_id": sess.SessionID,
		"listing_id": sess.ListingID,
	})
}

// PlaceBidHandler handles POST /sessions/:session_id/bids
func (h *AuctionHandler) PlaceBidHandler(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	result, err := h.service.PlaceBid(sessionID, req.BidderID, req.Amount)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("PlaceBidHandler: failed to place bid", map[string]any{
			"session_id": sessionID,
			"bidder_id":  req.BidderID,
			"error":      err.Error(),
		})
		return
	}

	resp := helpers.BidResultResponse{
		Accepted:       result.Accepted,
		Bid:            helpers.ToBidResponse(result.Bid),
		AutoBid:        helpers.ToBidResponse(result.AutoBid),
		Errors:         helpers.ValidationErrorCodes(result.Validation.Errors),
		Warnings:       result.Validation.Warnings,
		MinimumNextBid: result.Validation.MinimumNextBid,
		MaximumAllowed: result.Validation.MaximumAllowed,
		SuggestedBid:   result.Validation.SuggestedBid,
	}

	if !result.Accepted {
		utils.JSONResponse(c, http.StatusConflict, resp, "bid rejected")
		utils.Info("PlaceBidHandler: bid rejected", map[string]any{
			"session_id": sessionID,
			"bidder_id":  req.BidderID,
			"amount":     req.Amount,
			"errors":     resp.Errors,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, resp, "bid recorded successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid recorded successfully", map[string]any{
		"session_id": sessionID,
		"bid_id":     result.Bid.BidID,
		"bidder_id":  req.BidderID,
		"amount":     req.Amount,
		"auto_bid":   result.AutoBid != nil,
	})
}

// SetProxyCeilingHandler handles PUT /sessions/:session_id/proxy
func (h *AuctionHandler) SetProxyCeilingHandler(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req helpers.SetProxyCeilingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SetProxyCeilingHandler", err)
		return
	}

	sess, err := h.service.SetProxyCeiling(sessionID, req.BidderID, req.MaxAmount)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("SetProxyCeilingHandler: failed to set ceiling", map[string]any{
			"session_id": sessionID,
			"bidder_id":  req.BidderID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, sess, "proxy ceiling set successfully")
	helpers.LogSuccess("SetProxyCeilingHandler", "proxy ceiling set successfully", map[string]any{
		"session_id": sessionID,
		"bidder_id":  req.BidderID,
		"max_amount": req.MaxAmount,
	})
}

// WithdrawHandler handles POST /sessions/:session_id/withdraw
func (h *AuctionHandler) WithdrawHandler(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req helpers.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "WithdrawHandler", err)
		return
	}

	sess, err := h.service.Withdraw(sessionID, req.BidderID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("WithdrawHandler: withdrawal rejected", map[string]any{
			"session_id": sessionID,
			"bidder_id":  req.BidderID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, sess, "session cancelled successfully")
	helpers.LogSuccess("WithdrawHandler", "session cancelled successfully", map[string]any{
		"session_id": sessionID,
		"bidder_id":  req.BidderID,
	})
}

// FinalizeHandler handles POST /sessions/:session_id/finalize
func (h *AuctionHandler) FinalizeHandler(c *gin.Context) {
	sessionID := c.Param("session_id")

	sess, err := h.service.Finalize(sessionID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("FinalizeHandler: finalize rejected", map[string]any{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, sess, "session finalized successfully")
	helpers.LogSuccess("FinalizeHandler", "session finalized successfully", map[string]any{
		"session_id": sessionID,
	})
}

// GetSessionHandler handles GET /sessions/:session_id
func (h *AuctionHandler) GetSessionHandler(c *gin.Context) {
	sessionID := c.Param("session_id")

	sess, err := h.service.GetSessionSnapshot(sessionID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Info("GetSessionHandler: session not found", map[string]any{"session_id": sessionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, sess, "session retrieved successfully")
}
