package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"nightbid/internal/auctionerrors"
	"nightbid/internal/models"
	"nightbid/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrSessionNotFound):
		return http.StatusNotFound, "session not found"
	case errors.Is(err, auctionerrors.ErrUnknownParticipant):
		return http.StatusForbidden, "participant is not part of this session"
	case errors.Is(err, auctionerrors.ErrSessionEnded):
		return http.StatusConflict, "session has ended"
	case errors.Is(err, auctionerrors.ErrInvalidWithdrawal):
		return http.StatusConflict, "withdrawal not allowed"
	case errors.Is(err, auctionerrors.ErrInvalidProxyCeiling):
		return http.StatusBadRequest, "invalid proxy ceiling"
	case errors.Is(err, auctionerrors.ErrNoBids):
		return http.StatusConflict, "session has no bids"
	case errors.Is(err, auctionerrors.ErrTerminalMutation):
		return http.StatusConflict, "session has ended"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// ToBidResponse converts a bid to its API shape.
func ToBidResponse(bid *models.Bid) *BidResponse {
	if bid == nil {
		return nil
	}
	return &BidResponse{
		BidID:         bid.BidID,
		SessionID:     bid.SessionID,
		ParticipantID: bid.ParticipantID,
		Amount:        bid.Amount,
		Origin:        string(bid.Origin),
		Round:         bid.Round,
		CreatedAt:     bid.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ValidationErrorCodes converts sentinel validation errors to wire codes.
func ValidationErrorCodes(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	codes := make([]string, 0, len(errs))
	for _, err := range errs {
		codes = append(codes, auctionerrors.Code(err))
	}
	return codes
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
