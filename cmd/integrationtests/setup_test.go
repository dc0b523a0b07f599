package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"nightbid/internal/engine"
	"nightbid/internal/repository"
	"nightbid/internal/server"
	"nightbid/internal/ws"
	"nightbid/services/auction/helpers"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// SetupTestRouter initializes the router with in-memory storage for
// integration testing. The engine is torn down with the test.
func SetupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	hub := ws.NewHub()
	eng := engine.NewEngine(store, hub)
	t.Cleanup(eng.Close)

	return server.SetupRouter(eng, hub, time.Hour)
}

// ExecuteRequestAndParse executes an HTTP request on the given router and
// parses the JSON response envelope.
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}

// CreateTestSession creates a session between alice and bob and returns its id.
func CreateTestSession(t *testing.T, router *gin.Engine) string {
	t.Helper()

	resp, w := ExecuteRequestAndParse(t, router, "POST", "/sessions", helpers.CreateSessionRequest{
		ListingID:    "listing-42",
		ParticipantA: helpers.ParticipantRequest{ParticipantID: "alice", DisplayName: "Alice"},
		ParticipantB: helpers.ParticipantRequest{ParticipantID: "bob", DisplayName: "Bob"},
	})
	require.Equal(t, 201, w.Code)

	data := resp["data"].(map[string]any)
	sessionID := data["session_id"].(string)
	require.NotEmpty(t, sessionID)
	return sessionID
}

// PlaceTestBid places a bid and requires it to be accepted.
func PlaceTestBid(t *testing.T, router *gin.Engine, sessionID, bidderID string, amount int64) map[string]any {
	t.Helper()

	resp, w := ExecuteRequestAndParse(t, router, "POST", "/sessions/"+sessionID+"/bids", helpers.PlaceBidRequest{
		BidderID: bidderID,
		Amount:   amount,
	})
	require.Equal(t, 201, w.Code, "bid %d by %s should be accepted: %v", amount, bidderID, resp)
	return resp["data"].(map[string]any)
}
