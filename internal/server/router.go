package server

import (
	"net/http"
	"time"

	"nightbid/internal/ws"
	handler "nightbid/services/auction/handler"
	"nightbid/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(service handler.AuctionServiceInterface, hub *ws.Hub, defaultDuration time.Duration) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(service, defaultDuration)

	sessions := router.Group("/sessions")
	{
		sessions.POST("", auctionHandler.CreateSessionHandler)
		sessions.GET("/:session_id", auctionHandler.GetSessionHandler)
		sessions.POST("/:session_id/bids", auctionHandler.PlaceBidHandler)
		sessions.PUT("/:session_id/proxy", auctionHandler.SetProxyCeilingHandler)
		sessions.POST("/:session_id/withdraw", auctionHandler.WithdrawHandler)
		sessions.POST("/:session_id/finalize", auctionHandler.FinalizeHandler)
	}

	router.GET("/ws/sessions/:session_id", SessionStreamHandler(service, hub))

	return router
}

// SessionStreamHandler upgrades to a websocket and subscribes the client to a
// session's event stream. The connection is read-only for the client; the
// read loop exists only to detect disconnects.
func SessionStreamHandler(service handler.AuctionServiceInterface, hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("session_id")

		if _, err := service.GetSessionSnapshot(sessionID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			utils.Warn("ws: upgrade failed", map[string]any{
				"session_id": sessionID,
				"error":      err.Error(),
			})
			return
		}

		hub.AddConnection(sessionID, conn)

		go func() {
			defer hub.RemoveConnection(sessionID, conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}
