// Package ws is the real-time channel implementation: a per-session
// websocket broadcast hub. Delivery is best-effort; the engine commits
// state regardless of whether any subscriber is reachable.
package ws

import (
	"encoding/json"
	"sync"

	"nightbid/utils"

	"github.com/gorilla/websocket"
)

// Envelope is the wire format for every broadcast message.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub tracks websocket subscribers per session and implements
// events.Publisher.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*websocket.Conn]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]map[*websocket.Conn]bool),
	}
}

// AddConnection subscribes a connection to a session's events.
func (h *Hub) AddConnection(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[sessionID] == nil {
		h.sessions[sessionID] = make(map[*websocket.Conn]bool)
	}
	h.sessions[sessionID][conn] = true
	utils.Info("ws: client connected", map[string]any{
		"session_id": sessionID,
		"total":      len(h.sessions[sessionID]),
	})
}

// RemoveConnection unsubscribes and closes a connection.
func (h *Hub) RemoveConnection(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.sessions[sessionID]; ok {
		delete(conns, conn)
		conn.Close()
		if len(conns) == 0 {
			delete(h.sessions, sessionID)
		}
		utils.Info("ws: client disconnected", map[string]any{"session_id": sessionID})
	}
}

// Publish broadcasts a committed engine event to every subscriber of the
// session. Write failures drop the dead connection and never propagate back
// to the engine.
func (h *Hub) Publish(sessionID string, eventType string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.sessions[sessionID]
	if !ok {
		return
	}

	data, err := json.Marshal(Envelope{Type: eventType, Data: payload})
	if err != nil {
		utils.Error("ws: marshal error", map[string]any{"session_id": sessionID, "error": err.Error()})
		return
	}

	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.Warn("ws: write error, dropping connection", map[string]any{
				"session_id": sessionID,
				"error":      err.Error(),
			})
			conn.Close()
			delete(conns, conn)
		}
	}
}
