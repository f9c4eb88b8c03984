package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"board-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler bridges live subscriptions onto one socket per client.
type WebSocketHandler struct {
	hub *services.SubscriptionHub
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.SubscriptionHub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// WSRequest is a client-to-server subscription control message.
type WSRequest struct {
	Action string `json:"action"` // subscribe | unsubscribe
	Topic  string `json:"topic"`
}

// WSError is a server-to-client error message.
type WSError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// HandleWebSocket handles GET /ws. A client subscribes to topics and
// receives a full snapshot immediately and on every subsequent change.
// Closing the socket cancels every subscription it holds.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	ctx := r.Context()

	// Snapshots arrive from publisher goroutines; gorilla allows one
	// concurrent writer.
	var writeMu sync.Mutex
	send := func(snap services.Snapshot) {
		writeMu.Lock()
		defer writeMu.Unlock()
		data, err := json.Marshal(snap)
		if err != nil {
			log.Error().Err(err).Str("topic", snap.Topic).Msg("Failed to marshal snapshot")
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Debug().Err(err).Str("topic", snap.Topic).Msg("Failed to push snapshot")
		}
	}

	subs := make(map[string]*services.Subscription)
	defer func() {
		for _, sub := range subs {
			sub.Cancel()
		}
	}()

	log.Info().Msg("WebSocket connection established")

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Msg("WebSocket error")
			}
			break
		}

		var req WSRequest
		if err := json.Unmarshal(messageBytes, &req); err != nil {
			h.sendError(conn, &writeMu, "Invalid message format")
			continue
		}

		switch req.Action {
		case "subscribe":
			if _, ok := subs[req.Topic]; ok {
				continue
			}
			sub, err := h.hub.Subscribe(ctx, req.Topic, send)
			if err != nil {
				log.Error().Err(err).Str("topic", req.Topic).Msg("Failed to subscribe")
				h.sendError(conn, &writeMu, "Failed to subscribe")
				continue
			}
			subs[req.Topic] = sub
		case "unsubscribe":
			if sub, ok := subs[req.Topic]; ok {
				sub.Cancel()
				delete(subs, req.Topic)
			}
		default:
			h.sendError(conn, &writeMu, "Unknown action")
		}
	}
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, writeMu *sync.Mutex, message string) {
	writeMu.Lock()
	defer writeMu.Unlock()
	data, _ := json.Marshal(WSError{Type: "error", Message: message})
	conn.WriteMessage(websocket.TextMessage, data)
}
