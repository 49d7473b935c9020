package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"messaging-service/internal/session"
)

// Event is the frame sent to presentation clients.
type Event struct {
	Type     string            `json:"type"`
	Snapshot *session.Snapshot `json:"snapshot,omitempty"`
	Typing   *TypingEvent      `json:"typing,omitempty"`
}

// TypingEvent is a transient indicator; never persisted.
type TypingEvent struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
}

// Hub tracks connected presentation clients per user and fans events out to
// them. A user may hold several connections (tabs, devices).
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*websocket.Conn]ConnInfo
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*websocket.Conn]ConnInfo)}
}

// AddClient registers a connection for the user.
func (h *Hub) AddClient(userID string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; !ok {
		h.clients[userID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.clients[userID][conn] = info
}

// RemoveClient drops a connection. Returns true when it was the user's last.
func (h *Hub) RemoveClient(userID string, conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[userID]
	if !ok {
		return false
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(h.clients, userID)
		return true
	}
	return false
}

// PushSnapshot sends the user's refreshed session state to all of their
// connections. Signature matches session.WithNotifier.
func (h *Hub) PushSnapshot(userID string, snap session.Snapshot) {
	h.send(userID, Event{Type: "snapshot", Snapshot: &snap})
}

// BroadcastTyping fans a typing indicator out to every participant except
// the typist.
func (h *Hub) BroadcastTyping(conversationID, fromUserID string, participantIDs []string) {
	event := Event{Type: "typing", Typing: &TypingEvent{ConversationID: conversationID, UserID: fromUserID}}
	for _, id := range participantIDs {
		if id == fromUserID {
			continue
		}
		h.send(id, event)
	}
}

func (h *Hub) send(userID string, event Event) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients[userID]))
	for conn := range h.clients[userID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("websocket marshal error: %v", err)
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error user=%s: %v", userID, err)
			conn.Close()
			h.RemoveClient(userID, conn)
		}
	}
}
