package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"messaging-service/internal/directory"
	"messaging-service/internal/middleware"
	"messaging-service/internal/models"
	"messaging-service/internal/observability"
	"messaging-service/internal/repositories"
)

// SessionWebSocketHandler upgrades presentation clients onto the push
// channel: session snapshots flow out, typing indicators flow both ways.
type SessionWebSocketHandler struct {
	hub       *Hub
	convRepo  repositories.ConversationRepository
	directory *directory.Directory
	jwtSecret string
}

// NewSessionWebSocketHandler constructs the handler.
func NewSessionWebSocketHandler(hub *Hub, convRepo repositories.ConversationRepository, dir *directory.Directory, jwtSecret string) *SessionWebSocketHandler {
	return &SessionWebSocketHandler{hub: hub, convRepo: convRepo, directory: dir, jwtSecret: jwtSecret}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type inboundFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
}

// Handle upgrades the connection, registers the client and reads inbound
// typing frames until the peer disconnects.
func (h *SessionWebSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("messaging-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	userID, err := middleware.ParseToken(h.jwtSecret, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(userID, conn, info)
	observability.IncWSActive()
	h.directory.SetPresence(ctx, userID, models.PresenceOnline)

	go h.readLoop(userID, conn)
}

func (h *SessionWebSocketHandler) readLoop(userID string, conn *websocket.Conn) {
	defer func() {
		last := h.hub.RemoveClient(userID, conn)
		observability.DecWSActive()
		if last {
			h.directory.SetPresence(context.Background(), userID, models.PresenceOffline)
		}
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("websocket read error user=%s: %v", userID, err)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(payload, &frame); err != nil || frame.Type != "typing" || frame.ConversationID == "" {
			continue
		}
		h.fanOutTyping(userID, frame.ConversationID)
	}
}

func (h *SessionWebSocketHandler) fanOutTyping(userID, conversationID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	member, err := h.convRepo.IsParticipant(ctx, conversationID, userID)
	if err != nil || !member {
		return
	}
	participants, err := h.convRepo.Participants(ctx, conversationID)
	if err != nil {
		log.Printf("typing fan-out failed conversation=%s: %v", conversationID, err)
		return
	}

	ids := make([]string, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.ID)
	}
	h.hub.BroadcastTyping(conversationID, userID, ids)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}
