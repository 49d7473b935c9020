package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/repositories"
	"messaging-service/internal/session"
)

// ConversationHandler serves the sidebar state and conversation lifecycle
// actions for the presentation layer.
type ConversationHandler struct {
	sessions *session.Manager
	convRepo repositories.ConversationRepository
}

// NewConversationHandler builds a ConversationHandler.
func NewConversationHandler(sessions *session.Manager, convRepo repositories.ConversationRepository) *ConversationHandler {
	return &ConversationHandler{sessions: sessions, convRepo: convRepo}
}

// List refreshes and returns the user's conversation list with the unread
// rollup.
func (h *ConversationHandler) List(c *gin.Context) {
	sess, err := h.sessions.Get(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open session"})
		return
	}

	sess.Refresh(c.Request.Context())
	snap := sess.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"conversations": snap.Conversations,
		"unread_total":  snap.UnreadTotal,
	})
}

// Start finds or creates the direct conversation with the target user and
// selects it. Failure here is user-visible, unlike best-effort history loads.
func (h *ConversationHandler) Start(c *gin.Context) {
	var req struct {
		PeerID string `json:"peer_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := userIDFromContext(c)
	sess, err := h.sessions.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open session"})
		return
	}

	if userID == req.PeerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot start conversation with yourself"})
		return
	}

	conversationID, err := sess.StartConversation(c.Request.Context(), req.PeerID)
	if err != nil {
		log.Printf("start conversation failed user=%s peer=%s request_id=%s: %v", userID, req.PeerID, requestIDFromContext(c), err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not start conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation_id": conversationID})
}

// MarkRead marks the conversation read for the caller.
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	userID := userIDFromContext(c)

	member, err := h.convRepo.IsParticipant(c.Request.Context(), conversationID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return
	}

	sess, err := h.sessions.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open session"})
		return
	}

	sess.MarkRead(c.Request.Context(), conversationID)
	c.Status(http.StatusNoContent)
}

// Archive hides the conversation from the caller's sidebar until the next
// message arrives.
func (h *ConversationHandler) Archive(c *gin.Context) {
	conversationID := c.Param("conversation_id")
	userID := userIDFromContext(c)

	member, err := h.convRepo.IsParticipant(c.Request.Context(), conversationID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return
	}

	if err := h.convRepo.ArchiveForUser(c.Request.Context(), conversationID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not archive conversation"})
		return
	}

	if sess, err := h.sessions.Get(c.Request.Context(), userID); err == nil {
		sess.Refresh(c.Request.Context())
	}
	c.Status(http.StatusNoContent)
}
