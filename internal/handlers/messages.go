package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/repositories"
	"messaging-service/internal/session"
)

// MessageHandler serves message history, the send pipeline and reactions.
type MessageHandler struct {
	sessions *session.Manager
	convRepo repositories.ConversationRepository
	msgRepo  repositories.MessageRepository
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(sessions *session.Manager, convRepo repositories.ConversationRepository, msgRepo repositories.MessageRepository) *MessageHandler {
	return &MessageHandler{sessions: sessions, convRepo: convRepo, msgRepo: msgRepo}
}

// List opens the conversation in the caller's session and returns its
// messages. Opening marks the conversation read.
func (h *MessageHandler) List(c *gin.Context) {
	sess, _, ok := h.openConversation(c)
	if !ok {
		return
	}

	snap := sess.Snapshot()
	c.JSON(http.StatusOK, gin.H{"messages": snap.Messages})
}

// Post runs the optimistic send pipeline for the conversation.
func (h *MessageHandler) Post(c *gin.Context) {
	sess, _, ok := h.openConversation(c)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := sess.Send(c.Request.Context(), req.Content)
	switch {
	case errors.Is(err, session.ErrEmptyContent):
		c.JSON(http.StatusBadRequest, gin.H{"error": "message content is empty"})
	case errors.Is(err, session.ErrSendInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "a send is already in flight"})
	case err != nil:
		// The session already rolled back and restored the draft; report the
		// failure so the client can offer a retry.
		snap := sess.Snapshot()
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not send message", "draft": snap.Draft})
	default:
		snap := sess.Snapshot()
		c.JSON(http.StatusCreated, gin.H{"messages": snap.Messages})
	}
}

// AddReaction records an emoji reaction on a message.
func (h *MessageHandler) AddReaction(c *gin.Context) {
	sess, conversationID, messageID, emoji, ok := h.reactionArgs(c)
	if !ok {
		return
	}

	if err := h.msgRepo.AddReaction(c.Request.Context(), messageID, userIDFromContext(c), emoji); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add reaction"})
		return
	}

	sess.SelectConversation(c.Request.Context(), conversationID)
	c.Status(http.StatusNoContent)
}

// RemoveReaction deletes the caller's reaction from a message.
func (h *MessageHandler) RemoveReaction(c *gin.Context) {
	sess, conversationID, messageID, emoji, ok := h.reactionArgs(c)
	if !ok {
		return
	}

	if err := h.msgRepo.RemoveReaction(c.Request.Context(), messageID, userIDFromContext(c), emoji); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove reaction"})
		return
	}

	sess.SelectConversation(c.Request.Context(), conversationID)
	c.Status(http.StatusNoContent)
}

// openConversation authorizes the caller for the conversation and selects it
// in their session.
func (h *MessageHandler) openConversation(c *gin.Context) (*session.Session, string, bool) {
	conversationID := c.Param("conversation_id")
	userID := userIDFromContext(c)

	member, err := h.convRepo.IsParticipant(c.Request.Context(), conversationID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return nil, "", false
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return nil, "", false
	}

	sess, err := h.sessions.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open session"})
		return nil, "", false
	}

	sess.SelectConversation(c.Request.Context(), conversationID)
	return sess, conversationID, true
}

func (h *MessageHandler) reactionArgs(c *gin.Context) (*session.Session, string, string, string, bool) {
	messageID := c.Param("message_id")
	emoji := c.Param("emoji")
	if emoji == "" {
		var req struct {
			Emoji string `json:"emoji" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, "", "", "", false
		}
		emoji = req.Emoji
	}

	sess, conversationID, ok := h.openConversation(c)
	if !ok {
		return nil, "", "", "", false
	}

	msg, err := h.msgRepo.Get(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return nil, "", "", "", false
	}
	if msg.ConversationID != conversationID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message does not belong to conversation"})
		return nil, "", "", "", false
	}

	return sess, conversationID, messageID, emoji, true
}
