package session

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"messaging-service/internal/models"
	"messaging-service/internal/observability"
)

// Send runs the optimistic send pipeline for the selected conversation:
//
//  1. Guard: whitespace-only content and re-entrant sends are rejected before
//     any network call.
//  2. A pending record with a temporary id, the client clock and the sender's
//     cached profile is appended and the draft cleared.
//  3. On success the pending record is replaced in place, matched by temp id
//     (never by timestamp, since client and server clocks differ).
//  4. On failure the pending record is removed and the content restored as
//     the draft so the user can retry without retyping.
//  5. Either way the conversation list is refreshed so the sidebar's last
//     message and ordering stay consistent.
func (s *Session) Send(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		observability.IncSend("rejected")
		return ErrEmptyContent
	}

	ctx, span := s.tracer.Start(ctx, "session.send")
	defer span.End()

	s.state.mu.Lock()
	if s.state.selected == "" {
		s.state.mu.Unlock()
		observability.IncSend("rejected")
		return ErrNoConversationSelected
	}
	if s.state.sending {
		s.state.mu.Unlock()
		observability.IncSend("rejected")
		return ErrSendInFlight
	}
	conversationID := s.state.selected
	tempID := "temp-" + uuid.NewString()
	s.state.records = append(s.state.records, Record{
		Message: models.Message{
			ID:             tempID,
			ConversationID: conversationID,
			SenderID:       s.userID,
			SenderName:     s.profile.DisplayName,
			SenderAvatar:   s.profile.AvatarURL,
			Content:        content,
			Kind:           models.MessageText,
			CreatedAt:      time.Now(),
		},
		TempID:  tempID,
		Pending: true,
	})
	s.state.sending = true
	s.state.draft = ""
	s.state.mu.Unlock()
	s.publish()

	msg, sendErr := withTimeout(ctx, s.callTimeout, func(ctx context.Context) (models.Message, error) {
		return s.msgRepo.Create(ctx, conversationID, s.userID, content, models.MessageText)
	})

	s.state.mu.Lock()
	s.state.sending = false
	if sendErr != nil {
		s.state.records = removePending(s.state.records, tempID)
		s.state.draft = content
	} else if s.state.selected == conversationID {
		replacePending(s.state.records, tempID, msg)
	}
	s.state.mu.Unlock()

	if sendErr != nil {
		log.Printf("send failed conversation=%s user=%s: %v", conversationID, s.userID, sendErr)
		observability.IncSend("rolled_back")
	} else {
		observability.IncSend("confirmed")
		s.afterSend(ctx, conversationID, msg)
	}

	s.Refresh(ctx)
	return sendErr
}

// afterSend keeps the backend's sidebar inputs consistent with the new
// message: bump the conversation's updated_at, surface it for any participant
// who archived it, and publish the domain event. All best-effort.
func (s *Session) afterSend(ctx context.Context, conversationID string, msg models.Message) {
	if err := s.convRepo.Touch(ctx, conversationID); err != nil {
		log.Printf("conversation touch failed conversation=%s: %v", conversationID, err)
	}
	if err := s.convRepo.Unarchive(ctx, conversationID); err != nil {
		log.Printf("conversation unarchive failed conversation=%s: %v", conversationID, err)
	}
	if s.events != nil {
		s.events.MessageSent(ctx, msg)
	}
}
