package session

import (
	"context"
	"errors"
	"log"
	"time"

	"messaging-service/internal/models"
	"messaging-service/internal/observability"
	"messaging-service/internal/repositories"
)

// Refresh reloads the conversation list, most recently updated first. Each
// raw row is resolved into a full summary (participants, last message, unread
// count); a row whose sub-fetch fails is dropped and logged so one bad
// conversation cannot take down the whole sidebar. On success the unread
// rollup is recomputed and the new snapshot pushed to listeners.
func (s *Session) Refresh(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "session.refresh")
	defer span.End()
	start := time.Now()

	convs, err := withTimeout(ctx, s.callTimeout, func(ctx context.Context) ([]models.Conversation, error) {
		return s.convRepo.ListForUser(ctx, s.userID)
	})
	if err != nil {
		// Keep the cached list; a transient list failure should not blank
		// the sidebar mid-session.
		log.Printf("conversation list load failed user=%s: %v", s.userID, err)
		observability.ObserveSessionRefresh("error", time.Since(start))
		return
	}

	summaries := make([]models.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summary, err := s.resolveSummary(ctx, conv)
		if err != nil {
			log.Printf("conversation %s dropped from list user=%s: %v", conv.ID, s.userID, err)
			observability.IncConversationDropped()
			continue
		}
		summaries = append(summaries, summary)
	}

	s.state.mu.Lock()
	s.state.conversations = summaries
	s.state.recomputeUnreadLocked()
	s.state.mu.Unlock()

	observability.ObserveSessionRefresh("ok", time.Since(start))
	s.publish()
}

func (s *Session) resolveSummary(ctx context.Context, conv models.Conversation) (models.ConversationSummary, error) {
	participants, err := withTimeout(ctx, s.callTimeout, func(ctx context.Context) ([]models.UserProfile, error) {
		return s.convRepo.Participants(ctx, conv.ID)
	})
	if err != nil {
		return models.ConversationSummary{}, err
	}

	unread, err := withTimeout(ctx, s.callTimeout, func(ctx context.Context) (int, error) {
		return s.readRepo.UnreadCount(ctx, conv.ID, s.userID)
	})
	if err != nil {
		return models.ConversationSummary{}, err
	}

	var lastMessage *models.LastMessage
	last, err := withTimeout(ctx, s.callTimeout, func(ctx context.Context) (models.Message, error) {
		return s.msgRepo.LastForConversation(ctx, conv.ID)
	})
	switch {
	case err == nil:
		lastMessage = &models.LastMessage{
			Content:    last.Content,
			SenderID:   last.SenderID,
			SenderName: last.SenderName,
			SentAt:     last.CreatedAt,
		}
	case errors.Is(err, repositories.ErrMessageNotFound):
		// Empty conversation, nothing to summarize.
	default:
		return models.ConversationSummary{}, err
	}

	return models.ConversationSummary{
		ID:               conv.ID,
		Kind:             conv.Kind,
		Name:             conv.Name,
		AvatarURL:        conv.AvatarURL,
		Participants:     participants,
		ParticipantCount: len(participants),
		LastMessage:      lastMessage,
		UnreadCount:      unread,
		CreatedAt:        conv.CreatedAt,
		UpdatedAt:        conv.UpdatedAt,
	}, nil
}
