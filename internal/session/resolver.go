package session

import (
	"context"
	"fmt"

	"messaging-service/internal/models"
)

// StartConversation finds or creates the direct conversation with the target
// user and selects it. Idempotency over the unordered pair is delegated to
// the backend's atomic upsert; the client does no duplicate detection. The
// conversation list is refreshed before selection so the new entry is present
// in the sidebar. Failure here is surfaced to the caller, unlike message
// history loads, because without a conversation id nothing further works.
func (s *Session) StartConversation(ctx context.Context, peerID string) (string, error) {
	conv, err := withTimeout(ctx, s.callTimeout, func(ctx context.Context) (models.Conversation, error) {
		return s.convRepo.GetOrCreateDirect(ctx, s.userID, peerID)
	})
	if err != nil {
		return "", fmt.Errorf("resolve conversation: %w", err)
	}

	s.Refresh(ctx)
	s.SelectConversation(ctx, conv.ID)

	if s.events != nil {
		s.events.ConversationStarted(ctx, conv.ID, s.userID, peerID)
	}
	return conv.ID, nil
}
