package session

import (
	"context"
	"log"
)

// MarkRead marks a conversation read. Safe to call on every open: the local
// counter is zeroed immediately and the aggregate recomputed, then the
// server-side marker is advanced. A failed remote call only logs; read state
// is advisory, and the counter goes stale until the next successful call.
func (s *Session) MarkRead(ctx context.Context, conversationID string) {
	s.state.mu.Lock()
	s.state.zeroUnreadLocked(conversationID)
	s.state.mu.Unlock()

	_, err := withTimeout(ctx, s.callTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.readRepo.MarkRead(ctx, conversationID, s.userID)
	})
	if err != nil {
		log.Printf("mark read failed conversation=%s user=%s: %v", conversationID, s.userID, err)
	} else if s.events != nil {
		s.events.ConversationRead(ctx, conversationID, s.userID)
	}

	s.publish()
}
