package session

import (
	"context"
	"log"

	"messaging-service/internal/models"
)

// SelectConversation opens a conversation: loads its history, marks it read
// and exposes the messages through the snapshot. Message history is
// best-effort; on load failure the view shows an empty list rather than an
// error.
func (s *Session) SelectConversation(ctx context.Context, conversationID string) {
	records := s.loadRecords(ctx, conversationID)

	s.state.mu.Lock()
	s.state.selected = conversationID
	s.state.records = records
	s.state.draft = ""
	s.state.mu.Unlock()

	s.MarkRead(ctx, conversationID)
}

// loadRecords fetches the ordered message history with reactions attached.
// Ordering is enforced here by sorting on creation time, independent of what
// the backend returned.
func (s *Session) loadRecords(ctx context.Context, conversationID string) []Record {
	msgs, err := withTimeout(ctx, s.callTimeout, func(ctx context.Context) ([]models.Message, error) {
		return s.msgRepo.ListForConversation(ctx, conversationID)
	})
	if err != nil {
		log.Printf("message load failed conversation=%s user=%s: %v", conversationID, s.userID, err)
		return []Record{}
	}

	rows, err := withTimeout(ctx, s.callTimeout, func(ctx context.Context) ([]models.ReactionRow, error) {
		return s.msgRepo.ReactionsForConversation(ctx, conversationID)
	})
	if err != nil {
		log.Printf("reaction load failed conversation=%s user=%s: %v", conversationID, s.userID, err)
		rows = nil
	}
	grouped := groupReactions(rows)

	records := make([]Record, 0, len(msgs))
	for _, msg := range msgs {
		msg.Reactions = grouped[msg.ID]
		records = append(records, confirmedRecord(msg))
	}
	sortRecords(records)
	return records
}
