package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// ReadStateRepository tracks per-participant read markers and unread counts.
type ReadStateRepository interface {
	MarkRead(ctx context.Context, conversationID, userID string) error
	UnreadCount(ctx context.Context, conversationID, userID string) (int, error)
}

// ReadStateRepo is a sqlx implementation of ReadStateRepository.
type ReadStateRepo struct {
	db *sqlx.DB
}

// NewReadStateRepo constructs a ReadStateRepo.
func NewReadStateRepo(db *sqlx.DB) *ReadStateRepo {
	return &ReadStateRepo{db: db}
}

// MarkRead advances the user's last-read marker. GREATEST keeps the marker
// monotonic, so the call is idempotent and safe on every conversation open.
func (r *ReadStateRepo) MarkRead(ctx context.Context, conversationID, userID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE conversation_participants
        SET last_read_at = GREATEST(COALESCE(last_read_at, 'epoch'::timestamptz), NOW())
        WHERE conversation_id = $1 AND user_id = $2`, conversationID, userID)
	return err
}

// UnreadCount counts messages from other senders after the user's last-read
// marker. A missing marker means every message is unread.
func (r *ReadStateRepo) UnreadCount(ctx context.Context, conversationID, userID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages m
        JOIN conversation_participants cp
            ON cp.conversation_id = m.conversation_id AND cp.user_id = $2
        WHERE m.conversation_id = $1
        AND m.deleted = FALSE
        AND m.sender_id <> $2
        AND m.created_at > COALESCE(cp.last_read_at, 'epoch'::timestamptz)`, conversationID, userID)
	return count, err
}
