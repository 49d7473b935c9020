package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions for conversation messages.
type MessageRepository interface {
	Create(ctx context.Context, conversationID, senderID, content, kind string) (models.Message, error)
	ListForConversation(ctx context.Context, conversationID string) ([]models.Message, error)
	LastForConversation(ctx context.Context, conversationID string) (models.Message, error)
	Get(ctx context.Context, messageID string) (models.Message, error)
	ReactionsForConversation(ctx context.Context, conversationID string) ([]models.ReactionRow, error)
	AddReaction(ctx context.Context, messageID, userID, emoji string) error
	RemoveReaction(ctx context.Context, messageID, userID, emoji string) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `m.id, m.conversation_id, m.sender_id, m.content, m.kind,
    m.reply_to_id, m.file_url, m.created_at, m.edited_at,
    p.display_name AS sender_name, p.avatar_url AS sender_avatar`

// Create stores a message and returns the persisted row joined with the
// sender profile, so callers get the authoritative record in one round trip.
func (r *MessageRepo) Create(ctx context.Context, conversationID, senderID, content, kind string) (models.Message, error) {
	query := `WITH inserted AS (
        INSERT INTO messages (conversation_id, sender_id, content, kind)
        VALUES ($1, $2, $3, $4)
        RETURNING id, conversation_id, sender_id, content, kind, reply_to_id, file_url, created_at, edited_at
    )
    SELECT m.id, m.conversation_id, m.sender_id, m.content, m.kind,
        m.reply_to_id, m.file_url, m.created_at, m.edited_at,
        p.display_name AS sender_name, p.avatar_url AS sender_avatar
    FROM inserted m
    JOIN user_profiles p ON p.id = m.sender_id`
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, query, conversationID, senderID, content, kind)
	return msg, err
}

// ListForConversation returns non-deleted messages ascending by creation
// time, sender profile denormalized onto each row.
func (r *MessageRepo) ListForConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + `
        FROM messages m
        JOIN user_profiles p ON p.id = m.sender_id
        WHERE m.conversation_id = $1 AND m.deleted = FALSE
        ORDER BY m.created_at ASC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, conversationID)
	return msgs, err
}

// LastForConversation returns the most recent non-deleted message.
func (r *MessageRepo) LastForConversation(ctx context.Context, conversationID string) (models.Message, error) {
	query := `SELECT ` + messageColumns + `
        FROM messages m
        JOIN user_profiles p ON p.id = m.sender_id
        WHERE m.conversation_id = $1 AND m.deleted = FALSE
        ORDER BY m.created_at DESC
        LIMIT 1`
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, query, conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// Get retrieves a single message.
func (r *MessageRepo) Get(ctx context.Context, messageID string) (models.Message, error) {
	query := `SELECT ` + messageColumns + `
        FROM messages m
        JOIN user_profiles p ON p.id = m.sender_id
        WHERE m.id = $1 AND m.deleted = FALSE`
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, query, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// ReactionsForConversation returns raw per-user reaction rows for every
// message in the conversation, with reacting user names joined.
func (r *MessageRepo) ReactionsForConversation(ctx context.Context, conversationID string) ([]models.ReactionRow, error) {
	query := `SELECT mr.message_id, mr.user_id, mr.emoji, mr.created_at,
        p.display_name AS user_name
        FROM message_reactions mr
        JOIN messages m ON m.id = mr.message_id
        JOIN user_profiles p ON p.id = mr.user_id
        WHERE m.conversation_id = $1
        ORDER BY mr.created_at ASC`
	var rows []models.ReactionRow
	err := r.db.SelectContext(ctx, &rows, query, conversationID)
	return rows, err
}

// AddReaction records a reaction; repeated calls for the same user and emoji
// are no-ops.
func (r *MessageRepo) AddReaction(ctx context.Context, messageID, userID, emoji string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO message_reactions (message_id, user_id, emoji)
        VALUES ($1, $2, $3) ON CONFLICT (message_id, user_id, emoji) DO NOTHING`, messageID, userID, emoji)
	return err
}

// RemoveReaction deletes the user's reaction.
func (r *MessageRepo) RemoveReaction(ctx context.Context, messageID, userID, emoji string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM message_reactions
        WHERE message_id = $1 AND user_id = $2 AND emoji = $3`, messageID, userID, emoji)
	return err
}
