package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository abstracts conversation persistence.
type ConversationRepository interface {
	ListForUser(ctx context.Context, userID string) ([]models.Conversation, error)
	Get(ctx context.Context, conversationID string) (models.Conversation, error)
	GetOrCreateDirect(ctx context.Context, userID, peerID string) (models.Conversation, error)
	IsParticipant(ctx context.Context, conversationID, userID string) (bool, error)
	Participants(ctx context.Context, conversationID string) ([]models.UserProfile, error)
	Touch(ctx context.Context, conversationID string) error
	ArchiveForUser(ctx context.Context, conversationID, userID string) error
	Unarchive(ctx context.Context, conversationID string) error
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// ListForUser returns conversations where the user is an active participant,
// most recently updated first. Archived and departed memberships are excluded.
func (r *ConversationRepo) ListForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	query := `SELECT c.id, c.kind, c.name, c.description, c.avatar_url, c.pair_key, c.created_at, c.updated_at
        FROM conversations c
        JOIN conversation_participants cp ON cp.conversation_id = c.id
        WHERE cp.user_id = $1 AND cp.left_at IS NULL AND cp.archived = FALSE
        ORDER BY c.updated_at DESC`
	var convs []models.Conversation
	err := r.db.SelectContext(ctx, &convs, query, userID)
	return convs, err
}

// Get fetches a conversation by id.
func (r *ConversationRepo) Get(ctx context.Context, conversationID string) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT id, kind, name, description, avatar_url, pair_key, created_at, updated_at
        FROM conversations WHERE id = $1`, conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

// GetOrCreateDirect returns the direct conversation for the unordered user
// pair, creating it atomically if absent. The sorted pair key plus its unique
// constraint make concurrent calls from any order of arguments converge on a
// single row.
func (r *ConversationRepo) GetOrCreateDirect(ctx context.Context, userID, peerID string) (models.Conversation, error) {
	if userID == peerID {
		return models.Conversation{}, errors.New("cannot start conversation with self")
	}
	pair := []string{userID, peerID}
	sort.Strings(pair)
	pairKey := strings.Join(pair, "|")

	var conv models.Conversation
	query := `INSERT INTO conversations (kind, pair_key) VALUES ('direct', $1)
        ON CONFLICT (pair_key) DO UPDATE SET pair_key = EXCLUDED.pair_key
        RETURNING id, kind, name, description, avatar_url, pair_key, created_at, updated_at`
	if err := r.db.GetContext(ctx, &conv, query, pairKey); err != nil {
		return models.Conversation{}, err
	}

	for _, id := range pair {
		if _, err := r.db.ExecContext(ctx, `INSERT INTO conversation_participants (conversation_id, user_id)
            VALUES ($1, $2) ON CONFLICT (conversation_id, user_id) DO UPDATE SET left_at = NULL`, conv.ID, id); err != nil {
			return models.Conversation{}, err
		}
	}
	return conv, nil
}

// IsParticipant checks active membership in the conversation.
func (r *ConversationRepo) IsParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(
        SELECT 1 FROM conversation_participants
        WHERE conversation_id = $1 AND user_id = $2 AND left_at IS NULL)`, conversationID, userID)
	return exists, err
}

// Participants returns the active participants joined with their profiles.
func (r *ConversationRepo) Participants(ctx context.Context, conversationID string) ([]models.UserProfile, error) {
	query := `SELECT p.id, p.display_name, p.avatar_url, p.presence, p.role, p.created_at
        FROM conversation_participants cp
        JOIN user_profiles p ON p.id = cp.user_id
        WHERE cp.conversation_id = $1 AND cp.left_at IS NULL
        ORDER BY cp.joined_at ASC`
	var profiles []models.UserProfile
	err := r.db.SelectContext(ctx, &profiles, query, conversationID)
	return profiles, err
}

// Touch bumps the conversation's updated_at so sidebar ordering follows sends.
func (r *ConversationRepo) Touch(ctx context.Context, conversationID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE conversations SET updated_at = NOW() WHERE id = $1`, conversationID)
	return err
}

// ArchiveForUser hides the conversation from the user's sidebar.
func (r *ConversationRepo) ArchiveForUser(ctx context.Context, conversationID, userID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE conversation_participants SET archived = TRUE
        WHERE conversation_id = $1 AND user_id = $2`, conversationID, userID)
	return err
}

// Unarchive makes the conversation visible again for every participant, used
// when a new message arrives so no side misses it.
func (r *ConversationRepo) Unarchive(ctx context.Context, conversationID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE conversation_participants SET archived = FALSE
        WHERE conversation_id = $1`, conversationID)
	return err
}
