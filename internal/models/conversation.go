package models

import "time"

// Conversation kinds.
const (
	KindDirect = "direct"
	KindGroup  = "group"
)

// Conversation is a raw conversation row. Direct conversations have exactly
// two participants; the pair key keeps the get-or-create procedure idempotent.
type Conversation struct {
	ID          string    `db:"id" json:"id"`
	Kind        string    `db:"kind" json:"kind"`
	Name        *string   `db:"name" json:"name,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	AvatarURL   *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	PairKey     *string   `db:"pair_key" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Participant is a membership row, including per-user read and archive state.
type Participant struct {
	ConversationID string     `db:"conversation_id" json:"conversation_id"`
	UserID         string     `db:"user_id" json:"user_id"`
	JoinedAt       time.Time  `db:"joined_at" json:"joined_at"`
	LeftAt         *time.Time `db:"left_at" json:"left_at,omitempty"`
	Archived       bool       `db:"archived" json:"archived"`
	LastReadAt     *time.Time `db:"last_read_at" json:"last_read_at,omitempty"`
}

// LastMessage is the denormalized summary shown in the sidebar.
type LastMessage struct {
	Content    string    `json:"content"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	SentAt     time.Time `json:"sent_at"`
}

// ConversationSummary is the fully resolved view the session layer produces
// for one sidebar entry: participants joined with profiles, last message
// summary and the unread counter scoped to the requesting user.
type ConversationSummary struct {
	ID               string        `json:"id"`
	Kind             string        `json:"kind"`
	Name             *string       `json:"name,omitempty"`
	AvatarURL        *string       `json:"avatar_url,omitempty"`
	Participants     []UserProfile `json:"participants"`
	ParticipantCount int           `json:"participant_count"`
	LastMessage      *LastMessage  `json:"last_message,omitempty"`
	UnreadCount      int           `json:"unread_count"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// Peer resolves "the other participant" of a direct conversation relative to
// the given user. Returns nil for group conversations or when the peer is
// missing from the joined participant list.
func (s ConversationSummary) Peer(userID string) *UserProfile {
	if s.Kind != KindDirect {
		return nil
	}
	for i := range s.Participants {
		if s.Participants[i].ID != userID {
			return &s.Participants[i]
		}
	}
	return nil
}
