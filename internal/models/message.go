package models

import "time"

// Message kinds.
const (
	MessageText   = "text"
	MessageImage  = "image"
	MessageFile   = "file"
	MessageVoice  = "voice"
	MessageSystem = "system"
)

// Message is a chat message with the sender profile denormalized onto the
// record so the UI never needs a second join at render time. Soft-deleted
// rows are filtered by the repository and never surface here.
type Message struct {
	ID             string            `db:"id" json:"id"`
	ConversationID string            `db:"conversation_id" json:"conversation_id"`
	SenderID       string            `db:"sender_id" json:"sender_id"`
	SenderName     string            `db:"sender_name" json:"sender_name"`
	SenderAvatar   *string           `db:"sender_avatar" json:"sender_avatar,omitempty"`
	Content        string            `db:"content" json:"content"`
	Kind           string            `db:"kind" json:"kind"`
	ReplyToID      *string           `db:"reply_to_id" json:"reply_to_id,omitempty"`
	FileURL        *string           `db:"file_url" json:"file_url,omitempty"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
	EditedAt       *time.Time        `db:"edited_at" json:"edited_at,omitempty"`
	Reactions      []ReactionSummary `db:"-" json:"reactions,omitempty"`
}

// ReactionRow is one raw per-user reaction as stored by the backend.
type ReactionRow struct {
	MessageID string    `db:"message_id" json:"message_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	UserName  string    `db:"user_name" json:"user_name"`
	Emoji     string    `db:"emoji" json:"emoji"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ReactionSummary groups raw reaction rows by emoji for rendering.
type ReactionSummary struct {
	Emoji string   `json:"emoji"`
	Count int      `json:"count"`
	Users []string `json:"users"`
}
