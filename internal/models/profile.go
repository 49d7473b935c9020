package models

import "time"

// Presence values stored in the directory.
const (
	PresenceOnline  = "online"
	PresenceOffline = "offline"
	PresenceAway    = "away"
)

// UserProfile is the read-only display profile resolved for rendering
// participants, senders and search results. Owned by the backend; the
// client never mutates it.
type UserProfile struct {
	ID          string    `db:"id" json:"id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	AvatarURL   *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	Presence    string    `db:"presence" json:"presence"`
	Role        string    `db:"role" json:"role"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
