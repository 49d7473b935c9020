package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

// NotificationRepository lists notifications and toggles their read flag.
// Rows are created elsewhere on the platform; this service only reads them.
type NotificationRepository interface {
	ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// NotificationRepo is a sqlx implementation of NotificationRepository.
type NotificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepo constructs a NotificationRepo.
func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// ListForUser returns the newest notifications first.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	var items []models.Notification
	err := r.db.SelectContext(ctx, &items, `SELECT id, user_id, type, title, body, entity_id, read, created_at
        FROM notifications WHERE user_id = $1
        ORDER BY created_at DESC LIMIT $2`, userID, limit)
	return items, err
}

// MarkRead flags one notification as read. Scoped by user so a caller cannot
// touch another user's rows.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID, userID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = TRUE
        WHERE id = $1 AND user_id = $2`, notificationID, userID)
	return err
}

// MarkAllRead flags every unread notification for the user.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = TRUE
        WHERE user_id = $1 AND read = FALSE`, userID)
	return err
}

// UnreadCount returns the unread badge count.
func (r *NotificationRepo) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications
        WHERE user_id = $1 AND read = FALSE`, userID)
	return count, err
}
