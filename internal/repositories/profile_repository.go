package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository resolves user ids to display profiles.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (models.UserProfile, error)
	Search(ctx context.Context, query, excludeUserID string, limit int) ([]models.UserProfile, error)
}

// ProfileRepo is a sqlx implementation of ProfileRepository.
type ProfileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo constructs a ProfileRepo.
func NewProfileRepo(db *sqlx.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Get fetches a single profile.
func (r *ProfileRepo) Get(ctx context.Context, userID string) (models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.GetContext(ctx, &profile, `SELECT id, display_name, avatar_url, presence, role, created_at
        FROM user_profiles WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserProfile{}, ErrProfileNotFound
	}
	return profile, err
}

// Search does a case-insensitive substring match on display name, excluding
// the requesting user, bounded by limit.
func (r *ProfileRepo) Search(ctx context.Context, query, excludeUserID string, limit int) ([]models.UserProfile, error) {
	var profiles []models.UserProfile
	err := r.db.SelectContext(ctx, &profiles, `SELECT id, display_name, avatar_url, presence, role, created_at
        FROM user_profiles
        WHERE display_name ILIKE '%' || $1 || '%' AND id <> $2
        ORDER BY display_name ASC
        LIMIT $3`, query, excludeUserID, limit)
	return profiles, err
}
