package directory

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

const (
	profileCacheTTL = 5 * time.Minute
	presenceTTL     = 2 * time.Minute
	searchLimit     = 20
)

// Directory resolves user ids to display profiles and tracks presence. The
// profile cache is cache-aside over Redis; searches always hit the backend
// since result freshness matters more than the round trip.
type Directory struct {
	profiles repositories.ProfileRepository
	rdb      *redis.Client
}

// New constructs a Directory. rdb may be nil, in which case caching and
// presence degrade to backend-only lookups.
func New(profiles repositories.ProfileRepository, rdb *redis.Client) *Directory {
	return &Directory{profiles: profiles, rdb: rdb}
}

// Resolve returns the profile for a user id, consulting the cache first.
func (d *Directory) Resolve(ctx context.Context, userID string) (models.UserProfile, error) {
	if d.rdb != nil {
		if raw, err := d.rdb.Get(ctx, profileKey(userID)).Result(); err == nil {
			var profile models.UserProfile
			if err := json.Unmarshal([]byte(raw), &profile); err == nil {
				d.applyPresence(ctx, &profile)
				return profile, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("directory cache read failed user=%s: %v", userID, err)
		}
	}

	profile, err := d.profiles.Get(ctx, userID)
	if err != nil {
		return models.UserProfile{}, err
	}

	if d.rdb != nil {
		if raw, err := json.Marshal(profile); err == nil {
			if err := d.rdb.Set(ctx, profileKey(userID), raw, profileCacheTTL).Err(); err != nil {
				log.Printf("directory cache write failed user=%s: %v", userID, err)
			}
		}
	}
	d.applyPresence(ctx, &profile)
	return profile, nil
}

// Search matches display names case-insensitively, excluding the requester.
// Repeated searches always re-query; no caching beyond per-call freshness.
func (d *Directory) Search(ctx context.Context, query, requesterID string) ([]models.UserProfile, error) {
	profiles, err := d.profiles.Search(ctx, query, requesterID, searchLimit)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		d.applyPresence(ctx, &profiles[i])
	}
	return profiles, nil
}

// SetPresence records the user's presence with a TTL so stale entries decay
// back to offline on their own.
func (d *Directory) SetPresence(ctx context.Context, userID, status string) {
	if d.rdb == nil {
		return
	}
	if err := d.rdb.Set(ctx, presenceKey(userID), status, presenceTTL).Err(); err != nil {
		log.Printf("presence write failed user=%s: %v", userID, err)
	}
}

func (d *Directory) applyPresence(ctx context.Context, profile *models.UserProfile) {
	if d.rdb == nil {
		return
	}
	status, err := d.rdb.Get(ctx, presenceKey(profile.ID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("presence read failed user=%s: %v", profile.ID, err)
		}
		profile.Presence = models.PresenceOffline
		return
	}
	profile.Presence = status
}

func profileKey(userID string) string  { return "directory:profile:" + userID }
func presenceKey(userID string) string { return "directory:presence:" + userID }
