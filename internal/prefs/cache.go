// Package prefs maintains the per-user cached preference embedding:
// a semantic vector of "what this user likes", regenerated lazily
// whenever swipes or profile edits make it stale.
package prefs

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/wandermatch/wandermatch/internal/cache"
	"github.com/wandermatch/wandermatch/internal/db"
	"github.com/wandermatch/wandermatch/internal/embedding"
	"github.com/wandermatch/wandermatch/internal/repository"
)

// Cache resolves a user's preference vector, regenerating it through
// the embedding client when stale.
type Cache struct {
	users    *repository.UserRepository
	swipes   *repository.SwipeRepository
	redis    *cache.RedisCache
	embedder embedding.Client
	log      *slog.Logger
}

func NewCache(
	users *repository.UserRepository,
	swipes *repository.SwipeRepository,
	redis *cache.RedisCache,
	embedder embedding.Client,
	log *slog.Logger,
) *Cache {
	return &Cache{
		users:    users,
		swipes:   swipes,
		redis:    redis,
		embedder: embedder,
		log:      log,
	}
}

// IsStale reports whether the user's cached vector must be
// regenerated. Pure so the staleness rules are testable independent of
// storage. dim is the embedding service's declared dimension.
func IsStale(user *db.User, latestSwipeAt *time.Time, dirty bool, dim int) bool {
	if dirty {
		return true
	}
	if len(user.PrefVector) != dim || user.PrefGeneratedAt == nil {
		return true
	}
	if latestSwipeAt != nil && latestSwipeAt.After(*user.PrefGeneratedAt) {
		return true
	}
	return false
}

// PreferenceText builds the canonical text description embedded for a
// user. The format is stable: changing it silently invalidates every
// cached vector's meaning.
func PreferenceText(preferredTypes []string) string {
	if len(preferredTypes) == 0 {
		return "No specific preferences"
	}
	return "Preferred experience types: " + strings.Join(preferredTypes, ", ")
}

// GetOrRefresh returns the user's preference vector, regenerating it
// if stale. Never returns an error: on embedding failure it substitutes
// the neutral fallback vector and reports degraded=true, leaving the
// cache timestamp unset so the next call retries.
func (c *Cache) GetOrRefresh(ctx context.Context, user *db.User) (vec []float32, degraded bool) {
	dim := c.embedder.Dimensions()

	latestSwipeAt, err := c.swipes.LatestSwipeAt(ctx, user.ID)
	if err != nil {
		c.log.Warn("failed to load latest swipe for staleness check", "user", user.ID, "err", err)
		// fall through: the remaining checks still apply
	}
	dirty := c.redis.PrefsDirty(ctx, user.ID)

	if !IsStale(user, latestSwipeAt, dirty, dim) {
		return user.PrefVector, false
	}

	text := PreferenceText(user.PreferredTypes)
	vector, err := c.embedder.Embed(ctx, text)
	if err != nil {
		c.log.Warn("embedding unavailable, using fallback vector", "user", user.ID, "err", err)
		return embedding.Fallback(dim), true
	}

	now := time.Now().UTC()
	if err := c.users.StorePrefVector(ctx, user.ID, vector, now); err != nil {
		c.log.Error("failed to store preference vector", "user", user.ID, "err", err)
	} else {
		user.PrefVector = vector
		user.PrefGeneratedAt = &now
		if err := c.redis.ClearPrefsDirty(ctx, user.ID); err != nil {
			c.log.Warn("failed to clear prefs dirty flag", "user", user.ID, "err", err)
		}
	}
	return vector, false
}
