package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wandermatch/wandermatch/internal/config"
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// --- experience like counters ---

// KeyForLikeCount generates the Redis key for an experience's like count.
func (c *RedisCache) KeyForLikeCount(experienceID uint64) string {
	return fmt.Sprintf("likes:count:exp:%d", experienceID)
}

func (c *RedisCache) UpdateLikeCount(ctx context.Context, experienceID uint64, count int64) error {
	key := c.KeyForLikeCount(experienceID)
	// Always refresh TTL when updating
	return c.Client.Set(ctx, key, count, time.Hour).Err()
}

// GetLikeCount returns the cached like count for an experience.
// A cache miss is reported via ok=false, not an error.
func (c *RedisCache) GetLikeCount(ctx context.Context, experienceID uint64) (int64, bool, error) {
	key := c.KeyForLikeCount(experienceID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, time.Hour).Err()
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func (c *RedisCache) IncrLikeCount(ctx context.Context, experienceID uint64) {
	key := c.KeyForLikeCount(experienceID)
	_, _ = c.Client.Incr(ctx, key).Result()
	_ = c.Client.Expire(ctx, key, time.Hour).Err()
}

func (c *RedisCache) DecrLikeCount(ctx context.Context, experienceID uint64) {
	key := c.KeyForLikeCount(experienceID)
	_, _ = c.Client.Decr(ctx, key).Result()
	_ = c.Client.Expire(ctx, key, time.Hour).Err()
}

// --- preference staleness flag ---

func (c *RedisCache) keyForPrefsDirty(userID uint64) string {
	return fmt.Sprintf("prefs:dirty:%d", userID)
}

// MarkPrefsDirty flags a user's cached preference vector as stale.
// Called whenever a swipe is newly recorded/changed or the user edits
// their preference attributes.
func (c *RedisCache) MarkPrefsDirty(ctx context.Context, userID uint64) error {
	return c.Client.Set(ctx, c.keyForPrefsDirty(userID), "1", 24*time.Hour).Err()
}

// ClearPrefsDirty removes the staleness flag after a successful
// vector regeneration.
func (c *RedisCache) ClearPrefsDirty(ctx context.Context, userID uint64) error {
	return c.Client.Del(ctx, c.keyForPrefsDirty(userID)).Err()
}

// PrefsDirty reports whether the user's preference vector was flagged
// stale. Redis being down degrades to "not dirty": the timestamp
// checks on the cache still catch swipe-driven staleness.
func (c *RedisCache) PrefsDirty(ctx context.Context, userID uint64) bool {
	val, err := c.Client.Get(ctx, c.keyForPrefsDirty(userID)).Result()
	if err != nil {
		return false
	}
	return val != ""
}
