package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edusphere/edusphere-gamification/internal/domain/leaderboard"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE
//
// Pages are cached whole as JSON, keyed by (role filter, limit). Every
// cached key is registered in a set so Invalidate can drop them all without
// scanning the keyspace. Any Redis failure surfaces as a miss; the query
// handler falls back to the database.
// ══════════════════════════════════════════════════════════════════════════════

const pageRegistryKey = PrefixLeaderboard + "pages"

// cachedEntry is the storage shape of a leaderboard entry.
type cachedEntry struct {
	Rank        int       `json:"rank"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role,omitempty"`
	Points      int       `json:"points"`
	Level       int       `json:"level"`
	BadgeCount  int       `json:"badge_count"`
	Avatar      string    `json:"avatar,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LeaderboardCache implements leaderboard.Cache on Redis.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLeaderboardCache creates a new cache with the default page TTL.
func NewLeaderboardCache(client *redis.Client) *LeaderboardCache {
	return &LeaderboardCache{client: client, ttl: TTLLeaderboardPage}
}

// NewLeaderboardCacheWithTTL creates a cache with a custom page TTL.
func NewLeaderboardCacheWithTTL(client *redis.Client, ttl time.Duration) *LeaderboardCache {
	if ttl <= 0 {
		ttl = TTLLeaderboardPage
	}
	return &LeaderboardCache{client: client, ttl: ttl}
}

func pageKey(filter leaderboard.RoleFilter, limit int) string {
	role := string(filter)
	if role == "" {
		role = "all"
	}
	return fmt.Sprintf("%spage:%s:%d", PrefixLeaderboard, role, limit)
}

// GetTop returns a cached page for the filter, or ErrCacheMiss.
func (c *LeaderboardCache) GetTop(ctx context.Context, filter leaderboard.RoleFilter, limit int) ([]leaderboard.Entry, error) {
	raw, err := c.client.Get(ctx, pageKey(filter, limit)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("%w: %v", ErrCacheMiss, err)
	}

	var cached []cachedEntry
	if err := json.Unmarshal(raw, &cached); err != nil {
		// Corrupted payload; treat as a miss so the page gets rebuilt.
		return nil, fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}

	entries := make([]leaderboard.Entry, 0, len(cached))
	for _, e := range cached {
		entries = append(entries, leaderboard.Entry{
			Rank:        leaderboard.Rank(e.Rank),
			UserID:      e.UserID,
			DisplayName: e.DisplayName,
			Role:        e.Role,
			Points:      e.Points,
			Level:       e.Level,
			BadgeCount:  e.BadgeCount,
			Avatar:      e.Avatar,
			UpdatedAt:   e.UpdatedAt,
		})
	}

	return entries, nil
}

// SetTop stores a page for the filter and registers its key.
func (c *LeaderboardCache) SetTop(ctx context.Context, filter leaderboard.RoleFilter, limit int, entries []leaderboard.Entry) error {
	cached := make([]cachedEntry, 0, len(entries))
	for _, e := range entries {
		cached = append(cached, cachedEntry{
			Rank:        int(e.Rank),
			UserID:      e.UserID,
			DisplayName: e.DisplayName,
			Role:        e.Role,
			Points:      e.Points,
			Level:       e.Level,
			BadgeCount:  e.BadgeCount,
			Avatar:      e.Avatar,
			UpdatedAt:   e.UpdatedAt,
		})
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}

	key := pageKey(filter, limit)

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, raw, c.ttl)
	pipe.SAdd(ctx, pageRegistryKey, key)
	pipe.Expire(ctx, pageRegistryKey, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache: failed to store leaderboard page: %w", err)
	}

	return nil
}

// Invalidate drops every registered page. Called after any point award so
// readers never see standings older than the last write plus the TTL.
func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	keys, err := c.client.SMembers(ctx, pageRegistryKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("cache: failed to list leaderboard pages: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	keys = append(keys, pageRegistryKey)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache: failed to invalidate leaderboard pages: %w", err)
	}

	return nil
}
