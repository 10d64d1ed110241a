package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusphere/edusphere-gamification/internal/domain/leaderboard"
)

// memBoard is an in-memory leaderboard.Repository over a fixed entry set.
type memBoard struct {
	entries []leaderboard.Entry
	err     error
}

func (b *memBoard) GetTop(_ context.Context, filter leaderboard.RoleFilter, limit int) ([]leaderboard.Entry, error) {
	if b.err != nil {
		return nil, b.err
	}
	out := make([]leaderboard.Entry, 0, limit)
	for _, e := range b.entries {
		if filter != leaderboard.RoleAll && e.Role != string(filter) {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (b *memBoard) CountAhead(_ context.Context, points int) (int, error) {
	if b.err != nil {
		return 0, b.err
	}
	ahead := 0
	for _, e := range b.entries {
		if e.Points > points {
			ahead++
		}
	}
	return ahead, nil
}

func (b *memBoard) CountUsers(_ context.Context) (int, error) {
	if b.err != nil {
		return 0, b.err
	}
	return len(b.entries), nil
}

// memCache is an in-memory leaderboard.Cache.
type memCache struct {
	pages   map[string][]leaderboard.Entry
	setErr  error
	dropped int
}

func newMemCache() *memCache {
	return &memCache{pages: make(map[string][]leaderboard.Entry)}
}

func cacheKey(filter leaderboard.RoleFilter, limit int) string {
	return string(filter) + "/" + string(rune('0'+limit%10))
}

func (c *memCache) GetTop(_ context.Context, filter leaderboard.RoleFilter, limit int) ([]leaderboard.Entry, error) {
	page, ok := c.pages[cacheKey(filter, limit)]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return page, nil
}

func (c *memCache) SetTop(_ context.Context, filter leaderboard.RoleFilter, limit int, entries []leaderboard.Entry) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.pages[cacheKey(filter, limit)] = entries
	return nil
}

func (c *memCache) Invalidate(context.Context) error {
	c.pages = make(map[string][]leaderboard.Entry)
	c.dropped++
	return nil
}

func testEntries() []leaderboard.Entry {
	now := time.Now().UTC()
	return []leaderboard.Entry{
		{UserID: "a", DisplayName: "Alice", Role: "Student", Points: 900, Level: 4, BadgeCount: 3, UpdatedAt: now},
		{UserID: "b", DisplayName: "Bob", Role: "Mentor", Points: 700, Level: 4, BadgeCount: 2, UpdatedAt: now},
		{UserID: "c", DisplayName: "Cora", Role: "Student", Points: 500, Level: 3, BadgeCount: 1, UpdatedAt: now},
	}
}

func TestGetLeaderboard(t *testing.T) {
	handler := NewGetLeaderboardHandler(&memBoard{entries: testEntries()}, nil, nil)

	res, err := handler.Handle(context.Background(), GetLeaderboardQuery{})
	require.NoError(t, err)

	require.Len(t, res.Entries, 3)
	assert.Equal(t, 1, res.Entries[0].Rank)
	assert.Equal(t, "a", res.Entries[0].UserID)
	assert.Equal(t, 3, res.Entries[2].Rank)
	assert.Equal(t, "c", res.Entries[2].UserID)
	assert.False(t, res.FromCache)
	assert.Equal(t, "all", res.Role)
}

func TestGetLeaderboardRoleFilter(t *testing.T) {
	handler := NewGetLeaderboardHandler(&memBoard{entries: testEntries()}, nil, nil)

	res, err := handler.Handle(context.Background(), GetLeaderboardQuery{Role: leaderboard.RoleFilter("Mentor")})
	require.NoError(t, err)

	require.Len(t, res.Entries, 1)
	assert.Equal(t, "b", res.Entries[0].UserID)
	assert.Equal(t, 1, res.Entries[0].Rank, "ranks are relative to the filtered page")
}

func TestGetLeaderboardLimit(t *testing.T) {
	handler := NewGetLeaderboardHandler(&memBoard{entries: testEntries()}, nil, nil)

	res, err := handler.Handle(context.Background(), GetLeaderboardQuery{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, res.Entries, 2)

	_, err = handler.Handle(context.Background(), GetLeaderboardQuery{Limit: -1})
	assert.Error(t, err)
}

func TestGetLeaderboardPopulatesCache(t *testing.T) {
	cache := newMemCache()
	handler := NewGetLeaderboardHandler(&memBoard{entries: testEntries()}, cache, nil)
	ctx := context.Background()

	res, err := handler.Handle(ctx, GetLeaderboardQuery{})
	require.NoError(t, err)
	assert.False(t, res.FromCache)

	res, err = handler.Handle(ctx, GetLeaderboardQuery{})
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Len(t, res.Entries, 3)
}

func TestGetLeaderboardCacheWriteFailureIsBestEffort(t *testing.T) {
	cache := newMemCache()
	cache.setErr = errors.New("redis down")
	handler := NewGetLeaderboardHandler(&memBoard{entries: testEntries()}, cache, nil)

	res, err := handler.Handle(context.Background(), GetLeaderboardQuery{})
	require.NoError(t, err, "a failing cache never fails the query")
	assert.Len(t, res.Entries, 3)
}

func TestGetLeaderboardStorageError(t *testing.T) {
	handler := NewGetLeaderboardHandler(&memBoard{err: errors.New("connection refused")}, nil, nil)

	_, err := handler.Handle(context.Background(), GetLeaderboardQuery{})
	assert.Error(t, err)
}
