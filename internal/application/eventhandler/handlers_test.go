package eventhandler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusphere/edusphere-gamification/internal/domain/leaderboard"
	"github.com/edusphere/edusphere-gamification/internal/domain/notification"
	"github.com/edusphere/edusphere-gamification/internal/domain/shared"
)

type sentNotification struct {
	userID  string
	kind    notification.Type
	title   string
	message string
	icon    string
}

type recordingSink struct {
	sent []sentNotification
}

func (s *recordingSink) Notify(userID string, t notification.Type, title, message, icon string) {
	s.sent = append(s.sent, sentNotification{userID: userID, kind: t, title: title, message: message, icon: icon})
}

type countingCache struct {
	invalidations int
	err           error
}

func (c *countingCache) GetTop(context.Context, leaderboard.RoleFilter, int) ([]leaderboard.Entry, error) {
	return nil, errors.New("miss")
}

func (c *countingCache) SetTop(context.Context, leaderboard.RoleFilter, int, []leaderboard.Entry) error {
	return nil
}

func (c *countingCache) Invalidate(context.Context) error {
	c.invalidations++
	return c.err
}

func TestOnLevelUpNotifies(t *testing.T) {
	sink := &recordingSink{}
	handler := NewOnLevelUpHandler(sink, nil)

	err := handler.Handle(shared.NewLevelUpEvent("u1", 1, 2, 150))
	require.NoError(t, err)

	require.Len(t, sink.sent, 1)
	assert.Equal(t, "u1", sink.sent[0].userID)
	assert.Equal(t, notification.TypeAchievement, sink.sent[0].kind)
	assert.Contains(t, sink.sent[0].message, "level 2")
}

func TestOnLevelUpIgnoresOtherEvents(t *testing.T) {
	sink := &recordingSink{}
	handler := NewOnLevelUpHandler(sink, nil)

	err := handler.Handle(shared.NewPointsAwardedEvent("u1", 10, 10, "comment_posted"))
	require.NoError(t, err, "a mismatched event is logged, never an error")
	assert.Empty(t, sink.sent)
}

func TestOnBadgeEarnedNotifies(t *testing.T) {
	sink := &recordingSink{}
	handler := NewOnBadgeEarnedHandler(sink, nil)

	err := handler.Handle(shared.NewBadgeEarnedEvent(
		"u1", "FIRST_POST", "First Post", "📝", "Created your first post", time.Now().UTC(),
	))
	require.NoError(t, err)

	require.Len(t, sink.sent, 1)
	assert.Equal(t, notification.TypeBadge, sink.sent[0].kind)
	assert.Contains(t, sink.sent[0].message, "First Post")
	assert.Equal(t, "📝", sink.sent[0].icon)
}

func TestOnPointsAwardedInvalidatesCache(t *testing.T) {
	cache := &countingCache{}
	handler := NewOnPointsAwardedHandler(cache, nil)

	err := handler.Handle(shared.NewPointsAwardedEvent("u1", 50, 50, "post_created"))
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidations)
}

func TestOnPointsAwardedSwallowsCacheFailure(t *testing.T) {
	cache := &countingCache{err: errors.New("redis down")}
	handler := NewOnPointsAwardedHandler(cache, nil)

	err := handler.Handle(shared.NewPointsAwardedEvent("u1", 50, 50, "post_created"))
	assert.NoError(t, err, "stale pages expire via TTL, the award is not rolled back")
}
