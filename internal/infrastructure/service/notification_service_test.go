package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusphere/edusphere-gamification/internal/domain/notification"
)

// memNotifications records created notifications, optionally failing the
// first N attempts.
type memNotifications struct {
	mu          sync.Mutex
	created     []*notification.Notification
	failFirstN  int
	attempts    int
	failForever bool
}

func (m *memNotifications) Create(_ context.Context, n *notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	if m.failForever || m.attempts <= m.failFirstN {
		return errors.New("connection refused")
	}
	m.created = append(m.created, n)
	return nil
}

type fixedIDs struct{ id string }

func (g fixedIDs) GenerateID() string { return g.id }

func TestNotificationServicePersists(t *testing.T) {
	repo := &memNotifications{}
	sink := NewSynchronousNotificationService(repo, fixedIDs{id: "n-1"}, nil)

	sink.Notify("u1", notification.TypeBadge, "Badge earned!", "You earned First Post", "🏆")

	require.Len(t, repo.created, 1)
	got := repo.created[0]
	assert.Equal(t, "n-1", got.ID)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, notification.TypeBadge, got.Type)
	assert.Equal(t, "Badge earned!", got.Title)
	assert.False(t, got.Read)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestNotificationServiceDropsInvalidRecord(t *testing.T) {
	repo := &memNotifications{}
	sink := NewSynchronousNotificationService(repo, fixedIDs{id: "n-1"}, nil)

	sink.Notify("", notification.TypeBadge, "Badge earned!", "", "")
	sink.Notify("u1", notification.Type("bogus"), "Badge earned!", "", "")
	sink.Notify("u1", notification.TypeStreak, "   ", "", "")

	assert.Empty(t, repo.created)
	assert.Zero(t, repo.attempts, "invalid records never reach storage")
}

func TestNotificationServiceRetriesTransientFailure(t *testing.T) {
	repo := &memNotifications{failFirstN: 2}
	sink := NewSynchronousNotificationService(repo, fixedIDs{id: "n-1"}, nil)

	sink.Notify("u1", notification.TypeAchievement, "Level up!", "You reached level 2", "⭐")

	assert.Equal(t, 3, repo.attempts)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "u1", repo.created[0].UserID)
}

func TestNotificationServiceDropsAfterExhaustion(t *testing.T) {
	repo := &memNotifications{failForever: true}
	sink := NewSynchronousNotificationService(repo, fixedIDs{id: "n-1"}, nil)

	// Must not panic or block; the failure is logged and swallowed.
	sink.Notify("u1", notification.TypeStreak, "Streak!", "3 days in a row", "🔥")

	assert.Equal(t, 3, repo.attempts, "bounded retries")
	assert.Empty(t, repo.created)
}
