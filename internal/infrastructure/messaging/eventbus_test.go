package messaging

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusphere/edusphere-gamification/internal/domain/shared"
)

func newSyncBus() *InMemoryEventBus {
	return NewInMemoryEventBus(InMemoryEventBusConfig{
		AsyncMode:     false,
		EnableMetrics: true,
	})
}

func TestEventBusPublishSubscribe(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	var received []shared.Event
	err := bus.Subscribe(shared.EventPointsAwarded, func(e shared.Event) error {
		received = append(received, e)
		return nil
	})
	require.NoError(t, err)

	event := shared.NewPointsAwardedEvent("u1", 50, 50, "post_created")
	require.NoError(t, bus.Publish(event))

	require.Len(t, received, 1)
	assert.Equal(t, shared.EventPointsAwarded, received[0].EventType())
	assert.Equal(t, "u1", received[0].AggregateID())
}

func TestEventBusTypeIsolation(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	var levelUps int
	require.NoError(t, bus.Subscribe(shared.EventLevelUp, func(shared.Event) error {
		levelUps++
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewPointsAwardedEvent("u1", 10, 10, "comment_posted")))
	require.NoError(t, bus.Publish(shared.NewLevelUpEvent("u1", 1, 2, 150)))

	assert.Equal(t, 1, levelUps, "handler sees only its subscribed type")
}

func TestEventBusSubscribeAll(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	var seen []shared.EventType
	require.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		seen = append(seen, e.EventType())
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewPointsAwardedEvent("u1", 10, 10, "comment_posted")))
	require.NoError(t, bus.Publish(shared.NewStreakUpdatedEvent("u1", 3, false)))

	assert.Equal(t, []shared.EventType{shared.EventPointsAwarded, shared.EventStreakUpdated}, seen)
}

func TestEventBusHandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	var secondRan bool
	require.NoError(t, bus.Subscribe(shared.EventPointsAwarded, func(shared.Event) error {
		return errors.New("handler failure")
	}))
	require.NoError(t, bus.Subscribe(shared.EventPointsAwarded, func(shared.Event) error {
		secondRan = true
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewPointsAwardedEvent("u1", 10, 10, "comment_posted")),
		"publish never fails on handler errors")
	assert.True(t, secondRan)
}

func TestEventBusAsyncDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{
		AsyncMode:      true,
		WorkerPoolSize: 4,
	})

	var mu sync.Mutex
	count := 0
	require.NoError(t, bus.Subscribe(shared.EventPointsAwarded, func(shared.Event) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	}))

	for i := 0; i < 20; i++ {
		require.NoError(t, bus.Publish(shared.NewPointsAwardedEvent("u1", 5, 5*(i+1), "post_liked")))
	}

	// Close waits for in-flight handlers.
	require.NoError(t, bus.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 20, count)
}

func TestEventBusClosed(t *testing.T) {
	bus := newSyncBus()
	require.NoError(t, bus.Close())

	err := bus.Publish(shared.NewPointsAwardedEvent("u1", 10, 10, "comment_posted"))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	err = bus.Subscribe(shared.EventPointsAwarded, func(shared.Event) error { return nil })
	assert.ErrorIs(t, err, ErrEventBusClosed)

	assert.NoError(t, bus.Close(), "double close is safe")
}

func TestEventBusNilArguments(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	assert.Error(t, bus.Subscribe(shared.EventPointsAwarded, nil))
	assert.Error(t, bus.SubscribeAll(nil))
	assert.Error(t, bus.Publish(nil))
}

func TestEventBusMetrics(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	require.NoError(t, bus.Subscribe(shared.EventPointsAwarded, func(shared.Event) error {
		return nil
	}))
	require.NoError(t, bus.Subscribe(shared.EventPointsAwarded, func(shared.Event) error {
		return errors.New("boom")
	}))

	require.NoError(t, bus.Publish(shared.NewPointsAwardedEvent("u1", 10, 10, "comment_posted")))
	require.NoError(t, bus.Publish(shared.NewPointsAwardedEvent("u1", 10, 20, "comment_posted")))

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(2), snap.TotalPublished)
	assert.Equal(t, int64(4), snap.TotalHandlerExecs)
	assert.InDelta(t, 0.5, snap.HandlerSuccessRate, 0.001)
	assert.GreaterOrEqual(t, snap.AverageHandlerDuration, time.Duration(0))
}
