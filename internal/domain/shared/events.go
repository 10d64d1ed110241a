// Package shared contains common domain types, errors, and events that are
// used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened in the gamification engine. Side effects such as notification
// records are produced by subscribers, never by the command that publishes.
const (
	// Point ledger events
	EventPointsAwarded EventType = "gamification.points_awarded"
	EventLevelUp       EventType = "gamification.level_up"

	// Badge events
	EventBadgeEarned EventType = "gamification.badge_earned"

	// Streak events
	EventStreakUpdated EventType = "gamification.streak_updated"
	EventStreakBroken  EventType = "gamification.streak_broken"

	// Stat events
	EventStatIncremented EventType = "gamification.stat_incremented"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// EventHandler processes a single event. Returning an error marks the
// handling as failed; it never propagates back to the publisher.
type EventHandler func(event Event) error

// EventBus routes domain events to subscribed handlers.
type EventBus interface {
	Subscribe(eventType EventType, handler EventHandler) error
	SubscribeAll(handler EventHandler) error
	Publish(event Event) error
	Close() error
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Point Ledger Events
// ═══════════════════════════════════════════════════════════════════════════

// PointsAwardedEvent is emitted after every successful point award.
type PointsAwardedEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	Delta    int    `json:"delta"`
	NewTotal int    `json:"new_total"`
	Reason   string `json:"reason"`
}

// Payload implements Event interface.
func (e PointsAwardedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"delta":     e.Delta,
		"new_total": e.NewTotal,
		"reason":    e.Reason,
	}
}

// NewPointsAwardedEvent creates a new PointsAwardedEvent.
func NewPointsAwardedEvent(userID string, delta, newTotal int, reason string) PointsAwardedEvent {
	return PointsAwardedEvent{
		BaseEvent: NewBaseEvent(EventPointsAwarded, userID),
		UserID:    userID,
		Delta:     delta,
		NewTotal:  newTotal,
		Reason:    reason,
	}
}

// LevelUpEvent is emitted at most once per award when the new total crosses
// one or more level thresholds.
type LevelUpEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	OldLevel int    `json:"old_level"`
	NewLevel int    `json:"new_level"`
	Points   int    `json:"points"`
}

// Payload implements Event interface.
func (e LevelUpEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"old_level": e.OldLevel,
		"new_level": e.NewLevel,
		"points":    e.Points,
	}
}

// NewLevelUpEvent creates a new LevelUpEvent.
func NewLevelUpEvent(userID string, oldLevel, newLevel, points int) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent: NewBaseEvent(EventLevelUp, userID),
		UserID:    userID,
		OldLevel:  oldLevel,
		NewLevel:  newLevel,
		Points:    points,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Badge Events
// ═══════════════════════════════════════════════════════════════════════════

// BadgeEarnedEvent is emitted when a badge is granted to a user.
type BadgeEarnedEvent struct {
	BaseEvent
	UserID      string    `json:"user_id"`
	BadgeID     string    `json:"badge_id"`
	BadgeName   string    `json:"badge_name"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earned_at"`
}

// Payload implements Event interface.
func (e BadgeEarnedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":     e.UserID,
		"badge_id":    e.BadgeID,
		"badge_name":  e.BadgeName,
		"icon":        e.Icon,
		"description": e.Description,
		"earned_at":   e.EarnedAt,
	}
}

// NewBadgeEarnedEvent creates a new BadgeEarnedEvent.
func NewBadgeEarnedEvent(userID, badgeID, badgeName, icon, description string, earnedAt time.Time) BadgeEarnedEvent {
	return BadgeEarnedEvent{
		BaseEvent:   NewBaseEvent(EventBadgeEarned, userID),
		UserID:      userID,
		BadgeID:     badgeID,
		BadgeName:   badgeName,
		Icon:        icon,
		Description: description,
		EarnedAt:    earnedAt,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Streak Events
// ═══════════════════════════════════════════════════════════════════════════

// StreakUpdatedEvent is emitted when a login streak changes.
type StreakUpdatedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Streak int    `json:"streak"`
	Broken bool   `json:"broken"`
}

// Payload implements Event interface.
func (e StreakUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
		"streak":  e.Streak,
		"broken":  e.Broken,
	}
}

// NewStreakUpdatedEvent creates a new StreakUpdatedEvent.
func NewStreakUpdatedEvent(userID string, streak int, broken bool) StreakUpdatedEvent {
	eventType := EventStreakUpdated
	if broken {
		eventType = EventStreakBroken
	}
	return StreakUpdatedEvent{
		BaseEvent: NewBaseEvent(eventType, userID),
		UserID:    userID,
		Streak:    streak,
		Broken:    broken,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Stat Events
// ═══════════════════════════════════════════════════════════════════════════

// StatIncrementedEvent is emitted when a user stat counter changes.
type StatIncrementedEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	Stat     string `json:"stat"`
	NewValue int    `json:"new_value"`
}

// Payload implements Event interface.
func (e StatIncrementedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"stat":      e.Stat,
		"new_value": e.NewValue,
	}
}

// NewStatIncrementedEvent creates a new StatIncrementedEvent.
func NewStatIncrementedEvent(userID, stat string, newValue int) StatIncrementedEvent {
	return StatIncrementedEvent{
		BaseEvent: NewBaseEvent(EventStatIncremented, userID),
		UserID:    userID,
		Stat:      stat,
		NewValue:  newValue,
	}
}
