// Package notification contains the notification records emitted by the
// gamification engine. The engine only creates records; reading, marking as
// read, and delivery to clients belong to the notification subsystem.
package notification

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Type categorizes a notification for the client UI.
type Type string

const (
	// TypeAchievement - level-up announcements.
	TypeAchievement Type = "achievement"

	// TypeBadge - badge-earned announcements.
	TypeBadge Type = "badge"

	// TypeStreak - streak milestones.
	TypeStreak Type = "streak"
)

// IsValid checks that the type is known.
func (t Type) IsValid() bool {
	switch t {
	case TypeAchievement, TypeBadge, TypeStreak:
		return true
	default:
		return false
	}
}

// Domain errors.
var (
	ErrInvalidRecipient = errors.New("notification recipient must not be empty")
	ErrInvalidType      = errors.New("invalid notification type")
	ErrEmptyTitle       = errors.New("notification title must not be empty")
)

// Notification is a single record shown to a user. Once created by this
// engine it is owned by the notification subsystem and never mutated here.
type Notification struct {
	ID        string
	UserID    string
	Type      Type
	Title     string
	Message   string
	Icon      string
	Read      bool
	CreatedAt time.Time
}

// New creates a notification record with validation.
func New(id, userID string, t Type, title, message, icon string) (*Notification, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidRecipient
	}
	if !t.IsValid() {
		return nil, ErrInvalidType
	}
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}

	return &Notification{
		ID:        id,
		UserID:    userID,
		Type:      t,
		Title:     title,
		Message:   message,
		Icon:      icon,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Sink delivers notifications fire-and-forget. A failed delivery must never
// fail the point or badge award that triggered it; implementations retry and
// then drop.
type Sink interface {
	Notify(userID string, t Type, title, message, icon string)
}

// Repository is the persistence port for notification records.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
}
