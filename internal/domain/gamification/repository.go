package gamification

import (
	"context"
	"time"
)

// Repository is the persistence port for user game state.
// Implementations live in the infrastructure layer.
//
// Point and stat mutations are expressed as atomic increments rather than
// read-modify-write so that two awards racing on the same user cannot lose
// an update: the storage layer applies the increment and returns the fresh
// value in one round trip.
type Repository interface {
	// Create inserts a zero-valued state for a new account.
	Create(ctx context.Context, state *UserGameState) error

	// GetByUserID loads the full state including badges.
	// Returns a shared.ErrNotFound-kinded error when the user is unknown.
	GetByUserID(ctx context.Context, userID string) (*UserGameState, error)

	// AddPoints atomically increments the point total and returns the new
	// cumulative value. The caller derives the level from the result.
	AddPoints(ctx context.Context, userID string, delta Delta) (Points, error)

	// SetLevel persists a recomputed level.
	SetLevel(ctx context.Context, userID string, level Level) error

	// AppendBadge records an earned badge. Returns granted=false when the
	// user already holds the badge; uniqueness is enforced by storage so
	// concurrent evaluations cannot double-grant.
	AppendBadge(ctx context.Context, userID string, badge Badge) (granted bool, err error)

	// IncrementStat atomically bumps a named counter and returns its new
	// value.
	IncrementStat(ctx context.Context, userID string, stat StatName, by int) (int, error)

	// UpdateStreak persists the login-streak state.
	UpdateStreak(ctx context.Context, userID string, streak int, lastLogin time.Time) error
}
