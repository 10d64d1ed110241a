package leaderboard

import "context"

// Repository is the read port for standings, backed by the user state store.
type Repository interface {
	// GetTop returns at most limit entries ordered by points descending,
	// level descending, then user id. Ranks are not assigned yet.
	GetTop(ctx context.Context, filter RoleFilter, limit int) ([]Entry, error)

	// CountAhead returns the number of users with strictly more points.
	CountAhead(ctx context.Context, points int) (int, error)

	// CountUsers returns the total number of users in the standings.
	CountUsers(ctx context.Context) (int, error)
}

// Cache is the optional hot-path cache for leaderboard pages.
// A cache miss is signalled by an error; callers fall back to the Repository
// and repopulate.
type Cache interface {
	// GetTop returns a cached page for the filter, or a miss error.
	GetTop(ctx context.Context, filter RoleFilter, limit int) ([]Entry, error)

	// SetTop stores a page for the filter.
	SetTop(ctx context.Context, filter RoleFilter, limit int, entries []Entry) error

	// Invalidate drops all cached pages; called after any point award.
	Invalidate(ctx context.Context) error
}
