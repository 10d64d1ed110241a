package postgres

import (
	"context"

	"github.com/edusphere/edusphere-gamification/internal/domain/leaderboard"
	"github.com/edusphere/edusphere-gamification/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD REPOSITORY
//
// Standings are a read model over user_game_state; nothing is materialized.
// The composite (points DESC, level DESC, user_id) index keeps GetTop a
// single index scan.
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardRepository implements leaderboard.Repository on PostgreSQL.
type LeaderboardRepository struct {
	conn *Connection
}

// NewLeaderboardRepository creates a new repository.
func NewLeaderboardRepository(conn *Connection) *LeaderboardRepository {
	return &LeaderboardRepository{conn: conn}
}

// GetTop returns at most limit entries ordered by points descending, level
// descending, then user id. Badge counts come from a correlated subquery so
// the page stays a single round trip.
func (r *LeaderboardRepository) GetTop(ctx context.Context, filter leaderboard.RoleFilter, limit int) ([]leaderboard.Entry, error) {
	query := `
		SELECT s.user_id, s.display_name, s.role, s.avatar, s.points, s.level,
		       (SELECT COUNT(*) FROM user_badges b WHERE b.user_id = s.user_id) AS badge_count,
		       s.updated_at
		FROM user_game_state s
		WHERE ($1 = '' OR s.role = $1)
		ORDER BY s.points DESC, s.level DESC, s.user_id
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, string(filter), limit)
	if err != nil {
		return nil, shared.WrapError("leaderboard", "GetTop", shared.ErrExternalService, "failed to query standings", err)
	}
	defer rows.Close()

	entries := make([]leaderboard.Entry, 0, limit)
	for rows.Next() {
		var e leaderboard.Entry
		if err := rows.Scan(&e.UserID, &e.DisplayName, &e.Role, &e.Avatar, &e.Points, &e.Level, &e.BadgeCount, &e.UpdatedAt); err != nil {
			return nil, shared.WrapError("leaderboard", "GetTop", shared.ErrExternalService, "failed to scan entry", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// CountAhead returns the number of users with strictly more points.
func (r *LeaderboardRepository) CountAhead(ctx context.Context, points int) (int, error) {
	var ahead int
	err := r.conn.QueryRow(ctx,
		"SELECT COUNT(*) FROM user_game_state WHERE points > $1", points,
	).Scan(&ahead)
	if err != nil {
		return 0, shared.WrapError("leaderboard", "CountAhead", shared.ErrExternalService, "failed to count standings", err)
	}
	return ahead, nil
}

// CountUsers returns the total number of users in the standings.
func (r *LeaderboardRepository) CountUsers(ctx context.Context) (int, error) {
	var total int
	err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM user_game_state").Scan(&total)
	if err != nil {
		return 0, shared.WrapError("leaderboard", "CountUsers", shared.ErrExternalService, "failed to count users", err)
	}
	return total, nil
}
