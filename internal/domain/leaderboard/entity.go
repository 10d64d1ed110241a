// Package leaderboard contains the domain model for ranked standings.
// The leaderboard is a read-only projection over all users' point and level
// state; it is never persisted separately from user state.
package leaderboard

import (
	"fmt"
	"sort"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Rank represents a position in the standings, starting at 1.
type Rank int

// IsValid checks that the rank is positive.
func (r Rank) IsValid() bool {
	return r > 0
}

// IsTop10 returns true for the first ten positions.
func (r Rank) IsTop10() bool {
	return r >= 1 && r <= 10
}

// String returns the display representation of the rank.
func (r Rank) String() string {
	return fmt.Sprintf("#%d", r)
}

// RoleFilter narrows standings to one platform role. Empty means all roles.
type RoleFilter string

// RoleAll matches every role.
const RoleAll RoleFilter = ""

// IsFiltered returns true when a concrete role is selected.
func (f RoleFilter) IsFiltered() bool {
	return f != RoleAll
}

// String returns the display representation of the filter.
func (f RoleFilter) String() string {
	if f == RoleAll {
		return "all"
	}
	return string(f)
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD ENTRY
// ══════════════════════════════════════════════════════════════════════════════

// Entry is one row of the standings. It carries only display data - the
// credential fields of the underlying account are never projected here.
type Entry struct {
	// Rank is the position in the standings (1-based).
	Rank Rank

	// UserID is the identifier of the account.
	UserID string

	// DisplayName is the user's display name.
	DisplayName string

	// Role is the platform role ("Student", "Mentor").
	Role string

	// Points is the cumulative point total.
	Points int

	// Level is the level derived from points.
	Level int

	// BadgeCount is the number of earned badges.
	BadgeCount int

	// Avatar is the avatar URL or identifier.
	Avatar string

	// UpdatedAt is the last time the underlying state changed.
	UpdatedAt time.Time
}

// SortStandings orders entries by points descending, ties broken by level
// descending. The sort is stable, so equal (points, level) pairs keep their
// incoming order - by convention the storage layer supplies them in user-id
// order.
func SortStandings(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].Level > entries[j].Level
	})
}

// AssignRanks numbers the entries 1..n in their current order.
func AssignRanks(entries []Entry) {
	for i := range entries {
		entries[i].Rank = Rank(i + 1)
	}
}

// CompetitionRank computes a user's rank from the count of users with
// strictly greater points: rank = ahead + 1. Ties share no special handling,
// which makes this a competition ranking with gaps rather than dense
// ranking - two users with equal points can land on different ranks.
func CompetitionRank(ahead int) Rank {
	return Rank(ahead + 1)
}

// Standing is a user's own position in the standings.
type Standing struct {
	// Rank is the user's competition rank.
	Rank Rank

	// TotalUsers is the number of users in the standings.
	TotalUsers int

	// Points and Level describe the user's own state.
	Points int
	Level  int

	// Percentile is the share of users at or below this rank (0-100).
	Percentile float64
}

// NewStanding builds a Standing from the strictly-ahead count and totals.
func NewStanding(ahead, totalUsers, points, level int) Standing {
	rank := CompetitionRank(ahead)
	percentile := 0.0
	if totalUsers > 0 {
		percentile = float64(totalUsers-int(rank)+1) / float64(totalUsers) * 100
	}
	return Standing{
		Rank:       rank,
		TotalUsers: totalUsers,
		Points:     points,
		Level:      level,
		Percentile: percentile,
	}
}
