package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortStandings(t *testing.T) {
	entries := []Entry{
		{UserID: "a", Points: 300, Level: 3},
		{UserID: "b", Points: 500, Level: 4},
		{UserID: "c", Points: 500, Level: 5},
		{UserID: "d", Points: 100, Level: 2},
	}

	SortStandings(entries)

	assert.Equal(t, "c", entries[0].UserID, "equal points broken by level")
	assert.Equal(t, "b", entries[1].UserID)
	assert.Equal(t, "a", entries[2].UserID)
	assert.Equal(t, "d", entries[3].UserID)
}

func TestSortStandingsIsStable(t *testing.T) {
	// Identical (points, level) pairs keep their incoming order.
	entries := []Entry{
		{UserID: "first", Points: 500, Level: 4},
		{UserID: "second", Points: 500, Level: 4},
	}

	SortStandings(entries)

	assert.Equal(t, "first", entries[0].UserID)
	assert.Equal(t, "second", entries[1].UserID)
}

func TestAssignRanks(t *testing.T) {
	entries := []Entry{{UserID: "a"}, {UserID: "b"}, {UserID: "c"}}
	AssignRanks(entries)

	assert.Equal(t, Rank(1), entries[0].Rank)
	assert.Equal(t, Rank(2), entries[1].Rank)
	assert.Equal(t, Rank(3), entries[2].Rank)
}

func TestCompetitionRank(t *testing.T) {
	// Standings [500, 500, 300]: the 300-point user has two users strictly
	// ahead, so rank 3. The tied 500-point users both see zero users
	// strictly ahead and share rank 1; rank 2 is skipped.
	assert.Equal(t, Rank(1), CompetitionRank(0))
	assert.Equal(t, Rank(3), CompetitionRank(2))
}

func TestNewStanding(t *testing.T) {
	s := NewStanding(2, 10, 300, 3)

	assert.Equal(t, Rank(3), s.Rank)
	assert.Equal(t, 10, s.TotalUsers)
	assert.Equal(t, 300, s.Points)
	assert.Equal(t, 3, s.Level)
	assert.InDelta(t, 80.0, s.Percentile, 0.001)
}

func TestNewStandingEmptyBoard(t *testing.T) {
	s := NewStanding(0, 0, 0, 1)
	assert.Equal(t, Rank(1), s.Rank)
	assert.Equal(t, 0.0, s.Percentile)
}

func TestRoleFilter(t *testing.T) {
	assert.False(t, RoleAll.IsFiltered())
	assert.Equal(t, "all", RoleAll.String())

	f := RoleFilter("Student")
	assert.True(t, f.IsFiltered())
	assert.Equal(t, "Student", f.String())
}
