package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserGameState(t *testing.T) {
	s, err := NewUserGameState("u1", "Alice", RoleStudent)
	require.NoError(t, err)

	assert.Equal(t, Points(0), s.Points)
	assert.Equal(t, Level(1), s.Level)
	assert.Empty(t, s.Badges)
	assert.Equal(t, 0, s.Stats.LoginStreak)
	assert.Nil(t, s.Stats.LastLoginDate)
}

func TestNewUserGameStateValidation(t *testing.T) {
	_, err := NewUserGameState("  ", "Alice", RoleStudent)
	assert.ErrorIs(t, err, ErrInvalidUserID)

	_, err = NewUserGameState("u1", "Alice", Role("Admin"))
	assert.Error(t, err)
}

func TestAddPoints(t *testing.T) {
	s := stateWith(nil)

	total, leveledUp, level, err := s.AddPoints(50)
	require.NoError(t, err)
	assert.Equal(t, Points(50), total)
	assert.False(t, leveledUp)
	assert.Equal(t, Level(1), level)

	total, leveledUp, level, err = s.AddPoints(100)
	require.NoError(t, err)
	assert.Equal(t, Points(150), total)
	assert.True(t, leveledUp)
	assert.Equal(t, Level(2), level)
}

func TestAddPointsCrossingSeveralThresholds(t *testing.T) {
	s := stateWith(nil)

	_, leveledUp, level, err := s.AddPoints(650)
	require.NoError(t, err)
	assert.True(t, leveledUp)
	assert.Equal(t, Level(4), level, "0 -> 650 lands on level 4 directly")
}

func TestAddPointsRejectsNonPositiveDelta(t *testing.T) {
	s := stateWith(nil)

	_, _, _, err := s.AddPoints(0)
	assert.ErrorIs(t, err, ErrInvalidDelta)

	_, _, _, err = s.AddPoints(-10)
	assert.ErrorIs(t, err, ErrInvalidDelta)
	assert.Equal(t, Points(0), s.Points, "state untouched on rejection")
}

func TestGrantBadgeIdempotent(t *testing.T) {
	s := stateWith(nil)
	def, _ := DefinitionByID(BadgeFirstPost)
	now := time.Now().UTC()

	badge, err := s.GrantBadge(def, now)
	require.NoError(t, err)
	assert.Equal(t, BadgeFirstPost, badge.ID)
	assert.True(t, s.HasBadge(BadgeFirstPost))
	assert.Equal(t, 1, s.BadgeCount())

	_, err = s.GrantBadge(def, now)
	assert.ErrorIs(t, err, ErrBadgeHeld)
	assert.Equal(t, 1, s.BadgeCount())
}

func TestStatsIncrement(t *testing.T) {
	s := stateWith(nil)

	require.NoError(t, s.Stats.Increment(StatPostsCreated, 1))
	require.NoError(t, s.Stats.Increment(StatPostsCreated, 2))
	assert.Equal(t, 3, s.Stats.Counter(StatPostsCreated))

	assert.ErrorIs(t, s.Stats.Increment(StatPostsCreated, 0), ErrInvalidIncrement)
	assert.ErrorIs(t, s.Stats.Increment("bogus", 1), ErrUnknownStatName)
}

// ══════════════════════════════════════════════════════════════════════════════
// LOGIN STREAK STATE MACHINE
// ══════════════════════════════════════════════════════════════════════════════

func TestApplyLoginFirstEver(t *testing.T) {
	s := stateWith(nil)
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	outcome := s.ApplyLogin(at)

	assert.Equal(t, StreakStarted, outcome)
	assert.Equal(t, 1, s.Stats.LoginStreak)
	require.NotNil(t, s.Stats.LastLoginDate)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), *s.Stats.LastLoginDate)
	assert.False(t, outcome.AwardsPoints(), "first login ever earns no bonus")
}

func TestApplyLoginSameDay(t *testing.T) {
	s := stateWith(nil)
	s.ApplyLogin(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))

	outcome := s.ApplyLogin(time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC))

	assert.Equal(t, StreakAlreadyCounted, outcome)
	assert.Equal(t, 1, s.Stats.LoginStreak)
	assert.False(t, outcome.Mutated())
	assert.False(t, outcome.AwardsPoints())
}

func TestApplyLoginNextDayExtends(t *testing.T) {
	s := stateWith(nil)
	s.ApplyLogin(time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC))

	// One minute of wall time, but a new calendar day.
	outcome := s.ApplyLogin(time.Date(2026, 3, 15, 0, 0, 30, 0, time.UTC))

	assert.Equal(t, StreakExtended, outcome)
	assert.Equal(t, 2, s.Stats.LoginStreak)
	assert.True(t, outcome.AwardsPoints())
}

func TestApplyLoginGapResets(t *testing.T) {
	s := stateWith(nil)
	s.ApplyLogin(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	s.ApplyLogin(time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC))
	s.ApplyLogin(time.Date(2026, 3, 12, 12, 0, 0, 0, time.UTC))
	require.Equal(t, 3, s.Stats.LoginStreak)

	outcome := s.ApplyLogin(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, StreakReset, outcome)
	assert.Equal(t, 1, s.Stats.LoginStreak, "broken streak restarts at 1")
	assert.True(t, outcome.AwardsPoints(), "the login itself still earns the daily bonus")
}

func TestApplyLoginWeekBuildsWarriorStreak(t *testing.T) {
	s := stateWith(nil)
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for day := 0; day < 7; day++ {
		s.ApplyLogin(start.AddDate(0, 0, day))
	}
	assert.Equal(t, 7, s.Stats.LoginStreak)
}

func TestClone(t *testing.T) {
	s := stateWith(func(s *UserGameState) {
		s.Points = 500
		s.Stats.PostsCreated = 3
	})
	s.ApplyLogin(time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC))
	def, _ := DefinitionByID(BadgeRisingStar)
	_, err := s.GrantBadge(def, time.Now().UTC())
	require.NoError(t, err)

	clone := s.Clone()
	clone.Points = 0
	clone.Badges[0].Name = "mutated"
	*clone.Stats.LastLoginDate = time.Time{}

	assert.Equal(t, Points(500), s.Points)
	assert.Equal(t, "Rising Star", s.Badges[0].Name)
	assert.False(t, s.Stats.LastLoginDate.IsZero())
}
