package gamification

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/edusphere/edusphere-gamification/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Role is the platform role of the account owning a game state.
type Role string

const (
	RoleStudent Role = "Student"
	RoleMentor  Role = "Mentor"
)

// IsValid checks that the role is known. The empty role is allowed because
// the engine treats role purely as display/filter data owned by the account
// store.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleMentor, "":
		return true
	default:
		return false
	}
}

// StatName identifies one of the named activity counters.
type StatName string

const (
	StatPostsCreated      StatName = "postsCreated"
	StatCommentsPosted    StatName = "commentsPosted"
	StatQuestionsAnswered StatName = "questionsAnswered"
	StatCoursesCompleted  StatName = "coursesCompleted"
	StatStudyGroupsJoined StatName = "studyGroupsJoined"
)

// IsValid checks that the stat name is a known counter.
func (n StatName) IsValid() bool {
	switch n {
	case StatPostsCreated, StatCommentsPosted, StatQuestionsAnswered,
		StatCoursesCompleted, StatStudyGroupsJoined:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// STATS
// ══════════════════════════════════════════════════════════════════════════════

// Stats holds the named activity counters plus login-streak state.
// All counters are monotonically increasing except LoginStreak, which resets
// to 1 when a streak breaks.
type Stats struct {
	PostsCreated      int
	CommentsPosted    int
	QuestionsAnswered int
	CoursesCompleted  int
	StudyGroupsJoined int

	// LoginStreak is the count of consecutive calendar days with a login.
	LoginStreak int

	// LastLoginDate is the start of the last UTC day with a login.
	// Nil means the user has never logged in.
	LastLoginDate *time.Time
}

// Counter returns the value of a named counter.
func (s Stats) Counter(name StatName) int {
	switch name {
	case StatPostsCreated:
		return s.PostsCreated
	case StatCommentsPosted:
		return s.CommentsPosted
	case StatQuestionsAnswered:
		return s.QuestionsAnswered
	case StatCoursesCompleted:
		return s.CoursesCompleted
	case StatStudyGroupsJoined:
		return s.StudyGroupsJoined
	default:
		return 0
	}
}

// Increment bumps a named counter by the given amount.
func (s *Stats) Increment(name StatName, by int) error {
	if by <= 0 {
		return ErrInvalidIncrement
	}
	switch name {
	case StatPostsCreated:
		s.PostsCreated += by
	case StatCommentsPosted:
		s.CommentsPosted += by
	case StatQuestionsAnswered:
		s.QuestionsAnswered += by
	case StatCoursesCompleted:
		s.CoursesCompleted += by
	case StatStudyGroupsJoined:
		s.StudyGroupsJoined += by
	default:
		return ErrUnknownStatName
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidDelta - point deltas must be positive.
	ErrInvalidDelta = errors.New("invalid point delta: must be positive")

	// ErrInvalidIncrement - stat increments must be positive.
	ErrInvalidIncrement = errors.New("invalid stat increment: must be positive")

	// ErrUnknownStatName - the stat name is not in the counter set.
	ErrUnknownStatName = errors.New("unknown stat name")

	// ErrBadgeHeld - the user already holds this badge.
	ErrBadgeHeld = errors.New("badge already held")

	// ErrInvalidUserID - user IDs must be non-empty.
	ErrInvalidUserID = errors.New("invalid user id: must not be empty")
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: USER GAME STATE
// ══════════════════════════════════════════════════════════════════════════════

// UserGameState is the per-user gamification record: cumulative points, the
// level derived from them, earned badges, and activity stats. It is created
// zero-valued at account creation and mutated only by this engine.
type UserGameState struct {
	// UserID is the identifier of the owning account.
	UserID string

	// DisplayName, Role and Avatar mirror account data for leaderboard
	// display. Credentials never appear here.
	DisplayName string
	Role        Role
	Avatar      string

	// Points is the cumulative point total.
	Points Points

	// Level is derived from Points; must always equal LevelFor(Points).
	Level Level

	// Badges are the earned badges, one record per BadgeID.
	Badges []Badge

	// Stats are the activity counters and streak state.
	Stats Stats

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUserGameState creates a zero-valued state for a fresh account.
func NewUserGameState(userID, displayName string, role Role) (*UserGameState, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserID
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	now := time.Now().UTC()
	return &UserGameState{
		UserID:      userID,
		DisplayName: displayName,
		Role:        role,
		Points:      0,
		Level:       1,
		Badges:      make([]Badge, 0),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// AddPoints applies a positive delta and recomputes the level.
// Returns the new total, whether a level-up happened, and the new level.
func (u *UserGameState) AddPoints(d Delta) (newTotal Points, leveledUp bool, newLevel Level, err error) {
	if !d.IsValid() {
		return u.Points, false, u.Level, ErrInvalidDelta
	}

	oldLevel := LevelFor(u.Points)
	u.Points = u.Points.Add(d)
	u.Level = LevelFor(u.Points)
	u.UpdatedAt = time.Now().UTC()

	return u.Points, u.Level > oldLevel, u.Level, nil
}

// HasBadge reports whether the user already holds the badge.
func (u *UserGameState) HasBadge(id BadgeID) bool {
	for _, b := range u.Badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

// GrantBadge appends an earned badge record. Granting is idempotent at the
// domain level: a second grant of the same badge returns ErrBadgeHeld.
func (u *UserGameState) GrantBadge(def BadgeDefinition, at time.Time) (Badge, error) {
	if u.HasBadge(def.ID) {
		return Badge{}, ErrBadgeHeld
	}

	badge := NewBadge(def, at)
	u.Badges = append(u.Badges, badge)
	u.UpdatedAt = time.Now().UTC()
	return badge, nil
}

// BadgeCount returns the number of earned badges.
func (u *UserGameState) BadgeCount() int {
	return len(u.Badges)
}

// String returns a compact representation for logging.
func (u *UserGameState) String() string {
	return fmt.Sprintf(
		"UserGameState{User: %s, Points: %d, Level: %d, Badges: %d, Streak: %d}",
		u.UserID, u.Points, u.Level, len(u.Badges), u.Stats.LoginStreak,
	)
}

// Clone creates a deep copy of the state.
func (u *UserGameState) Clone() *UserGameState {
	if u == nil {
		return nil
	}

	clone := *u
	clone.Badges = make([]Badge, len(u.Badges))
	copy(clone.Badges, u.Badges)
	if u.Stats.LastLoginDate != nil {
		d := *u.Stats.LastLoginDate
		clone.Stats.LastLoginDate = &d
	}
	return &clone
}

// ══════════════════════════════════════════════════════════════════════════════
// LOGIN STREAK STATE MACHINE
// ══════════════════════════════════════════════════════════════════════════════

// StreakOutcome is the result of applying a login to the streak state.
type StreakOutcome string

const (
	// StreakStarted - first login ever; streak set to 1, no point award.
	StreakStarted StreakOutcome = "started"

	// StreakAlreadyCounted - a login on the same calendar day; no-op.
	StreakAlreadyCounted StreakOutcome = "already_counted"

	// StreakExtended - consecutive-day login; streak incremented.
	StreakExtended StreakOutcome = "extended"

	// StreakReset - a gap of more than one day; streak reset to 1.
	StreakReset StreakOutcome = "reset"
)

// AwardsPoints reports whether this outcome earns the daily-login bonus.
// The first login ever earns nothing; every later new-day login does,
// including streak-break days. The asymmetry is inherited platform behavior
// and is preserved on purpose.
func (o StreakOutcome) AwardsPoints() bool {
	return o == StreakExtended || o == StreakReset
}

// Mutated reports whether the streak state changed and needs persisting.
func (o StreakOutcome) Mutated() bool {
	return o != StreakAlreadyCounted
}

// ApplyLogin advances the streak state machine for a login at the given time.
// The time is normalized to its UTC calendar day; calling this any number of
// times within one day is safe and applies at most one transition.
func (u *UserGameState) ApplyLogin(at time.Time) StreakOutcome {
	today := timeutil.StartOfDay(at)

	last := u.Stats.LastLoginDate
	if last == nil {
		u.Stats.LoginStreak = 1
		u.Stats.LastLoginDate = &today
		u.UpdatedAt = time.Now().UTC()
		return StreakStarted
	}

	if timeutil.IsSameDay(*last, today) {
		return StreakAlreadyCounted
	}

	gap := timeutil.DaysBetween(*last, today)
	if gap == 1 {
		u.Stats.LoginStreak++
	} else {
		u.Stats.LoginStreak = 1
	}
	u.Stats.LastLoginDate = &today
	u.UpdatedAt = time.Now().UTC()

	if gap == 1 {
		return StreakExtended
	}
	return StreakReset
}
