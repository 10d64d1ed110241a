package gamification

import "time"

// ══════════════════════════════════════════════════════════════════════════════
// BADGE CATALOG
// The catalog is an immutable, process-wide registry of badge definitions.
// Each definition pairs display data with the predicate that unlocks it,
// so every predicate can be tested in isolation.
// ══════════════════════════════════════════════════════════════════════════════

// BadgeID uniquely identifies a badge definition in the catalog.
type BadgeID string

const (
	BadgeFirstPost       BadgeID = "FIRST_POST"
	BadgeKnowledgeSharer BadgeID = "KNOWLEDGE_SHARER"
	BadgeActiveLearner   BadgeID = "ACTIVE_LEARNER"
	BadgeHelpfulMentor   BadgeID = "HELPFUL_MENTOR"
	BadgeCourseMaster    BadgeID = "COURSE_MASTER"
	BadgeSocialButterfly BadgeID = "SOCIAL_BUTTERFLY"
	BadgeWeeklyWarrior   BadgeID = "WEEKLY_WARRIOR"
	BadgeRisingStar      BadgeID = "RISING_STAR"
	BadgeExpert          BadgeID = "EXPERT"
	BadgeTeamPlayer      BadgeID = "TEAM_PLAYER"
)

// Predicate decides whether a user qualifies for a badge given their
// current state. Predicates must be pure reads of the state.
type Predicate func(s *UserGameState) bool

// BadgeDefinition describes one catalog entry. Definitions with a nil
// Predicate are never granted automatically.
type BadgeDefinition struct {
	ID          BadgeID
	Name        string
	Icon        string
	Description string
	Predicate   Predicate
}

// catalog holds the badge definitions in fixed evaluation order.
// The order is deliberate and deterministic: the achievement evaluator walks
// it front to back, so grants within one pass always happen in this order.
var catalog = []BadgeDefinition{
	{
		ID:          BadgeFirstPost,
		Name:        "First Post",
		Icon:        "🎯",
		Description: "Created your first post",
		Predicate:   func(s *UserGameState) bool { return s.Stats.PostsCreated == 1 },
	},
	{
		ID:          BadgeKnowledgeSharer,
		Name:        "Knowledge Sharer",
		Icon:        "💡",
		Description: "Created 5 posts",
		Predicate:   func(s *UserGameState) bool { return s.Stats.PostsCreated >= 5 },
	},
	{
		ID:          BadgeActiveLearner,
		Name:        "Active Learner",
		Icon:        "📚",
		Description: "Posted 10 comments",
		Predicate:   func(s *UserGameState) bool { return s.Stats.CommentsPosted >= 10 },
	},
	{
		ID:          BadgeHelpfulMentor,
		Name:        "Helpful Mentor",
		Icon:        "🌟",
		Description: "Answered 10 student questions",
		Predicate:   func(s *UserGameState) bool { return s.Stats.QuestionsAnswered >= 10 },
	},
	{
		ID:          BadgeCourseMaster,
		Name:        "Course Master",
		Icon:        "🎓",
		Description: "Completed 5 courses",
		Predicate:   func(s *UserGameState) bool { return s.Stats.CoursesCompleted >= 5 },
	},
	{
		ID:          BadgeSocialButterfly,
		Name:        "Social Butterfly",
		Icon:        "🦋",
		Description: "Joined 3 study groups",
		Predicate:   func(s *UserGameState) bool { return s.Stats.StudyGroupsJoined >= 3 },
	},
	{
		ID:          BadgeWeeklyWarrior,
		Name:        "Weekly Warrior",
		Icon:        "🔥",
		Description: "7-day login streak",
		Predicate:   func(s *UserGameState) bool { return s.Stats.LoginStreak >= 7 },
	},
	{
		ID:          BadgeRisingStar,
		Name:        "Rising Star",
		Icon:        "⭐",
		Description: "Earned 500 points",
		Predicate:   func(s *UserGameState) bool { return s.Points >= 500 },
	},
	{
		ID:          BadgeExpert,
		Name:        "Expert",
		Icon:        "👑",
		Description: "Reached level 5",
		Predicate:   func(s *UserGameState) bool { return s.Level >= 5 },
	},
	{
		// TEAM_PLAYER has no automatic unlock condition; it is granted only
		// through moderation tooling outside this engine.
		ID:          BadgeTeamPlayer,
		Name:        "Team Player",
		Icon:        "🤝",
		Description: "Active in study groups",
	},
}

// Catalog returns the badge definitions in evaluation order.
// The returned slice is a copy; the catalog itself is read-only at runtime.
func Catalog() []BadgeDefinition {
	out := make([]BadgeDefinition, len(catalog))
	copy(out, catalog)
	return out
}

// DefinitionByID looks up a badge definition by identifier.
func DefinitionByID(id BadgeID) (BadgeDefinition, bool) {
	for _, def := range catalog {
		if def.ID == id {
			return def, true
		}
	}
	return BadgeDefinition{}, false
}

// ══════════════════════════════════════════════════════════════════════════════
// EARNED BADGE
// ══════════════════════════════════════════════════════════════════════════════

// Badge is an earned badge record. Once granted it is never revoked, and a
// user holds at most one record per BadgeID.
type Badge struct {
	ID          BadgeID
	Name        string
	Icon        string
	Description string
	EarnedAt    time.Time
}

// NewBadge materializes an earned record from a catalog definition.
func NewBadge(def BadgeDefinition, earnedAt time.Time) Badge {
	return Badge{
		ID:          def.ID,
		Name:        def.Name,
		Icon:        def.Icon,
		Description: def.Description,
		EarnedAt:    earnedAt,
	}
}
