// Package gamification contains the domain model of the gamification engine:
// the point ledger state, level thresholds, the badge catalog, and the
// login-streak state machine. This is the core of the business logic -
// there are no external dependencies here.
package gamification

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Points represents a user's cumulative point total.
// Under normal operation it is monotonically non-decreasing: the engine only
// ever awards positive deltas, never decrements.
type Points int

// IsValid checks that the total is non-negative.
func (p Points) IsValid() bool {
	return p >= 0
}

// Add returns the total after applying a delta.
func (p Points) Add(d Delta) Points {
	return p + Points(d)
}

// Delta represents a single positive point increment.
type Delta int

// IsValid checks that the delta is positive. The engine never awards zero or
// negative amounts.
func (d Delta) IsValid() bool {
	return d > 0
}

// Reason describes why points were awarded, for the ledger log and events.
type Reason string

const (
	ReasonPostCreated      Reason = "post_created"
	ReasonCommentPosted    Reason = "comment_posted"
	ReasonReplyGiven       Reason = "reply_given"
	ReasonCourseCompleted  Reason = "course_completed"
	ReasonBadgeEarned      Reason = "badge_earned"
	ReasonDailyLogin       Reason = "daily_login"
	ReasonStudyGroupJoined Reason = "study_group_joined"
	ReasonHelpingStudent   Reason = "helping_student"
	ReasonPostLiked        Reason = "post_liked"
)

// Point values for platform actions. These are fixed configuration constants,
// not derived at runtime.
const (
	PointsPostCreated      Delta = 50
	PointsCommentPosted    Delta = 10
	PointsReplyGiven       Delta = 15
	PointsCourseCompleted  Delta = 100
	PointsBadgeEarned      Delta = 200
	PointsDailyLogin       Delta = 5
	PointsStudyGroupJoined Delta = 20
	PointsHelpingStudent   Delta = 25
	PointsFirstPost        Delta = 100
	PointsPostLiked        Delta = 5
)
