package query

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/edusphere/edusphere-gamification/internal/domain/gamification"
	"github.com/edusphere/edusphere-gamification/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET USER PROGRESS QUERY
//
// Backs the profile widget: current points and level, distance to the next
// threshold, percentage progress through the current level, badges, and the
// raw stat counters. Top-level users report zero remaining and 100%.
// ══════════════════════════════════════════════════════════════════════════════

// GetUserProgressQuery identifies the user.
type GetUserProgressQuery struct {
	UserID string
}

// Validate checks the query parameters.
func (q *GetUserProgressQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user id is required")
	}
	return nil
}

// BadgeDTO is the transport shape of an earned badge.
type BadgeDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earned_at"`
}

// StatsDTO is the transport shape of the activity counters.
type StatsDTO struct {
	PostsCreated      int        `json:"posts_created"`
	CommentsPosted    int        `json:"comments_posted"`
	QuestionsAnswered int        `json:"questions_answered"`
	CoursesCompleted  int        `json:"courses_completed"`
	StudyGroupsJoined int        `json:"study_groups_joined"`
	LoginStreak       int        `json:"login_streak"`
	LastLoginDate     *time.Time `json:"last_login_date,omitempty"`
}

// GetUserProgressResult contains the progress snapshot.
type GetUserProgressResult struct {
	UserID            string     `json:"user_id"`
	DisplayName       string     `json:"display_name"`
	Points            int        `json:"points"`
	Level             int        `json:"level"`
	PointsToNextLevel int        `json:"points_to_next_level"`
	LevelProgress     int        `json:"level_progress"`
	BadgeCount        int        `json:"badge_count"`
	Badges            []BadgeDTO `json:"badges"`
	Stats             StatsDTO   `json:"stats"`
}

// GetUserProgressHandler serves progress snapshots.
type GetUserProgressHandler struct {
	states gamification.Repository
	logger *slog.Logger
}

// NewGetUserProgressHandler creates a new progress query handler.
func NewGetUserProgressHandler(states gamification.Repository, logger *slog.Logger) *GetUserProgressHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetUserProgressHandler{
		states: states,
		logger: logger.With("handler", "get_user_progress"),
	}
}

// Handle executes the progress query.
func (h *GetUserProgressHandler) Handle(ctx context.Context, q GetUserProgressQuery) (*GetUserProgressResult, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("gamification", "GetUserProgress", shared.ErrValidation, "invalid query", err)
	}

	state, err := h.states.GetByUserID(ctx, q.UserID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrUserStateNotFound
		}
		return nil, shared.WrapError("gamification", "GetUserProgress", shared.ErrExternalService, "failed to load state", err)
	}

	badges := make([]BadgeDTO, 0, len(state.Badges))
	for _, b := range state.Badges {
		badges = append(badges, BadgeDTO{
			ID:          string(b.ID),
			Name:        b.Name,
			Icon:        b.Icon,
			Description: b.Description,
			EarnedAt:    b.EarnedAt,
		})
	}

	return &GetUserProgressResult{
		UserID:            state.UserID,
		DisplayName:       state.DisplayName,
		Points:            int(state.Points),
		Level:             int(state.Level),
		PointsToNextLevel: int(gamification.PointsToNextLevel(state.Points)),
		LevelProgress:     gamification.LevelProgress(state.Points),
		BadgeCount:        state.BadgeCount(),
		Badges:            badges,
		Stats: StatsDTO{
			PostsCreated:      state.Stats.PostsCreated,
			CommentsPosted:    state.Stats.CommentsPosted,
			QuestionsAnswered: state.Stats.QuestionsAnswered,
			CoursesCompleted:  state.Stats.CoursesCompleted,
			StudyGroupsJoined: state.Stats.StudyGroupsJoined,
			LoginStreak:       state.Stats.LoginStreak,
			LastLoginDate:     state.Stats.LastLoginDate,
		},
	}, nil
}
