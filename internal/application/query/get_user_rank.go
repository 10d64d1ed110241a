package query

import (
	"context"
	"errors"
	"log/slog"

	"github.com/edusphere/edusphere-gamification/internal/domain/gamification"
	"github.com/edusphere/edusphere-gamification/internal/domain/leaderboard"
	"github.com/edusphere/edusphere-gamification/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET USER RANK QUERY
//
// rank = (count of users with strictly more points) + 1. This is a
// competition ranking with gaps: users with equal points can land on
// different ranks depending on how many users sit strictly above them.
// That is a deliberate, documented policy, not an oversight.
// ══════════════════════════════════════════════════════════════════════════════

// GetUserRankQuery identifies the user whose standing is requested.
type GetUserRankQuery struct {
	UserID string
}

// Validate checks the query parameters.
func (q *GetUserRankQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user id is required")
	}
	return nil
}

// GetUserRankResult contains the user's standing.
type GetUserRankResult struct {
	UserID     string  `json:"user_id"`
	Rank       int     `json:"rank"`
	TotalUsers int     `json:"total_users"`
	Points     int     `json:"points"`
	Level      int     `json:"level"`
	Percentile float64 `json:"percentile"`
}

// GetUserRankHandler serves per-user standings.
type GetUserRankHandler struct {
	states gamification.Repository
	board  leaderboard.Repository
	logger *slog.Logger
}

// NewGetUserRankHandler creates a new rank query handler.
func NewGetUserRankHandler(
	states gamification.Repository,
	board leaderboard.Repository,
	logger *slog.Logger,
) *GetUserRankHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetUserRankHandler{
		states: states,
		board:  board,
		logger: logger.With("handler", "get_user_rank"),
	}
}

// Handle executes the rank query. Unlike the side-effect commands, a rank
// lookup for an unknown user is an error: the caller explicitly asked about
// that user.
func (h *GetUserRankHandler) Handle(ctx context.Context, q GetUserRankQuery) (*GetUserRankResult, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("leaderboard", "GetUserRank", shared.ErrValidation, "invalid query", err)
	}

	state, err := h.states.GetByUserID(ctx, q.UserID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrUserNotRanked
		}
		return nil, shared.WrapError("leaderboard", "GetUserRank", shared.ErrExternalService, "failed to load state", err)
	}

	ahead, err := h.board.CountAhead(ctx, int(state.Points))
	if err != nil {
		return nil, shared.WrapError("leaderboard", "GetUserRank", shared.ErrExternalService, "failed to count standings", err)
	}

	total, err := h.board.CountUsers(ctx)
	if err != nil {
		return nil, shared.WrapError("leaderboard", "GetUserRank", shared.ErrExternalService, "failed to count users", err)
	}

	standing := leaderboard.NewStanding(ahead, total, int(state.Points), int(state.Level))

	return &GetUserRankResult{
		UserID:     q.UserID,
		Rank:       int(standing.Rank),
		TotalUsers: standing.TotalUsers,
		Points:     standing.Points,
		Level:      standing.Level,
		Percentile: standing.Percentile,
	}, nil
}
