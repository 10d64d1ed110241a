// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/edusphere/edusphere-gamification/internal/domain/leaderboard"
	"github.com/edusphere/edusphere-gamification/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
//
// Returns the top-N standings ordered by points descending with level as the
// tie-breaker, optionally filtered by platform role. Results are served from
// the Redis cache when warm; a miss falls through to storage and repopulates.
// Entries never expose credential fields.
// ══════════════════════════════════════════════════════════════════════════════

// GetLeaderboardQuery contains the leaderboard request parameters.
type GetLeaderboardQuery struct {
	// Limit is the number of entries (default 10, maximum 100).
	Limit int

	// Role filters standings by platform role (empty = all roles).
	Role leaderboard.RoleFilter
}

// Validate checks and normalizes the query parameters.
func (q *GetLeaderboardQuery) Validate() error {
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	return nil
}

// LeaderboardEntryDTO is the transport shape of one standings row.
type LeaderboardEntryDTO struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Points      int    `json:"points"`
	Level       int    `json:"level"`
	BadgeCount  int    `json:"badge_count"`
	Avatar      string `json:"avatar,omitempty"`
}

// GetLeaderboardResult contains the standings page.
type GetLeaderboardResult struct {
	Entries     []LeaderboardEntryDTO `json:"entries"`
	Role        string                `json:"role"`
	GeneratedAt time.Time             `json:"generated_at"`
	FromCache   bool                  `json:"-"`
}

// GetLeaderboardHandler serves leaderboard pages.
type GetLeaderboardHandler struct {
	repo   leaderboard.Repository
	cache  leaderboard.Cache
	logger *slog.Logger
}

// NewGetLeaderboardHandler creates a new leaderboard query handler.
// The cache may be nil; the handler then always reads from storage.
func NewGetLeaderboardHandler(
	repo leaderboard.Repository,
	cache leaderboard.Cache,
	logger *slog.Logger,
) *GetLeaderboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetLeaderboardHandler{
		repo:   repo,
		cache:  cache,
		logger: logger.With("handler", "get_leaderboard"),
	}
}

// Handle executes the leaderboard query.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, q GetLeaderboardQuery) (*GetLeaderboardResult, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("leaderboard", "GetLeaderboard", shared.ErrValidation, "invalid query", err)
	}

	if h.cache != nil {
		if entries, err := h.cache.GetTop(ctx, q.Role, q.Limit); err == nil && len(entries) > 0 {
			return h.buildResult(entries, q, true), nil
		}
	}

	entries, err := h.repo.GetTop(ctx, q.Role, q.Limit)
	if err != nil {
		return nil, shared.WrapError("leaderboard", "GetLeaderboard", shared.ErrExternalService, "failed to load standings", err)
	}

	leaderboard.SortStandings(entries)
	leaderboard.AssignRanks(entries)

	if h.cache != nil {
		if err := h.cache.SetTop(ctx, q.Role, q.Limit, entries); err != nil {
			// Cache population is best effort.
			h.logger.Warn("leaderboard cache write failed", "error", err)
		}
	}

	return h.buildResult(entries, q, false), nil
}

func (h *GetLeaderboardHandler) buildResult(entries []leaderboard.Entry, q GetLeaderboardQuery, fromCache bool) *GetLeaderboardResult {
	dtos := make([]LeaderboardEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, LeaderboardEntryDTO{
			Rank:        int(e.Rank),
			UserID:      e.UserID,
			DisplayName: e.DisplayName,
			Role:        e.Role,
			Points:      e.Points,
			Level:       e.Level,
			BadgeCount:  e.BadgeCount,
			Avatar:      e.Avatar,
		})
	}

	return &GetLeaderboardResult{
		Entries:     dtos,
		Role:        q.Role.String(),
		GeneratedAt: time.Now().UTC(),
		FromCache:   fromCache,
	}
}
