// Package application bundles the gamification handlers behind a single
// facade. The hosting platform embeds the engine and calls it directly;
// there is no network surface here.
package application

import (
	"context"
	"log/slog"

	"github.com/edusphere/edusphere-gamification/internal/application/command"
	"github.com/edusphere/edusphere-gamification/internal/application/query"
	"github.com/edusphere/edusphere-gamification/internal/domain/gamification"
	"github.com/edusphere/edusphere-gamification/internal/domain/leaderboard"
	"github.com/edusphere/edusphere-gamification/internal/domain/shared"
)

// Engine is the call surface of the gamification core.
type Engine struct {
	ledger  *command.AwardPointsHandler
	checker *command.CheckAchievementsHandler
	stats   *command.UpdateUserStatsHandler
	streaks *command.UpdateLoginStreakHandler

	top      *query.GetLeaderboardHandler
	rank     *query.GetUserRankHandler
	badges   *query.GetUserBadgesHandler
	progress *query.GetUserProgressHandler
}

// NewEngine wires the handlers. The leaderboard cache may be nil.
func NewEngine(
	states gamification.Repository,
	board leaderboard.Repository,
	cache leaderboard.Cache,
	events shared.EventBus,
	logger *slog.Logger,
) *Engine {
	ledger := command.NewAwardPointsHandler(states, events, logger)
	checker := command.NewCheckAchievementsHandler(states, ledger, logger)

	return &Engine{
		ledger:   ledger,
		checker:  checker,
		stats:    command.NewUpdateUserStatsHandler(states, checker, events, logger),
		streaks:  command.NewUpdateLoginStreakHandler(states, ledger, checker, events, logger),
		top:      query.NewGetLeaderboardHandler(board, cache, logger),
		rank:     query.NewGetUserRankHandler(states, board, logger),
		badges:   query.NewGetUserBadgesHandler(states, logger),
		progress: query.NewGetUserProgressHandler(states, logger),
	}
}

// AwardPoints applies a point award with level recalculation and badge
// bonuses.
func (e *Engine) AwardPoints(ctx context.Context, cmd command.AwardPointsCommand) (*command.AwardPointsResult, error) {
	return e.ledger.Handle(ctx, cmd)
}

// CheckAchievements runs one evaluator pass over the badge catalog.
func (e *Engine) CheckAchievements(ctx context.Context, cmd command.CheckAchievementsCommand) (*command.CheckAchievementsResult, error) {
	return e.checker.Handle(ctx, cmd)
}

// UpdateUserStats bumps an activity counter and re-evaluates achievements.
func (e *Engine) UpdateUserStats(ctx context.Context, cmd command.UpdateUserStatsCommand) (*command.UpdateUserStatsResult, error) {
	return e.stats.Handle(ctx, cmd)
}

// UpdateLoginStreak advances the login-streak state machine.
func (e *Engine) UpdateLoginStreak(ctx context.Context, cmd command.UpdateLoginStreakCommand) (*command.UpdateLoginStreakResult, error) {
	return e.streaks.Handle(ctx, cmd)
}

// GetLeaderboard returns a ranked standings page.
func (e *Engine) GetLeaderboard(ctx context.Context, q query.GetLeaderboardQuery) (*query.GetLeaderboardResult, error) {
	return e.top.Handle(ctx, q)
}

// GetUserRank returns one user's competition rank and percentile.
func (e *Engine) GetUserRank(ctx context.Context, q query.GetUserRankQuery) (*query.GetUserRankResult, error) {
	return e.rank.Handle(ctx, q)
}

// GetUserBadges returns the user's earned badges in grant order.
func (e *Engine) GetUserBadges(ctx context.Context, q query.GetUserBadgesQuery) (*query.GetUserBadgesResult, error) {
	return e.badges.Handle(ctx, q)
}

// GetUserProgress returns the profile progress snapshot.
func (e *Engine) GetUserProgress(ctx context.Context, q query.GetUserProgressQuery) (*query.GetUserProgressResult, error) {
	return e.progress.Handle(ctx, q)
}
