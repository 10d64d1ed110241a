// Package jobs contains the engine's periodic jobs.
package jobs

import (
	"context"
	"log/slog"

	"github.com/edusphere/edusphere-gamification/internal/domain/leaderboard"
)

// defaultPageLimit matches the leaderboard query's default page size.
const defaultPageLimit = 10

// WarmLeaderboard refreshes the hot leaderboard pages from storage so the
// common read path stays a cache hit even across invalidations.
type WarmLeaderboard struct {
	repo    leaderboard.Repository
	cache   leaderboard.Cache
	filters []leaderboard.RoleFilter
	logger  *slog.Logger
}

// NewWarmLeaderboard creates the job. It warms the unfiltered page plus one
// page per given role filter.
func NewWarmLeaderboard(
	repo leaderboard.Repository,
	cache leaderboard.Cache,
	filters []leaderboard.RoleFilter,
	logger *slog.Logger,
) *WarmLeaderboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &WarmLeaderboard{
		repo:    repo,
		cache:   cache,
		filters: append([]leaderboard.RoleFilter{leaderboard.RoleAll}, filters...),
		logger:  logger.With("job", "warm_leaderboard"),
	}
}

// Name implements scheduler.Job.
func (j *WarmLeaderboard) Name() string {
	return "warm_leaderboard"
}

// Run implements scheduler.Job. A failed page is logged and skipped; the
// remaining pages still get warmed.
func (j *WarmLeaderboard) Run(ctx context.Context) error {
	for _, filter := range j.filters {
		entries, err := j.repo.GetTop(ctx, filter, defaultPageLimit)
		if err != nil {
			j.logger.Error("failed to load standings", "filter", string(filter), "error", err)
			continue
		}

		leaderboard.SortStandings(entries)
		leaderboard.AssignRanks(entries)

		if err := j.cache.SetTop(ctx, filter, defaultPageLimit, entries); err != nil {
			j.logger.Error("failed to warm page", "filter", string(filter), "error", err)
		}
	}

	return nil
}
