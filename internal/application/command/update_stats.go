package command

import (
	"context"
	"errors"
	"log/slog"

	"github.com/edusphere/edusphere-gamification/internal/domain/gamification"
	"github.com/edusphere/edusphere-gamification/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE USER STATS COMMAND
//
// Every stat-incrementing platform action (post created, comment posted,
// question answered, course completed, group joined) calls this once after
// the primary action commits. The counter bump is an atomic storage
// increment; the achievement evaluator runs exactly once afterwards.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateUserStatsCommand contains the parameters of a stat update.
type UpdateUserStatsCommand struct {
	// UserID identifies the user.
	UserID string

	// Stat names the counter to bump.
	Stat gamification.StatName

	// Increment is the bump amount; zero defaults to 1.
	Increment int
}

// Validate checks the command parameters and applies the default increment.
func (c *UpdateUserStatsCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("user id is required")
	}
	if !c.Stat.IsValid() {
		return gamification.ErrUnknownStatName
	}
	if c.Increment == 0 {
		c.Increment = 1
	}
	if c.Increment < 0 {
		return gamification.ErrInvalidIncrement
	}
	return nil
}

// UpdateUserStatsResult describes the outcome of a stat update.
type UpdateUserStatsResult struct {
	// Skipped is true when the user does not exist (logged no-op).
	Skipped bool `json:"skipped"`

	// Stat is the counter that was updated.
	Stat gamification.StatName `json:"stat"`

	// NewValue is the counter value after the increment.
	NewValue int `json:"new_value"`

	// BadgesGranted lists badges granted by the evaluator run.
	BadgesGranted []gamification.BadgeID `json:"badges_granted"`
}

// UpdateUserStatsHandler bumps activity counters and re-evaluates badges.
type UpdateUserStatsHandler struct {
	repo    gamification.Repository
	checker *CheckAchievementsHandler
	events  shared.EventBus
	logger  *slog.Logger
}

// NewUpdateUserStatsHandler creates a new stat update handler.
func NewUpdateUserStatsHandler(
	repo gamification.Repository,
	checker *CheckAchievementsHandler,
	events shared.EventBus,
	logger *slog.Logger,
) *UpdateUserStatsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdateUserStatsHandler{
		repo:    repo,
		checker: checker,
		events:  events,
		logger:  logger.With("handler", "update_stats"),
	}
}

// Handle applies the increment and runs the achievement evaluator once.
func (h *UpdateUserStatsHandler) Handle(ctx context.Context, cmd UpdateUserStatsCommand) (*UpdateUserStatsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("gamification", "UpdateStats", shared.ErrValidation, "invalid stat update", err)
	}

	newValue, err := h.repo.IncrementStat(ctx, cmd.UserID, cmd.Stat, cmd.Increment)
	if err != nil {
		if shared.IsNotFound(err) {
			h.logger.Warn("stat update skipped: unknown user", "user_id", cmd.UserID, "stat", string(cmd.Stat))
			return &UpdateUserStatsResult{Skipped: true}, nil
		}
		return nil, shared.WrapError("gamification", "UpdateStats", shared.ErrExternalService, "failed to persist stat", err)
	}

	if h.events != nil {
		if err := h.events.Publish(shared.NewStatIncrementedEvent(cmd.UserID, string(cmd.Stat), newValue)); err != nil {
			h.logger.Error("event publish failed", "event_type", string(shared.EventStatIncremented), "error", err)
		}
	}

	check, err := h.checker.Handle(ctx, CheckAchievementsCommand{UserID: cmd.UserID})
	if err != nil {
		// The counter is already persisted; evaluator failures are logged
		// and surfaced through the empty grant list.
		h.logger.Error("achievement check failed", "user_id", cmd.UserID, "error", err)
		check = &CheckAchievementsResult{}
	}

	return &UpdateUserStatsResult{
		Stat:          cmd.Stat,
		NewValue:      newValue,
		BadgesGranted: check.Granted,
	}, nil
}
