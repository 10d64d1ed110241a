package command

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/edusphere/edusphere-gamification/internal/domain/gamification"
	"github.com/edusphere/edusphere-gamification/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE LOGIN STREAK COMMAND (Streak Tracker)
//
// Runs once per session/day on login. The streak state machine lives on the
// domain entity; this handler persists the transition, awards the daily
// bonus, and re-evaluates badges (the 7-day streak badge in particular).
//
// Same-day repeats are a complete no-op: no writes, no awards, no evaluator
// run. The first login ever starts the streak at 1 but awards no points;
// every later new-day login awards the bonus, including streak-break days.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateLoginStreakCommand identifies the user who logged in.
type UpdateLoginStreakCommand struct {
	UserID string
}

// Validate checks the command parameters.
func (c *UpdateLoginStreakCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("user id is required")
	}
	return nil
}

// UpdateLoginStreakResult describes the streak transition.
type UpdateLoginStreakResult struct {
	// Skipped is true when the user does not exist (logged no-op).
	Skipped bool `json:"skipped"`

	// Outcome is the state-machine transition that was applied.
	Outcome gamification.StreakOutcome `json:"outcome"`

	// Streak is the streak length after the transition.
	Streak int `json:"streak"`

	// PointsAwarded is true when the daily-login bonus was granted.
	PointsAwarded bool `json:"points_awarded"`

	// BadgesGranted lists badges granted by the evaluator run.
	BadgesGranted []gamification.BadgeID `json:"badges_granted"`
}

// UpdateLoginStreakHandler implements the streak tracker.
type UpdateLoginStreakHandler struct {
	repo    gamification.Repository
	ledger  *AwardPointsHandler
	checker *CheckAchievementsHandler
	events  shared.EventBus
	logger  *slog.Logger

	// clock is injectable for tests; defaults to time.Now.
	clock func() time.Time
}

// NewUpdateLoginStreakHandler creates a new streak tracker.
func NewUpdateLoginStreakHandler(
	repo gamification.Repository,
	ledger *AwardPointsHandler,
	checker *CheckAchievementsHandler,
	events shared.EventBus,
	logger *slog.Logger,
) *UpdateLoginStreakHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdateLoginStreakHandler{
		repo:    repo,
		ledger:  ledger,
		checker: checker,
		events:  events,
		logger:  logger.With("handler", "update_login_streak"),
		clock:   time.Now,
	}
}

// WithClock overrides the handler's clock. Intended for tests.
func (h *UpdateLoginStreakHandler) WithClock(clock func() time.Time) *UpdateLoginStreakHandler {
	h.clock = clock
	return h
}

// Handle advances the streak state machine for a login happening now.
func (h *UpdateLoginStreakHandler) Handle(ctx context.Context, cmd UpdateLoginStreakCommand) (*UpdateLoginStreakResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("gamification", "UpdateLoginStreak", shared.ErrValidation, "invalid command", err)
	}

	state, err := h.repo.GetByUserID(ctx, cmd.UserID)
	if err != nil {
		if shared.IsNotFound(err) {
			h.logger.Warn("streak update skipped: unknown user", "user_id", cmd.UserID)
			return &UpdateLoginStreakResult{Skipped: true}, nil
		}
		return nil, shared.WrapError("gamification", "UpdateLoginStreak", shared.ErrExternalService, "failed to load state", err)
	}

	outcome := state.ApplyLogin(h.clock())

	result := &UpdateLoginStreakResult{
		Outcome: outcome,
		Streak:  state.Stats.LoginStreak,
	}

	if !outcome.Mutated() {
		return result, nil
	}

	if err := h.repo.UpdateStreak(ctx, cmd.UserID, state.Stats.LoginStreak, *state.Stats.LastLoginDate); err != nil {
		return nil, shared.WrapError("gamification", "UpdateLoginStreak", shared.ErrExternalService, "failed to persist streak", err)
	}

	if h.events != nil {
		broken := outcome == gamification.StreakReset
		if err := h.events.Publish(shared.NewStreakUpdatedEvent(cmd.UserID, state.Stats.LoginStreak, broken)); err != nil {
			h.logger.Error("event publish failed", "event_type", string(shared.EventStreakUpdated), "error", err)
		}
	}

	if outcome.AwardsPoints() {
		award := AwardPointsCommand{
			UserID: cmd.UserID,
			Delta:  gamification.PointsDailyLogin,
			Reason: gamification.ReasonDailyLogin,
		}
		if _, err := h.ledger.Handle(ctx, award); err != nil {
			h.logger.Error("daily login award failed", "user_id", cmd.UserID, "error", err)
		} else {
			result.PointsAwarded = true
		}
	}

	check, err := h.checker.Handle(ctx, CheckAchievementsCommand{UserID: cmd.UserID})
	if err != nil {
		h.logger.Error("achievement check failed", "user_id", cmd.UserID, "error", err)
		check = &CheckAchievementsResult{}
	}
	result.BadgesGranted = check.Granted

	return result, nil
}
