// Package command contains write operations following CQRS pattern.
// Each command is a self-contained use case with its own request/response
// types. Commands mutate state and publish domain events; side effects such
// as notification records are produced by event subscribers.
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
// AWARD POINTS COMMAND (Point Ledger)
//
// The single entry point for adding points to a user. Applies the delta as an
// atomic storage increment, derives the level from the fresh total, and emits
// at most ONE level-up event per call even when the award crosses several
// thresholds at once.
//
// Badge grants route through GrantBadge on this handler: the grant bonus is
// awarded on a non-reentrant path that performs level bookkeeping only and
// never walks the badge catalog, which bounds the award -> badge -> award
// recursion mechanically.
// ══════════════════════════════════════════════════════════════════════════════

// expertLevel is the level whose first crossing grants the Expert badge
// directly from the ledger.
const expertLevel gamification.Level = 5

// AwardPointsCommand contains the parameters of a point award.
type AwardPointsCommand struct {
	// UserID identifies the recipient.
	UserID string

	// Delta is the positive point increment.
	Delta gamification.Delta

	// Reason records why the points were awarded.
	Reason gamification.Reason
}

// Validate checks the command parameters.
func (c *AwardPointsCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("user id is required")
	}
	if !c.Delta.IsValid() {
		return gamification.ErrInvalidDelta
	}
	return nil
}

// AwardPointsResult describes the outcome of an award.
type AwardPointsResult struct {
	// Skipped is true when the user does not exist. Point awards are
	// side-effect operations invoked after a primary action already
	// succeeded, so an unknown user is a logged no-op, never a failure.
	Skipped bool `json:"skipped"`

	// PointsAwarded is the applied delta.
	PointsAwarded gamification.Delta `json:"points_awarded"`

	// NewTotal is the cumulative total after the award.
	NewTotal gamification.Points `json:"new_total"`

	// LeveledUp is true when the award crossed at least one threshold.
	LeveledUp bool `json:"leveled_up"`

	// NewLevel is the level derived from NewTotal.
	NewLevel gamification.Level `json:"new_level"`
}

// AwardPointsHandler implements the point ledger.
type AwardPointsHandler struct {
	repo   gamification.Repository
	events shared.EventBus
	logger *slog.Logger
}

// NewAwardPointsHandler creates a new point ledger handler.
func NewAwardPointsHandler(
	repo gamification.Repository,
	events shared.EventBus,
	logger *slog.Logger,
) *AwardPointsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AwardPointsHandler{
		repo:   repo,
		events: events,
		logger: logger.With("handler", "award_points"),
	}
}

// Handle applies a point award with full ledger semantics, including the
// Expert badge grant on reaching level 5.
func (h *AwardPointsHandler) Handle(ctx context.Context, cmd AwardPointsCommand) (*AwardPointsResult, error) {
	return h.award(ctx, cmd, true)
}

// award is the shared ledger path. grantExpert is false on bonus awards
// triggered by badge grants, so a grant can level the user up but can never
// re-enter badge logic within the same call stack.
func (h *AwardPointsHandler) award(ctx context.Context, cmd AwardPointsCommand, grantExpert bool) (*AwardPointsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("gamification", "AwardPoints", shared.ErrValidation, "invalid award", err)
	}

	newTotal, err := h.repo.AddPoints(ctx, cmd.UserID, cmd.Delta)
	if err != nil {
		if shared.IsNotFound(err) {
			h.logger.Warn("award skipped: unknown user",
				"user_id", cmd.UserID,
				"delta", int(cmd.Delta),
				"reason", string(cmd.Reason),
			)
			return &AwardPointsResult{Skipped: true}, nil
		}
		return nil, shared.WrapError("gamification", "AwardPoints", shared.ErrExternalService, "failed to persist award", err)
	}

	oldTotal := newTotal - gamification.Points(cmd.Delta)
	oldLevel := gamification.LevelFor(oldTotal)
	newLevel := gamification.LevelFor(newTotal)
	leveledUp := newLevel > oldLevel

	if leveledUp {
		if err := h.repo.SetLevel(ctx, cmd.UserID, newLevel); err != nil {
			return nil, shared.WrapError("gamification", "AwardPoints", shared.ErrExternalService, "failed to persist level", err)
		}

		// One level-up event per award, not one per crossed threshold.
		h.publish(shared.NewLevelUpEvent(cmd.UserID, int(oldLevel), int(newLevel), int(newTotal)))

		h.logger.Info("level up",
			"user_id", cmd.UserID,
			"old_level", int(oldLevel),
			"new_level", int(newLevel),
		)

		if grantExpert && newLevel == expertLevel {
			if def, ok := gamification.DefinitionByID(gamification.BadgeExpert); ok {
				if _, err := h.GrantBadge(ctx, cmd.UserID, def); err != nil {
					h.logger.Error("expert badge grant failed", "user_id", cmd.UserID, "error", err)
				}
			}
		}
	}

	h.publish(shared.NewPointsAwardedEvent(cmd.UserID, int(cmd.Delta), int(newTotal), string(cmd.Reason)))

	return &AwardPointsResult{
		PointsAwarded: cmd.Delta,
		NewTotal:      newTotal,
		LeveledUp:     leveledUp,
		NewLevel:      newLevel,
	}, nil
}

// GrantBadge records an earned badge and awards the fixed bonus points.
// Grants are idempotent: storage enforces one record per (user, badge), and
// a repeat grant returns granted=false with no side effects. The bonus award
// runs on the non-reentrant ledger path.
func (h *AwardPointsHandler) GrantBadge(ctx context.Context, userID string, def gamification.BadgeDefinition) (granted bool, err error) {
	badge := gamification.NewBadge(def, time.Now().UTC())

	granted, err = h.repo.AppendBadge(ctx, userID, badge)
	if err != nil {
		if shared.IsNotFound(err) {
			h.logger.Warn("badge grant skipped: unknown user", "user_id", userID, "badge", string(def.ID))
			return false, nil
		}
		return false, shared.WrapError("gamification", "GrantBadge", shared.ErrExternalService, "failed to persist badge", err)
	}
	if !granted {
		return false, nil
	}

	h.logger.Info("badge granted", "user_id", userID, "badge", string(def.ID))
	h.publish(shared.NewBadgeEarnedEvent(userID, string(def.ID), def.Name, def.Icon, def.Description, badge.EarnedAt))

	bonus := AwardPointsCommand{
		UserID: userID,
		Delta:  gamification.PointsBadgeEarned,
		Reason: gamification.ReasonBadgeEarned,
	}
	if _, err := h.award(ctx, bonus, false); err != nil {
		// The badge is already recorded; a failed bonus award must not
		// unwind the grant.
		h.logger.Error("badge bonus award failed", "user_id", userID, "badge", string(def.ID), "error", err)
	}

	return true, nil
}

// publish sends an event to the bus, logging instead of failing: event
// delivery is fire-and-forget from the ledger's point of view.
func (h *AwardPointsHandler) publish(event shared.Event) {
	if h.events == nil {
		return
	}
	if err := h.events.Publish(event); err != nil {
		h.logger.Error("event publish failed", "event_type", string(event.EventType()), "error", err)
	}
}
