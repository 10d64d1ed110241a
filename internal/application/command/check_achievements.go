package command

import (
	"context"
	"errors"
	"log/slog"

	"github.com/edusphere/edusphere-gamification/internal/domain/gamification"
	"github.com/edusphere/edusphere-gamification/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHECK ACHIEVEMENTS COMMAND (Achievement Evaluator)
//
// Walks the badge catalog in its fixed order and grants every badge whose
// predicate is newly satisfied. Predicates are evaluated against the state
// loaded at entry: bonus points earned by grants within the pass do not feed
// back into later predicates, mirroring the platform's historical behavior.
// Running the evaluator twice with no intervening stat change grants nothing
// the second time.
// ══════════════════════════════════════════════════════════════════════════════

// CheckAchievementsCommand identifies the user to evaluate.
type CheckAchievementsCommand struct {
	UserID string
}

// Validate checks the command parameters.
func (c *CheckAchievementsCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("user id is required")
	}
	return nil
}

// CheckAchievementsResult lists the badges granted by this pass.
type CheckAchievementsResult struct {
	// Skipped is true when the user does not exist.
	Skipped bool `json:"skipped"`

	// Granted holds the identifiers of newly granted badges, in catalog
	// order.
	Granted []gamification.BadgeID `json:"granted"`
}

// CheckAchievementsHandler implements the achievement evaluator.
type CheckAchievementsHandler struct {
	repo   gamification.Repository
	ledger *AwardPointsHandler
	logger *slog.Logger
}

// NewCheckAchievementsHandler creates a new achievement evaluator.
func NewCheckAchievementsHandler(
	repo gamification.Repository,
	ledger *AwardPointsHandler,
	logger *slog.Logger,
) *CheckAchievementsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckAchievementsHandler{
		repo:   repo,
		ledger: ledger,
		logger: logger.With("handler", "check_achievements"),
	}
}

// Handle evaluates every catalog predicate and grants newly qualified badges.
func (h *CheckAchievementsHandler) Handle(ctx context.Context, cmd CheckAchievementsCommand) (*CheckAchievementsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("gamification", "CheckAchievements", shared.ErrValidation, "invalid command", err)
	}

	state, err := h.repo.GetByUserID(ctx, cmd.UserID)
	if err != nil {
		if shared.IsNotFound(err) {
			h.logger.Warn("achievement check skipped: unknown user", "user_id", cmd.UserID)
			return &CheckAchievementsResult{Skipped: true}, nil
		}
		return nil, shared.WrapError("gamification", "CheckAchievements", shared.ErrExternalService, "failed to load state", err)
	}

	result := &CheckAchievementsResult{}

	for _, def := range gamification.Catalog() {
		if def.Predicate == nil {
			continue
		}
		if state.HasBadge(def.ID) {
			continue
		}
		if !def.Predicate(state) {
			continue
		}

		granted, err := h.ledger.GrantBadge(ctx, cmd.UserID, def)
		if err != nil {
			// One failed grant must not abort the rest of the pass.
			h.logger.Error("badge grant failed", "user_id", cmd.UserID, "badge", string(def.ID), "error", err)
			continue
		}
		if !granted {
			continue
		}

		result.Granted = append(result.Granted, def.ID)

		// Track the grant locally so the remainder of the pass sees it,
		// even though predicate inputs stay frozen at entry state.
		state.Badges = append(state.Badges, gamification.NewBadge(def, state.UpdatedAt))
	}

	return result, nil
}
