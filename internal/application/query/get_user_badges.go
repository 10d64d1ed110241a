package query

import (
	"context"
	"errors"
	"log/slog"

	"github.com/edusphere/edusphere-gamification/internal/domain/gamification"
	"github.com/edusphere/edusphere-gamification/internal/domain/shared"
)

// GetUserBadgesQuery identifies the user whose badges are requested.
type GetUserBadgesQuery struct {
	UserID string
}

// Validate checks the query parameters.
func (q *GetUserBadgesQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user id is required")
	}
	return nil
}

// GetUserBadgesResult contains the earned badges in grant order.
type GetUserBadgesResult struct {
	UserID      string     `json:"user_id"`
	DisplayName string     `json:"display_name"`
	Avatar      string     `json:"avatar,omitempty"`
	Badges      []BadgeDTO `json:"badges"`
}

// GetUserBadgesHandler serves earned-badge listings.
type GetUserBadgesHandler struct {
	states gamification.Repository
	logger *slog.Logger
}

// NewGetUserBadgesHandler creates a new badge listing handler.
func NewGetUserBadgesHandler(states gamification.Repository, logger *slog.Logger) *GetUserBadgesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetUserBadgesHandler{
		states: states,
		logger: logger.With("handler", "get_user_badges"),
	}
}

// Handle executes the badge listing query.
func (h *GetUserBadgesHandler) Handle(ctx context.Context, q GetUserBadgesQuery) (*GetUserBadgesResult, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("gamification", "GetUserBadges", shared.ErrValidation, "invalid query", err)
	}

	state, err := h.states.GetByUserID(ctx, q.UserID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrUserStateNotFound
		}
		return nil, shared.WrapError("gamification", "GetUserBadges", shared.ErrExternalService, "failed to load state", err)
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

	return &GetUserBadgesResult{
		UserID:      state.UserID,
		DisplayName: state.DisplayName,
		Avatar:      state.Avatar,
		Badges:      badges,
	}, nil
}
