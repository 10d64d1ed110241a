package eventhandler

import (
	"context"
	"log/slog"
	"time"

	"github.com/edusphere/edusphere-gamification/internal/domain/leaderboard"
	"github.com/edusphere/edusphere-gamification/internal/domain/shared"
)

const invalidateTimeout = 5 * time.Second

// OnPointsAwardedHandler drops cached leaderboard pages after any award so
// readers never see standings staler than the page TTL.
type OnPointsAwardedHandler struct {
	cache  leaderboard.Cache
	logger *slog.Logger
}

// NewOnPointsAwardedHandler creates a new cache-invalidation subscriber.
func NewOnPointsAwardedHandler(cache leaderboard.Cache, logger *slog.Logger) *OnPointsAwardedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnPointsAwardedHandler{
		cache:  cache,
		logger: logger.With("handler", "on_points_awarded"),
	}
}

// Handle implements shared.EventHandler. An invalidation failure is logged
// and swallowed; the TTL bounds how long the stale page can live.
func (h *OnPointsAwardedHandler) Handle(event shared.Event) error {
	if event.EventType() != shared.EventPointsAwarded {
		h.logger.Warn("received non-PointsAwarded event", "event_type", string(event.EventType()))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), invalidateTimeout)
	defer cancel()

	if err := h.cache.Invalidate(ctx); err != nil {
		h.logger.Error("failed to invalidate leaderboard cache", "error", err)
	}

	return nil
}
