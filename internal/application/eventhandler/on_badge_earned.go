package eventhandler

import (
	"fmt"
	"log/slog"

	"github.com/edusphere/edusphere-gamification/internal/domain/notification"
	"github.com/edusphere/edusphere-gamification/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON BADGE EARNED HANDLER
// ═══════════════════════════════════════════════════════════════════════════

// OnBadgeEarnedHandler turns BadgeEarned events into badge notifications.
type OnBadgeEarnedHandler struct {
	sink   notification.Sink
	logger *slog.Logger
}

// NewOnBadgeEarnedHandler creates a new badge-earned subscriber.
func NewOnBadgeEarnedHandler(sink notification.Sink, logger *slog.Logger) *OnBadgeEarnedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnBadgeEarnedHandler{
		sink:   sink,
		logger: logger.With("handler", "on_badge_earned"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnBadgeEarnedHandler) Handle(event shared.Event) error {
	earned, ok := event.(shared.BadgeEarnedEvent)
	if !ok {
		h.logger.Warn("received non-BadgeEarnedEvent", "event_type", string(event.EventType()))
		return nil
	}

	h.sink.Notify(
		earned.UserID,
		notification.TypeBadge,
		fmt.Sprintf("New Badge Earned! %s", earned.Icon),
		fmt.Sprintf("You've earned the %q badge: %s", earned.BadgeName, earned.Description),
		earned.Icon,
	)

	return nil
}
