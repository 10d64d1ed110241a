// Package eventhandler contains subscribers for domain events.
// Handlers run on the event bus, decoupled from the command that published:
// a failed or slow notification can never fail the point or badge award
// that triggered it.
package eventhandler

import (
	"fmt"
	"log/slog"

	"github.com/edusphere/edusphere-gamification/internal/domain/notification"
	"github.com/edusphere/edusphere-gamification/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON LEVEL UP HANDLER
//
// Emits the level-up announcement. The ledger publishes at most one LevelUp
// event per award, so a single award crossing several thresholds produces a
// single announcement.
// ═══════════════════════════════════════════════════════════════════════════

// OnLevelUpHandler turns LevelUp events into achievement notifications.
type OnLevelUpHandler struct {
	sink   notification.Sink
	logger *slog.Logger
}

// NewOnLevelUpHandler creates a new level-up subscriber.
func NewOnLevelUpHandler(sink notification.Sink, logger *slog.Logger) *OnLevelUpHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnLevelUpHandler{
		sink:   sink,
		logger: logger.With("handler", "on_level_up"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnLevelUpHandler) Handle(event shared.Event) error {
	levelUp, ok := event.(shared.LevelUpEvent)
	if !ok {
		h.logger.Warn("received non-LevelUpEvent", "event_type", string(event.EventType()))
		return nil
	}

	h.sink.Notify(
		levelUp.UserID,
		notification.TypeAchievement,
		"Level Up! 🎉",
		fmt.Sprintf("Congratulations! You've reached level %d", levelUp.NewLevel),
		"🎊",
	)

	return nil
}
