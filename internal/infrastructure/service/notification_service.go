// Package service contains infrastructure adapters behind the domain ports.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/edusphere/edusphere-gamification/internal/domain/notification"
	"github.com/edusphere/edusphere-gamification/pkg/circuitbreaker"
	"github.com/edusphere/edusphere-gamification/pkg/retry"
)

// IDGenerator produces unique notification identifiers.
type IDGenerator interface {
	GenerateID() string
}

// UUIDGenerator implements IDGenerator with random UUIDs.
type UUIDGenerator struct{}

// NewIDGenerator creates a UUID-backed generator.
func NewIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// GenerateID returns a new random UUID string.
func (g *UUIDGenerator) GenerateID() string {
	return uuid.New().String()
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION SERVICE
//
// Implements notification.Sink: build the record, persist it with a bounded
// retry, and on exhaustion log and drop. Delivery must never propagate a
// failure back into the award that triggered it, so Notify returns nothing
// and does the write on its own goroutine with its own deadline.
// ══════════════════════════════════════════════════════════════════════════════

const notifyTimeout = 10 * time.Second

// NotificationService persists notification records emitted by the engine.
type NotificationService struct {
	repo    notification.Repository
	ids     IDGenerator
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger

	// async controls whether the write happens on a separate goroutine.
	// Tests disable it to assert on the persisted record deterministically.
	async bool
}

// NewNotificationService creates a new sink writing through repo.
func NewNotificationService(repo notification.Repository, ids IDGenerator, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	if ids == nil {
		ids = NewIDGenerator()
	}
	return &NotificationService{
		repo: repo,
		ids:  ids,
		retrier: retry.New(
			retry.WithMaxAttempts(3),
			retry.WithInitialDelay(100*time.Millisecond),
			retry.WithMaxDelay(2*time.Second),
		),
		breaker: circuitbreaker.New(circuitbreaker.DefaultConfig()),
		logger:  logger.With("component", "notification_service"),
		async:   true,
	}
}

// NewSynchronousNotificationService creates a sink that writes inline.
func NewSynchronousNotificationService(repo notification.Repository, ids IDGenerator, logger *slog.Logger) *NotificationService {
	s := NewNotificationService(repo, ids, logger)
	s.async = false
	return s
}

// Notify implements notification.Sink.
func (s *NotificationService) Notify(userID string, t notification.Type, title, message, icon string) {
	record, err := notification.New(s.ids.GenerateID(), userID, t, title, message, icon)
	if err != nil {
		s.logger.Error("invalid notification dropped",
			"user_id", userID,
			"type", string(t),
			"error", err,
		)
		return
	}

	if s.async {
		go s.persist(record)
	} else {
		s.persist(record)
	}
}

func (s *NotificationService) persist(record *notification.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		return s.breaker.Do(func() error {
			return s.repo.Create(ctx, record)
		})
	})
	if err != nil {
		// Dropped on the floor deliberately; the award already succeeded.
		s.logger.Error("failed to persist notification, dropping",
			"notification_id", record.ID,
			"user_id", record.UserID,
			"type", string(record.Type),
			"error", err,
		)
		return
	}

	s.logger.Debug("notification persisted",
		"notification_id", record.ID,
		"user_id", record.UserID,
		"type", string(record.Type),
	)
}
