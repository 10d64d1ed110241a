// Package scheduler runs the engine's periodic jobs on fixed intervals.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrSchedulerStopped is returned when registering on a stopped scheduler.
var ErrSchedulerStopped = errors.New("scheduler is stopped")

// Job is a unit of periodic work.
type Job interface {
	// Name identifies the job in logs.
	Name() string

	// Run executes one iteration. Errors are logged, never fatal; the
	// next tick runs regardless.
	Run(ctx context.Context) error
}

// Scheduler runs registered jobs on their intervals until stopped.
type Scheduler struct {
	mu      sync.Mutex
	logger  *slog.Logger
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	stopped bool
}

// New creates an idle scheduler.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		logger: logger.With("component", "scheduler"),
	}
}

// Start makes the scheduler ready to accept jobs. Jobs registered before
// Start are not supported; register after starting.
func (s *Scheduler) Start(ctx context.Context) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.started = true
	return runCtx
}

// Every schedules job to run each interval. The first run happens after one
// full interval, not immediately; startup traffic warms the caches anyway.
func (s *Scheduler) Every(ctx context.Context, interval time.Duration, job Job) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrSchedulerStopped
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := job.Run(ctx); err != nil {
					s.logger.Error("job failed",
						"job", job.Name(),
						"duration", time.Since(start),
						"error", err,
					)
					continue
				}
				s.logger.Debug("job completed",
					"job", job.Name(),
					"duration", time.Since(start),
				)
			}
		}
	}()

	s.logger.Info("job scheduled", "job", job.Name(), "interval", interval)
	return nil
}

// Stop cancels all jobs and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}
