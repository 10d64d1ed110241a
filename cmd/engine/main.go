// Package main wires the gamification engine: storage, cache, event bus,
// command and query handlers, and the notification subscribers. The engine
// runs as a long-lived process; the surrounding platform drives it through
// the application handlers.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/edusphere/edusphere-gamification/config"
	"github.com/edusphere/edusphere-gamification/internal/application"
	"github.com/edusphere/edusphere-gamification/internal/application/eventhandler"
	"github.com/edusphere/edusphere-gamification/internal/domain/gamification"
	"github.com/edusphere/edusphere-gamification/internal/domain/leaderboard"
	"github.com/edusphere/edusphere-gamification/internal/domain/shared"
	"github.com/edusphere/edusphere-gamification/internal/infrastructure/messaging"
	"github.com/edusphere/edusphere-gamification/internal/infrastructure/persistence/postgres"
	redisinfra "github.com/edusphere/edusphere-gamification/internal/infrastructure/persistence/redis"
	"github.com/edusphere/edusphere-gamification/internal/infrastructure/scheduler"
	"github.com/edusphere/edusphere-gamification/internal/infrastructure/scheduler/jobs"
	"github.com/edusphere/edusphere-gamification/internal/infrastructure/service"
	"github.com/edusphere/edusphere-gamification/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "engine: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	bootLog := logger.New(logger.Options{Level: bootLevel(cfg)}).
		With(logger.Field{Key: "service", Value: cfg.App.Name})
	bootLog.Info("starting gamification engine",
		logger.Field{Key: "version", Value: cfg.App.Version},
		logger.Field{Key: "environment", Value: string(cfg.App.Environment)},
	)

	slogLevel := slog.LevelInfo
	if cfg.App.Debug {
		slogLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Storage ────────────────────────────────────────────────────────────

	conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer conn.Close()

	if cfg.Database.Migrate {
		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
		bootLog.Info("migrations applied")
	}

	states := postgres.NewGameStateRepository(conn)
	board := postgres.NewLeaderboardRepository(conn)
	notifications := postgres.NewNotificationRepository(conn)

	// ── Cache ──────────────────────────────────────────────────────────────

	var cache leaderboard.Cache
	if !cfg.Redis.Disabled {
		client, err := redisinfra.NewClient(ctx, redisinfra.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return err
		}
		defer client.Close()

		cache = redisinfra.NewLeaderboardCacheWithTTL(client, cfg.Redis.LeaderboardTTL)
		bootLog.Info("leaderboard cache enabled")
	} else {
		bootLog.Warn("leaderboard cache disabled, queries go straight to storage")
	}

	// ── Event bus ──────────────────────────────────────────────────────────

	bus := messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{
		AsyncMode:      true,
		WorkerPoolSize: cfg.EventBus.WorkerPoolSize,
		Logger:         log,
		EnableMetrics:  cfg.EventBus.EnableMetrics,
	})
	defer bus.Close()

	// ── Application facade ─────────────────────────────────────────────────

	engine := application.NewEngine(states, board, cache, bus, log)

	// ── Subscribers ────────────────────────────────────────────────────────

	sink := service.NewNotificationService(notifications, service.NewIDGenerator(), log)

	if err := bus.Subscribe(shared.EventLevelUp, eventhandler.NewOnLevelUpHandler(sink, log).Handle); err != nil {
		return err
	}
	if err := bus.Subscribe(shared.EventBadgeEarned, eventhandler.NewOnBadgeEarnedHandler(sink, log).Handle); err != nil {
		return err
	}
	if cache != nil {
		invalidator := eventhandler.NewOnPointsAwardedHandler(cache, log)
		if err := bus.Subscribe(shared.EventPointsAwarded, invalidator.Handle); err != nil {
			return err
		}
	}

	// ── Periodic jobs ──────────────────────────────────────────────────────

	if cache != nil && cfg.Redis.WarmInterval > 0 {
		sched := scheduler.New(log)
		schedCtx := sched.Start(ctx)
		defer sched.Stop()

		warm := jobs.NewWarmLeaderboard(board, cache,
			[]leaderboard.RoleFilter{
				leaderboard.RoleFilter(gamification.RoleStudent),
				leaderboard.RoleFilter(gamification.RoleMentor),
			}, log)
		if err := sched.Every(schedCtx, cfg.Redis.WarmInterval, warm); err != nil {
			return err
		}
	}

	// The hosting platform calls the engine facade directly; this process
	// only keeps the subscribers, jobs, and storage alive.
	_ = engine

	bootLog.Info("gamification engine ready")

	<-ctx.Done()
	bootLog.Info("shutdown signal received, draining event bus")

	return nil
}

func bootLevel(cfg *config.Config) logger.Level {
	if cfg.App.Debug {
		return logger.LevelDebug
	}
	return logger.LevelInfo
}
