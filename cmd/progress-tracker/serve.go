package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/terra-clan/progress-tracker/internal/api"
	"github.com/terra-clan/progress-tracker/internal/config"
	"github.com/terra-clan/progress-tracker/internal/events"
	"github.com/terra-clan/progress-tracker/internal/health"
	"github.com/terra-clan/progress-tracker/internal/roadmap"
	"github.com/terra-clan/progress-tracker/internal/storage"
	"github.com/terra-clan/progress-tracker/internal/streak"
	"github.com/terra-clan/progress-tracker/internal/tracker"
)

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	slog.Info("starting progress-tracker",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Driver,
	)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	checks := health.NewRegistry(2 * time.Second)

	repo, closeProbes, err := openRepository(initCtx, cfg, checks)
	if err != nil {
		return err
	}
	defer closeProbes()
	defer func() {
		if err := repo.Close(); err != nil {
			slog.Error("repository close error", "error", err)
		}
	}()
	checks.Register(health.PingChecker("storage", repo))

	hub := events.NewHub(64)
	publisher := events.Multi{hub}

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		if err := client.Ping(initCtx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		redisPub := events.NewRedisPublisher(client, cfg.Redis.Channel)
		publisher = append(publisher, redisPub)
		checks.Register(health.NewRedisChecker(client))
		slog.Info("redis event fan-out enabled", "channel", redisPub.Channel())
	}

	if cfg.Roadmap.Seed {
		r, err := loadRoadmap(cfg.Roadmap.File)
		if err != nil {
			return fmt.Errorf("failed to load roadmap: %w", err)
		}
		if _, err := roadmap.Seed(initCtx, repo, r); err != nil {
			return fmt.Errorf("failed to seed roadmap: %w", err)
		}
	}

	t := tracker.New(repo,
		tracker.WithLocation(loc),
		tracker.WithHooks(
			tracker.NewLevelProgressHook(repo, publisher),
			tracker.NewStatsHook(repo, publisher, loc),
			tracker.NewEventHook(publisher),
		),
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	streak.NewKeeper(t, cfg.Streak.CheckInterval).Start(ctx)

	server := api.NewServer(t, checks, hub)
	httpServer := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     server.Router(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("HTTP server error: %w", err)
	}

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("progress-tracker stopped")
	return nil
}

// openRepository builds the configured backend. The postgres backend is
// migrated first and gets its own readiness probe; the returned func closes
// that probe.
func openRepository(ctx context.Context, cfg *config.Config, checks *health.Registry) (storage.Repository, func(), error) {
	if cfg.Storage.Driver == config.DriverMemory {
		slog.Info("using in-memory storage")
		return storage.NewMemoryRepository(), func() {}, nil
	}

	slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
	if err := storage.MigrateFromDSN(ctx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	repo, err := storage.NewPostgresRepository(ctx, storage.PostgresConfig{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: int32(cfg.Database.MaxConns),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database repository: %w", err)
	}
	slog.Info("database connected successfully")

	probe, err := health.NewPostgresChecker(cfg.Database.DSN)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}
	checks.Register(probe)

	closeProbe := func() {
		checks.Unregister(probe.Name())
		if err := probe.Close(); err != nil {
			slog.Error("postgres probe close error", "error", err)
		}
	}
	return repo, closeProbe, nil
}
