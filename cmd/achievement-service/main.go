// Command achievement-service runs the achievement engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leaderboard-platform/internal/achievement"
	"github.com/leaderboard-platform/internal/config"
	"github.com/leaderboard-platform/internal/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warn("failed to load config file, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("connecting to PostgreSQL", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	repo, err := postgres.NewRepository(&cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.RunMigrations(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	if err := repo.SeedAchievements(ctx, achievement.DefaultAchievements()); err != nil {
		logger.Error("failed to seed achievements", "error", err)
		os.Exit(1)
	}

	service := achievement.NewService(repo, logger)
	h := achievement.NewHandler(service, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Achievement.Port),
		Handler:      h.Router(),
		ReadTimeout:  cfg.Achievement.ReadTimeout,
		WriteTimeout: cfg.Achievement.WriteTimeout,
		IdleTimeout:  cfg.Achievement.IdleTimeout,
	}

	go func() {
		logger.Info("starting achievement service", "port", cfg.Achievement.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down achievement service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	logger.Info("achievement service stopped")
}
