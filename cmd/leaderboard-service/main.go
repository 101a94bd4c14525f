// Command leaderboard-service runs the cached ranking service.
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

	"github.com/leaderboard-platform/internal/cache"
	"github.com/leaderboard-platform/internal/config"
	"github.com/leaderboard-platform/internal/leaderboard"
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

	var lbCache cache.Cache = cache.NewNoop()
	if cfg.Redis.Enabled {
		logger.Info("connecting to Redis", "addr", cfg.Redis.Addr)
		redisCache, err := cache.NewRedis(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("failed to connect to Redis, continuing without cache", "error", err)
		} else {
			defer redisCache.Close()
			lbCache = redisCache
		}
	}

	service := leaderboard.NewService(repo, lbCache, &cfg.Leaderboard, logger)
	h := leaderboard.NewHandler(service, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Leaderboard.Server.Port),
		Handler:      h.Router(),
		ReadTimeout:  cfg.Leaderboard.Server.ReadTimeout,
		WriteTimeout: cfg.Leaderboard.Server.WriteTimeout,
		IdleTimeout:  cfg.Leaderboard.Server.IdleTimeout,
	}

	go func() {
		logger.Info("starting leaderboard service", "port", cfg.Leaderboard.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down leaderboard service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	logger.Info("leaderboard service stopped")
}
