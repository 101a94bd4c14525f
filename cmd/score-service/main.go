// Command score-service runs score ingestion: HTTP submissions, the
// optional Kafka intake, and the websocket feed of accepted scores.
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
	"github.com/leaderboard-platform/internal/kafka"
	"github.com/leaderboard-platform/internal/postgres"
	"github.com/leaderboard-platform/internal/score"
	"github.com/leaderboard-platform/internal/websocket"
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

	var scoreCache cache.Cache = cache.NewNoop()
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedis(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("failed to connect to Redis, continuing without cache", "error", err)
		} else {
			defer redisCache.Close()
			scoreCache = redisCache
		}
	}

	wsHub := websocket.NewHub(logger)
	go wsHub.Run()

	notifier := score.NewAchievementNotifier(cfg.Score.AchievementURL, cfg.Score.NotifyTimeout, logger)
	service := score.NewService(repo, scoreCache, notifier, wsHub, logger)
	h := score.NewHandler(service, logger)

	var kafkaConsumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		logger.Info("initializing Kafka consumer", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
		kafkaConsumer, err = kafka.NewConsumer(&cfg.Kafka, service, logger)
		if err != nil {
			logger.Warn("failed to create Kafka consumer, continuing without Kafka", "error", err)
		} else if err := kafkaConsumer.Start(); err != nil {
			logger.Warn("failed to start Kafka consumer, continuing without Kafka", "error", err)
			kafkaConsumer = nil
		}
	}

	router := h.Router()
	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		websocket.ServeWs(wsHub, logger, w, r)
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Score.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Score.Server.ReadTimeout,
		WriteTimeout: cfg.Score.Server.WriteTimeout,
		IdleTimeout:  cfg.Score.Server.IdleTimeout,
	}

	go func() {
		logger.Info("starting score service", "port", cfg.Score.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down score service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	wsHub.Stop()

	if kafkaConsumer != nil {
		if err := kafkaConsumer.Stop(); err != nil {
			logger.Error("failed to stop Kafka consumer", "error", err)
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	logger.Info("score service stopped")
}
