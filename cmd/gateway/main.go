// Command gateway runs the API gateway: the single public entry point that
// routes requests to the platform's services through the health-probed
// service registry.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/leaderboard-platform/internal/config"
	"github.com/leaderboard-platform/internal/gateway"
	"github.com/leaderboard-platform/internal/registry"
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

	reg := registry.New()
	for service, addrs := range cfg.Gateway.Backends {
		for _, addr := range addrs {
			host, port, err := splitAddr(addr)
			if err != nil {
				logger.Error("invalid backend address", "service", service, "addr", addr, "error", err)
				os.Exit(1)
			}
			reg.Register(service, host, port)
		}
	}

	prober := registry.NewProber(reg, cfg.Gateway.ProbeInterval, cfg.Gateway.ProbeTimeout, logger)
	go prober.Run(ctx)

	proxy := gateway.NewProxy(reg, &http.Client{Timeout: cfg.Gateway.ForwardTimeout}, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Gateway.Server.Port),
		Handler:      proxy.Router(),
		ReadTimeout:  cfg.Gateway.Server.ReadTimeout,
		WriteTimeout: cfg.Gateway.Server.WriteTimeout,
		IdleTimeout:  cfg.Gateway.Server.IdleTimeout,
	}

	go func() {
		logger.Info("starting gateway", "port", cfg.Gateway.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down gateway...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	logger.Info("gateway stopped")
}

func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, err
	}
	return host, port, nil
}
