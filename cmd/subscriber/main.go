package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/comet-subscriber/internal/auth"
	"github.com/rickgao/comet-subscriber/internal/config"
	"github.com/rickgao/comet-subscriber/internal/connection"
	"github.com/rickgao/comet-subscriber/internal/supervisor"
	"github.com/rickgao/comet-subscriber/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/subscriber.local.yaml", "path to config file")
	flag.Parse()

	// Load configuration before the logger so log.level applies from the first record.
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "config", *configPath)
		os.Exit(1)
	}

	level, _ := config.ParseLogLevel(cfg.Log.Level)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting subscriber",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"address", cfg.Server.Address,
	)

	creds, err := loadCredentials(cfg.Auth)
	if err != nil {
		logger.Error("failed to load credentials", "error", err)
		os.Exit(1)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	transport := connection.NewWebSocketTransport(connection.TransportConfig{
		HandshakeTimeout: cfg.Transport.HandshakeTimeout,
		WriteTimeout:     cfg.Transport.WriteTimeout,
	}, logger.With("component", "transport"))

	supCfg := supervisorConfig(cfg, creds, logger)
	sup, err := supervisor.New(supCfg, transport, supervisor.WithLogger(logger))
	if err != nil {
		logger.Error("failed to start supervisor", "error", err)
		os.Exit(1)
	}

	var healthServer *http.Server
	if !cfg.Health.Disabled {
		healthServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
			Handler: createHealthHandler(sup),
		}

		go func() {
			logger.Info("starting health server", "port", cfg.Health.Port)
			if err := healthServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logger.Error("health server error", "error", err)
			}
		}()
	}

	// Wait for shutdown or permanent loss of the session
	select {
	case <-ctx.Done():
	case <-sup.Done():
		logger.Warn("supervisor terminated", "stats", sup.Stats())
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := sup.Stop(shutdownCtx); err != nil {
		logger.Warn("supervisor stop", "error", err)
	}
	if healthServer != nil {
		healthServer.Shutdown(shutdownCtx)
	}

	logger.Info("subscriber stopped")
}

func loadCredentials(cfg config.AuthConfig) (*auth.Credentials, error) {
	if cfg.TokenFile != "" {
		return auth.LoadToken(cfg.TokenFile)
	}
	return auth.NewCredentials(cfg.UserID, cfg.RoomID), nil
}

// supervisorConfig maps the file config onto the supervisor policy.
func supervisorConfig(cfg *config.SubscriberConfig, creds *auth.Credentials, logger *slog.Logger) supervisor.Config {
	supCfg := supervisor.DefaultConfig()
	supCfg.Address = cfg.Server.Address
	supCfg.MaxAttempts = cfg.Reconnect.MaxAttempts
	supCfg.InitialDelay = cfg.Reconnect.InitialDelay
	supCfg.BackoffMultiplier = cfg.Reconnect.BackoffMultiplier
	supCfg.MaxDelay = cfg.Reconnect.MaxDelay
	supCfg.AuthPayload = creds.Builder()
	supCfg.HeartbeatInterval = cfg.Heartbeat.Interval
	supCfg.HeartbeatPayload = []byte(cfg.Heartbeat.Payload)

	supCfg.OnMessage = func(body []byte) {
		logger.Info("message received", "body", string(body))
	}
	supCfg.OnExhausted = func() {
		logger.Error("giving up on server, restart the subscriber to resume",
			"max_attempts", cfg.Reconnect.MaxAttempts,
		)
	}

	return supCfg
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(sup *supervisor.Supervisor) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		stats := sup.Stats()

		health := struct {
			Status     string           `json:"status"`
			Version    string           `json:"version"`
			Supervisor supervisor.Stats `json:"supervisor"`
		}{
			Status:     "healthy",
			Version:    version.String(),
			Supervisor: stats,
		}

		switch stats.State {
		case supervisor.StateLive:
		case supervisor.StateTerminated:
			health.Status = "unhealthy"
		default:
			health.Status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
