// Package cli holds the bootstrap shared by cmd/tripdesk and
// cmd/tripdesk-worker.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"tripdesk/internal/config"
	applog "tripdesk/internal/log"
)

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// SetupLogger builds the process logger from LOG_LEVEL and makes it the
// slog default.
func SetupLogger(level string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(level)
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// Bootstrap loads .env, reads and validates the configuration and returns it
// with a configured logger.
func Bootstrap() (*config.Config, *applog.Logger, error) {
	envErr := LoadEnvFile()
	cfg := config.Load()
	logger := SetupLogger(cfg.LogLevel)
	if envErr != nil {
		logger.Warn("Ignoring unreadable .env file", applog.FieldError, envErr)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		return nil, logger, err
	}
	return cfg, logger, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received",
				"signal", sig.String(),
				applog.FieldOperation, applog.OpShutdown)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
