// Command tripdesk serves the operator web application: manifest, ledger,
// settings and the financial dashboard.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"tripdesk/internal/amqp"
	"tripdesk/internal/backend"
	"tripdesk/internal/cli"
	apphttp "tripdesk/internal/http"
	applog "tripdesk/internal/log"
	"tripdesk/internal/services"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, logger, err := cli.Bootstrap()
	if err != nil {
		return err
	}
	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		return err
	}
	store, err := backend.Open(ctx, backendCfg, logger)
	if err != nil {
		logger.Error("Failed to open backend",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeDatabase,
			"backend", cfg.DataBackend)
		return err
	}
	defer func() {
		if err := store.Cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	// Publishing is optional: without a broker the app runs standalone.
	var publisher services.Publisher
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Failed to connect to AMQP broker, continuing without change publication",
				applog.FieldError, err,
				applog.FieldErrorType, applog.ErrorTypeNetwork)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("Publishing record changes",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	svc := apphttp.Services{
		Manifest:  services.NewManifestService(store.Store, cfg.InvoicePrefix, publisher, logger),
		Ledger:    services.NewLedgerService(store.Store, publisher, logger),
		Settings:  services.NewSettingsService(store.Store, publisher, logger),
		Dashboard: services.NewDashboardService(store.Store, store.Store),
	}

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		Pinger:             store.Pinger,
	}, svc, logger)
	if err != nil {
		logger.Error("Failed to create HTTP server",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting tripdesk server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"amqp_enabled", publisher != nil,
			applog.FieldOperation, applog.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", applog.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully", applog.FieldOperation, applog.OpShutdown)
	return nil
}
