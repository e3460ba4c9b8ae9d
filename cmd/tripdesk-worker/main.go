// Command tripdesk-worker mirrors the manifest and ledger into a Google
// Spreadsheet, driven by record-change messages and a periodic full sync.
package main

import (
	"context"
	"os"

	"tripdesk/internal/amqp"
	"tripdesk/internal/backend"
	"tripdesk/internal/cli"
	applog "tripdesk/internal/log"
	"tripdesk/internal/sheets"
	gsheet "tripdesk/internal/sheets/google"
	memsheet "tripdesk/internal/sheets/memory"
	"tripdesk/internal/worker"
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
	logger = logger.WithComponent(applog.ComponentWorker)
	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	// The worker reads what the server wrote, so it never caches snapshots.
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		return err
	}
	backendCfg.CacheTTL = 0
	if backendCfg.Type == backend.Memory {
		logger.Warn("Memory backend is process-local, the mirror will stay empty; use DATA_BACKEND=sqlite")
	}
	store, err := backend.Open(ctx, backendCfg, logger)
	if err != nil {
		logger.Error("Failed to open backend",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeDatabase)
		return err
	}
	defer store.Cleanup()

	var mirror sheets.Mirror
	if cfg.MirrorEnabled() {
		creds, err := gsheet.Credentials(cfg.GoogleServiceAccountJSON, cfg.GoogleServiceAccountFile)
		if err != nil {
			logger.Error("Failed to load Google credentials",
				applog.FieldError, err,
				applog.FieldErrorType, applog.ErrorTypeConfiguration)
			return err
		}
		client, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, creds, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			return err
		}
		mirror = client
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		mirror = memsheet.New()
		logger.Info("Google Sheets disabled, mirroring in memory (no GOOGLE_SPREADSHEET_ID provided)")
	}

	var consumer worker.Consumer
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client",
				applog.FieldError, err,
				applog.FieldErrorType, applog.ErrorTypeNetwork)
			return err
		}
		defer client.Close()
		consumer = client
	} else {
		logger.Info("AMQP disabled, relying on periodic sync", "interval", cfg.SyncInterval.String())
	}

	w := worker.NewMirrorWorker(store.Store, mirror, worker.Config{
		InvoicesSheet: cfg.GoogleInvoicesSheet,
		ExpensesSheet: cfg.GoogleExpensesSheet,
		SyncInterval:  cfg.SyncInterval,
	}, logger)

	logger.Info("Starting tripdesk-worker", applog.FieldOperation, applog.OpStartup)
	if err := w.Run(ctx, consumer); err != nil {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		return err
	}
	logger.Info("Worker stopped", applog.FieldOperation, applog.OpShutdown)
	return nil
}
