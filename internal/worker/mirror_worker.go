// Package worker mirrors the manifest and ledger into a spreadsheet, driven
// by change messages and a periodic full sync.
package worker

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"tripdesk/internal/amqp"
	applog "tripdesk/internal/log"
	"tripdesk/internal/ports"
	"tripdesk/internal/sheets"
)

// Source is the read side of the repositories the worker mirrors.
type Source interface {
	ports.InvoiceStore
	ports.ExpenseStore
}

// Consumer delivers change messages until ctx ends.
type Consumer interface {
	Consume(ctx context.Context, handler amqp.Handler) error
}

type Config struct {
	InvoicesSheet string
	ExpensesSheet string
	SyncInterval  time.Duration
}

type MirrorWorker struct {
	source Source
	mirror sheets.Mirror
	cfg    Config
	logger *applog.Logger
}

func NewMirrorWorker(source Source, mirror sheets.Mirror, cfg Config, logger *applog.Logger) *MirrorWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &MirrorWorker{
		source: source,
		mirror: mirror,
		cfg:    cfg,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleChange re-mirrors the collection named by msg. Settings are not
// mirrored. A returned error makes the consumer requeue the message.
func (w *MirrorWorker) HandleChange(ctx context.Context, msg *amqp.RecordChange) error {
	w.logger.InfoContext(ctx, "Processing record change", applog.NewFields().
		WithRecord(msg.Collection, msg.ID).
		WithOperation(msg.Op).
		ToSlice()...)

	switch msg.Collection {
	case ports.CollectionInvoices:
		return w.mirrorInvoices(ctx)
	case ports.CollectionExpenses:
		return w.mirrorExpenses(ctx)
	default:
		w.logger.DebugContext(ctx, "Collection is not mirrored", applog.FieldCollection, msg.Collection)
		return nil
	}
}

// FullSync mirrors both collections concurrently.
func (w *MirrorWorker) FullSync(ctx context.Context) error {
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.mirrorInvoices(gctx) })
	g.Go(func() error { return w.mirrorExpenses(gctx) })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("full sync: %w", err)
	}
	w.logger.InfoContext(ctx, "Full sync completed",
		applog.FieldOperation, applog.OpSync,
		applog.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// Run performs a startup sync, then consumes changes (when consumer is
// non-nil) and re-syncs every SyncInterval until ctx ends. Sync failures are
// logged and retried on the next tick.
func (w *MirrorWorker) Run(ctx context.Context, consumer Consumer) error {
	if err := w.FullSync(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup sync failed", applog.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	if consumer != nil {
		g.Go(func() error { return consumer.Consume(gctx, w.HandleChange) })
	}
	if w.cfg.SyncInterval > 0 {
		g.Go(func() error { return w.syncLoop(gctx) })
	}
	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (w *MirrorWorker) syncLoop(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.SyncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.FullSync(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic sync failed", applog.FieldError, err)
			}
		}
	}
}

func (w *MirrorWorker) mirrorInvoices(ctx context.Context) error {
	invoices, err := w.source.ListInvoices(ctx)
	if err != nil {
		return fmt.Errorf("list invoices: %w", err)
	}
	return w.replace(ctx, w.cfg.InvoicesSheet, sheets.InvoiceRows(invoices))
}

func (w *MirrorWorker) mirrorExpenses(ctx context.Context) error {
	expenses, err := w.source.ListExpenses(ctx)
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}
	return w.replace(ctx, w.cfg.ExpensesSheet, sheets.ExpenseRows(expenses))
}

func (w *MirrorWorker) replace(ctx context.Context, sheet string, rows [][]any) error {
	if err := w.mirror.ReplaceRows(ctx, sheet, rows); err != nil {
		return fmt.Errorf("mirror %s: %w", sheet, err)
	}
	w.logger.InfoContext(ctx, "Sheet mirrored",
		applog.FieldOperation, applog.OpMirror,
		applog.FieldSheet, sheet,
		applog.FieldRows, len(rows)-1)
	return nil
}
