package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tripdesk/internal/amqp"
	"tripdesk/internal/core"
	applog "tripdesk/internal/log"
	"tripdesk/internal/ports"
)

// ManifestService manages participant invoices.
type ManifestService struct {
	store  ports.InvoiceStore
	prefix string
	notifier
	logger *applog.Logger
	now    func() time.Time

	// numbering serializes number assignment so concurrent creates never
	// reuse a sequence.
	numbering sync.Mutex
}

func NewManifestService(store ports.InvoiceStore, prefix string, publisher Publisher, logger *applog.Logger) *ManifestService {
	if logger == nil {
		logger = applog.Discard()
	}
	if prefix == "" {
		prefix = core.DefaultInvoicePrefix
	}
	logger = logger.WithComponent(applog.ComponentManifest)
	return &ManifestService{
		store:    store,
		prefix:   prefix,
		notifier: notifier{publisher: publisher, logger: logger},
		logger:   logger,
		now:      time.Now,
	}
}

// List returns the invoices matching f, newest first.
func (s *ManifestService) List(ctx context.Context, f core.InvoiceFilter) ([]core.Invoice, error) {
	invoices, err := s.store.ListInvoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return core.FilterInvoices(invoices, f), nil
}

func (s *ManifestService) Get(ctx context.Context, id string) (core.Invoice, error) {
	return s.store.GetInvoice(ctx, id)
}

// Months lists the "Month Year" values usable as a list filter.
func (s *ManifestService) Months(ctx context.Context) ([]string, error) {
	invoices, err := s.store.ListInvoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return core.AvailableMonths(invoices), nil
}

// TripGroups groups every invoice by destination and trip date.
func (s *ManifestService) TripGroups(ctx context.Context) ([]core.TripGroup, error) {
	invoices, err := s.store.ListInvoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return core.GroupByTrip(invoices), nil
}

// NextNumber previews the number the next created invoice will receive.
func (s *ManifestService) NextNumber(ctx context.Context) (string, error) {
	last, err := s.store.LastInvoiceNo(ctx)
	if err != nil {
		return "", fmt.Errorf("last invoice number: %w", err)
	}
	return core.NextInvoiceNo(s.prefix, last, s.now().Year()), nil
}

// Create assigns identity, number and defaults, derives the total and stores
// the invoice. A caller-supplied invoice number is kept.
func (s *ManifestService) Create(ctx context.Context, inv core.Invoice) (core.Invoice, error) {
	now := s.now()
	inv.ID = uuid.NewString()
	inv.ApplyDefaults(now)
	inv.DeriveTotal()
	inv.CreatedAt = now.UTC()
	inv.UpdatedAt = inv.CreatedAt
	if err := inv.Validate(); err != nil {
		return core.Invoice{}, err
	}

	s.numbering.Lock()
	defer s.numbering.Unlock()

	if strings.TrimSpace(inv.InvoiceNo) == "" {
		last, err := s.store.LastInvoiceNo(ctx)
		if err != nil {
			return core.Invoice{}, fmt.Errorf("last invoice number: %w", err)
		}
		inv.InvoiceNo = core.NextInvoiceNo(s.prefix, last, now.Year())
	}
	if err := s.store.SaveInvoice(ctx, inv); err != nil {
		return core.Invoice{}, fmt.Errorf("save invoice: %w", err)
	}

	s.logger.InfoContext(ctx, "Invoice created", applog.NewFields().
		WithOperation(applog.OpCreate).
		WithInvoice(inv.InvoiceNo, string(inv.Status), inv.Destination, int64(inv.Total)).
		ToSlice()...)
	s.notify(ctx, ports.CollectionInvoices, inv.ID, amqp.OpUpsert)
	return inv, nil
}

// Update replaces the editable fields of an existing invoice. Identity,
// number and creation time are kept from the stored record.
func (s *ManifestService) Update(ctx context.Context, id string, inv core.Invoice) (core.Invoice, error) {
	current, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return core.Invoice{}, err
	}
	inv.ID = current.ID
	inv.CreatedAt = current.CreatedAt
	if strings.TrimSpace(inv.InvoiceNo) == "" {
		inv.InvoiceNo = current.InvoiceNo
	}
	if strings.TrimSpace(inv.InvoiceDate) == "" {
		inv.InvoiceDate = current.InvoiceDate
	}
	now := s.now()
	inv.ApplyDefaults(now)
	inv.DeriveTotal()
	inv.UpdatedAt = now.UTC()
	if err := inv.Validate(); err != nil {
		return core.Invoice{}, err
	}
	if err := s.store.SaveInvoice(ctx, inv); err != nil {
		return core.Invoice{}, fmt.Errorf("save invoice: %w", err)
	}

	s.logger.InfoContext(ctx, "Invoice updated", applog.NewFields().
		WithOperation(applog.OpUpdate).
		WithInvoice(inv.InvoiceNo, string(inv.Status), inv.Destination, int64(inv.Total)).
		ToSlice()...)
	s.notify(ctx, ports.CollectionInvoices, inv.ID, amqp.OpUpsert)
	return inv, nil
}

// SetStatus changes only the payment status.
func (s *ManifestService) SetStatus(ctx context.Context, id string, status core.InvoiceStatus) (core.Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return core.Invoice{}, err
	}
	inv.Status = status
	return s.Update(ctx, id, inv)
}

func (s *ManifestService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteInvoice(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Invoice deleted",
		applog.FieldOperation, applog.OpDelete, applog.FieldRecordID, id)
	s.notify(ctx, ports.CollectionInvoices, id, amqp.OpDelete)
	return nil
}

// Import stores parsed manifest rows as new unpaid invoices dated today and
// numbered consecutively. Nothing is stored when any row is invalid.
func (s *ManifestService) Import(ctx context.Context, rows []core.Invoice) ([]core.Invoice, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	now := s.now()

	s.numbering.Lock()
	defer s.numbering.Unlock()

	last, err := s.store.LastInvoiceNo(ctx)
	if err != nil {
		return nil, fmt.Errorf("last invoice number: %w", err)
	}
	numbers := core.InvoiceNumbers(s.prefix, last, now.Year(), len(rows))

	out := make([]core.Invoice, len(rows))
	for i, row := range rows {
		row.ID = uuid.NewString()
		row.InvoiceNo = numbers[i]
		row.InvoiceDate = core.FormatLongDate(now)
		row.Status = core.StatusUnpaid
		row.Subtotal, row.Discount = 0, 0
		row.ApplyDefaults(now)
		row.DeriveTotal()
		// Equal creation times fall back to number order in listings.
		row.CreatedAt = now.UTC()
		row.UpdatedAt = row.CreatedAt
		if err := row.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out[i] = row
	}

	if err := s.saveAll(ctx, out); err != nil {
		return nil, fmt.Errorf("save imported invoices: %w", err)
	}

	s.logger.InfoContext(ctx, "Manifest imported",
		applog.FieldOperation, applog.OpImport, applog.FieldRows, len(out))
	s.notify(ctx, ports.CollectionInvoices, "", amqp.OpUpsert)
	return out, nil
}

func (s *ManifestService) saveAll(ctx context.Context, invoices []core.Invoice) error {
	if batch, ok := s.store.(ports.InvoiceBatchSaver); ok {
		return batch.SaveInvoices(ctx, invoices)
	}
	for _, inv := range invoices {
		if err := s.store.SaveInvoice(ctx, inv); err != nil {
			return err
		}
	}
	return nil
}
