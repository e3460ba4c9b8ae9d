// Package storage is the SQLite repository backend. The schema lives in
// embedded migrations applied on open.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tripdesk/internal/core"
	applog "tripdesk/internal/log"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *applog.Logger
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// migrates it to the latest schema.
func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite has a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger.WithComponent(applog.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) ListInvoices(ctx context.Context) ([]core.Invoice, error) {
	rows, err := r.queries.ListInvoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	out := make([]core.Invoice, len(rows))
	for i, row := range rows {
		out[i] = invoiceFromRow(row)
	}
	return out, nil
}

func (r *SQLiteRepository) GetInvoice(ctx context.Context, id string) (core.Invoice, error) {
	row, err := r.queries.GetInvoice(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Invoice{}, core.ErrNotFound
	}
	if err != nil {
		return core.Invoice{}, fmt.Errorf("get invoice %s: %w", id, err)
	}
	return invoiceFromRow(row), nil
}

func (r *SQLiteRepository) SaveInvoice(ctx context.Context, inv core.Invoice) error {
	if err := r.queries.UpsertInvoice(ctx, invoiceToRow(inv)); err != nil {
		return fmt.Errorf("save invoice %s: %w", inv.InvoiceNo, err)
	}
	r.logger.DebugContext(ctx, "Invoice saved", applog.FieldRecordID, inv.ID, applog.FieldInvoiceNo, inv.InvoiceNo)
	return nil
}

// SaveInvoices writes every invoice in one transaction.
func (r *SQLiteRepository) SaveInvoices(ctx context.Context, invoices []core.Invoice) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	q := r.queries.WithTx(tx)
	for _, inv := range invoices {
		if err = q.UpsertInvoice(ctx, invoiceToRow(inv)); err != nil {
			return fmt.Errorf("save invoice %s: %w", inv.InvoiceNo, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit import transaction: %w", err)
	}
	r.logger.InfoContext(ctx, "Invoices imported", applog.FieldRows, len(invoices))
	return nil
}

func (r *SQLiteRepository) DeleteInvoice(ctx context.Context, id string) error {
	n, err := r.queries.DeleteInvoice(ctx, id)
	if err != nil {
		return fmt.Errorf("delete invoice %s: %w", id, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) LastInvoiceNo(ctx context.Context) (string, error) {
	no, err := r.queries.LastInvoiceNo(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("last invoice number: %w", err)
	}
	return no, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.queries.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]core.Expense, len(rows))
	for i, row := range rows {
		out[i] = expenseFromRow(row)
	}
	return out, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	row, err := r.queries.GetExpense(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %s: %w", id, err)
	}
	return expenseFromRow(row), nil
}

func (r *SQLiteRepository) SaveExpense(ctx context.Context, e core.Expense) error {
	row := ExpenseRow{
		ID:        e.ID,
		Title:     e.Title,
		Category:  e.Category,
		Amount:    int64(e.Amount),
		Date:      e.Date,
		Notes:     e.Notes,
		CreatedAt: toUnix(e.CreatedAt),
	}
	if err := r.queries.UpsertExpense(ctx, row); err != nil {
		return fmt.Errorf("save expense %s: %w", e.ID, err)
	}
	r.logger.DebugContext(ctx, "Expense saved", applog.FieldRecordID, e.ID, applog.FieldCategory, e.Category)
	return nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	n, err := r.queries.DeleteExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetSettings(ctx context.Context) (core.Settings, error) {
	row, err := r.queries.GetSettings(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultSettings(), nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return core.Settings{
		Logo:             row.Logo,
		BankName:         row.BankName,
		AccountNo:        row.AccountNo,
		AccountName:      row.AccountName,
		WhatsAppContact:  row.WhatsAppContact,
		EmailContact:     row.EmailContact,
		InstagramContact: row.InstagramContact,
		FooterNote:       row.FooterNote,
	}, nil
}

func (r *SQLiteRepository) SaveSettings(ctx context.Context, s core.Settings) error {
	err := r.queries.UpsertSettings(ctx, SettingsRow{
		Logo:             s.Logo,
		BankName:         s.BankName,
		AccountNo:        s.AccountNo,
		AccountName:      s.AccountName,
		WhatsAppContact:  s.WhatsAppContact,
		EmailContact:     s.EmailContact,
		InstagramContact: s.InstagramContact,
		FooterNote:       s.FooterNote,
		UpdatedAt:        time.Now().UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func invoiceToRow(inv core.Invoice) InvoiceRow {
	return InvoiceRow{
		ID:             inv.ID,
		InvoiceNo:      inv.InvoiceNo,
		InvoiceDate:    inv.InvoiceDate,
		Status:         string(inv.Status),
		FullName:       inv.FullName,
		Nickname:       inv.Nickname,
		Gender:         inv.Gender,
		Age:            int64(inv.Age),
		Domicile:       inv.Domicile,
		WhatsApp:       inv.WhatsApp,
		Email:          inv.Email,
		Destination:    inv.Destination,
		TripDate:       inv.TripDate,
		Packet:         inv.Packet,
		Experience:     inv.Experience,
		MedicalHistory: inv.MedicalHistory,
		Allergies:      inv.Allergies,
		GearRental:     inv.GearRental,
		Subtotal:       int64(inv.Subtotal),
		Discount:       int64(inv.Discount),
		Total:          int64(inv.Total),
		CreatedAt:      toUnix(inv.CreatedAt),
		UpdatedAt:      toUnix(inv.UpdatedAt),
	}
}

func invoiceFromRow(r InvoiceRow) core.Invoice {
	return core.Invoice{
		ID:             r.ID,
		InvoiceNo:      r.InvoiceNo,
		InvoiceDate:    r.InvoiceDate,
		Status:         core.InvoiceStatus(r.Status),
		FullName:       r.FullName,
		Nickname:       r.Nickname,
		Gender:         r.Gender,
		Age:            int(r.Age),
		Domicile:       r.Domicile,
		WhatsApp:       r.WhatsApp,
		Email:          r.Email,
		Destination:    r.Destination,
		TripDate:       r.TripDate,
		Packet:         r.Packet,
		Experience:     r.Experience,
		MedicalHistory: r.MedicalHistory,
		Allergies:      r.Allergies,
		GearRental:     r.GearRental,
		Subtotal:       core.Rupiah(r.Subtotal),
		Discount:       core.Rupiah(r.Discount),
		Total:          core.Rupiah(r.Total),
		CreatedAt:      fromUnix(r.CreatedAt),
		UpdatedAt:      fromUnix(r.UpdatedAt),
	}
}

func expenseFromRow(r ExpenseRow) core.Expense {
	return core.Expense{
		ID:        r.ID,
		Title:     r.Title,
		Category:  r.Category,
		Amount:    core.Rupiah(r.Amount),
		Date:      r.Date,
		Notes:     r.Notes,
		CreatedAt: fromUnix(r.CreatedAt),
	}
}

// Timestamps are stored as UTC unix nanoseconds so ORDER BY is numeric.
func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
