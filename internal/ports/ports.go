// Package ports declares the repository contracts shared by the storage
// backends and the services.
package ports

import (
	"context"

	"tripdesk/internal/core"
)

type (
	// InvoiceStore persists the participant manifest.
	InvoiceStore interface {
		// ListInvoices returns every invoice, newest first.
		ListInvoices(ctx context.Context) ([]core.Invoice, error)
		// GetInvoice returns core.ErrNotFound when id is unknown.
		GetInvoice(ctx context.Context, id string) (core.Invoice, error)
		// SaveInvoice inserts or replaces the invoice with inv.ID.
		SaveInvoice(ctx context.Context, inv core.Invoice) error
		// DeleteInvoice returns core.ErrNotFound when id is unknown.
		DeleteInvoice(ctx context.Context, id string) error
		// LastInvoiceNo returns the most recently issued number, or "".
		LastInvoiceNo(ctx context.Context) (string, error)
	}

	// ExpenseStore persists the operational ledger.
	ExpenseStore interface {
		// ListExpenses returns every expense, latest date first.
		ListExpenses(ctx context.Context) ([]core.Expense, error)
		GetExpense(ctx context.Context, id string) (core.Expense, error)
		SaveExpense(ctx context.Context, e core.Expense) error
		DeleteExpense(ctx context.Context, id string) error
	}

	// SettingsStore persists the branding singleton.
	SettingsStore interface {
		// GetSettings returns core.DefaultSettings until settings are saved.
		GetSettings(ctx context.Context) (core.Settings, error)
		SaveSettings(ctx context.Context, s core.Settings) error
	}

	// InvoiceBatchSaver is implemented by backends that can save an import
	// atomically.
	InvoiceBatchSaver interface {
		SaveInvoices(ctx context.Context, invoices []core.Invoice) error
	}

	// Pinger is implemented by backends with a reachability check.
	Pinger interface {
		Ping(ctx context.Context) error
	}

	// Store bundles the three repositories one backend provides.
	Store interface {
		InvoiceStore
		ExpenseStore
		SettingsStore
	}
)

// Collection names used in change messages and cache keys.
const (
	CollectionInvoices = "invoices"
	CollectionExpenses = "expenses"
	CollectionSettings = "settings"
)
