// Package memory is the default, process-local repository backend.
package memory

import (
	"context"
	"sort"
	"sync"

	"tripdesk/internal/core"
)

// Store keeps invoices, expenses and settings in mutex-guarded maps.
type Store struct {
	mu       sync.RWMutex
	invoices map[string]core.Invoice
	expenses map[string]core.Expense
	settings *core.Settings
}

func New() *Store {
	return &Store{
		invoices: make(map[string]core.Invoice),
		expenses: make(map[string]core.Expense),
	}
}

// Seed loads fixtures; records with the same ID are replaced.
func (s *Store) Seed(invoices []core.Invoice, expenses []core.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range invoices {
		s.invoices[inv.ID] = inv
	}
	for _, e := range expenses {
		s.expenses[e.ID] = e
	}
}

func (s *Store) ListInvoices(_ context.Context) ([]core.Invoice, error) {
	s.mu.RLock()
	out := make([]core.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		out = append(out, inv)
	}
	s.mu.RUnlock()
	sortInvoices(out)
	return out, nil
}

func (s *Store) GetInvoice(_ context.Context, id string) (core.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return core.Invoice{}, core.ErrNotFound
	}
	return inv, nil
}

func (s *Store) SaveInvoice(_ context.Context, inv core.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[inv.ID] = inv
	return nil
}

// SaveInvoices stores every invoice under one lock.
func (s *Store) SaveInvoices(_ context.Context, invoices []core.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range invoices {
		s.invoices[inv.ID] = inv
	}
	return nil
}

func (s *Store) DeleteInvoice(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.invoices, id)
	return nil
}

func (s *Store) LastInvoiceNo(ctx context.Context) (string, error) {
	invoices, _ := s.ListInvoices(ctx)
	if len(invoices) == 0 {
		return "", nil
	}
	return invoices[0].InvoiceNo, nil
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.RLock()
	out := make([]core.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		out = append(out, e)
	}
	s.mu.RUnlock()
	sortExpenses(out)
	return out, nil
}

func (s *Store) GetExpense(_ context.Context, id string) (core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.expenses[id]
	if !ok {
		return core.Expense{}, core.ErrNotFound
	}
	return e, nil
}

func (s *Store) SaveExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses[e.ID] = e
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

func (s *Store) GetSettings(_ context.Context) (core.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return core.DefaultSettings(), nil
	}
	return *s.settings, nil
}

func (s *Store) SaveSettings(_ context.Context, settings core.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &settings
	return nil
}

// sortInvoices orders newest first, matching the SQL backend's ORDER BY.
func sortInvoices(invoices []core.Invoice) {
	sort.SliceStable(invoices, func(i, j int) bool {
		a, b := invoices[i], invoices[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if a.InvoiceNo != b.InvoiceNo {
			return a.InvoiceNo > b.InvoiceNo
		}
		return a.ID > b.ID
	})
}

func sortExpenses(expenses []core.Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		a, b := expenses[i], expenses[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}
