// Package adapters decorates repository backends.
package adapters

import (
	"context"
	"sync"
	"time"

	"tripdesk/internal/cache"
	"tripdesk/internal/core"
	applog "tripdesk/internal/log"
	"tripdesk/internal/ports"
)

// CachedStore serves full-collection reads from snapshot caches and drops the
// affected snapshot on every write. Single-record reads and writes go to the
// wrapped store.
//
// Each collection carries a generation that writes bump. A read only stores
// its snapshot when the generation it started under is still current, so a
// read racing a write never caches pre-write rows.
type CachedStore struct {
	next     ports.Store
	invoices *cache.LRUCache[[]core.Invoice]
	expenses *cache.LRUCache[[]core.Expense]
	settings *cache.LRUCache[core.Settings]
	logger   *applog.Logger

	mu     sync.Mutex
	invGen uint64
	expGen uint64
	setGen uint64
}

var (
	_ ports.Store             = (*CachedStore)(nil)
	_ ports.InvoiceBatchSaver = (*CachedStore)(nil)
	_ ports.Pinger            = (*CachedStore)(nil)
)

// NewCachedStore wraps next. When manager is non-nil the snapshot caches are
// registered for periodic expiry sweeps.
func NewCachedStore(next ports.Store, ttl time.Duration, manager *cache.Manager, logger *applog.Logger) *CachedStore {
	if logger == nil {
		logger = applog.Discard()
	}
	s := &CachedStore{
		next:     next,
		invoices: cache.NewLRUCache[[]core.Invoice](1, ttl),
		expenses: cache.NewLRUCache[[]core.Expense](1, ttl),
		settings: cache.NewLRUCache[core.Settings](1, ttl),
		logger:   logger.WithComponent(applog.ComponentCache),
	}
	if manager != nil {
		manager.Register(s.invoices)
		manager.Register(s.expenses)
		manager.Register(s.settings)
	}
	return s
}

// Unwrap returns the decorated store.
func (s *CachedStore) Unwrap() ports.Store { return s.next }

func (s *CachedStore) generation(gen *uint64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *gen
}

// storeIfCurrent runs set only when gen still equals seen.
func (s *CachedStore) storeIfCurrent(gen *uint64, seen uint64, set func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if *gen != seen {
		return false
	}
	set()
	return true
}

// invalidate bumps gen and drops the snapshot under the same lock.
func (s *CachedStore) invalidate(gen *uint64, drop func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*gen++
	drop()
}

func (s *CachedStore) dropInvoices() {
	s.invalidate(&s.invGen, func() { s.invoices.Delete(ports.CollectionInvoices) })
}

func (s *CachedStore) dropExpenses() {
	s.invalidate(&s.expGen, func() { s.expenses.Delete(ports.CollectionExpenses) })
}

func (s *CachedStore) dropSettings() {
	s.invalidate(&s.setGen, func() { s.settings.Delete(ports.CollectionSettings) })
}

func (s *CachedStore) ListInvoices(ctx context.Context) ([]core.Invoice, error) {
	if list, ok := s.invoices.Get(ports.CollectionInvoices); ok {
		return clone(list), nil
	}
	seen := s.generation(&s.invGen)
	list, err := s.next.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}
	if s.storeIfCurrent(&s.invGen, seen, func() { s.invoices.Set(ports.CollectionInvoices, clone(list)) }) {
		s.logger.DebugContext(ctx, "Cached invoice snapshot", applog.FieldRows, len(list))
	}
	return list, nil
}

func (s *CachedStore) GetInvoice(ctx context.Context, id string) (core.Invoice, error) {
	return s.next.GetInvoice(ctx, id)
}

func (s *CachedStore) SaveInvoice(ctx context.Context, inv core.Invoice) error {
	defer s.dropInvoices()
	return s.next.SaveInvoice(ctx, inv)
}

// SaveInvoices uses the wrapped store's batch save when it has one.
func (s *CachedStore) SaveInvoices(ctx context.Context, invoices []core.Invoice) error {
	defer s.dropInvoices()
	if batch, ok := s.next.(ports.InvoiceBatchSaver); ok {
		return batch.SaveInvoices(ctx, invoices)
	}
	for _, inv := range invoices {
		if err := s.next.SaveInvoice(ctx, inv); err != nil {
			return err
		}
	}
	return nil
}

func (s *CachedStore) DeleteInvoice(ctx context.Context, id string) error {
	defer s.dropInvoices()
	return s.next.DeleteInvoice(ctx, id)
}

func (s *CachedStore) LastInvoiceNo(ctx context.Context) (string, error) {
	return s.next.LastInvoiceNo(ctx)
}

func (s *CachedStore) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	if list, ok := s.expenses.Get(ports.CollectionExpenses); ok {
		return clone(list), nil
	}
	seen := s.generation(&s.expGen)
	list, err := s.next.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}
	if s.storeIfCurrent(&s.expGen, seen, func() { s.expenses.Set(ports.CollectionExpenses, clone(list)) }) {
		s.logger.DebugContext(ctx, "Cached expense snapshot", applog.FieldRows, len(list))
	}
	return list, nil
}

func (s *CachedStore) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	return s.next.GetExpense(ctx, id)
}

func (s *CachedStore) SaveExpense(ctx context.Context, e core.Expense) error {
	defer s.dropExpenses()
	return s.next.SaveExpense(ctx, e)
}

func (s *CachedStore) DeleteExpense(ctx context.Context, id string) error {
	defer s.dropExpenses()
	return s.next.DeleteExpense(ctx, id)
}

func (s *CachedStore) GetSettings(ctx context.Context) (core.Settings, error) {
	if settings, ok := s.settings.Get(ports.CollectionSettings); ok {
		return settings, nil
	}
	seen := s.generation(&s.setGen)
	settings, err := s.next.GetSettings(ctx)
	if err != nil {
		return core.Settings{}, err
	}
	s.storeIfCurrent(&s.setGen, seen, func() { s.settings.Set(ports.CollectionSettings, settings) })
	return settings, nil
}

func (s *CachedStore) SaveSettings(ctx context.Context, settings core.Settings) error {
	defer s.dropSettings()
	return s.next.SaveSettings(ctx, settings)
}

// Ping forwards to the wrapped store; stores without a check are always up.
func (s *CachedStore) Ping(ctx context.Context) error {
	if p, ok := s.next.(ports.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Invalidate drops every snapshot.
func (s *CachedStore) Invalidate() {
	s.dropInvoices()
	s.dropExpenses()
	s.dropSettings()
}

// clone copies a snapshot so callers may sort or filter it in place.
func clone[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
