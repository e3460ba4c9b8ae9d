package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tripdesk/internal/amqp"
	"tripdesk/internal/core"
	applog "tripdesk/internal/log"
	"tripdesk/internal/ports"
)

// LedgerService manages operational expenses.
type LedgerService struct {
	store ports.ExpenseStore
	notifier
	logger *applog.Logger
	now    func() time.Time
}

// CategoryTotal is the summed amount of one expense category.
type CategoryTotal struct {
	Category string      `json:"category"`
	Amount   core.Rupiah `json:"amount"`
}

func NewLedgerService(store ports.ExpenseStore, publisher Publisher, logger *applog.Logger) *LedgerService {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentLedger)
	return &LedgerService{
		store:    store,
		notifier: notifier{publisher: publisher, logger: logger},
		logger:   logger,
		now:      time.Now,
	}
}

// List returns every expense, latest date first.
func (s *LedgerService) List(ctx context.Context) ([]core.Expense, error) {
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

func (s *LedgerService) Get(ctx context.Context, id string) (core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

func (s *LedgerService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = uuid.NewString()
	e.CreatedAt = s.now().UTC()
	normalize(&e)
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if err := s.store.SaveExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.logger.InfoContext(ctx, "Expense recorded", applog.NewFields().
		WithOperation(applog.OpCreate).
		WithExpense(e.Category, int64(e.Amount)).
		ToSlice()...)
	s.notify(ctx, ports.CollectionExpenses, e.ID, amqp.OpUpsert)
	return e, nil
}

// Update replaces an existing expense, keeping its identity and creation
// time.
func (s *LedgerService) Update(ctx context.Context, id string, e core.Expense) (core.Expense, error) {
	current, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	e.ID = current.ID
	e.CreatedAt = current.CreatedAt
	normalize(&e)
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if err := s.store.SaveExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.logger.InfoContext(ctx, "Expense updated", applog.NewFields().
		WithOperation(applog.OpUpdate).
		WithExpense(e.Category, int64(e.Amount)).
		ToSlice()...)
	s.notify(ctx, ports.CollectionExpenses, e.ID, amqp.OpUpsert)
	return e, nil
}

func (s *LedgerService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Expense deleted",
		applog.FieldOperation, applog.OpDelete, applog.FieldRecordID, id)
	s.notify(ctx, ports.CollectionExpenses, id, amqp.OpDelete)
	return nil
}

// Totals sums expenses per category in display order, skipping empty
// categories, and returns the grand total.
func Totals(expenses []core.Expense) ([]CategoryTotal, core.Rupiah) {
	sums := make(map[string]core.Rupiah, len(core.ExpenseCategories))
	var total core.Rupiah
	for _, e := range expenses {
		sums[e.Category] += e.Amount
		total += e.Amount
	}
	out := make([]CategoryTotal, 0, len(sums))
	for _, c := range core.ExpenseCategories {
		if amt, ok := sums[c]; ok {
			out = append(out, CategoryTotal{Category: c, Amount: amt})
		}
	}
	return out, total
}

func normalize(e *core.Expense) {
	e.Title = strings.TrimSpace(e.Title)
	e.Notes = strings.TrimSpace(e.Notes)
	e.Date = strings.TrimSpace(e.Date)
	if e.Category == "" {
		e.Category = core.CategoryMiscellany
	}
}
