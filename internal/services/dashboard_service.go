package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"tripdesk/internal/analytics"
	"tripdesk/internal/core"
	"tripdesk/internal/ports"
)

// DashboardService loads both collections and runs the period aggregator.
type DashboardService struct {
	invoices ports.InvoiceStore
	expenses ports.ExpenseStore
	now      func() time.Time
}

func NewDashboardService(invoices ports.InvoiceStore, expenses ports.ExpenseStore) *DashboardService {
	return &DashboardService{invoices: invoices, expenses: expenses, now: time.Now}
}

// Summary aggregates the dashboard for rangeName. Unknown names fall back
// to the default range.
func (s *DashboardService) Summary(ctx context.Context, rangeName string) (analytics.Result, error) {
	var (
		invoices []core.Invoice
		expenses []core.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		invoices, err = s.invoices.ListInvoices(gctx)
		if err != nil {
			return fmt.Errorf("list invoices: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		expenses, err = s.expenses.ListExpenses(gctx)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return analytics.Result{}, err
	}
	return analytics.Aggregate(invoices, expenses, analytics.Range(rangeName), s.now()), nil
}
