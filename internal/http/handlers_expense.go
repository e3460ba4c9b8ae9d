package http

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"tripdesk/internal/core"
	applog "tripdesk/internal/log"
	"tripdesk/internal/services"
)

type expensesView struct {
	pageMeta
	Expenses   []core.Expense
	Totals     []services.CategoryTotal
	Total      core.Rupiah
	Categories []string
	Today      string
}

// ledgerJSON is the /api/expenses payload.
type ledgerJSON struct {
	Expenses   []core.Expense           `json:"expenses"`
	ByCategory []services.CategoryTotal `json:"byCategory"`
	Total      core.Rupiah              `json:"total"`
}

func (s *Server) ledgerView(r *http.Request) (expensesView, error) {
	expenses, err := s.ledger.List(r.Context())
	if err != nil {
		return expensesView{}, err
	}
	totals, total := services.Totals(expenses)
	return expensesView{
		pageMeta:   pageMeta{Title: "Pengeluaran", Active: "expenses"},
		Expenses:   expenses,
		Totals:     totals,
		Total:      total,
		Categories: core.ExpenseCategories,
		Today:      s.now().Format(time.DateOnly),
	}, nil
}

// handleExpensesPage renders the ledger; htmx refreshes get the table only.
func (s *Server) handleExpensesPage(w http.ResponseWriter, r *http.Request) {
	view, err := s.ledgerView(r)
	if err != nil {
		s.writeError(w, r, err, applog.OpList)
		return
	}
	if isHTMX(r) {
		s.render(w, r, "expense_table.html", view)
		return
	}
	s.render(w, r, "expenses.html", view)
}

func (s *Server) handleExpensesJSON(w http.ResponseWriter, r *http.Request) {
	view, err := s.ledgerView(r)
	if err != nil {
		s.writeError(w, r, err, applog.OpList)
		return
	}
	writeJSON(w, http.StatusOK, ledgerJSON{Expenses: view.Expenses, ByCategory: view.Totals, Total: view.Total})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(w); err != nil {
		s.badRequest(w, r, err)
		return
	}
	e, err := expenseFromRequest(p, s.now())
	if err != nil {
		s.writeError(w, r, err, applog.OpCreate)
		return
	}
	saved, err := s.ledger.Create(r.Context(), e)
	if err != nil {
		s.writeError(w, r, err, applog.OpCreate)
		return
	}
	atomic.AddInt64(&s.metrics.expensesCreated, 1)

	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, saved)
		return
	}
	SuccessResponse(fmt.Sprintf("Pengeluaran %s (%s) tersimpan", saved.Title, saved.Amount)).
		Status(http.StatusCreated).
		TriggerExpenseSaved(saved.ID, saved.Category).
		Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(w); err != nil {
		s.badRequest(w, r, err)
		return
	}
	e, err := expenseFromRequest(p, s.now())
	if err != nil {
		s.writeError(w, r, err, applog.OpUpdate)
		return
	}
	saved, err := s.ledger.Update(r.Context(), r.PathValue("id"), e)
	if err != nil {
		s.writeError(w, r, err, applog.OpUpdate)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, saved)
		return
	}
	SuccessResponse(fmt.Sprintf("Pengeluaran %s diperbarui", saved.Title)).
		TriggerExpenseSaved(saved.ID, saved.Category).
		Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.ledger.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, applog.OpDelete)
		return
	}
	if wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	NewHTMXResponse().
		TriggerExpenseDeleted(id).
		TriggerSuccessNotification("Pengeluaran dihapus").
		Write(w)
}
