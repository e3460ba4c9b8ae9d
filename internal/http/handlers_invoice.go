package http

import (
	"bytes"
	"fmt"
	"net/http"
	"sync/atomic"

	"tripdesk/internal/core"
	"tripdesk/internal/importer"
	applog "tripdesk/internal/log"
)

type invoicesView struct {
	pageMeta
	Invoices   []core.Invoice
	Filter     core.InvoiceFilter
	Months     []string
	Statuses   []core.InvoiceStatus
	Packets    []string
	NextNumber string
}

// handleInvoicesPage renders the manifest. htmx filter requests get only
// the table.
func (s *Server) handleInvoicesPage(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r.URL.Query())
	invoices, err := s.manifest.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err, applog.OpList)
		return
	}
	view := invoicesView{
		pageMeta: pageMeta{Title: "Manifest", Active: "invoices"},
		Invoices: invoices,
		Filter:   filter,
		Statuses: core.Statuses,
		Packets:  core.Packets,
	}
	if isHTMX(r) {
		s.render(w, r, "invoice_table.html", view)
		return
	}
	if view.Months, err = s.manifest.Months(r.Context()); err != nil {
		s.writeError(w, r, err, applog.OpList)
		return
	}
	if view.NextNumber, err = s.manifest.NextNumber(r.Context()); err != nil {
		s.writeError(w, r, err, applog.OpList)
		return
	}
	s.render(w, r, "invoices.html", view)
}

func (s *Server) handleInvoicesJSON(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.manifest.List(r.Context(), filterFromQuery(r.URL.Query()))
	if err != nil {
		s.writeError(w, r, err, applog.OpList)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.manifest.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err, applog.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(w); err != nil {
		s.badRequest(w, r, err)
		return
	}
	inv, err := invoiceFromRequest(p)
	if err != nil {
		s.writeError(w, r, err, applog.OpCreate)
		return
	}
	saved, err := s.manifest.Create(r.Context(), inv)
	if err != nil {
		s.writeError(w, r, err, applog.OpCreate)
		return
	}
	atomic.AddInt64(&s.metrics.invoicesCreated, 1)

	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, saved)
		return
	}
	SuccessResponse(fmt.Sprintf("Invoice %s untuk %s tersimpan", saved.InvoiceNo, saved.FullName)).
		Status(http.StatusCreated).
		TriggerInvoiceSaved(saved.ID, saved.InvoiceNo).
		Write(w)
}

// handleUpdateInvoice replaces the invoice's editable fields. A form
// without a status field keeps the current status.
func (s *Server) handleUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	current, err := s.manifest.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, applog.OpUpdate)
		return
	}
	p := NewRequestBodyParser(r)
	if err := p.Parse(w); err != nil {
		s.badRequest(w, r, err)
		return
	}
	inv, err := invoiceFromRequest(p)
	if err != nil {
		s.writeError(w, r, err, applog.OpUpdate)
		return
	}
	if !p.Has("status") {
		inv.Status = current.Status
	}
	saved, err := s.manifest.Update(r.Context(), id, inv)
	if err != nil {
		s.writeError(w, r, err, applog.OpUpdate)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, saved)
		return
	}
	SuccessResponse(fmt.Sprintf("Invoice %s diperbarui", saved.InvoiceNo)).
		TriggerInvoiceSaved(saved.ID, saved.InvoiceNo).
		Write(w)
}

// handleSetInvoiceStatus answers with the re-rendered table row.
func (s *Server) handleSetInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(w); err != nil {
		s.badRequest(w, r, err)
		return
	}
	status, err := core.ParseStatus(p.Get("status"))
	if err != nil {
		s.writeError(w, r, err, applog.OpUpdate)
		return
	}
	saved, err := s.manifest.SetStatus(r.Context(), r.PathValue("id"), status)
	if err != nil {
		s.writeError(w, r, err, applog.OpUpdate)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, saved)
		return
	}
	var row bytes.Buffer
	if err := s.templates.ExecuteTemplate(&row, "invoice_row", saved); err != nil {
		s.writeError(w, r, fmt.Errorf("render invoice row: %w", err), applog.OpRender)
		return
	}
	NewHTMXResponse().
		BodyHTML(row.String()).
		TriggerInvoiceSaved(saved.ID, saved.InvoiceNo).
		TriggerSuccessNotification(fmt.Sprintf("%s: %s", saved.InvoiceNo, saved.Status.Label())).
		Write(w)
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.manifest.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, applog.OpDelete)
		return
	}
	if wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	NewHTMXResponse().
		TriggerInvoiceDeleted(id).
		TriggerSuccessNotification("Invoice dihapus").
		Write(w)
}

// handleWhatsAppReminder redirects to a wa.me chat prefilled with the
// reminder for the invoice's payment status.
func (s *Server) handleWhatsAppReminder(w http.ResponseWriter, r *http.Request) {
	inv, err := s.manifest.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err, applog.OpRead)
		return
	}
	settings, err := s.settings.Get(r.Context())
	if err != nil {
		s.writeError(w, r, err, applog.OpRead)
		return
	}
	if core.NormalizePhone(inv.WhatsApp) == "" {
		s.writeError(w, r, fmt.Errorf("%s: %w", inv.InvoiceNo, core.ErrInvalidPhone), applog.OpRead)
		return
	}
	http.Redirect(w, r, core.WhatsAppLink(inv, settings), http.StatusSeeOther)
}

// handleImportInvoices accepts an xlsx upload in "file" or pasted rows in
// "data". The import is all-or-nothing.
func (s *Server) handleImportInvoices(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(w); err != nil {
		s.badRequest(w, r, err)
		return
	}

	var (
		rows []core.Invoice
		err  error
	)
	workbook, _, err := p.File("file")
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	if len(workbook) > 0 {
		rows, err = importer.ReadWorkbook(bytes.NewReader(workbook))
	} else {
		rows, err = importer.ParsePaste(p.GetRaw("data"))
	}
	if err != nil {
		s.writeError(w, r, err, applog.OpImport)
		return
	}

	imported, err := s.manifest.Import(r.Context(), rows)
	if err != nil {
		s.writeError(w, r, err, applog.OpImport)
		return
	}
	atomic.AddInt64(&s.metrics.invoicesImported, int64(len(imported)))

	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, imported)
		return
	}
	SuccessResponse(fmt.Sprintf("%d peserta berhasil diimpor", len(imported))).
		Status(http.StatusCreated).
		TriggerInvoicesImported(len(imported)).
		Write(w)
}
