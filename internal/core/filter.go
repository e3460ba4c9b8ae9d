package core

import (
	"sort"
	"strings"
)

// InvoiceFilter narrows the manifest list. Empty fields match everything.
type InvoiceFilter struct {
	Query  string        // matched against name, invoice number and destination
	Status InvoiceStatus // exact status
	Month  string        // "Mei 2026", matched inside the invoice date
}

func (f InvoiceFilter) Match(inv Invoice) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(inv.FullName), q) &&
			!strings.Contains(strings.ToLower(inv.InvoiceNo), q) &&
			!strings.Contains(strings.ToLower(inv.Destination), q) {
			return false
		}
	}
	if f.Status != "" && inv.Status != f.Status {
		return false
	}
	if f.Month != "" && !strings.Contains(inv.InvoiceDate, f.Month) {
		return false
	}
	return true
}

// FilterInvoices returns the invoices matching f, preserving order.
func FilterInvoices(invoices []Invoice, f InvoiceFilter) []Invoice {
	out := make([]Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if f.Match(inv) {
			out = append(out, inv)
		}
	}
	return out
}

// AvailableMonths lists the distinct "Month Year" pairs found in invoice
// dates written as "day month year".
func AvailableMonths(invoices []Invoice) []string {
	seen := map[string]struct{}{}
	for _, inv := range invoices {
		parts := strings.Fields(inv.InvoiceDate)
		if len(parts) < 3 {
			continue
		}
		seen[parts[1]+" "+parts[2]] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
