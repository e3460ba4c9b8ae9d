// Package sheets declares the spreadsheet mirror port and the row layout of
// each mirrored collection.
package sheets

import (
	"context"

	"tripdesk/internal/core"
)

// Mirror replaces the full contents of a named sheet.
type Mirror interface {
	ReplaceRows(ctx context.Context, sheet string, rows [][]any) error
}

var (
	InvoiceHeader = []any{
		"ID", "No. Invoice", "Tanggal Invoice", "Status",
		"Nama Lengkap", "Panggilan", "Gender", "Usia", "Domisili", "WhatsApp", "Email",
		"Destinasi", "Tanggal Trip", "Paket", "Pengalaman",
		"Riwayat Medis", "Alergi", "Sewa Alat",
		"Subtotal", "Diskon", "Total",
	}

	ExpenseHeader = []any{"ID", "Tanggal", "Judul", "Kategori", "Jumlah", "Catatan"}
)

// InvoiceRows renders the header plus one row per invoice. Money columns are
// plain integers so the sheet can sum them.
func InvoiceRows(invoices []core.Invoice) [][]any {
	rows := make([][]any, 0, len(invoices)+1)
	rows = append(rows, InvoiceHeader)
	for _, inv := range invoices {
		rows = append(rows, []any{
			inv.ID, inv.InvoiceNo, inv.InvoiceDate, string(inv.Status),
			inv.FullName, inv.Nickname, inv.Gender, inv.Age, inv.Domicile, inv.WhatsApp, inv.Email,
			inv.Destination, inv.TripDate, inv.Packet, inv.Experience,
			inv.MedicalHistory, inv.Allergies, inv.GearRental,
			int64(inv.Subtotal), int64(inv.Discount), int64(inv.Total),
		})
	}
	return rows
}

func ExpenseRows(expenses []core.Expense) [][]any {
	rows := make([][]any, 0, len(expenses)+1)
	rows = append(rows, ExpenseHeader)
	for _, e := range expenses {
		rows = append(rows, []any{e.ID, e.Date, e.Title, e.Category, int64(e.Amount), e.Notes})
	}
	return rows
}
