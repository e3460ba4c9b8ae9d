package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"tripdesk/internal/core"
)

// ReadWorkbook reads participants from the first sheet of an xlsx file. A
// leading header row is skipped.
func ReadWorkbook(r io.Reader) ([]core.Invoice, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: no worksheet found", ErrInvalidWorkbook)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	var out []core.Invoice
	for i, cells := range rows {
		if blank(cells) || (i == 0 && isHeader(cells)) {
			continue
		}
		out = append(out, rowToInvoice(cells))
	}
	if len(out) == 0 {
		return nil, ErrNoRows
	}
	return out, nil
}

var rosterHeader = []any{
	"No", "Nama Lengkap", "Panggilan", "Gender", "Usia", "WhatsApp",
	"Status", "Paket", "Riwayat Medis", "Alergi", "Sewa Alat",
}

// WriteRoster writes one sheet per trip group listing its participants.
func WriteRoster(w io.Writer, groups []core.TripGroup) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if len(groups) == 0 {
		groups = []core.TripGroup{{}}
	}
	first := f.GetSheetName(0)
	used := map[string]bool{}
	for i, g := range groups {
		name := sheetName(g, used)
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %s: %w", name, err)
		}
		if err := fillRoster(f, name, g.Participants, bold); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func fillRoster(f *excelize.File, sheet string, participants []core.Invoice, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &rosterHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(rosterHeader), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	for i, p := range participants {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			i + 1, p.FullName, p.Nickname, p.Gender, p.Age, p.WhatsApp,
			p.Status.Label(), p.Packet, p.MedicalHistory, p.Allergies, p.GearRental,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write participant %d: %w", i+1, err)
		}
	}
	return f.SetColWidth(sheet, "B", "K", 20)
}

// sheetName builds a unique worksheet name from the group, within the
// 31-character limit and without the characters xlsx forbids.
func sheetName(g core.TripGroup, used map[string]bool) string {
	base := strings.TrimSpace(g.Destination)
	if g.TripDate != "" {
		base += " " + strings.TrimSpace(g.TripDate)
	}
	base = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, base)
	base = strings.Trim(strings.TrimSpace(base), "'")
	if base == "" {
		base = "Roster"
	}
	base = truncate(base, 31)

	name := base
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncate(base, 31-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max]))
}
