package importer

import (
	"errors"
	"strings"

	"tripdesk/internal/core"
)

// ErrNoRows is returned when an import source holds no participant rows.
var ErrNoRows = errors.New("no rows to import")

// ErrInvalidWorkbook is returned for uploads excelize cannot open.
var ErrInvalidWorkbook = errors.New("unreadable workbook")

// ParsePaste reads tab-separated rows copied from a spreadsheet, one
// participant per line. Blank lines are skipped.
func ParsePaste(text string) ([]core.Invoice, error) {
	var out []core.Invoice
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		cells := strings.Split(strings.TrimRight(line, "\r"), "\t")
		if blank(cells) {
			continue
		}
		out = append(out, rowToInvoice(cells))
	}
	if len(out) == 0 {
		return nil, ErrNoRows
	}
	return out, nil
}
