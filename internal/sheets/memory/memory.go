// Package memory is an in-process sheets.Mirror used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"sync"

	"tripdesk/internal/sheets"
)

type Mirror struct {
	mu     sync.Mutex
	sheets map[string][][]any
	writes map[string]int
	err    error
}

var _ sheets.Mirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{
		sheets: make(map[string][][]any),
		writes: make(map[string]int),
	}
}

func (m *Mirror) ReplaceRows(ctx context.Context, sheet string, rows [][]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := make([][]any, len(rows))
	for i, r := range rows {
		cp[i] = append([]any(nil), r...)
	}
	m.sheets[sheet] = cp
	m.writes[sheet]++
	return nil
}

// Rows returns the last rows written to sheet.
func (m *Mirror) Rows(sheet string) [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sheets[sheet]
}

// Writes counts ReplaceRows calls for sheet.
func (m *Mirror) Writes(sheet string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[sheet]
}

// FailWith makes subsequent writes return err; nil restores normal writes.
func (m *Mirror) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
