package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripdesk/internal/core"
)

func TestInvoiceRows(t *testing.T) {
	rows := InvoiceRows([]core.Invoice{{
		ID: "a", InvoiceNo: "VRT-2026-0001", Status: core.StatusDepositPaid,
		FullName: "Budi", Age: 27, Subtotal: 3500000, Discount: 200000, Total: 3300000,
	}})
	require.Len(t, rows, 2)
	assert.Equal(t, InvoiceHeader, rows[0])
	require.Len(t, rows[1], len(InvoiceHeader))
	assert.Equal(t, "DEPOSIT_PAID", rows[1][3])
	assert.Equal(t, 27, rows[1][7])
	assert.Equal(t, int64(3300000), rows[1][20])
}

func TestExpenseRows(t *testing.T) {
	rows := ExpenseRows(nil)
	assert.Equal(t, [][]any{ExpenseHeader}, rows)

	rows = ExpenseRows([]core.Expense{{ID: "1", Date: "2026-05-10", Title: "Porter", Category: core.CategoryGuideFee, Amount: 500000}})
	assert.Equal(t, []any{"1", "2026-05-10", "Porter", core.CategoryGuideFee, int64(500000), ""}, rows[1])
}
