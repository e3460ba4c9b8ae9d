package core

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultInvoicePrefix is the brand prefix of invoice numbers.
const DefaultInvoicePrefix = "VRT"

// NextInvoiceNo returns the number following last for the given year.
// Numbers look like VRT-2026-0042. When last belongs to another year or
// prefix, or cannot be parsed, the sequence restarts at 0001.
func NextInvoiceNo(prefix, last string, year int) string {
	return FormatInvoiceNo(prefix, year, nextSequence(prefix, last, year))
}

// InvoiceNumbers returns n consecutive numbers following last.
func InvoiceNumbers(prefix, last string, year, n int) []string {
	seq := nextSequence(prefix, last, year)
	out := make([]string, n)
	for i := range out {
		out[i] = FormatInvoiceNo(prefix, year, seq+i)
	}
	return out
}

// FormatInvoiceNo renders prefix, year and sequence number.
func FormatInvoiceNo(prefix string, year, seq int) string {
	if prefix == "" {
		prefix = DefaultInvoicePrefix
	}
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}

func nextSequence(prefix, last string, year int) int {
	if prefix == "" {
		prefix = DefaultInvoicePrefix
	}
	head := fmt.Sprintf("%s-%d-", prefix, year)
	if !strings.HasPrefix(last, head) {
		return 1
	}
	seq, err := strconv.Atoi(strings.TrimPrefix(last, head))
	if err != nil || seq < 0 {
		return 1
	}
	return seq + 1
}
