package analytics

import (
	"strconv"
	"strings"
	"time"

	"tripdesk/internal/core"
)

// monthIndex maps a lower-cased month name from any supported locale to its
// month. Built once from the core locale tables.
var monthIndex = buildMonthIndex(core.MonthNames)

func buildMonthIndex(tables map[string][12]string) map[string]time.Month {
	idx := make(map[string]time.Month, len(tables)*12)
	for _, names := range tables {
		for i, name := range names {
			idx[strings.ToLower(name)] = time.Month(i + 1)
		}
	}
	return idx
}

// LookupMonth resolves a month name in any supported locale.
func LookupMonth(name string) (time.Month, bool) {
	m, ok := monthIndex[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// genericLayouts are tried, in order, when the localized form does not match.
var genericLayouts = []string{
	time.RFC3339,
	time.DateTime,
	"2006-01-02T15:04:05",
	time.DateOnly,
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	time.RFC1123,
}

// ParseInvoiceDate parses an invoice date such as "15 Mei 2026" or
// "15 May 2026". The fallback order is localized names, then the generic
// layouts, then now. Dates without a zone are read in now's location.
func ParseInvoiceDate(s string, now time.Time) time.Time {
	if t, ok := parseLocalized(s, now.Location()); ok {
		return t
	}
	if t, ok := parseGeneric(s, now.Location()); ok {
		return t
	}
	return now
}

// ParseLedgerDate parses an ISO calendar date, falling back like
// ParseInvoiceDate when the value is not ISO.
func ParseLedgerDate(s string, now time.Time) time.Time {
	if t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), now.Location()); err == nil {
		return t
	}
	return ParseInvoiceDate(s, now)
}

func parseLocalized(s string, loc *time.Location) (time.Time, bool) {
	parts := strings.Fields(s)
	if len(parts) < 3 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	month, ok := LookupMonth(parts[1])
	if !ok {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc), true
}

func parseGeneric(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range genericLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
