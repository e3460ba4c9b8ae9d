// Package core provides money parsing and handling utilities.
//
// Rupiah amounts are whole numbers: the currency has no minor unit in use,
// so every amount is stored as an int64 count of rupiah.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Rupiah is an amount of Indonesian rupiah.
type Rupiah int64

// ParseRupiah converts user input to a non-negative amount.
//
// It accepts an optional "Rp" prefix and dot, comma or space thousand
// separators. A trailing ",00" or ".00" fraction is tolerated and dropped;
// any other fraction is rejected.
//
// Examples:
//
//	ParseRupiah("3300000")       -> 3300000, nil
//	ParseRupiah("Rp 3.300.000")  -> 3300000, nil
//	ParseRupiah("3,300,000.00")  -> 3300000, nil
//	ParseRupiah("-5")            -> 0, ErrInvalidAmount
func ParseRupiah(s string) (Rupiah, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.EqualFold(s[:2], "rp") {
		s = strings.TrimSpace(s[2:])
	}
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	// Drop a zero fraction written with either separator.
	for _, suffix := range []string{",00", ".00", ",0", ".0"} {
		if strings.HasSuffix(s, suffix) && strings.Count(s, suffix[:1]) == 1 && len(s) > len(suffix) {
			s = strings.TrimSuffix(s, suffix)
			break
		}
	}
	var digits strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits.WriteRune(r)
		case r == '.' || r == ',' || r == ' ':
		default:
			return 0, ErrInvalidAmount
		}
	}
	if digits.Len() == 0 {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return Rupiah(v), nil
}

// String formats the amount the way id-ID locales do, e.g. "Rp 3.300.000".
func (r Rupiah) String() string {
	return "Rp " + r.Grouped()
}

// Grouped returns the amount with dot thousand separators and no currency sign.
func (r Rupiah) Grouped() string {
	neg := r < 0
	v := int64(r)
	if neg {
		v = -v
	}
	raw := strconv.FormatInt(v, 10)
	var b strings.Builder
	lead := len(raw) % 3
	if lead > 0 {
		b.WriteString(raw[:lead])
	}
	for i := lead; i < len(raw); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(raw[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
