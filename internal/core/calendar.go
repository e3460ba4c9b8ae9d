package core

import (
	"strconv"
	"time"
)

// Locale tags for month name tables.
const (
	LocaleID = "id"
	LocaleEN = "en"
)

// MonthNames holds full month names per locale, January first.
var MonthNames = map[string][12]string{
	LocaleID: {"Januari", "Februari", "Maret", "April", "Mei", "Juni", "Juli", "Agustus", "September", "Oktober", "November", "Desember"},
	LocaleEN: {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
}

// ShortMonthNames holds abbreviated month names per locale.
var ShortMonthNames = map[string][12]string{
	LocaleID: {"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"},
	LocaleEN: {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
}

// FormatLongDate renders t as "15 Mei 2026".
func FormatLongDate(t time.Time) string {
	return strconv.Itoa(t.Day()) + " " + MonthNames[LocaleID][t.Month()-1] + " " + strconv.Itoa(t.Year())
}

// FormatDayMonth renders t as "15 Mei".
func FormatDayMonth(t time.Time) string {
	return strconv.Itoa(t.Day()) + " " + ShortMonthNames[LocaleID][t.Month()-1]
}

// FormatMonthYear renders t as "Mei 26".
func FormatMonthYear(t time.Time) string {
	yy := t.Year() % 100
	if yy < 0 {
		yy = -yy
	}
	s := strconv.Itoa(yy)
	if yy < 10 {
		s = "0" + s
	}
	return ShortMonthNames[LocaleID][t.Month()-1] + " " + s
}
