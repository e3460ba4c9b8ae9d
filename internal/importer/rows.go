// Package importer turns spreadsheet rows into manifest entries and writes
// per-trip roster workbooks.
package importer

import (
	"strconv"
	"strings"

	"tripdesk/internal/core"
)

// Column order shared by pasted text and uploaded workbooks.
const (
	colDestination = iota
	colTripDate
	colPacket
	colFullName
	colNickname
	colGender
	colWhatsApp
	colEmail
	colDomicile
	colAge
	colExperience
	colMedicalHistory
	colAllergies
	colGearRental

	columnCount
)

// rowToInvoice maps one row of cells. Missing trailing cells are blank;
// blank packet and gender take the booking-form defaults, and an
// unparseable age becomes 0.
func rowToInvoice(cells []string) core.Invoice {
	get := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}
	age, err := strconv.Atoi(get(colAge))
	if err != nil || age < 0 {
		age = 0
	}
	inv := core.Invoice{
		Destination:    get(colDestination),
		TripDate:       get(colTripDate),
		Packet:         get(colPacket),
		FullName:       get(colFullName),
		Nickname:       get(colNickname),
		Gender:         get(colGender),
		WhatsApp:       get(colWhatsApp),
		Email:          get(colEmail),
		Domicile:       get(colDomicile),
		Age:            age,
		Experience:     get(colExperience),
		MedicalHistory: get(colMedicalHistory),
		Allergies:      get(colAllergies),
		GearRental:     get(colGearRental),
		Status:         core.StatusUnpaid,
	}
	if inv.Packet == "" {
		inv.Packet = core.Packets[0]
	}
	if inv.Gender == "" {
		inv.Gender = core.DefaultGender
	}
	return inv
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// isHeader reports whether a workbook row is the column header.
func isHeader(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	first := strings.TrimSpace(cells[0])
	return strings.EqualFold(first, "Gunung") || strings.EqualFold(first, "Destination")
}
