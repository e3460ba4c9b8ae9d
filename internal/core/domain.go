package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusUnpaid      InvoiceStatus = "UNPAID"
	StatusDepositPaid InvoiceStatus = "DEPOSIT_PAID"
	StatusFullyPaid   InvoiceStatus = "FULLY_PAID"
)

// Expense categories used by the ledger.
const (
	CategoryLogistics  = "Logistik"
	CategoryTransport  = "Transportasi"
	CategoryGuideFee   = "Fee Guide/Porter"
	CategoryEntryFee   = "Tiket Masuk"
	CategoryFirstAid   = "P3K"
	CategoryMarketing  = "Marketing"
	CategoryMiscellany = "Lainnya"
)

// DefaultGender is used when a participant row does not specify one.
const DefaultGender = "Laki-laki"

var (
	// ExpenseCategories is the fixed set of ledger categories, in display order.
	ExpenseCategories = []string{
		CategoryLogistics,
		CategoryTransport,
		CategoryGuideFee,
		CategoryEntryFee,
		CategoryFirstAid,
		CategoryMarketing,
		CategoryMiscellany,
	}

	// Packets are the trip packages offered to participants.
	Packets = []string{
		"Open Trip Reguler",
		"Private Trip VIP",
		"Private Trip Standard",
	}

	Statuses = []InvoiceStatus{StatusUnpaid, StatusDepositPaid, StatusFullyPaid}
)

type (
	InvoiceStatus string

	// Invoice is a booking manifest for one trip participant.
	Invoice struct {
		ID          string        `json:"id"`
		InvoiceNo   string        `json:"invoiceNo"`
		InvoiceDate string        `json:"invoiceDate"`
		Status      InvoiceStatus `json:"status"`

		FullName string `json:"fullName"`
		Nickname string `json:"nickname"`
		Gender   string `json:"gender"`
		Age      int    `json:"age"`
		Domicile string `json:"domicile"`
		WhatsApp string `json:"whatsapp"`
		Email    string `json:"email"`

		Destination string `json:"destination"`
		TripDate    string `json:"tripDate"`
		Packet      string `json:"packet"`
		Experience  string `json:"experience"`

		MedicalHistory string `json:"medicalHistory"`
		Allergies      string `json:"allergies"`
		GearRental     string `json:"gearRental"`

		Subtotal Rupiah `json:"subtotal"`
		Discount Rupiah `json:"discount"`
		Total    Rupiah `json:"total"`

		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// Expense is an operational cost entry in the ledger.
	Expense struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		Category  string    `json:"category"`
		Amount    Rupiah    `json:"amount"`
		Date      string    `json:"date"` // YYYY-MM-DD
		Notes     string    `json:"notes,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// Settings holds the operator branding printed on invoices and reminders.
	Settings struct {
		Logo             string `json:"logo,omitempty"`
		BankName         string `json:"bankName"`
		AccountNo        string `json:"accountNo"`
		AccountName      string `json:"accountName"`
		WhatsAppContact  string `json:"whatsappContact"`
		EmailContact     string `json:"emailContact"`
		InstagramContact string `json:"instagramContact"`
		FooterNote       string `json:"footerNote,omitempty"`
	}
)

var (
	ErrNotFound         = errors.New("not found")
	ErrEmptyName        = errors.New("empty participant name")
	ErrEmptyDestination = errors.New("empty destination")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidAge       = errors.New("invalid age")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyTitle       = errors.New("empty title")
	ErrTitleTooLong     = errors.New("title too long (max 200 characters)")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyBankDetails = errors.New("empty bank details")
	ErrInvalidPhone     = errors.New("missing or invalid WhatsApp number")
)

// DefaultSettings returns the branding used until the operator saves their own.
func DefaultSettings() Settings {
	return Settings{
		BankName:         "BCA / MANDIRI",
		AccountNo:        "0812-3456-7890",
		AccountName:      "VERTARA ADVENTURE",
		WhatsAppContact:  "0895-3638-98438",
		EmailContact:     "vertara.id@gmail.com",
		InstagramContact: "@vertara.id",
		FooterNote: "This invoice serves as a binding confirmation of your booking with **VERTARA.ID**. " +
			"By receiving this document, the participant confirms that all provided personal and medical data is accurate. " +
			"The participant agrees to adhere to all safety protocols, group regulations, and instructions provided by the lead mountain guides at all times. " +
			"Please note that payments are non-refundable unless specified otherwise in our standard cancellation policy.",
	}
}

// ParseStatus accepts the canonical tags and the short legacy ones (DP, PAID).
func ParseStatus(s string) (InvoiceStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(StatusUnpaid):
		return StatusUnpaid, nil
	case string(StatusDepositPaid), "DP":
		return StatusDepositPaid, nil
	case string(StatusFullyPaid), "PAID":
		return StatusFullyPaid, nil
	}
	return "", ErrInvalidStatus
}

func (s InvoiceStatus) Valid() bool {
	switch s {
	case StatusUnpaid, StatusDepositPaid, StatusFullyPaid:
		return true
	}
	return false
}

// Label is the Indonesian wording shown to operators and participants.
func (s InvoiceStatus) Label() string {
	switch s {
	case StatusDepositPaid:
		return "DP DITERIMA"
	case StatusFullyPaid:
		return "LUNAS"
	default:
		return "BELUM LUNAS"
	}
}

// DeriveTotal recomputes Total from Subtotal and Discount, clamped at zero.
func (inv *Invoice) DeriveTotal() {
	total := inv.Subtotal - inv.Discount
	if total < 0 {
		total = 0
	}
	inv.Total = total
}

// ApplyDefaults fills blank optional fields the way the booking form does.
func (inv *Invoice) ApplyDefaults(now time.Time) {
	if inv.Status == "" {
		inv.Status = StatusUnpaid
	}
	if strings.TrimSpace(inv.Packet) == "" {
		inv.Packet = Packets[0]
	}
	if strings.TrimSpace(inv.Gender) == "" {
		inv.Gender = DefaultGender
	}
	if strings.TrimSpace(inv.InvoiceDate) == "" {
		inv.InvoiceDate = FormatLongDate(now)
	}
}

func (inv Invoice) Validate() error {
	if strings.TrimSpace(inv.FullName) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(inv.Destination) == "" {
		return ErrEmptyDestination
	}
	if !inv.Status.Valid() {
		return ErrInvalidStatus
	}
	if inv.Age < 0 || inv.Age > 120 {
		return ErrInvalidAge
	}
	if inv.Subtotal < 0 || inv.Discount < 0 || inv.Total < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if len(e.Title) > 200 {
		return ErrTitleTooLong
	}
	if !IsExpenseCategory(e.Category) {
		return ErrInvalidCategory
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if _, err := time.Parse(time.DateOnly, e.Date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

func (s Settings) Validate() error {
	if strings.TrimSpace(s.BankName) == "" || strings.TrimSpace(s.AccountNo) == "" || strings.TrimSpace(s.AccountName) == "" {
		return ErrEmptyBankDetails
	}
	return nil
}

// IsExpenseCategory reports whether name is one of ExpenseCategories.
func IsExpenseCategory(name string) bool {
	for _, c := range ExpenseCategories {
		if c == name {
			return true
		}
	}
	return false
}

// IsValidationError reports whether err comes from a Validate method.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrEmptyName, ErrEmptyDestination, ErrInvalidStatus, ErrInvalidAge,
		ErrInvalidAmount, ErrEmptyTitle, ErrTitleTooLong, ErrInvalidCategory, ErrInvalidDate,
		ErrEmptyBankDetails, ErrInvalidPhone,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
