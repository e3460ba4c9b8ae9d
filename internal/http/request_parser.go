// Package http serves the operator web UI and its JSON endpoints.
//
// This file turns request bodies into domain records. Bodies may be
// JSON, urlencoded forms (what HTMX sends) or multipart forms with uploads.

package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tripdesk/internal/core"
)

const (
	maxBodyBytes   = 1 << 20
	maxUploadBytes = 10 << 20
	maxLogoBytes   = 512 << 10
)

// ErrLogoTooLarge is returned for logo uploads above maxLogoBytes.
var ErrLogoTooLarge = errors.New("logo too large (max 512 KB)")

// RequestBodyParser reads a request body once and exposes its fields by name.
type RequestBodyParser struct {
	r           *http.Request
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return &RequestBodyParser{r: r, contentType: mediaType}
}

// Parse decodes the body according to its content type. JSON is also
// detected by a leading brace when no content type is sent.
func (p *RequestBodyParser) Parse(w http.ResponseWriter) error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.contentType == "multipart/form-data" {
		p.r.Body = http.MaxBytesReader(w, p.r.Body, maxUploadBytes)
		if p.err = p.r.ParseMultipartForm(maxUploadBytes); p.err != nil {
			return p.err
		}
		p.formData = url.Values(p.r.MultipartForm.Value)
		return nil
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, p.r.Body, maxBodyBytes))
	if err != nil {
		p.err = err
		return err
	}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}
	if p.contentType == "application/json" || trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		p.err = json.Unmarshal(body, &p.jsonData)
		return p.err
	}
	p.formData, p.err = url.ParseQuery(string(body))
	return p.err
}

// Has reports whether key was sent at all, even empty.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	_, ok := p.formData[key]
	return ok
}

// Get returns the trimmed, sanitized value of key or "".
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// GetText is Get for multi-line fields: line breaks are kept.
func (p *RequestBodyParser) GetText(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeText(stringValue(val))
		}
		return ""
	}
	return sanitizeText(p.formData.Get(key))
}

// GetRaw returns the unsanitized value of key with CRLF normalized, for
// pasted spreadsheet rows where leading tabs matter.
func (p *RequestBodyParser) GetRaw(key string) string {
	if p.jsonData != nil {
		return strings.ReplaceAll(stringValue(p.jsonData[key]), "\r\n", "\n")
	}
	return strings.ReplaceAll(p.formData.Get(key), "\r\n", "\n")
}

// File returns the content of an uploaded file, or nil when none was sent.
func (p *RequestBodyParser) File(key string) ([]byte, string, error) {
	if p.r.MultipartForm == nil {
		return nil, "", nil
	}
	f, header, err := p.r.FormFile(key)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, header.Header.Get("Content-Type"), nil
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput drops control characters and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, s))
}

func sanitizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' {
			return -1
		}
		return r
	}, s))
}

// parseOptionalRupiah treats a blank amount as zero.
func parseOptionalRupiah(s string) (core.Rupiah, error) {
	if s == "" {
		return 0, nil
	}
	return core.ParseRupiah(s)
}

// invoiceFromRequest reads the booking form. Blank fields stay blank so the
// service can apply its defaults.
func invoiceFromRequest(p *RequestBodyParser) (core.Invoice, error) {
	inv := core.Invoice{
		InvoiceNo:      p.Get("invoiceNo"),
		InvoiceDate:    p.Get("invoiceDate"),
		FullName:       p.Get("fullName"),
		Nickname:       p.Get("nickname"),
		Gender:         p.Get("gender"),
		Domicile:       p.Get("domicile"),
		WhatsApp:       p.Get("whatsapp"),
		Email:          p.Get("email"),
		Destination:    p.Get("destination"),
		TripDate:       p.Get("tripDate"),
		Packet:         p.Get("packet"),
		Experience:     p.GetText("experience"),
		MedicalHistory: p.GetText("medicalHistory"),
		Allergies:      p.Get("allergies"),
		GearRental:     p.GetText("gearRental"),
	}

	status, err := core.ParseStatus(p.Get("status"))
	if err != nil {
		return inv, err
	}
	inv.Status = status

	if v := p.Get("age"); v != "" {
		age, err := strconv.Atoi(v)
		if err != nil {
			return inv, core.ErrInvalidAge
		}
		inv.Age = age
	}
	if inv.Subtotal, err = parseOptionalRupiah(p.Get("subtotal")); err != nil {
		return inv, fmt.Errorf("subtotal: %w", err)
	}
	if inv.Discount, err = parseOptionalRupiah(p.Get("discount")); err != nil {
		return inv, fmt.Errorf("discount: %w", err)
	}
	return inv, nil
}

// expenseFromRequest reads the ledger form; a blank date means today.
func expenseFromRequest(p *RequestBodyParser, now time.Time) (core.Expense, error) {
	e := core.Expense{
		Title:    p.Get("title"),
		Category: p.Get("category"),
		Date:     p.Get("date"),
		Notes:    p.GetText("notes"),
	}
	if e.Date == "" {
		e.Date = now.Format(time.DateOnly)
	}
	amount, err := core.ParseRupiah(p.Get("amount"))
	if err != nil {
		return e, err
	}
	e.Amount = amount
	return e, nil
}

// settingsFromRequest overlays the submitted fields on current. Fields not
// sent keep their value; the logo comes from an upload, a data URL field or
// is cleared with removeLogo.
func settingsFromRequest(p *RequestBodyParser, current core.Settings) (core.Settings, error) {
	s := current
	for key, dst := range map[string]*string{
		"bankName":         &s.BankName,
		"accountNo":        &s.AccountNo,
		"accountName":      &s.AccountName,
		"whatsappContact":  &s.WhatsAppContact,
		"emailContact":     &s.EmailContact,
		"instagramContact": &s.InstagramContact,
	} {
		if p.Has(key) {
			*dst = p.Get(key)
		}
	}
	if p.Has("footerNote") {
		s.FooterNote = p.GetText("footerNote")
	}

	switch {
	case p.Get("removeLogo") == "1" || p.Get("removeLogo") == "true":
		s.Logo = ""
	case p.Has("logo") && strings.HasPrefix(p.Get("logo"), "data:image/"):
		s.Logo = p.Get("logo")
	}

	data, contentType, err := p.File("logoFile")
	if err != nil {
		return s, err
	}
	if len(data) > 0 {
		if len(data) > maxLogoBytes {
			return s, ErrLogoTooLarge
		}
		if !strings.HasPrefix(contentType, "image/") {
			contentType = http.DetectContentType(data)
		}
		s.Logo = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	}
	return s, nil
}

// filterFromQuery reads the manifest list filters; an unknown status is
// ignored rather than matching nothing.
func filterFromQuery(q url.Values) core.InvoiceFilter {
	f := core.InvoiceFilter{
		Query: sanitizeInput(q.Get("q")),
		Month: sanitizeInput(q.Get("month")),
	}
	if raw := sanitizeInput(q.Get("status")); raw != "" {
		if status, err := core.ParseStatus(raw); err == nil {
			f.Status = status
		}
	}
	return f
}
