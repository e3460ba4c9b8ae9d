package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"strings"

	"tripdesk/internal/analytics"
	"tripdesk/internal/core"
	"tripdesk/internal/importer"
	applog "tripdesk/internal/log"
)

// isHTMX reports whether the request was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether a non-htmx client asked for JSON.
func wantsJSON(r *http.Request) bool {
	if isHTMX(r) {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// templateFuncs are available to every page and partial.
var templateFuncs = template.FuncMap{
	"rupiah":  func(v core.Rupiah) string { return v.String() },
	"rupiahf": func(v float64) string { return core.Rupiah(math.Round(v)).String() },
	"statusLabel": func(s core.InvoiceStatus) string {
		return s.Label()
	},
	"statusClass": func(s core.InvoiceStatus) string {
		return strings.ToLower(strings.ReplaceAll(string(s), "_", "-"))
	},
	"percent": func(v float64) string {
		return formatFloat(v, 1) + "%"
	},
	"ratio": func(v float64) string { return formatFloat(v, 2) },
	// barWidth scales v against max into 0..100, keeping non-zero values visible.
	"barWidth": func(v, max core.Rupiah) int {
		if max <= 0 || v <= 0 {
			return 0
		}
		w := int((int64(v)*100 + int64(max)/2) / int64(max))
		if w < 2 {
			w = 2
		}
		if w > 100 {
			w = 100
		}
		return w
	},
	"seriesMax": func(points []analytics.Point) core.Rupiah {
		var max core.Rupiah
		for _, p := range points {
			if p.Income > max {
				max = p.Income
			}
			if p.Expense > max {
				max = p.Expense
			}
		}
		return max
	},
	"safeURL": func(s string) template.URL {
		if strings.HasPrefix(s, "data:image/") {
			return template.URL(s)
		}
		return ""
	},
}

// formatFloat writes v with at most prec decimals and a decimal comma.
func formatFloat(v float64, prec int) string {
	out := strconv.FormatFloat(v, 'f', prec, 64)
	if strings.Contains(out, ".") {
		out = strings.TrimRight(strings.TrimRight(out, "0"), ".")
	}
	return strings.Replace(out, ".", ",", 1)
}

// render executes a named template into a buffer so a failing template
// never produces a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err, "template", name)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// isClientError reports errors caused by the submitted data.
func isClientError(err error) bool {
	return core.IsValidationError(err) ||
		errors.Is(err, importer.ErrNoRows) ||
		errors.Is(err, importer.ErrInvalidWorkbook) ||
		errors.Is(err, ErrLogoTooLarge)
}

// writeError maps err to 422, 404 or 500 and answers in the client's format.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	status, message := http.StatusInternalServerError, "Terjadi kesalahan, coba lagi"
	switch {
	case isClientError(err):
		status, message = http.StatusUnprocessableEntity, "Data tidak valid: "+err.Error()
	case errors.Is(err, core.ErrNotFound):
		status, message = http.StatusNotFound, "Data tidak ditemukan"
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldError, err,
			applog.FieldOperation, operation,
			applog.FieldPath, r.URL.Path,
			applog.FieldErrorType, applog.ErrorTypeInternal)
	}

	if wantsJSON(r) {
		writeJSON(w, status, map[string]string{"error": message})
		return
	}
	ErrorResponse(status, message).TriggerErrorNotification(message).Write(w)
}

// badRequest answers an unreadable body.
func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Unreadable request body",
		applog.FieldError, err, applog.FieldPath, r.URL.Path)
	const message = "Format permintaan tidak valid"
	if wantsJSON(r) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": message})
		return
	}
	BadRequestError(message).Write(w)
}
