// Package http serves the operator web UI and its JSON endpoints.
//
// This file builds HTMX responses: status, body and the HX-Trigger header
// that tells the page which panels to refresh.

package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// HX-Trigger event names.
const (
	EventInvoiceSaved     = "invoice:saved"
	EventInvoiceDeleted   = "invoice:deleted"
	EventExpenseSaved     = "expense:saved"
	EventExpenseDeleted   = "expense:deleted"
	EventSettingsSaved    = "settings:saved"
	EventDashboardRefresh = "dashboard:refresh"
	EventNotification     = "show-notification"
)

// HTMXResponseBuilder provides a fluent API for building HTMX responses.
type HTMXResponseBuilder struct {
	triggers   map[string]any
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewHTMXResponse creates a new response builder with default 200 status.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named event with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data any) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerInvoiceSaved announces a created or updated invoice. The dashboard
// depends on invoices, so it is refreshed too.
func (b *HTMXResponseBuilder) TriggerInvoiceSaved(id, invoiceNo string) *HTMXResponseBuilder {
	return b.Trigger(EventInvoiceSaved, map[string]string{"id": id, "invoiceNo": invoiceNo}).
		Trigger(EventDashboardRefresh, struct{}{})
}

func (b *HTMXResponseBuilder) TriggerInvoiceDeleted(id string) *HTMXResponseBuilder {
	return b.Trigger(EventInvoiceDeleted, map[string]string{"id": id}).
		Trigger(EventDashboardRefresh, struct{}{})
}

// TriggerInvoicesImported reuses invoice:saved with the imported count.
func (b *HTMXResponseBuilder) TriggerInvoicesImported(count int) *HTMXResponseBuilder {
	return b.Trigger(EventInvoiceSaved, map[string]int{"imported": count}).
		Trigger(EventDashboardRefresh, struct{}{})
}

func (b *HTMXResponseBuilder) TriggerExpenseSaved(id, category string) *HTMXResponseBuilder {
	return b.Trigger(EventExpenseSaved, map[string]string{"id": id, "category": category}).
		Trigger(EventDashboardRefresh, struct{}{})
}

func (b *HTMXResponseBuilder) TriggerExpenseDeleted(id string) *HTMXResponseBuilder {
	return b.Trigger(EventExpenseDeleted, map[string]string{"id": id}).
		Trigger(EventDashboardRefresh, struct{}{})
}

func (b *HTMXResponseBuilder) TriggerSettingsSaved() *HTMXResponseBuilder {
	return b.Trigger(EventSettingsSaved, struct{}{})
}

// NotificationType represents the type of notification to display.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// TriggerNotification adds a show-notification event.
func (b *HTMXResponseBuilder) TriggerNotification(notifType NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger(EventNotification, map[string]any{
		"type":     string(notifType),
		"message":  message,
		"duration": durationMs,
	})
}

func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationSuccess, message, 3000)
}

func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationError, message, 5000)
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *HTMXResponseBuilder) Body(content []byte) *HTMXResponseBuilder {
	b.body = content
	return b
}

func (b *HTMXResponseBuilder) BodyString(content string) *HTMXResponseBuilder {
	b.body = []byte(content)
	return b
}

// BodyHTML sets the body and the HTML content type.
func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = []byte(html)
	return b
}

// Write sends the built response.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if len(b.triggers) > 0 {
		if triggerJSON, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse renders message, HTML-escaped, inside an error div.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		BodyHTML(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`)
}

// SuccessResponse renders message, HTML-escaped, inside a success div.
func SuccessResponse(message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		BodyHTML(`<div class="success">` + template.HTMLEscapeString(message) + `</div>`).
		TriggerSuccessNotification(message)
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func TooManyRequestsError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, message).TriggerErrorNotification(message)
}
