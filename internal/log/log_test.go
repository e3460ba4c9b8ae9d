package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentManifest, Output: &buf})

	logger.Info("saved", FieldInvoiceNo, "VRT-2026-0001")
	logger.WithComponent(ComponentLedger).Debug("listed")

	out := buf.String()
	if !strings.Contains(out, "component=manifest") || !strings.Contains(out, "invoice_no=VRT-2026-0001") {
		t.Fatalf("missing attributes: %s", out)
	}
	if !strings.Contains(out, "component=ledger") {
		t.Fatalf("WithComponent not applied: %s", out)
	}
}

func TestFieldsToSliceIsSorted(t *testing.T) {
	fields := NewFields().
		WithOperation(OpCreate).
		WithRecord("invoices", "abc").
		WithError(errors.New("boom"), ErrorTypeDatabase).
		ToSlice()

	var keys []string
	for i := 0; i < len(fields); i += 2 {
		keys = append(keys, fields[i].(string))
	}
	want := []string{FieldCollection, FieldError, FieldErrorType, FieldOperation, FieldRecordID}
	if strings.Join(keys, ",") != strings.Join(want, ",") {
		t.Fatalf("keys=%v want %v", keys, want)
	}

	if got := NewFields().WithError(nil, ErrorTypeDatabase); len(got) != 0 {
		t.Fatalf("nil error should add nothing: %v", got)
	}
}

func TestMiddlewareCarriesLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf})

	var seen *Logger
	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = FromContext(r.Context())
			seen.Info("inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == nil || !strings.Contains(buf.String(), "request_id=req-1") {
		t.Fatalf("request logger not propagated: %s", buf.String())
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("fallback logger should be unknown")
	}
}

func TestRequestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	rl := NewRequestLogger(New(Config{Output: &buf}))
	r := httptest.NewRequest(http.MethodPost, "/invoices", nil)

	rl.LogEnd(context.Background(), r, "id", "1.2.3.4", 503, 12)
	if !strings.Contains(buf.String(), "level=ERROR") || !strings.Contains(buf.String(), "status_code=503") {
		t.Fatalf("unexpected line: %s", buf.String())
	}
	if LevelForStatus(404) != slog.LevelWarn || LevelForStatus(201) != slog.LevelInfo {
		t.Fatalf("unexpected level mapping")
	}
}
