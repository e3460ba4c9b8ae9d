package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// appMetrics counts domain events for /metrics.
type appMetrics struct {
	started          time.Time
	invoicesCreated  int64
	invoicesImported int64
	expensesCreated  int64
	rostersExported  int64
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.started).Round(time.Second).String(),
	})
}

// handleReady checks templates and storage reachability.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	switch {
	case s.pinger == nil:
		checks["storage"] = "ok"
	default:
		if err := s.pinger.Ping(ctx); err != nil {
			checks["storage"] = fmt.Sprintf("failed: %v", err)
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["storage"] = "ok"
		}
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	trace := s.tracer.GetMetrics()
	limits := s.limiter.GetMetrics()

	metric := func(name, help, kind string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "Total number of HTTP requests", "counter", trace.TotalRequests)
	metric("http_server_errors_total", "Responses with a 5xx status", "counter", trace.ServerErrors)
	metric("http_request_duration_avg_ms", "Average request latency in milliseconds", "gauge", trace.AverageLatency.Milliseconds())
	metric("invoices_created_total", "Invoices created through the form", "counter", atomic.LoadInt64(&s.metrics.invoicesCreated))
	metric("invoices_imported_total", "Invoices created by bulk import", "counter", atomic.LoadInt64(&s.metrics.invoicesImported))
	metric("expenses_created_total", "Ledger entries created", "counter", atomic.LoadInt64(&s.metrics.expensesCreated))
	metric("rosters_exported_total", "Roster workbooks downloaded", "counter", atomic.LoadInt64(&s.metrics.rostersExported))
	metric("rate_limit_hits_total", "Requests rejected by the rate limiter", "counter", limits.TotalHits)
	metric("active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", limits.ClientCount)
	metric("suspicious_requests_total", "Requests blocked as probes", "counter", s.detector.Blocked())
	metric("uptime_seconds", "Application uptime in seconds", "gauge", int64(time.Since(s.metrics.started).Seconds()))
}
