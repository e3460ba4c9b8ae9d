// Package trace assigns request ids and writes the start and end log lines
// of every HTTP request.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"sync/atomic"
	"time"

	applog "tripdesk/internal/log"
)

type ContextKey string

const RequestIDKey ContextKey = "request_id"

// HeaderRequestID is read from incoming requests and echoed on responses.
const HeaderRequestID = "X-Request-ID"

var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

type Middleware struct {
	extractIP func(*http.Request) string
	logger    *applog.Logger
	requests  *applog.RequestLogger

	total   int64
	errors  int64
	totalMs int64
}

// Metrics is a snapshot of request counters.
type Metrics struct {
	TotalRequests  int64
	ServerErrors   int64
	AverageLatency time.Duration
}

func NewMiddleware(logger *applog.Logger, extractIP func(*http.Request) string) *Middleware {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Middleware{
		extractIP: extractIP,
		logger:    logger,
		requests:  applog.NewRequestLogger(logger),
	}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}
		requestID := r.Header.Get(HeaderRequestID)
		if !validRequestID.MatchString(requestID) {
			requestID = GenerateRequestID()
		}
		w.Header().Set(HeaderRequestID, requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = applog.IntoContext(ctx, m.logger.With(applog.FieldRequestID, requestID))
		r = r.WithContext(ctx)

		m.requests.LogStart(ctx, r, requestID, clientIP)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		elapsed := time.Since(start).Milliseconds()
		atomic.AddInt64(&m.total, 1)
		atomic.AddInt64(&m.totalMs, elapsed)
		if rw.statusCode >= 500 {
			atomic.AddInt64(&m.errors, 1)
		}
		m.requests.LogEnd(ctx, r, requestID, clientIP, rw.statusCode, elapsed)
	})
}

func (m *Middleware) GetMetrics() Metrics {
	total := atomic.LoadInt64(&m.total)
	out := Metrics{
		TotalRequests: total,
		ServerErrors:  atomic.LoadInt64(&m.errors),
	}
	if total > 0 {
		out.AverageLatency = time.Duration(atomic.LoadInt64(&m.totalMs)/total) * time.Millisecond
	}
	return out
}

type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func GenerateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}

// GetRequestID returns the id stored by the middleware, or "".
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
