package log

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey string

const loggerContextKey contextKey = "logger"

// IntoContext returns a context carrying logger.
func IntoContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext returns the request logger, or one over slog.Default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

// Middleware puts logger into every request context.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(IntoContext(r.Context(), logger)))
		})
	}
}

// RequestIDMiddleware enriches the context logger with the request id.
func RequestIDMiddleware(extractRequestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := FromContext(r.Context()).With(FieldRequestID, extractRequestID(r))
			next.ServeHTTP(w, r.WithContext(IntoContext(r.Context(), logger)))
		})
	}
}

// RequestLogger writes the start and end lines of each HTTP request.
type RequestLogger struct {
	logger *Logger
}

func NewRequestLogger(logger *Logger) *RequestLogger {
	return &RequestLogger{logger: logger.WithComponent(ComponentHTTP)}
}

// LogStart logs the start of a request at debug level.
func (rl *RequestLogger) LogStart(ctx context.Context, r *http.Request, requestID, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent()).
		WithRequestID(requestID).
		WithClientIP(clientIP)
	rl.logger.DebugContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// LogEnd logs the completion of a request. 4xx are warnings, 5xx errors.
func (rl *RequestLogger) LogEnd(ctx context.Context, r *http.Request, requestID, clientIP string, statusCode int, durationMs int64) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "").
		WithHTTPResponse(statusCode, durationMs).
		WithRequestID(requestID).
		WithClientIP(clientIP)
	rl.logger.Log(ctx, LevelForStatus(statusCode), "HTTP request completed", fields.ToSlice()...)
}

// LevelForStatus picks the log level for an HTTP status code.
func LevelForStatus(statusCode int) slog.Level {
	switch {
	case statusCode >= 500:
		return slog.LevelError
	case statusCode >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
