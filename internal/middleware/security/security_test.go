package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.NotFoundHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "img-src 'self' data:")
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "max-age=31536000; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))
}

func TestHeadersMiddleware_EmptyValuesSkipped(t *testing.T) {
	h := NewHeadersMiddleware(HeadersConfig{XFrameOptions: "SAMEORIGIN"}).Middleware(http.NotFoundHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
	_, ok := rec.Header()["Content-Security-Policy"]
	assert.False(t, ok)
}

func TestStaticAssetMiddleware(t *testing.T) {
	h := StaticAssetMiddleware(3600)(http.NotFoundHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	assert.Equal(t, "public, max-age=3600, immutable", rec.Header().Get("Cache-Control"))
}

func TestExtractClientIP(t *testing.T) {
	d, err := NewDetector(nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"direct public peer ignores headers", "203.0.113.7:5000", "1.2.3.4", "", "203.0.113.7"},
		{"trusted proxy forwards", "10.0.0.2:5000", "198.51.100.1, 10.0.0.2", "", "198.51.100.1"},
		{"trusted proxy real ip", "127.0.0.1:5000", "", "198.51.100.9", "198.51.100.9"},
		{"garbage forwarded header", "127.0.0.1:5000", "not-an-ip", "", "127.0.0.1"},
		{"no port", "192.168.1.5", "", "", "192.168.1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, d.ExtractClientIP(r))
		})
	}
}

func TestNewDetector_ExtraProxies(t *testing.T) {
	d, err := NewDetector(nil, "203.0.113.0/24")
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.7:5000"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")
	assert.Equal(t, "198.51.100.1", d.ExtractClientIP(r))

	_, err = NewDetector(nil, "nope")
	assert.Error(t, err)
}

func TestSuspicious(t *testing.T) {
	assert.Empty(t, Suspicious(httptest.NewRequest(http.MethodGet, "/invoices?q=rinjani", nil)))
	assert.Equal(t, "method TRACE", Suspicious(httptest.NewRequest("TRACE", "/", nil)))
	assert.Equal(t, "path pattern /.env", Suspicious(httptest.NewRequest(http.MethodGet, "/.env", nil)))
	assert.Equal(t, "path pattern wp-admin", Suspicious(httptest.NewRequest(http.MethodGet, "/WP-ADMIN/", nil)))
	assert.Equal(t, "oversized url", Suspicious(httptest.NewRequest(http.MethodGet, "/?q="+strings.Repeat("a", 2100), nil)))
}

func TestDetectorMiddleware(t *testing.T) {
	d, _ := NewDetector(nil)
	h := d.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wp-login.php", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/trips", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(1), d.Blocked())
}
