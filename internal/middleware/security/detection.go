package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"

	applog "tripdesk/internal/log"
)

var defaultTrustedProxies = []string{"127.0.0.0/8", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "::1/128"}

// probePatterns appear in paths of scanners looking for other software.
var probePatterns = []string{
	"../", "..\\", "/.env", "/.git", "/.ssh", "wp-admin", "wp-login",
	"phpmyadmin", ".php", "etc/passwd", "cmd.exe",
}

var blockedMethods = map[string]bool{"TRACE": true, "TRACK": true, "CONNECT": true, "DEBUG": true}

// Detector resolves client IPs and rejects obvious probing requests.
type Detector struct {
	trusted []*net.IPNet
	logger  *applog.Logger
	blocked int64
}

// NewDetector trusts forwarding headers from the private ranges plus any
// extra CIDRs given.
func NewDetector(logger *applog.Logger, extraProxies ...string) (*Detector, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	d := &Detector{logger: logger.WithComponent(applog.ComponentSecurity)}
	for _, cidr := range append(append([]string(nil), defaultTrustedProxies...), extraProxies...) {
		_, network, err := net.ParseCIDR(strings.TrimSpace(cidr))
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy CIDR %q: %w", cidr, err)
		}
		d.trusted = append(d.trusted, network)
	}
	return d, nil
}

// ExtractClientIP returns the peer address, or the first forwarded address
// when the peer is a trusted proxy.
func (d *Detector) ExtractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}
	ip := net.ParseIP(directIP)
	if ip == nil || !d.isTrusted(ip) {
		return directIP
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if client := strings.TrimSpace(first); net.ParseIP(client) != nil {
			return client
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return directIP
}

func (d *Detector) isTrusted(ip net.IP) bool {
	for _, n := range d.trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// Suspicious returns a short reason when r looks like a probe, or "".
func Suspicious(r *http.Request) string {
	if blockedMethods[r.Method] {
		return "method " + r.Method
	}
	if len(r.URL.RequestURI()) > 2048 {
		return "oversized url"
	}
	path := strings.ToLower(r.URL.Path)
	for _, p := range probePatterns {
		if strings.Contains(path, p) {
			return "path pattern " + p
		}
	}
	return ""
}

// Middleware answers probing requests with 404 and logs them.
func (d *Detector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason := Suspicious(r); reason != "" {
			atomic.AddInt64(&d.blocked, 1)
			d.logger.WarnContext(r.Context(), "Suspicious request blocked",
				applog.FieldClientIP, d.ExtractClientIP(r),
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				"reason", reason)
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Blocked counts rejected requests.
func (d *Detector) Blocked() int64 {
	return atomic.LoadInt64(&d.blocked)
}
