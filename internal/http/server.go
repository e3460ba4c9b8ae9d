package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	applog "tripdesk/internal/log"
	"tripdesk/internal/middleware/ratelimit"
	"tripdesk/internal/middleware/security"
	"tripdesk/internal/middleware/trace"
	"tripdesk/internal/ports"
	"tripdesk/internal/services"
	appweb "tripdesk/web"
)

// Services are the application services behind the handlers.
type Services struct {
	Manifest  *services.ManifestService
	Ledger    *services.LedgerService
	Settings  *services.SettingsService
	Dashboard *services.DashboardService
}

// Config tunes the server. Zero values fall back to the defaults used in
// production.
type Config struct {
	Addr               string
	RateLimitPerMinute int
	TrustedProxies     []string
	// Pinger, when set, is checked by /readyz.
	Pinger ports.Pinger
}

// Server is the operator web application.
type Server struct {
	http.Server

	templates *template.Template
	manifest  *services.ManifestService
	ledger    *services.LedgerService
	settings  *services.SettingsService
	dashboard *services.DashboardService
	pinger    ports.Pinger

	logger   *applog.Logger
	detector *security.Detector
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware

	metrics      appMetrics
	now          func() time.Time
	shutdownOnce sync.Once
}

// NewServer parses the embedded templates, mounts the routes and wraps them
// in the tracing, security and rate limiting middleware.
func NewServer(cfg Config, svc Services, logger *applog.Logger) (*Server, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	detector, err := security.NewDetector(logger, cfg.TrustedProxies...)
	if err != nil {
		return nil, fmt.Errorf("configure client ip detection: %w", err)
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	limits := ratelimit.DefaultConfig()
	if cfg.RateLimitPerMinute > 0 {
		limits.RequestsPerMinute = cfg.RateLimitPerMinute
	}

	s := &Server{
		templates: tmpl,
		manifest:  svc.Manifest,
		ledger:    svc.Ledger,
		settings:  svc.Settings,
		dashboard: svc.Dashboard,
		pinger:    cfg.Pinger,
		logger:    logger,
		detector:  detector,
		limiter:   ratelimit.NewLimiter(limits),
		tracer:    trace.NewMiddleware(logger, detector.ExtractClientIP),
		metrics:   appMetrics{started: time.Now()},
		now:       time.Now,
	}

	mux := http.NewServeMux()
	if err := s.routes(mux); err != nil {
		s.limiter.Stop()
		return nil, err
	}

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = mux
	handler = s.limiter.Middleware(detector.ExtractClientIP, s.handleRateLimited)(handler)
	handler = detector.Middleware(handler)
	handler = headers.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) error {
	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("mount static assets: %w", err)
	}
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(
		http.StripPrefix("/static/", http.FileServer(http.FS(static)))))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboardJSON)
	mux.HandleFunc("GET /ui/dashboard", s.handleDashboardPanel)

	mux.HandleFunc("GET /invoices", s.handleInvoicesPage)
	mux.HandleFunc("GET /api/invoices", s.handleInvoicesJSON)
	mux.HandleFunc("POST /invoices", s.handleCreateInvoice)
	mux.HandleFunc("POST /invoices/import", s.handleImportInvoices)
	mux.HandleFunc("GET /invoices/{id}", s.handleGetInvoice)
	mux.HandleFunc("POST /invoices/{id}", s.handleUpdateInvoice)
	mux.HandleFunc("PUT /invoices/{id}", s.handleUpdateInvoice)
	mux.HandleFunc("DELETE /invoices/{id}", s.handleDeleteInvoice)
	mux.HandleFunc("POST /invoices/{id}/status", s.handleSetInvoiceStatus)
	mux.HandleFunc("GET /invoices/{id}/whatsapp", s.handleWhatsAppReminder)

	mux.HandleFunc("GET /trips", s.handleTripsPage)
	mux.HandleFunc("GET /trips/roster.xlsx", s.handleRosterExport)

	mux.HandleFunc("GET /expenses", s.handleExpensesPage)
	mux.HandleFunc("GET /api/expenses", s.handleExpensesJSON)
	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("POST /expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("PUT /expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /settings", s.handleSettingsPage)
	mux.HandleFunc("POST /settings", s.handleSaveSettings)
	return nil
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	const message = "Terlalu banyak permintaan, coba lagi sebentar lagi"
	if wantsJSON(r) {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": message})
		return
	}
	TooManyRequestsError(message).Write(w)
}

// Shutdown stops the limiter cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
		m := s.tracer.GetMetrics()
		s.logger.Info("HTTP server drained",
			applog.FieldOperation, applog.OpShutdown,
			"requests_total", m.TotalRequests,
			"server_errors", m.ServerErrors,
			"blocked_requests", s.detector.Blocked())
	})
	return err
}
