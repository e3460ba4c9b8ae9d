package http

import (
	"net/http"

	"tripdesk/internal/analytics"
	applog "tripdesk/internal/log"
)

// pageMeta is embedded by every full-page view for the shared layout.
type pageMeta struct {
	Title  string
	Active string
}

type dashboardView struct {
	pageMeta
	Ranges []analytics.Range
	Result analytics.Result
}

func (s *Server) summary(r *http.Request) (analytics.Result, error) {
	rangeName := r.URL.Query().Get("range")
	res, err := s.dashboard.Summary(r.Context(), rangeName)
	if err != nil {
		return res, err
	}
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Dashboard computed",
		applog.FieldRange, string(res.Range),
		"buckets", len(res.Series))
	return res, nil
}

// handleIndex renders the dashboard page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	res, err := s.summary(r)
	if err != nil {
		s.writeError(w, r, err, applog.OpRead)
		return
	}
	s.render(w, r, "dashboard.html", dashboardView{
		pageMeta: pageMeta{Title: "Dashboard", Active: "dashboard"},
		Ranges:   analytics.Ranges,
		Result:   res,
	})
}

// handleDashboardPanel renders only the figures, for range switches and
// dashboard:refresh events.
func (s *Server) handleDashboardPanel(w http.ResponseWriter, r *http.Request) {
	res, err := s.summary(r)
	if err != nil {
		s.writeError(w, r, err, applog.OpRead)
		return
	}
	s.render(w, r, "dashboard_panel.html", dashboardView{Ranges: analytics.Ranges, Result: res})
}

func (s *Server) handleDashboardJSON(w http.ResponseWriter, r *http.Request) {
	res, err := s.summary(r)
	if err != nil {
		s.writeError(w, r, err, applog.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
