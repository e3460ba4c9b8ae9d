package http

import (
	"bytes"
	"fmt"
	"net/http"
	"sync/atomic"

	"tripdesk/internal/core"
	"tripdesk/internal/importer"
	applog "tripdesk/internal/log"
)

type tripsView struct {
	pageMeta
	Groups []core.TripGroup
}

func (s *Server) handleTripsPage(w http.ResponseWriter, r *http.Request) {
	groups, err := s.manifest.TripGroups(r.Context())
	if err != nil {
		s.writeError(w, r, err, applog.OpList)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, groups)
		return
	}
	s.render(w, r, "trips.html", tripsView{
		pageMeta: pageMeta{Title: "Trip", Active: "trips"},
		Groups:   groups,
	})
}

// handleRosterExport streams the roster workbook, one sheet per trip.
func (s *Server) handleRosterExport(w http.ResponseWriter, r *http.Request) {
	groups, err := s.manifest.TripGroups(r.Context())
	if err != nil {
		s.writeError(w, r, err, applog.OpExport)
		return
	}
	var buf bytes.Buffer
	if err := importer.WriteRoster(&buf, groups); err != nil {
		s.writeError(w, r, err, applog.OpExport)
		return
	}
	atomic.AddInt64(&s.metrics.rostersExported, 1)
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Roster exported",
		applog.FieldOperation, applog.OpExport,
		"groups", len(groups))

	filename := fmt.Sprintf("roster-%s.xlsx", s.now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
