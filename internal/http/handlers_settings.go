package http

import (
	"net/http"

	"tripdesk/internal/core"
	applog "tripdesk/internal/log"
)

type settingsView struct {
	pageMeta
	Settings core.Settings
}

func (s *Server) handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settings.Get(r.Context())
	if err != nil {
		s.writeError(w, r, err, applog.OpRead)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, settings)
		return
	}
	s.render(w, r, "settings.html", settingsView{
		pageMeta: pageMeta{Title: "Pengaturan", Active: "settings"},
		Settings: settings,
	})
}

// handleSaveSettings merges the submitted fields into the stored settings.
func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	current, err := s.settings.Get(r.Context())
	if err != nil {
		s.writeError(w, r, err, applog.OpUpdate)
		return
	}
	p := NewRequestBodyParser(r)
	if err := p.Parse(w); err != nil {
		s.badRequest(w, r, err)
		return
	}
	next, err := settingsFromRequest(p, current)
	if err != nil {
		s.writeError(w, r, err, applog.OpUpdate)
		return
	}
	saved, err := s.settings.Save(r.Context(), next)
	if err != nil {
		s.writeError(w, r, err, applog.OpUpdate)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, saved)
		return
	}
	SuccessResponse("Pengaturan tersimpan").
		TriggerSettingsSaved().
		Write(w)
}
