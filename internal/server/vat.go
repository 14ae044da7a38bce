package server

import (
	"net/http"
	"time"
)

// handleVatRate returns the rate legally in force on the given date
// (default today).
func (s *Server) handleVatRate(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, "date")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	if date == nil {
		now := time.Now().UTC()
		d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		date = &d
	}

	rate := s.resolver.ActiveRate(r.Context(), *date)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"date":             date.Format("2006-01-02"),
		"vat_rate_percent": rate.String(),
	})
}

// handleVatOptions returns the selectable rates for a form dropdown.
func (s *Server) handleVatOptions(w http.ResponseWriter, r *http.Request) {
	opts := s.resolver.RateOptions(r.Context())
	s.writeJSON(w, http.StatusOK, map[string]any{"options": opts})
}
