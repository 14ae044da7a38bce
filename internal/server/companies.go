package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rocont/driverledger/internal/anaf"
)

// handleCompany resolves a fiscal identifier against the tax registry.
func (s *Server) handleCompany(w http.ResponseWriter, r *http.Request) {
	taxID := chi.URLParam(r, "taxID")
	if anaf.NormalizeTaxID(taxID) == "" {
		s.writeError(w, http.StatusBadRequest, "invalid tax id")
		return
	}

	company, err := s.companies.FetchCompanyByTaxID(r.Context(), taxID)
	if err != nil {
		if errors.Is(err, anaf.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "company not found")
			return
		}
		s.logger.Error("company lookup failed", zap.String("tax_id", taxID), zap.Error(err))
		s.writeError(w, http.StatusBadGateway, "registry lookup failed")
		return
	}
	s.writeJSON(w, http.StatusOK, company)
}
