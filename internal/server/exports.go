package server

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// handleExportXLSX streams the expense report workbook for a date window.
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateParam(r, "from")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
		return
	}

	out, err := s.exporter.ExportReceiptsXLSX(r.Context(), from, to)
	if err != nil {
		s.logger.Error("export failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	filename := fmt.Sprintf("receipts-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
