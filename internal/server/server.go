// Package server exposes the HTTP surface: parse drafts, save reviewed
// receipts, rate queries, company lookup and report export.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/rocont/driverledger/internal/anaf"
	"github.com/rocont/driverledger/internal/export"
	"github.com/rocont/driverledger/internal/ocr"
	"github.com/rocont/driverledger/internal/parse"
	"github.com/rocont/driverledger/internal/repository"
	"github.com/rocont/driverledger/internal/vat"
)

type Config struct {
	MaxUploadBytes int64 // default 10 MiB
}

type Server struct {
	cfg        Config
	recognizer ocr.Recognizer
	parser     *parse.Parser
	resolver   *vat.Resolver
	receipts   repository.ReceiptRepository
	companies  *anaf.Client
	exporter   *export.Service
	logger     *zap.Logger
}

func New(
	cfg Config,
	recognizer ocr.Recognizer,
	parser *parse.Parser,
	resolver *vat.Resolver,
	receipts repository.ReceiptRepository,
	companies *anaf.Client,
	exporter *export.Service,
	logger *zap.Logger,
) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:        cfg,
		recognizer: recognizer,
		parser:     parser,
		resolver:   resolver,
		receipts:   receipts,
		companies:  companies,
		exporter:   exporter,
		logger:     logger,
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/receipts/parse", s.handleParseReceipt)
		r.Post("/receipts", s.handleSaveReceipt)
		r.Get("/receipts", s.handleListReceipts)

		r.Get("/vat/rate", s.handleVatRate)
		r.Get("/vat/options", s.handleVatOptions)

		r.Get("/companies/{taxID}", s.handleCompany)

		r.Get("/exports/receipts.xlsx", s.handleExportXLSX)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// parseDateParam reads a YYYY-MM-DD query parameter; nil when absent.
func parseDateParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
