package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rocont/driverledger/internal/anaf"
	"github.com/rocont/driverledger/internal/config"
	"github.com/rocont/driverledger/internal/export"
	"github.com/rocont/driverledger/internal/ocr"
	"github.com/rocont/driverledger/internal/parse"
	"github.com/rocont/driverledger/internal/repository"
	"github.com/rocont/driverledger/internal/server"
	"github.com/rocont/driverledger/internal/vat"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := config.InitLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.Open(ctx, repository.Config{
		DSN:              cfg.Database.URL,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  30 * time.Minute,
		MaxConnIdleTime:  5 * time.Minute,
		DialTimeout:      cfg.Database.DialTimeout(),
		StatementTimeout: cfg.Database.StatementTimeout(),
	}, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer pool.Close()

	if err := repository.HealthCheck(ctx, pool, 3*time.Second); err != nil {
		logger.Fatal("database health check failed", zap.Error(err))
	}
	logger.Info("database health OK")

	ratesRepo := repository.NewVatRateRepository(pool, logger)
	receiptsRepo := repository.NewReceiptRepository(pool, logger)

	resolver := vat.NewResolver(ratesRepo, logger)
	parser := parse.NewParser(resolver)
	recognizer := ocr.NewExtractor(ocr.Config{
		Tesseract:           cfg.OCR.Tesseract,
		Language:            cfg.OCR.Language,
		PSM:                 cfg.OCR.PSM,
		OEM:                 cfg.OCR.OEM,
		TessdataDir:         cfg.OCR.TessdataDir,
		EnableTSVConfidence: cfg.OCR.EnableTSVConfidence,
	}, logger)
	registry := anaf.NewClient(anaf.Config{
		BaseURL: cfg.ANAF.BaseURL,
		Timeout: time.Duration(cfg.ANAF.TimeoutSecs) * time.Second,
	}, logger)
	exporter := export.NewService(receiptsRepo, logger)

	srv := server.New(
		server.Config{MaxUploadBytes: int64(cfg.HTTP.MaxUploadMB) << 20},
		recognizer, parser, resolver, receiptsRepo, registry, exporter, logger,
	)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSecs) * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http serving", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http serve", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	fmt.Println("stopped.")
}
