// parsebon recognizes and parses a single receipt image, printing the
// structured draft as JSON. No database required.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/rocont/driverledger/internal/ocr"
	"github.com/rocont/driverledger/internal/parse"
	"github.com/rocont/driverledger/internal/vat"
)

func main() {
	lang := flag.String("lang", "ron", "tesseract language(s), e.g. ron or ron+eng")
	psm := flag.Int("psm", 6, "tesseract page segmentation mode")
	tessdata := flag.String("tessdata-dir", "", "override tessdata directory")
	verbose := flag.Bool("v", false, "log recognition details")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: parsebon [flags] <image-file>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	logger := zap.NewNop()
	if *verbose {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	recognizer := ocr.NewExtractor(ocr.Config{
		Language:    *lang,
		PSM:         *psm,
		TessdataDir: *tessdata,
	}, logger)

	start := time.Now()
	res, err := recognizer.RecognizeText(ctx, path)
	if err != nil {
		logger.Error("recognition failed", zap.String("path", path), zap.Error(err))
		fmt.Fprintf(os.Stderr, "recognition failed: %v\n", err)
		os.Exit(1)
	}
	logger.Info("recognition OK",
		zap.String("path", path),
		zap.Float32("confidence", res.Confidence),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	// offline: no reference data, parser falls back to statutory rates
	draft := parse.NewParser(vat.NewResolver(nil, logger)).Parse(res.Text)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(draft); err != nil {
		fmt.Fprintf(os.Stderr, "encode draft: %v\n", err)
		os.Exit(1)
	}
}
