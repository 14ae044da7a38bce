// Package ocr wraps the external text recognizer (tesseract) behind a
// narrow interface. Recognition failure is a hard error surfaced to the
// caller; parsing is never attempted on a failed recognition.
package ocr

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Language string // default "ron"
	PSM      int    // e.g. 6 for a uniform block of text
	OEM      int    // 1 = LSTM; 0 uses the engine default

	TessdataDir         string
	EnableTSVConfidence bool
}

// RecognitionResult is the raw recognized text plus recognition metadata.
type RecognitionResult struct {
	Text       string
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// Recognizer is the external OCR collaborator interface.
type Recognizer interface {
	RecognizeText(ctx context.Context, path string) (RecognitionResult, error)
	RecognizeBytes(ctx context.Context, image []byte) (RecognitionResult, error)
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *zap.Logger
}

func NewExtractor(cfg Config, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "ron"
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// RecognizeText runs tesseract over the image at path and returns the
// normalized text with a blended confidence estimate.
func (e *Extractor) RecognizeText(ctx context.Context, path string) (RecognitionResult, error) {
	start := time.Now()
	e.logger.Debug("starting recognition", zap.String("path", path), zap.String("lang", e.cfg.Language))

	txt, warns, err := e.tesseractOCR(ctx, path)
	if err != nil {
		return RecognitionResult{Warnings: warns}, err
	}
	txt = Normalize(txt)

	var ocrConf float32
	if e.cfg.EnableTSVConfidence {
		c, w, cerr := e.tesseractTSVConfidence(ctx, path)
		if cerr == nil {
			ocrConf = c
			warns = append(warns, w...)
		} else {
			warns = append(warns, cerr.Error())
		}
	}
	heurConf := heuristicConfidence(txt)

	// blend: weight engine confidence higher when present
	conf := heurConf
	if ocrConf > 0 {
		conf = 0.7*ocrConf + 0.3*heurConf
	}
	if conf > 1.0 {
		conf = 1.0
	}

	return RecognitionResult{
		Text:       txt,
		Language:   e.cfg.Language,
		Duration:   time.Since(start),
		Warnings:   warns,
		Confidence: conf,
	}, nil
}

// RecognizeBytes spills the image to a temp file and recognizes it.
func (e *Extractor) RecognizeBytes(ctx context.Context, image []byte) (RecognitionResult, error) {
	tmp, err := os.CreateTemp("", "dl-receipt-*")
	if err != nil {
		return RecognitionResult{}, eris.Wrap(err, "ocr: temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(image); err != nil {
		_ = tmp.Close()
		return RecognitionResult{}, eris.Wrap(err, "ocr: write temp file")
	}
	if err := tmp.Close(); err != nil {
		return RecognitionResult{}, eris.Wrap(err, "ocr: close temp file")
	}
	return e.RecognizeText(ctx, tmp.Name())
}

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, []string, error) {
	args := []string{path, "stdout", "-l", e.cfg.Language}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{string(errb)}, eris.Wrap(err, "ocr: tesseract")
	}

	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return txt, nil, nil
}

// tesseractTSVConfidence runs tesseract in TSV mode and returns the mean
// word confidence in 0..1.
func (e *Extractor) tesseractTSVConfidence(ctx context.Context, path string) (float32, []string, error) {
	args := []string{path, "stdout", "-l", e.cfg.Language}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return 0, []string{string(errb)}, fmt.Errorf("tesseract tsv: %w", err)
	}

	lines := strings.Split(string(out), "\n")
	var sum, n float64
	for i, ln := range lines {
		if i == 0 || len(ln) == 0 {
			continue // header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := cols[10] // conf column
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, perr := strconv.ParseFloat(confStr, 64); perr == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil, nil
	}
	return float32(sum / n / 100.0), nil, nil
}
