// Package ocr normalizes scanned PDFs into machine-readable PDFs with an
// embedded text layer. The concrete engine shells out to ocrmypdf; the
// interface keeps the pipeline testable without the binary installed.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Failure reports that the OCR engine could not process the source PDF.
// Fatal for the request; never retried automatically.
type Failure struct {
	Path string
	Err  error
}

func (e *Failure) Error() string {
	return fmt.Sprintf("ocr failed for %s: %v", e.Path, e.Err)
}

func (e *Failure) Unwrap() error {
	return e.Err
}

// Engine runs OCR on a source PDF and writes the result to a destination path.
// The source file is never modified.
type Engine interface {
	Name() string
	Process(ctx context.Context, inputPDF, outputPDF string) error
}

// OCRmyPDF is an Engine backed by the ocrmypdf command-line tool.
// Pages are always re-OCR'd even when a text layer exists, and skew and
// rotation are corrected, so downstream page text is trustworthy.
type OCRmyPDF struct {
	binary    string
	languages []string
	timeout   time.Duration
	logger    *slog.Logger
}

// Config configures the ocrmypdf engine.
type Config struct {
	Binary    string        // default "ocrmypdf"
	Languages []string      // tesseract language codes, default ["eng"]
	Timeout   time.Duration // per-document bound, default 5m
	Logger    *slog.Logger
}

// New creates an ocrmypdf engine.
func New(cfg Config) *OCRmyPDF {
	if cfg.Binary == "" {
		cfg.Binary = "ocrmypdf"
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"eng"}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &OCRmyPDF{
		binary:    cfg.Binary,
		languages: cfg.Languages,
		timeout:   cfg.Timeout,
		logger:    logger.With("component", "ocr"),
	}
}

// Name returns the engine identifier.
func (e *OCRmyPDF) Name() string {
	return "ocrmypdf"
}

// Process runs ocrmypdf on inputPDF, writing the OCR'd PDF to outputPDF.
func (e *OCRmyPDF) Process(ctx context.Context, inputPDF, outputPDF string) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := e.args(inputPDF, outputPDF)
	e.logger.Debug("running ocr", "input", inputPDF, "output", outputPDF)

	start := time.Now()
	cmd := exec.CommandContext(ctx, e.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return &Failure{Path: inputPDF, Err: fmt.Errorf("timed out after %s", e.timeout)}
		}
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			err = fmt.Errorf("%w: %s", err, lastLine(detail))
		}
		return &Failure{Path: inputPDF, Err: err}
	}

	e.logger.Info("ocr complete", "input", inputPDF, "duration", time.Since(start))
	return nil
}

// args builds the ocrmypdf invocation. A fresh OCR pass is always forced;
// pre-existing text layers are not trusted.
func (e *OCRmyPDF) args(inputPDF, outputPDF string) []string {
	return []string{
		"--deskew",
		"--rotate-pages",
		"--force-ocr",
		"-l", strings.Join(e.languages, "+"),
		inputPDF,
		outputPDF,
	}
}

// lastLine returns the final non-empty line of tool output, which is where
// ocrmypdf puts its actual error message.
func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if trimmed := strings.TrimSpace(lines[i]); trimmed != "" {
			return trimmed
		}
	}
	return s
}

// Verify interface
var _ Engine = (*OCRmyPDF)(nil)
