package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/docbridge/bridge/internal/ocr"
	"github.com/docbridge/bridge/internal/pdftext"
	"github.com/docbridge/bridge/internal/providers"
	"github.com/docbridge/bridge/internal/schema"
)

// Options holds the per-request knobs for a PDF extraction.
type Options struct {
	ModelName    string
	JSONSchema   map[string]any
	Instructions string
}

// Pipeline sequences OCR, page-text extraction, and model extraction for one
// PDF. Cheap request checks (schema shape, model name) run before any OCR so
// a bad request never burns minutes of OCR time.
type Pipeline struct {
	engine     ocr.Engine
	runnable   *Runnable
	registry   *providers.Registry
	scratchDir string
	logger     *slog.Logger
}

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	Engine     ocr.Engine
	Runnable   *Runnable
	Registry   *providers.Registry
	ScratchDir string // default os.TempDir()
	Logger     *slog.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	scratch := cfg.ScratchDir
	if scratch == "" {
		scratch = os.TempDir()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		engine:     cfg.Engine,
		runnable:   cfg.Runnable,
		registry:   cfg.Registry,
		scratchDir: scratch,
		logger:     logger.With("component", "pipeline"),
	}
}

// ExtractFromPDF runs the full pipeline on the PDF at pdfPath. The OCR output
// goes to a uuid-named file in the scratch dir so concurrent requests never
// collide, and the temp file is removed on every return path.
func (p *Pipeline) ExtractFromPDF(ctx context.Context, pdfPath string, opts Options) (*Response, error) {
	if err := schema.Check(opts.JSONSchema); err != nil {
		return nil, err
	}
	if _, err := p.registry.Resolve(opts.ModelName); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(p.scratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	ocrPath := filepath.Join(p.scratchDir, "ocr-"+uuid.NewString()+".pdf")
	defer os.Remove(ocrPath)

	start := time.Now()
	if err := p.engine.Process(ctx, pdfPath, ocrPath); err != nil {
		return nil, err
	}
	p.logger.Debug("ocr stage done", "input", pdfPath, "duration", time.Since(start))

	doc, err := pdftext.Extract(ocrPath)
	if err != nil {
		return nil, err
	}

	resp, err := p.runnable.Invoke(ctx, &Request{
		Text:         doc.Tagged(),
		JSONSchema:   opts.JSONSchema,
		Instructions: opts.Instructions,
		ModelName:    opts.ModelName,
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("pdf extraction done",
		"input", pdfPath,
		"pages", len(doc.Pages),
		"records", len(resp.Data),
		"duration", time.Since(start))
	return resp, nil
}

// ExtractFromText runs extraction on text the caller already has,
// skipping OCR and page-text extraction.
func (p *Pipeline) ExtractFromText(ctx context.Context, req *Request) (*Response, error) {
	return p.runnable.Invoke(ctx, req)
}
