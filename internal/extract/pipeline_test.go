package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/docbridge/bridge/internal/ocr"
	"github.com/docbridge/bridge/internal/pdftext"
	"github.com/docbridge/bridge/internal/providers"
	"github.com/docbridge/bridge/internal/schema"
)

func newTestPipeline(t *testing.T, client providers.LLMClient, engine ocr.Engine) *Pipeline {
	t.Helper()
	reg := testRegistry(client)
	return NewPipeline(PipelineConfig{
		Engine: engine,
		Runnable: NewRunnable(RunnableConfig{
			Registry: reg,
			Logger:   testLogger(),
		}),
		Registry:   reg,
		ScratchDir: t.TempDir(),
		Logger:     testLogger(),
	})
}

func writeSourcePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manual.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 not really"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractFromPDF(t *testing.T) {
	t.Run("unknown model rejected before ocr", func(t *testing.T) {
		engine := ocr.NewMockEngine()
		p := newTestPipeline(t, providers.NewMockClient(), engine)

		_, err := p.ExtractFromPDF(context.Background(), writeSourcePDF(t), Options{ModelName: "no-such-model"})
		var modelErr *providers.UnsupportedModelError
		if !errors.As(err, &modelErr) {
			t.Fatalf("expected *UnsupportedModelError, got %v", err)
		}
		if engine.ProcessCount() != 0 {
			t.Errorf("ocr ran %d times for an unknown model", engine.ProcessCount())
		}
	})

	t.Run("invalid schema rejected before ocr", func(t *testing.T) {
		engine := ocr.NewMockEngine()
		p := newTestPipeline(t, providers.NewMockClient(), engine)

		_, err := p.ExtractFromPDF(context.Background(), writeSourcePDF(t), Options{
			ModelName:  "test-model",
			JSONSchema: map[string]any{"type": "not-a-real-type"},
		})
		var valErr *schema.ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("expected *schema.ValidationError, got %v", err)
		}
		if engine.ProcessCount() != 0 {
			t.Errorf("ocr ran %d times for an invalid schema", engine.ProcessCount())
		}
	})

	t.Run("ocr failure surfaces", func(t *testing.T) {
		engine := ocr.NewMockEngine()
		engine.ShouldFail = true
		p := newTestPipeline(t, providers.NewMockClient(), engine)

		src := writeSourcePDF(t)
		_, err := p.ExtractFromPDF(context.Background(), src, Options{ModelName: "test-model"})
		var ocrErr *ocr.Failure
		if !errors.As(err, &ocrErr) {
			t.Fatalf("expected *ocr.Failure, got %v", err)
		}
		if ocrErr.Path != src {
			t.Errorf("failure names %q, want the source path %q", ocrErr.Path, src)
		}
	})

	t.Run("unreadable ocr output surfaces as read error", func(t *testing.T) {
		// The mock engine copies the fake source bytes through, which no PDF
		// reader can parse.
		engine := ocr.NewMockEngine()
		p := newTestPipeline(t, providers.NewMockClient(), engine)

		_, err := p.ExtractFromPDF(context.Background(), writeSourcePDF(t), Options{ModelName: "test-model"})
		var readErr *pdftext.ReadError
		if !errors.As(err, &readErr) {
			t.Fatalf("expected *pdftext.ReadError, got %v", err)
		}
		if engine.ProcessCount() != 1 {
			t.Errorf("ocr ran %d times, want 1", engine.ProcessCount())
		}
	})

	t.Run("temp artifacts removed on failure paths", func(t *testing.T) {
		scratch := t.TempDir()
		reg := testRegistry(providers.NewMockClient())
		p := NewPipeline(PipelineConfig{
			Engine:     ocr.NewMockEngine(),
			Runnable:   NewRunnable(RunnableConfig{Registry: reg, Logger: testLogger()}),
			Registry:   reg,
			ScratchDir: scratch,
			Logger:     testLogger(),
		})

		_, _ = p.ExtractFromPDF(context.Background(), writeSourcePDF(t), Options{ModelName: "test-model"})

		entries, err := os.ReadDir(scratch)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 0 {
			t.Errorf("scratch dir not cleaned up, %d entries remain", len(entries))
		}
	})

	t.Run("concurrent requests use distinct temp paths", func(t *testing.T) {
		scratch := t.TempDir()
		reg := testRegistry(providers.NewMockClient())

		seen := make(chan string, 2)
		engine := &pathRecordingEngine{paths: seen}
		p := NewPipeline(PipelineConfig{
			Engine:     engine,
			Runnable:   NewRunnable(RunnableConfig{Registry: reg, Logger: testLogger()}),
			Registry:   reg,
			ScratchDir: scratch,
			Logger:     testLogger(),
		})

		src := writeSourcePDF(t)
		done := make(chan struct{}, 2)
		for i := 0; i < 2; i++ {
			go func() {
				defer func() { done <- struct{}{} }()
				_, _ = p.ExtractFromPDF(context.Background(), src, Options{ModelName: "test-model"})
			}()
		}
		<-done
		<-done

		first, second := <-seen, <-seen
		if first == second {
			t.Errorf("both requests wrote to %q", first)
		}
	})
}

// pathRecordingEngine records each OCR destination path and fails, so the
// pipeline stops after the OCR stage.
type pathRecordingEngine struct {
	paths chan string
}

func (e *pathRecordingEngine) Name() string { return "record" }

func (e *pathRecordingEngine) Process(ctx context.Context, inputPDF, outputPDF string) error {
	e.paths <- outputPDF
	return &ocr.Failure{Path: inputPDF, Err: errors.New("stop here")}
}

func TestExtractFromText(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = `[{"issue": "overheating", "page_number": 12}]`
	p := newTestPipeline(t, mock, ocr.NewMockEngine())

	resp, err := p.ExtractFromText(context.Background(), &Request{
		Text:      "--- Page 12 ---\nMotor overheats under load.",
		ModelName: "test-model",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("expected 1 record, got %d", len(resp.Data))
	}
	if resp.Data[0]["issue"] != "overheating" {
		t.Errorf("unexpected record: %v", resp.Data[0])
	}
}
