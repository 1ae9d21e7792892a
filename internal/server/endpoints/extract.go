package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/docbridge/bridge/internal/api"
	"github.com/docbridge/bridge/internal/extract"
	"github.com/docbridge/bridge/internal/ocr"
	"github.com/docbridge/bridge/internal/pdftext"
	"github.com/docbridge/bridge/internal/providers"
	"github.com/docbridge/bridge/internal/schema"
	"github.com/docbridge/bridge/internal/svcctx"
)

// ExtractEndpoint handles POST /api/extract with a multipart PDF upload.
type ExtractEndpoint struct{}

var _ api.Endpoint = (*ExtractEndpoint)(nil)

func (e *ExtractEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/extract", e.handler
}

func (e *ExtractEndpoint) RequiresInit() bool { return true }

func (e *ExtractEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 100 << 20 // 100MB
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "no file uploaded")
		return
	}
	fh := files[0]
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("file %s is not a PDF", fh.Filename))
		return
	}

	opts := extract.Options{
		ModelName:    r.FormValue("model_name"),
		Instructions: r.FormValue("instructions"),
	}
	if raw := r.FormValue("json_schema"); raw != "" {
		var schemaMap map[string]any
		if err := json.Unmarshal([]byte(raw), &schemaMap); err != nil {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("json_schema is not valid JSON: %v", err))
			return
		}
		opts.JSONSchema = schemaMap
	}

	pipeline := svcctx.PipelineFrom(r.Context())
	if pipeline == nil {
		writeError(w, http.StatusServiceUnavailable, "pipeline not initialized")
		return
	}

	// Spool the upload to disk; the OCR engine works on paths.
	tempDir, err := os.MkdirTemp("", "bridge-upload-*")
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create temp dir: %v", err))
		return
	}
	defer os.RemoveAll(tempDir)

	src, err := fh.Open()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to open uploaded file: %v", err))
		return
	}
	defer src.Close()

	pdfPath := filepath.Join(tempDir, "upload-"+uuid.NewString()+".pdf")
	dst, err := os.Create(pdfPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create file: %v", err))
		return
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save file: %v", err))
		return
	}
	dst.Close()

	resp, err := pipeline.ExtractFromPDF(r.Context(), pdfPath, opts)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *ExtractEndpoint) Command(_ func() string) *cobra.Command {
	// No CLI command for file upload; `bridge extract` runs the pipeline directly.
	return nil
}

// statusForError maps pipeline errors to HTTP status codes. Request-shaped
// problems are 4xx, model misbehavior is 502, everything else is 500.
func statusForError(err error) int {
	var valErr *schema.ValidationError
	if errors.As(err, &valErr) {
		return http.StatusUnprocessableEntity
	}
	var modelErr *providers.UnsupportedModelError
	if errors.As(err, &modelErr) {
		return http.StatusUnprocessableEntity
	}
	var parseErr *extract.ModelOutputParseError
	if errors.As(err, &parseErr) {
		return http.StatusBadGateway
	}
	var ocrErr *ocr.Failure
	if errors.As(err, &ocrErr) {
		return http.StatusInternalServerError
	}
	var readErr *pdftext.ReadError
	if errors.As(err, &readErr) {
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
