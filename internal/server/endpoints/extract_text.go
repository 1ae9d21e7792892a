package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/docbridge/bridge/internal/api"
	"github.com/docbridge/bridge/internal/extract"
	"github.com/docbridge/bridge/internal/svcctx"
)

// ExtractTextEndpoint handles POST /api/extract/text for callers who already
// have page-tagged text and only want the model stage.
type ExtractTextEndpoint struct{}

var _ api.Endpoint = (*ExtractTextEndpoint)(nil)

func (e *ExtractTextEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/extract/text", e.handler
}

func (e *ExtractTextEndpoint) RequiresInit() bool { return true }

func (e *ExtractTextEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req extract.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusUnprocessableEntity, "text is required")
		return
	}

	pipeline := svcctx.PipelineFrom(r.Context())
	if pipeline == nil {
		writeError(w, http.StatusServiceUnavailable, "pipeline not initialized")
		return
	}

	resp, err := pipeline.ExtractFromText(r.Context(), &req)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *ExtractTextEndpoint) Command(getServerURL func() string) *cobra.Command {
	var modelName, instructions, schemaFile string

	cmd := &cobra.Command{
		Use:   "extract-text <text-file>",
		Short: "Extract troubleshooting records from a text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			req := extract.Request{
				Text:         string(text),
				ModelName:    modelName,
				Instructions: instructions,
			}
			if schemaFile != "" {
				raw, err := os.ReadFile(schemaFile)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(raw, &req.JSONSchema); err != nil {
					return fmt.Errorf("schema file is not valid JSON: %w", err)
				}
			}

			client := api.NewClient(getServerURL())
			var resp extract.Response
			if err := client.Post(cmd.Context(), "/api/extract/text", &req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}

	cmd.Flags().StringVar(&modelName, "model", "", "model name (default from server config)")
	cmd.Flags().StringVar(&instructions, "instructions", "", "supplemental extraction instructions")
	cmd.Flags().StringVar(&schemaFile, "schema", "", "path to a JSON Schema file")
	return cmd
}
