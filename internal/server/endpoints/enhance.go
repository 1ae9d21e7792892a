package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/docbridge/bridge/internal/api"
	"github.com/docbridge/bridge/internal/enhance"
	"github.com/docbridge/bridge/internal/svcctx"
)

// EnhanceRequest asks the enhancement collaborator to clean up page images.
// Paths must be visible to the collaborator (shared scratch directory).
type EnhanceRequest struct {
	ImagePaths []string `json:"image_paths"`
	Task       string   `json:"task,omitempty"`
}

// EnhanceResponse returns the enhanced image paths in input order.
type EnhanceResponse struct {
	EnhancedPaths []string `json:"enhanced_paths"`
}

// EnhanceEndpoint handles POST /api/enhance.
type EnhanceEndpoint struct{}

var _ api.Endpoint = (*EnhanceEndpoint)(nil)

func (e *EnhanceEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/enhance", e.handler
}

func (e *EnhanceEndpoint) RequiresInit() bool { return false }

func (e *EnhanceEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req EnhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if len(req.ImagePaths) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "image_paths is required")
		return
	}

	pool := svcctx.EnhancePoolFrom(r.Context())
	if pool == nil {
		writeError(w, http.StatusServiceUnavailable, "image enhancement is not enabled")
		return
	}

	task := enhance.Task(req.Task)
	if req.Task == "" {
		if cfgMgr := svcctx.ConfigManagerFrom(r.Context()); cfgMgr != nil {
			task = enhance.Task(cfgMgr.Get().Enhance.Task)
		}
	}
	if !task.Valid() {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("unknown enhancement task %q", task))
		return
	}

	paths, err := pool.EnhancePages(r.Context(), req.ImagePaths, task)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, EnhanceResponse{EnhancedPaths: paths})
}

func (e *EnhanceEndpoint) Command(getServerURL func() string) *cobra.Command {
	var task string

	cmd := &cobra.Command{
		Use:   "enhance <image>...",
		Short: "Enhance page images via the collaborator",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp EnhanceResponse
			req := EnhanceRequest{ImagePaths: args, Task: task}
			if err := client.Post(cmd.Context(), "/api/enhance", &req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}

	cmd.Flags().StringVar(&task, "task", "", "enhancement task: deblur, binarize, or unwatermark")
	return cmd
}
