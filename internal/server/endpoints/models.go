package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/docbridge/bridge/internal/api"
	"github.com/docbridge/bridge/internal/svcctx"
)

// ModelsResponse lists the model names extraction requests may use.
type ModelsResponse struct {
	Models  []string `json:"models"`
	Default string   `json:"default,omitempty"`
}

// ModelsEndpoint handles GET /api/models.
type ModelsEndpoint struct{}

var _ api.Endpoint = (*ModelsEndpoint)(nil)

func (e *ModelsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/models", e.handler
}

func (e *ModelsEndpoint) RequiresInit() bool { return false }

func (e *ModelsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	registry := svcctx.RegistryFrom(r.Context())
	if registry == nil {
		writeError(w, http.StatusServiceUnavailable, "model registry not initialized")
		return
	}

	writeJSON(w, http.StatusOK, ModelsResponse{
		Models:  registry.List(),
		Default: registry.DefaultModel(),
	})
}

func (e *ModelsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List supported extraction models",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ModelsResponse
			if err := client.Get(cmd.Context(), "/api/models", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
