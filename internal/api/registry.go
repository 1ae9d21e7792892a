package api

import (
	"net/http"

	"github.com/spf13/cobra"
)

// Registry collects the server's endpoints so the HTTP mux and the `bridge
// api` command tree are always built from the same set. The server registers
// everything in internal/server/endpoints at startup.
type Registry struct {
	endpoints []Endpoint
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an endpoint to the registry.
func (r *Registry) Register(ep Endpoint) {
	r.endpoints = append(r.endpoints, ep)
}

// RegisterRoutes mounts every endpoint on mux. Routes that need model
// bindings are wrapped in initMiddleware so they refuse traffic until the
// provider registry has been loaded from config.
func (r *Registry) RegisterRoutes(mux *http.ServeMux, initMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	for _, ep := range r.endpoints {
		method, path, handler := ep.Route()
		if ep.RequiresInit() {
			handler = initMiddleware(handler)
		}
		mux.HandleFunc(method+" "+path, handler)
	}
}

// BuildCommands assembles the `api` command group from the registered
// endpoints. Endpoints without a CLI form, such as the PDF upload route,
// return a nil command and are skipped. getServerURL is evaluated per
// invocation so the --server flag is honored.
func (r *Registry) BuildCommands(getServerURL func() string) *cobra.Command {
	apiCmd := &cobra.Command{
		Use:   "api",
		Short: "Commands that call the running server",
		Long: `API commands call the running Bridge server via HTTP.

These commands require a running server (bridge serve).
Use --server to specify a custom server URL.

Examples:
  bridge api health             # Check server health
  bridge api models             # List supported models
  bridge api extract-text f.txt # Extract from a text file`,
	}

	for _, ep := range r.endpoints {
		if cmd := ep.Command(getServerURL); cmd != nil {
			apiCmd.AddCommand(cmd)
		}
	}

	return apiCmd
}

// Endpoints returns all registered endpoints.
func (r *Registry) Endpoints() []Endpoint {
	return r.endpoints
}
