package api

import (
	"net/http"

	"github.com/spf13/cobra"
)

// Endpoint is one operation of the extraction server, exposed twice: as an
// HTTP route on the serve mux and, where it makes sense, as a subcommand of
// `bridge api` that calls that route over HTTP. Implementations live in
// internal/server/endpoints and cover health, model listing, document
// extraction, and page enhancement.
type Endpoint interface {
	// Route returns the HTTP method, path, and handler to mount.
	Route() (method, path string, handler http.HandlerFunc)

	// RequiresInit reports whether the route needs at least one model
	// binding in the provider registry before it can serve requests.
	// Such routes answer 503 until the registry is populated.
	RequiresInit() bool

	// Command returns the CLI counterpart of the route, or nil for
	// routes with no sensible command-line form (file uploads).
	// getServerURL is evaluated when the command runs, after flag
	// parsing has settled the --server value.
	Command(getServerURL func() string) *cobra.Command
}
