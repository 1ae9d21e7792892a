package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
)

type fakeEndpoint struct {
	method       string
	path         string
	requiresInit bool
	handler      http.HandlerFunc
	cmd          *cobra.Command
}

func (f *fakeEndpoint) Route() (string, string, http.HandlerFunc) {
	return f.method, f.path, f.handler
}

func (f *fakeEndpoint) RequiresInit() bool { return f.requiresInit }

func (f *fakeEndpoint) Command(func() string) *cobra.Command { return f.cmd }

func TestRegistryRoutes(t *testing.T) {
	handled := false
	wrapped := false
	reg := NewRegistry()
	reg.Register(&fakeEndpoint{
		method: "GET", path: "/api/open",
		handler: func(w http.ResponseWriter, r *http.Request) { handled = true },
	})
	reg.Register(&fakeEndpoint{
		method: "GET", path: "/api/guarded", requiresInit: true,
		handler: func(w http.ResponseWriter, r *http.Request) {},
	})

	mux := http.NewServeMux()
	reg.RegisterRoutes(mux, func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			wrapped = true
			next(w, r)
		}
	})

	t.Run("open route is served directly", func(t *testing.T) {
		mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/open", nil))
		if !handled {
			t.Error("handler not invoked")
		}
		if wrapped {
			t.Error("open route should not pass through the init middleware")
		}
	})

	t.Run("guarded route passes through the init middleware", func(t *testing.T) {
		mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/guarded", nil))
		if !wrapped {
			t.Error("middleware not invoked")
		}
	})
}

func TestRegistryBuildCommands(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeEndpoint{method: "GET", path: "/api/health", cmd: &cobra.Command{Use: "health"}})
	reg.Register(&fakeEndpoint{method: "POST", path: "/api/extract", cmd: nil})
	reg.Register(&fakeEndpoint{method: "GET", path: "/api/models", cmd: &cobra.Command{Use: "models"}})

	apiCmd := reg.BuildCommands(func() string { return "http://localhost:8080" })
	if apiCmd.Use != "api" {
		t.Errorf("unexpected command name %q", apiCmd.Use)
	}

	// The upload-only endpoint has no CLI form and must not appear.
	subs := apiCmd.Commands()
	if len(subs) != 2 {
		t.Fatalf("expected 2 subcommands, got %d", len(subs))
	}
	for _, c := range subs {
		if c.Use != "health" && c.Use != "models" {
			t.Errorf("unexpected subcommand %q", c.Use)
		}
	}

	if got := len(reg.Endpoints()); got != 3 {
		t.Errorf("expected 3 registered endpoints, got %d", got)
	}
}
