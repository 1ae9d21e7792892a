package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/docbridge/bridge/internal/providers"
)

func TestOriginAllowed(t *testing.T) {
	cases := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"exact match", []string{"http://localhost:3000"}, "http://localhost:3000", true},
		{"wildcard", []string{"*"}, "http://anywhere.example", true},
		{"no match", []string{"http://localhost:3000"}, "http://evil.example", false},
		{"empty list", nil, "http://localhost:3000", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &Server{allowedOrigins: tc.allowed}
			if got := s.originAllowed(tc.origin); got != tc.want {
				t.Errorf("originAllowed(%q) = %v, want %v", tc.origin, got, tc.want)
			}
		})
	}
}

func TestWithCORS(t *testing.T) {
	s := &Server{allowedOrigins: []string{"http://localhost:3000"}}
	handler := s.withCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("allowed origin gets headers", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("Access-Control-Allow-Origin = %q", got)
		}
	})

	t.Run("other origin gets no headers", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
		}
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/api/extract", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
	})
}

func TestRequireInit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("empty registry returns 503", func(t *testing.T) {
		reg := providers.NewRegistry()
		reg.SetLogger(logger)
		s := &Server{registry: reg, logger: logger}

		called := false
		handler := s.requireInit(func(w http.ResponseWriter, r *http.Request) { called = true })
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest("POST", "/api/extract", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
		if called {
			t.Error("wrapped handler must not run before init")
		}
	})

	t.Run("populated registry passes through", func(t *testing.T) {
		reg := providers.NewRegistry()
		reg.SetLogger(logger)
		reg.Register("m", providers.Binding{Model: "m-v1", Client: providers.NewMockClient()})
		s := &Server{registry: reg, logger: logger}

		called := false
		handler := s.requireInit(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		})
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest("POST", "/api/extract", nil))

		if !called {
			t.Error("wrapped handler should run once initialized")
		}
	})
}
