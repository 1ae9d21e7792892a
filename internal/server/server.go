package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/docbridge/bridge/internal/api"
	"github.com/docbridge/bridge/internal/config"
	"github.com/docbridge/bridge/internal/enhance"
	"github.com/docbridge/bridge/internal/extract"
	"github.com/docbridge/bridge/internal/ocr"
	"github.com/docbridge/bridge/internal/providers"
	"github.com/docbridge/bridge/internal/server/endpoints"
	"github.com/docbridge/bridge/internal/svcctx"
)

// Server is the main Bridge HTTP server. When a managed enhancement sidecar
// is configured it also owns that container's lifecycle, starting it on
// server start and stopping it on shutdown.
type Server struct {
	httpServer     *http.Server
	registry       *providers.Registry
	pipeline       *extract.Pipeline
	enhancePool    *enhance.Pool
	sidecarManager *enhance.DockerManager
	configMgr      *config.Manager
	logger         *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	allowedOrigins []string

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// ConfigManager provides configuration with hot-reload support.
	ConfigManager *config.Manager
	// Logger is the structured logger to use.
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.ConfigManager == nil {
		return nil, errors.New("config manager is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	c := cfg.ConfigManager.Get()

	host := c.Server.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := c.Server.Port
	if port == "" {
		port = "8080"
	}

	registry := providers.NewRegistry()
	registry.SetLogger(cfg.Logger)
	registry.Reload(c.ToRegistryConfig())

	cfg.ConfigManager.OnChange(func(c *config.Config) {
		registry.Reload(c.ToRegistryConfig())
		cfg.Logger.Info("provider registry reloaded from config")
	})

	engine := ocr.New(ocr.Config{
		Binary:    c.OCR.Binary,
		Languages: c.OCR.Languages,
		Timeout:   time.Duration(c.OCR.TimeoutSeconds) * time.Second,
		Logger:    cfg.Logger,
	})

	pipeline := extract.NewPipeline(extract.PipelineConfig{
		Engine: engine,
		Runnable: extract.NewRunnable(extract.RunnableConfig{
			Registry: registry,
			Logger:   cfg.Logger,
		}),
		Registry:   registry,
		ScratchDir: c.ScratchDir,
		Logger:     cfg.Logger,
	})

	s := &Server{
		registry:       registry,
		pipeline:       pipeline,
		configMgr:      cfg.ConfigManager,
		logger:         cfg.Logger,
		allowedOrigins: c.Server.AllowedOrigins,
	}

	if c.Enhance.Enabled {
		s.enhancePool = enhance.NewPool(enhance.PoolConfig{
			Enhancer: enhance.NewHTTPClient(enhance.HTTPConfig{
				BaseURL: c.Enhance.Endpoint,
			}),
			Workers: c.Enhance.Workers,
			Logger:  cfg.Logger,
		})

		if c.Enhance.Sidecar.Managed {
			mgr, err := enhance.NewDockerManager(enhance.DockerConfig{
				ContainerName: c.Enhance.Sidecar.ContainerName,
				Image:         c.Enhance.Sidecar.Image,
				ScratchPath:   c.ScratchDir,
				HostPort:      c.Enhance.Sidecar.HostPort,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create sidecar manager: %w", err)
			}
			s.sidecarManager = mgr
		}
	}

	s.services = &svcctx.Services{
		Registry:      registry,
		Pipeline:      pipeline,
		EnhancePool:   s.enhancePool,
		ConfigManager: cfg.ConfigManager,
		Logger:        cfg.Logger,
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(host, port),
		Handler:      s.withCORS(s.withServices(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute, // extraction requests block on OCR + model calls
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start starts the server and, if configured, the enhancement sidecar.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if s.sidecarManager != nil {
		s.logger.Info("starting enhancement sidecar")
		if err := s.sidecarManager.Start(ctx); err != nil {
			s.setNotRunning()
			return fmt.Errorf("failed to start enhancement sidecar: %w", err)
		}
		s.logger.Info("enhancement sidecar is ready", "url", s.sidecarManager.URL())
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server and the sidecar.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if s.sidecarManager != nil {
		s.logger.Info("stopping enhancement sidecar")
		if err := s.sidecarManager.Stop(shutdownCtx); err != nil {
			s.logger.Error("sidecar stop error", "error", err)
		}
		if err := s.sidecarManager.Close(); err != nil {
			s.logger.Error("sidecar manager close error", "error", err)
		}
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Registry returns the provider registry.
func (s *Server) Registry() *providers.Registry {
	return s.registry
}

// Pipeline returns the extraction pipeline.
func (s *Server) Pipeline() *extract.Pipeline {
	return s.pipeline
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withCORS applies the configured allowed origins to every response.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable until at least one model binding exists.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.registry.List()) == 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"no models configured"}`))
			return
		}
		next(w, r)
	}
}
