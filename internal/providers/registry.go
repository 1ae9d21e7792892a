package providers

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// UnsupportedModelError is returned when a requested model name has no
// registered binding. It is a configuration error for the request, not a
// processing failure.
type UnsupportedModelError struct {
	Name      string
	Supported []string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("model %q not found, supported models: %v", e.Name, e.Supported)
}

// Binding is a resolved model handle: the caller-facing name, the provider-side
// model identifier, and the chat client that serves it.
type Binding struct {
	Name   string
	Model  string
	Client LLMClient
}

// Registry maps caller-facing model names to chat client bindings.
// It supports config-driven instantiation, hot-reload, and thread-safe access.
// Populated once at startup; Reload replaces bindings when config changes.
type Registry struct {
	mu           sync.RWMutex
	bindings     map[string]Binding
	defaultModel string
	logger       *slog.Logger
}

// NewRegistry creates a new empty model registry.
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[string]Binding),
		logger:   slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Register adds a model binding by name.
func (r *Registry) Register(name string, b Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.Name = name
	r.bindings[name] = b
	if r.logger != nil {
		r.logger.Info("registered model", "name", name, "provider", b.Client.Name())
	}
}

// Resolve returns the binding for a model name. An empty name resolves to the
// default model. Unknown names fail with *UnsupportedModelError.
func (r *Registry) Resolve(name string) (Binding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.defaultModel
	}
	b, ok := r.bindings[name]
	if !ok {
		return Binding{}, &UnsupportedModelError{Name: name, Supported: r.listLocked()}
	}
	return b, nil
}

// DefaultModel returns the configured default model name.
func (r *Registry) DefaultModel() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultModel
}

// List returns all registered model names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked()
}

func (r *Registry) listLocked() []string {
	names := make([]string, 0, len(r.bindings))
	for name := range r.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has checks if a model name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.bindings[name]
	return ok
}

// RegistryConfig defines the model bindings to instantiate from config.
type RegistryConfig struct {
	// Models maps caller-facing names to provider config.
	Models map[string]ModelConfig

	// DefaultModel is used when a request names no model.
	DefaultModel string
}

// ModelConfig matches config.ModelCfg with resolved API key.
type ModelConfig struct {
	Provider string // "openai", "openrouter"
	Model    string // provider-side model identifier
	APIKey   string // Resolved API key
	BaseURL  string
	Enabled  bool
}

// NewRegistryFromConfig creates a registry with bindings based on configuration.
// Only enabled models with valid API keys will be registered.
func NewRegistryFromConfig(cfg RegistryConfig) *Registry {
	r := NewRegistry()
	r.Reload(cfg)
	return r
}

// Reload updates the registry based on new configuration.
// Models that are no longer configured will be unregistered.
func (r *Registry) Reload(cfg RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := make(map[string]bool)

	for name, mc := range cfg.Models {
		if !mc.Enabled || mc.APIKey == "" {
			continue
		}
		want[name] = true

		existing, hasExisting := r.bindings[name]
		if hasExisting && !needsUpdate(existing, mc) {
			continue
		}

		client := createClient(mc)
		if client == nil {
			continue
		}
		r.bindings[name] = Binding{Name: name, Model: mc.Model, Client: client}
		if r.logger != nil {
			if hasExisting {
				r.logger.Info("updated model binding", "name", name, "provider", mc.Provider)
			} else {
				r.logger.Info("registered model binding", "name", name, "provider", mc.Provider)
			}
		}
	}

	for name := range r.bindings {
		if !want[name] {
			delete(r.bindings, name)
			if r.logger != nil {
				r.logger.Info("unregistered model binding", "name", name)
			}
		}
	}

	r.defaultModel = cfg.DefaultModel
}

// createClient creates a chat client based on provider type.
func createClient(cfg ModelConfig) LLMClient {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
		})
	case "openrouter":
		return NewOpenRouterClient(OpenRouterConfig{
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			DefaultModel: cfg.Model,
		})
	default:
		return nil
	}
}

// needsUpdate checks if a binding needs to be recreated.
func needsUpdate(b Binding, cfg ModelConfig) bool {
	if b.Model != cfg.Model {
		return true
	}
	switch c := b.Client.(type) {
	case *OpenAIClient:
		return cfg.Provider != "openai" || c.apiKey != cfg.APIKey || c.baseURL != cfg.BaseURL
	case *OpenRouterClient:
		return cfg.Provider != "openrouter" || c.apiKey != cfg.APIKey
	default:
		return true
	}
}
