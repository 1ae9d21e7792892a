package providers

import (
	"errors"
	"testing"
)

func TestRegistryResolve(t *testing.T) {
	t.Run("resolves registered model", func(t *testing.T) {
		r := NewRegistry()
		mock := NewMockClient()
		r.Register("fast", Binding{Model: "gpt-4o-mini", Client: mock})

		b, err := r.Resolve("fast")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if b.Model != "gpt-4o-mini" {
			t.Errorf("expected gpt-4o-mini, got %s", b.Model)
		}
		if b.Client != mock {
			t.Error("expected the registered client")
		}
	})

	t.Run("unknown model fails with UnsupportedModelError", func(t *testing.T) {
		r := NewRegistry()
		r.Register("fast", Binding{Model: "gpt-4o-mini", Client: NewMockClient()})

		_, err := r.Resolve("nope")
		if err == nil {
			t.Fatal("expected error for unknown model")
		}
		var ume *UnsupportedModelError
		if !errors.As(err, &ume) {
			t.Fatalf("expected UnsupportedModelError, got %T", err)
		}
		if ume.Name != "nope" {
			t.Errorf("expected nope, got %s", ume.Name)
		}
		if len(ume.Supported) != 1 || ume.Supported[0] != "fast" {
			t.Errorf("expected supported=[fast], got %v", ume.Supported)
		}
	})

	t.Run("empty name resolves to default", func(t *testing.T) {
		r := NewRegistryFromConfig(RegistryConfig{
			Models: map[string]ModelConfig{
				"fast": {Provider: "openai", Model: "gpt-4o-mini", APIKey: "k", Enabled: true},
			},
			DefaultModel: "fast",
		})

		b, err := r.Resolve("")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if b.Name != "fast" {
			t.Errorf("expected fast, got %s", b.Name)
		}
	})
}

func TestRegistryReload(t *testing.T) {
	cfg := RegistryConfig{
		Models: map[string]ModelConfig{
			"fast":     {Provider: "openai", Model: "gpt-4o-mini", APIKey: "k1", Enabled: true},
			"big":      {Provider: "openrouter", Model: "anthropic/claude-3.5-sonnet", APIKey: "k2", Enabled: true},
			"disabled": {Provider: "openai", Model: "gpt-4o", APIKey: "k1", Enabled: false},
			"no-key":   {Provider: "openai", Model: "gpt-4o", Enabled: true},
		},
		DefaultModel: "fast",
	}

	r := NewRegistryFromConfig(cfg)

	t.Run("registers only enabled models with keys", func(t *testing.T) {
		names := r.List()
		if len(names) != 2 {
			t.Fatalf("expected 2 models, got %v", names)
		}
		if !r.Has("fast") || !r.Has("big") {
			t.Errorf("expected fast and big, got %v", names)
		}
	})

	t.Run("removes dropped models on reload", func(t *testing.T) {
		delete(cfg.Models, "big")
		r.Reload(cfg)

		if r.Has("big") {
			t.Error("expected big to be unregistered")
		}
		if !r.Has("fast") {
			t.Error("expected fast to survive reload")
		}
	})

	t.Run("updates default model on reload", func(t *testing.T) {
		cfg.DefaultModel = "fast"
		r.Reload(cfg)
		if r.DefaultModel() != "fast" {
			t.Errorf("expected default fast, got %s", r.DefaultModel())
		}
	})
}

func TestCreateClient(t *testing.T) {
	t.Run("openai", func(t *testing.T) {
		c := createClient(ModelConfig{Provider: "openai", Model: "gpt-4o", APIKey: "k"})
		if c == nil || c.Name() != OpenAIName {
			t.Errorf("expected openai client, got %v", c)
		}
	})

	t.Run("openrouter", func(t *testing.T) {
		c := createClient(ModelConfig{Provider: "openrouter", Model: "x", APIKey: "k"})
		if c == nil || c.Name() != OpenRouterName {
			t.Errorf("expected openrouter client, got %v", c)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		if c := createClient(ModelConfig{Provider: "bogus"}); c != nil {
			t.Errorf("expected nil for unknown provider, got %v", c)
		}
	})
}
