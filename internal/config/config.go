package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/docbridge/bridge/internal/providers"
)

// Config is the full service configuration.
type Config struct {
	// Models maps a caller-facing model name to its provider binding.
	Models map[string]ModelCfg `mapstructure:"models"`

	Defaults DefaultsCfg `mapstructure:"defaults"`
	OCR      OCRCfg      `mapstructure:"ocr"`
	Enhance  EnhanceCfg  `mapstructure:"enhance"`
	Server   ServerCfg   `mapstructure:"server"`

	// ScratchDir is where per-request temporary artifacts are written.
	// Empty means the OS temp directory.
	ScratchDir string `mapstructure:"scratch_dir"`
}

// ModelCfg binds a model name to a concrete chat provider.
type ModelCfg struct {
	Provider string `mapstructure:"provider"` // "openai" or "openrouter"
	Model    string `mapstructure:"model"`    // provider-side model identifier
	APIKey   string `mapstructure:"api_key"`  // supports ${ENV_VAR} syntax
	BaseURL  string `mapstructure:"base_url"` // optional override
	Enabled  bool   `mapstructure:"enabled"`
}

// DefaultsCfg holds pipeline defaults.
type DefaultsCfg struct {
	Model string `mapstructure:"model"`
}

// OCRCfg configures the OCR stage.
type OCRCfg struct {
	Binary         string   `mapstructure:"binary"`
	Languages      []string `mapstructure:"languages"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
}

// EnhanceCfg configures the optional image enhancement collaborator.
type EnhanceCfg struct {
	Enabled  bool       `mapstructure:"enabled"`
	Endpoint string     `mapstructure:"endpoint"`
	Task     string     `mapstructure:"task"`    // deblur, binarize, unwatermark
	Workers  int        `mapstructure:"workers"` // 0 means NumCPU
	Sidecar  SidecarCfg `mapstructure:"sidecar"`
}

// SidecarCfg configures the managed enhancement container.
type SidecarCfg struct {
	Managed       bool   `mapstructure:"managed"`
	Image         string `mapstructure:"image"`
	ContainerName string `mapstructure:"container_name"`
	HostPort      string `mapstructure:"host_port"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("models", defaults.Models)
	viper.SetDefault("defaults", defaults.Defaults)
	viper.SetDefault("ocr", defaults.OCR)
	viper.SetDefault("enhance", defaults.Enhance)
	viper.SetDefault("server", defaults.Server)
	viper.SetDefault("scratch_dir", defaults.ScratchDir)

	// Environment variables with BRIDGE_ prefix
	viper.SetEnvPrefix("BRIDGE")
	viper.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.bridge")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	pattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// ToRegistryConfig converts the model bindings to a providers registry config.
// It resolves all ${ENV_VAR} references in API keys.
func (c *Config) ToRegistryConfig() providers.RegistryConfig {
	cfg := providers.RegistryConfig{
		Models:       make(map[string]providers.ModelConfig),
		DefaultModel: c.Defaults.Model,
	}

	for name, m := range c.Models {
		cfg.Models[name] = providers.ModelConfig{
			Provider: m.Provider,
			Model:    m.Model,
			APIKey:   ResolveEnvVars(m.APIKey),
			BaseURL:  m.BaseURL,
			Enabled:  m.Enabled,
		}
	}

	return cfg
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Bridge configuration
# API keys use ${ENV_VAR} syntax to reference environment variables
# Set these in your shell: export OPENAI_API_KEY=xxx OPENROUTER_API_KEY=xxx

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
