package config

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Models: map[string]ModelCfg{
			"gpt-4o-mini": {
				Provider: "openai",
				Model:    "gpt-4o-mini",
				APIKey:   "${OPENAI_API_KEY}",
				Enabled:  true,
			},
			"gpt-4o": {
				Provider: "openai",
				Model:    "gpt-4o",
				APIKey:   "${OPENAI_API_KEY}",
				Enabled:  true,
			},
			"claude-sonnet": {
				Provider: "openrouter",
				Model:    "anthropic/claude-3.5-sonnet",
				APIKey:   "${OPENROUTER_API_KEY}",
				Enabled:  true,
			},
		},
		Defaults: DefaultsCfg{
			Model: "gpt-4o-mini",
		},
		OCR: OCRCfg{
			Binary:         "ocrmypdf",
			Languages:      []string{"eng"},
			TimeoutSeconds: 300,
		},
		Enhance: EnhanceCfg{
			Enabled:  false,
			Endpoint: "http://127.0.0.1:9190",
			Task:     "binarize",
			Workers:  0,
			Sidecar: SidecarCfg{
				Managed:       false,
				Image:         "ghcr.io/docbridge/degan-server:latest",
				ContainerName: "bridge-degan",
				HostPort:      "9190",
			},
		},
		Server: ServerCfg{
			Host:           "127.0.0.1",
			Port:           "8080",
			AllowedOrigins: []string{},
		},
		ScratchDir: "",
	}
}
