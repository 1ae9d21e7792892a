package endpoints

import (
	"github.com/docbridge/bridge/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},

		// Extraction endpoints
		&ExtractEndpoint{},
		&ExtractTextEndpoint{},

		// Model registry
		&ModelsEndpoint{},

		// Image enhancement
		&EnhanceEndpoint{},
	}
}
