package endpoints

import (
	"github.com/jackzampolin/papertree/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&MetricsEndpoint{},

		// Document endpoints
		&DocumentEndpoint{},
		&DiagnosticsEndpoint{},
		&ExportEndpoint{},

		// Outline endpoints
		&ChildrenEndpoint{},
		&ContentEndpoint{},

		// Media endpoints
		&GetMediaEndpoint{},
		&InsertMediaEndpoint{},
		&SetMediaEnabledEndpoint{},
	}
}
