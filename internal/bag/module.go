// Package bag provides the BAG building register bounded context module.
package bag

import (
	"pandoorac_backend/internal/bag/client"
	"pandoorac_backend/internal/bag/service"
	"pandoorac_backend/platform/config"
	"pandoorac_backend/platform/logger"
)

// Module is the BAG bounded context module.
type Module struct {
	service *service.Service
	enabled bool
}

// NewModule creates and initializes the BAG module.
// Returns a disabled module when no API key is configured (graceful
// degradation: lookups then fall back to the public locator).
func NewModule(cfg config.BAGConfig, log *logger.Logger) *Module {
	if !cfg.IsBAGEnabled() {
		log.Info("bag module disabled: BAG_API_KEY not configured")
		return &Module{enabled: false}
	}

	apiClient := client.New(cfg.GetBAGAPIURL(), cfg.GetBAGAPIKey(), log)
	svc := service.New(apiClient, log)

	log.Info("bag module initialized")

	return &Module{
		service: svc,
		enabled: true,
	}
}

// Service returns the BAG service for external use.
// Returns nil if the module is disabled.
func (m *Module) Service() *service.Service {
	if m == nil || !m.enabled {
		return nil
	}
	return m.service
}

// IsEnabled returns true if the BAG module is configured and enabled.
func (m *Module) IsEnabled() bool {
	return m != nil && m.enabled
}
