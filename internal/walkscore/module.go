// Package walkscore provides the walkability scoring bounded context module.
package walkscore

import (
	"pandoorac_backend/internal/walkscore/client"
	"pandoorac_backend/platform/config"
	"pandoorac_backend/platform/logger"
)

// Module is the WalkScore bounded context module.
type Module struct {
	client  *client.Client
	enabled bool
}

// NewModule creates and initializes the WalkScore module.
// Returns a disabled module when no API key is configured.
func NewModule(cfg config.WalkScoreConfig, log *logger.Logger) *Module {
	if !cfg.IsWalkScoreEnabled() {
		log.Info("walkscore module disabled: WALKSCORE_API_KEY not configured")
		return &Module{enabled: false}
	}

	apiClient := client.New(cfg.GetWalkScoreAPIURL(), cfg.GetWalkScoreAPIKey(), log)

	log.Info("walkscore module initialized")

	return &Module{
		client:  apiClient,
		enabled: true,
	}
}

// Client returns the WalkScore client for external use.
// Returns nil if the module is disabled.
func (m *Module) Client() *client.Client {
	if m == nil || !m.enabled {
		return nil
	}
	return m.client
}

// IsEnabled returns true if the WalkScore module is configured and enabled.
func (m *Module) IsEnabled() bool {
	return m != nil && m.enabled
}
