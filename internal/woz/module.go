// Package woz provides the WOZ valuation bounded context module.
package woz

import (
	"pandoorac_backend/internal/woz/service"
	"pandoorac_backend/platform/logger"
)

// Module is the WOZ bounded context module.
type Module struct {
	service *service.Service
}

// NewModule creates and initializes the WOZ module. The resolver is the
// address locator (PDOK); the valuation provider is currently the synthetic
// stub until an official WOZ source becomes available.
func NewModule(resolver service.LocationResolver, log *logger.Logger) *Module {
	svc := service.New(resolver, &service.StubValuationProvider{}, log)

	log.Info("woz module initialized", "provider", "stub")

	return &Module{service: svc}
}

// Service returns the WOZ service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}
