// Package pdok provides the PDOK open geodata bounded context module.
package pdok

import (
	"pandoorac_backend/internal/pdok/client"
	"pandoorac_backend/internal/pdok/service"
	"pandoorac_backend/platform/logger"
)

// Module is the PDOK bounded context module. The underlying services are
// public, so the module is always enabled.
type Module struct {
	service *service.Service
}

// NewModule creates and initializes the PDOK module.
func NewModule(log *logger.Logger) *Module {
	apiClient := client.New(log)
	svc := service.New(apiClient, log)

	log.Info("pdok module initialized")

	return &Module{service: svc}
}

// Service returns the PDOK service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}
