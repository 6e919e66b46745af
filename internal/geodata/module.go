// Package geodata provides the geodata aggregation bounded context module.
package geodata

import (
	"time"

	"pandoorac_backend/internal/geodata/handler"
	"pandoorac_backend/internal/geodata/ports"
	"pandoorac_backend/internal/geodata/service"
	apphttp "pandoorac_backend/internal/http"
	"pandoorac_backend/platform/logger"
	"pandoorac_backend/platform/validator"
)

// Deps bundles the aggregator's collaborators, wired by the composition
// root through the adapters package.
type Deps struct {
	Building      ports.BuildingResolver
	Locator       ports.AddressLocator
	Height        ports.HeightModelSource
	Topography    ports.TopographySource
	Parcels       ports.ParcelSource
	Walkability   ports.WalkabilitySource
	Feedback      ports.FeedbackSource
	Valuations    ports.ValuationSource
	Repository    ports.RecordRepository
	Cache         ports.LookupCache
	FanOutTimeout time.Duration
}

// Module is the geodata bounded context module.
type Module struct {
	service *service.Service
	handler *handler.Handler
}

// NewModule creates and initializes the geodata module.
func NewModule(deps Deps, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(service.Deps{
		Building:      deps.Building,
		Locator:       deps.Locator,
		Height:        deps.Height,
		Topography:    deps.Topography,
		Parcels:       deps.Parcels,
		Walkability:   deps.Walkability,
		Feedback:      deps.Feedback,
		Valuations:    deps.Valuations,
		Repository:    deps.Repository,
		Cache:         deps.Cache,
		Logger:        log,
		FanOutTimeout: deps.FanOutTimeout,
	})

	log.Info("geodata module initialized")

	return &Module{
		service: svc,
		handler: handler.New(svc, val, log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "geodata"
}

// RegisterRoutes mounts the geodata routes under /api/v1/geodata.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/geodata"))
}

// Service returns the aggregation service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}
