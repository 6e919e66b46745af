// Package handler exposes the geodata aggregation API over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pandoorac_backend/internal/geodata/service"
	"pandoorac_backend/internal/geodata/transport"
	"pandoorac_backend/platform/geo"
	"pandoorac_backend/platform/httpkit"
	"pandoorac_backend/platform/logger"
	"pandoorac_backend/platform/validator"
)

const defaultMapZoom = 16

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles the geodata HTTP endpoints.
type Handler struct {
	service *service.Service
	val     *validator.Validator
	log     *logger.Logger
}

// New creates a new geodata handler.
func New(svc *service.Service, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{service: svc, val: val, log: log}
}

// RegisterRoutes mounts the geodata routes on the given group.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/lookup", h.Lookup)
	group.GET("/records/:dossierID", h.GetRecord)
	group.GET("/woz", h.Valuations)
	group.GET("/walkscore", h.Walkability)
	group.POST("/duplicate-check", h.DuplicateCheck)
	group.GET("/map-data", h.MapData)
}

// Lookup aggregates all configured sources for one address.
func (h *Handler) Lookup(c *gin.Context) {
	var req transport.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	record, err := h.service.Lookup(c.Request.Context(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, record)
}

// GetRecord returns the stored record for a dossier.
func (h *Handler) GetRecord(c *gin.Context) {
	record, err := h.service.GetRecord(c.Request.Context(), c.Param("dossierID"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, record)
}

// Valuations returns the WOZ valuation history for an address.
func (h *Handler) Valuations(c *gin.Context) {
	var q transport.AddressQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	history, err := h.service.Valuations(c.Request.Context(), q)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, history)
}

// Walkability returns the walkability score for an address.
func (h *Handler) Walkability(c *gin.Context) {
	var q transport.AddressQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	score, err := h.service.WalkabilityForAddress(c.Request.Context(), q)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, score)
}

// DuplicateCheck reports the dossiers already registered on an address.
func (h *Handler) DuplicateCheck(c *gin.Context) {
	var req transport.DuplicateCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.service.DuplicateCheck(c.Request.Context(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, result)
}

// MapData positions a coordinate on the slippy map tile grid.
func (h *Handler) MapData(c *gin.Context) {
	var q transport.MapDataQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	if q.Zoom == 0 {
		q.Zoom = defaultMapZoom
	}

	tileX, tileY, ok := geo.TileIndex(q.Latitude, q.Longitude, q.Zoom)
	if !ok {
		httpkit.Error(c, http.StatusBadRequest, "coordinates outside the tile grid", nil)
		return
	}

	httpkit.OK(c, transport.MapData{
		Latitude:  q.Latitude,
		Longitude: q.Longitude,
		Zoom:      q.Zoom,
		TileX:     tileX,
		TileY:     tileY,
	})
}
