// Package service provides business logic for BAG building lookups.
package service

import (
	"context"
	"sync"
	"time"

	"pandoorac_backend/internal/bag/client"
	"pandoorac_backend/internal/bag/transport"
	"pandoorac_backend/platform/address"
	"pandoorac_backend/platform/logger"
)

// cacheEntry holds a cached lookup result with expiration.
type cacheEntry struct {
	data      *transport.BuildingData
	expiresAt time.Time
}

// Service handles BAG lookups with caching.
type Service struct {
	client   *client.Client
	log      *logger.Logger
	cache    map[string]cacheEntry
	cacheMu  sync.RWMutex
	cacheTTL time.Duration
}

// New creates a new BAG service.
func New(client *client.Client, log *logger.Logger) *Service {
	return &Service{
		client:   client,
		log:      log,
		cache:    make(map[string]cacheEntry),
		cacheTTL: 24 * time.Hour, // Building registrations change rarely
	}
}

// LookupBuilding resolves a normalized address to building data, using the
// cache when available. Negative results are not cached so that a register
// update becomes visible on the next call.
func (s *Service) LookupBuilding(ctx context.Context, addr address.Normalized) (*transport.BuildingData, error) {
	key := addr.SearchTerm()

	if data := s.getFromCache(key); data != nil {
		return data, nil
	}

	data, err := s.client.LookupBuilding(ctx, addr)
	if err != nil {
		return nil, err
	}

	s.setCache(key, data)
	return data, nil
}

// ClearCache removes all cached entries.
func (s *Service) ClearCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cache = make(map[string]cacheEntry)
}

func (s *Service) getFromCache(key string) *transport.BuildingData {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()

	entry, ok := s.cache[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil
	}
	return entry.data
}

func (s *Service) setCache(key string, data *transport.BuildingData) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.cache[key] = cacheEntry{data: data, expiresAt: time.Now().Add(s.cacheTTL)}
}
