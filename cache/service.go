package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"golang.org/x/sync/singleflight"

	"github.com/transferai/agreement-proxy/metrics"
)

// Service implements Cache with a memory tier in front of a persistent tier.
// At most one of {memory hit, persistent hit, loader call} happens per Resolve.
type Service struct {
	memory        *GoCache
	persistent    *BadgerStore
	group         singleflight.Group
	config        Config
	metricsWriter *metrics.MetricsWriter
}

// NewService creates a new cache service with the given configuration.
// The persistent tier is optional; when disabled the service runs memory-only.
func NewService(config Config) (*Service, error) {
	memory := NewGoCache(config.GoCache.DefaultExpiration, config.GoCache.CleanupInterval)

	var persistent *BadgerStore
	if config.Badger.Enabled {
		store, err := NewBadgerStore(config.Badger)
		if err != nil {
			return nil, err
		}
		persistent = store
	}

	return &Service{
		memory:        memory,
		persistent:    persistent,
		config:        config,
		metricsWriter: metrics.NewMetricsWriter(metrics.ServiceCache),
	}, nil
}

// Start implements core.Interface
func (s *Service) Start(ctx context.Context) error {
	if s.memory == nil {
		return fmt.Errorf("cache service not properly initialized")
	}
	return nil
}

// Stop implements core.Interface
func (s *Service) Stop() {
	if s.memory != nil {
		s.memory.Clear()
	}
	if s.persistent != nil {
		if err := s.persistent.Close(); err != nil {
			log.Printf("Cache: Error closing persistent store: %v", err)
		}
	}
}

// Resolve retrieves data by key from the cache tiers or loads it using loader
func (s *Service) Resolve(key string, loader LoaderFunc, opts ResolveOptions) ([]byte, error) {
	// A key that could not be built must bypass both tiers entirely
	if key == NotCacheable {
		return loader()
	}

	if !opts.ForceRefresh {
		if data, found := s.memory.Get(key); found {
			return data, nil
		}
	}

	// Concurrent resolves for the same key share one loader call. Tiers are
	// re-checked inside the flight so waiters started after a completed write
	// still get the cached value without a second fetch. Forced refreshes fly
	// separately: joining a regular flight could hand back tier-cached data.
	flightKey := key
	if opts.ForceRefresh {
		flightKey = "force\x00" + key
	}
	data, err, _ := s.group.Do(flightKey, func() (interface{}, error) {
		if !opts.ForceRefresh {
			if data, found := s.memory.Get(key); found {
				return data, nil
			}
			if data, found := s.persistentGet(key); found {
				s.memory.Set(key, data)
				return data, nil
			}
		}

		data, err := loader()
		if err != nil {
			// Errors are never cached
			return nil, err
		}
		s.writeThrough(key, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return data.([]byte), nil
}

// Get retrieves data by key from the cache tiers without loading
func (s *Service) Get(key string) ([]byte, bool) {
	if key == NotCacheable {
		return nil, false
	}
	if data, found := s.memory.Get(key); found {
		return data, true
	}
	if data, found := s.persistentGet(key); found {
		s.memory.Set(key, data)
		return data, true
	}
	return nil, false
}

// Set stores data in both tiers
func (s *Service) Set(key string, data []byte) {
	if key == NotCacheable {
		return
	}
	s.writeThrough(key, data)
}

// Delete removes a key from both tiers
func (s *Service) Delete(key string) {
	if key == NotCacheable {
		return
	}
	s.memory.Delete(key)
	if s.persistent != nil {
		s.persistent.Delete(key)
	}
	s.metricsWriter.RecordCacheSize(s.memory.ItemCount())
}

func (s *Service) persistentGet(key string) ([]byte, bool) {
	if s.persistent == nil {
		return nil, false
	}
	return s.persistent.Get(key)
}

// writeThrough writes to the memory tier first; a failed durable write is
// logged and swallowed, the memory tier stays authoritative for this process.
func (s *Service) writeThrough(key string, data []byte) {
	s.memory.Set(key, data)
	if s.persistent != nil {
		if err := s.persistent.Set(key, data); err != nil {
			log.Printf("Cache: Error persisting key %s: %v", key, err)
		}
	}
	s.metricsWriter.RecordCacheSize(s.memory.ItemCount())
}

// Stats returns statistics about the cache service
func (s *Service) Stats() ServiceStats {
	return ServiceStats{
		MemoryItems:       s.memory.ItemCount(),
		PersistentEnabled: s.persistent != nil,
	}
}

// ServiceStats represents cache service statistics
type ServiceStats struct {
	MemoryItems       int  // Number of items in the memory tier
	PersistentEnabled bool // Whether the persistent tier is enabled
}

// ResolveJSON resolves key via loader and unmarshals the payload into out
func ResolveJSON(c Cache, key string, loader LoaderFunc, opts ResolveOptions, out interface{}) error {
	data, err := c.Resolve(key, loader, opts)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		// Cached bytes are validated on read, so this can only be a shape
		// mismatch between the payload and out
		return fmt.Errorf("failed to decode payload for key %s: %w", key, err)
	}
	return nil
}
