package institutions

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/transferai/agreement-proxy/assist"
	"github.com/transferai/agreement-proxy/cache"
	"github.com/transferai/agreement-proxy/config"
	"github.com/transferai/agreement-proxy/intersect"
	"github.com/transferai/agreement-proxy/metrics"
	"github.com/transferai/agreement-proxy/scheduler"
)

const (
	catalogCacheKey      = "institutions"
	receivingResourceTag = "receiving"
)

// receivingEntry is the cached payload per sending institution: the available
// receiving institutions plus any warnings the backend attached to them
type receivingEntry struct {
	Institutions assist.NameIDMap `json:"institutions"`
	Warnings     []string         `json:"warnings,omitempty"`
}

// Service provides the sending-institution catalog and, per selected sending
// set, the receiving institutions common to all senders.
type Service struct {
	cache          cache.Cache
	apiClient      assist.APIClient
	metricsWriter  *metrics.MetricsWriter
	catalogRefresh *scheduler.Scheduler
}

// NewService creates the institutions service
func NewService(cacheService cache.Cache, cfg *config.Config, apiClient assist.APIClient) *Service {
	service := &Service{
		cache:         cacheService,
		apiClient:     apiClient,
		metricsWriter: metrics.NewMetricsWriter(metrics.ServiceInstitutions),
	}

	if cfg.Assist.CatalogRefreshInterval > 0 {
		service.catalogRefresh = scheduler.New(cfg.Assist.CatalogRefreshInterval, func(ctx context.Context) {
			// Catalog changes between terms; refresh it past the cache
			if _, err := service.Catalog(ctx, true); err != nil {
				log.Printf("Institutions: Catalog refresh failed: %v", err)
			}
		})
	}

	return service
}

// Start implements core.Interface
func (s *Service) Start(ctx context.Context) error {
	if s.cache == nil {
		return fmt.Errorf("cache dependency not provided")
	}
	if s.catalogRefresh != nil {
		s.catalogRefresh.Start(ctx, false)
	}
	return nil
}

// Stop implements core.Interface
func (s *Service) Stop() {
	if s.catalogRefresh != nil {
		s.catalogRefresh.Stop()
	}
}

// Catalog returns the full sending-institution catalog, cached indefinitely.
// force bypasses both cache tiers and refreshes the stored copy.
func (s *Service) Catalog(ctx context.Context, force bool) (assist.NameIDMap, error) {
	start := time.Now()
	loaded := false
	var catalog assist.NameIDMap
	err := cache.ResolveJSON(s.cache, catalogCacheKey, func() ([]byte, error) {
		loaded = true
		s.metricsWriter.RecordCacheMiss()
		data, err := s.apiClient.Institutions(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(data)
	}, cache.ResolveOptions{ForceRefresh: force}, &catalog)
	if err != nil {
		return nil, err
	}
	if !loaded {
		s.metricsWriter.RecordCacheHit()
	}
	s.metricsWriter.RecordResolveDuration(start)
	return catalog, nil
}

// ReceivingOptions fetches the available receiving institutions for each
// selected sending institution concurrently, caches them per sender, and
// returns the intersection. A failed per-sender fetch contributes an empty
// mapping (fail-closed) and a warning, never an error.
func (s *Service) ReceivingOptions(ctx context.Context, sendingIDs []string) (assist.NameIDMap, []string, error) {
	if len(sendingIDs) == 0 {
		return assist.NameIDMap{}, nil, nil
	}

	entries := make([]receivingEntry, len(sendingIDs))
	var wg sync.WaitGroup
	for i, sendingID := range sendingIDs {
		wg.Add(1)
		go func(i int, sendingID string) {
			defer wg.Done()
			entry, err := s.receivingForSender(ctx, sendingID)
			if err != nil {
				log.Printf("Institutions: Failed to fetch receiving institutions for sender %s: %v", sendingID, err)
				entries[i] = receivingEntry{
					Institutions: assist.NameIDMap{},
					Warnings:     []string{fmt.Sprintf("could not load receiving institutions for sending institution %s: %v", sendingID, err)},
				}
				return
			}
			entries[i] = entry
		}(i, sendingID)
	}
	wg.Wait()

	mappings := make([]map[string]string, len(entries))
	var warnings []string
	for i, entry := range entries {
		mappings[i] = entry.Institutions
		warnings = append(warnings, entry.Warnings...)
	}

	return intersect.Intersect(mappings), warnings, nil
}

// receivingForSender resolves the per-sender mapping through the cache tiers
func (s *Service) receivingForSender(ctx context.Context, sendingID string) (receivingEntry, error) {
	key := cache.BuildKey(receivingResourceTag, sendingID)

	start := time.Now()
	loaded := false
	var entry receivingEntry
	err := cache.ResolveJSON(s.cache, key, func() ([]byte, error) {
		loaded = true
		s.metricsWriter.RecordCacheMiss()
		data, fetchWarnings, err := s.apiClient.ReceivingInstitutions(ctx, sendingID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(receivingEntry{Institutions: data, Warnings: fetchWarnings})
	}, cache.ResolveOptions{}, &entry)
	if err != nil {
		return receivingEntry{}, err
	}
	if !loaded {
		s.metricsWriter.RecordCacheHit()
	}
	s.metricsWriter.RecordResolveDuration(start)
	if entry.Institutions == nil {
		entry.Institutions = assist.NameIDMap{}
	}
	return entry, nil
}
