package academic_years

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/transferai/agreement-proxy/assist"
	"github.com/transferai/agreement-proxy/cache"
	"github.com/transferai/agreement-proxy/intersect"
	"github.com/transferai/agreement-proxy/metrics"
)

const yearsResourceTag = "years"

// yearsEntry is the cached payload per (sender, receiver) pair
type yearsEntry struct {
	Years    assist.NameIDMap `json:"years"`
	Warnings []string         `json:"warnings,omitempty"`
}

// Service provides the academic years for which every selected sending
// institution has agreements with the receiving institution.
type Service struct {
	cache         cache.Cache
	apiClient     assist.APIClient
	metricsWriter *metrics.MetricsWriter
}

// NewService creates the academic years service
func NewService(cacheService cache.Cache, apiClient assist.APIClient) *Service {
	return &Service{
		cache:         cacheService,
		apiClient:     apiClient,
		metricsWriter: metrics.NewMetricsWriter(metrics.ServiceYears),
	}
}

// Start implements core.Interface
func (s *Service) Start(ctx context.Context) error {
	if s.cache == nil {
		return fmt.Errorf("cache dependency not provided")
	}
	return nil
}

// Stop implements core.Interface
func (s *Service) Stop() {}

// YearOptions fetches the agreement years for each sending institution
// against the receiving institution concurrently and returns their
// intersection. A failed per-sender fetch contributes an empty mapping
// plus a warning, never an error.
func (s *Service) YearOptions(ctx context.Context, sendingIDs []string, receivingID string) (assist.NameIDMap, []string, error) {
	if len(sendingIDs) == 0 || receivingID == "" {
		return assist.NameIDMap{}, nil, nil
	}

	entries := make([]yearsEntry, len(sendingIDs))
	var wg sync.WaitGroup
	for i, sendingID := range sendingIDs {
		wg.Add(1)
		go func(i int, sendingID string) {
			defer wg.Done()
			entry, err := s.yearsForSender(ctx, sendingID, receivingID)
			if err != nil {
				log.Printf("AcademicYears: Failed to fetch years for sender %s: %v", sendingID, err)
				entries[i] = yearsEntry{
					Years:    assist.NameIDMap{},
					Warnings: []string{fmt.Sprintf("could not load academic years for sending institution %s: %v", sendingID, err)},
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
		mappings[i] = entry.Years
		warnings = append(warnings, entry.Warnings...)
	}

	return intersect.Intersect(mappings), warnings, nil
}

func (s *Service) yearsForSender(ctx context.Context, sendingID, receivingID string) (yearsEntry, error) {
	key := cache.BuildKey(yearsResourceTag, sendingID, receivingID)

	start := time.Now()
	loaded := false
	var entry yearsEntry
	err := cache.ResolveJSON(s.cache, key, func() ([]byte, error) {
		loaded = true
		s.metricsWriter.RecordCacheMiss()
		data, fetchWarnings, err := s.apiClient.AcademicYears(ctx, receivingID, sendingID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(yearsEntry{Years: data, Warnings: fetchWarnings})
	}, cache.ResolveOptions{}, &entry)
	if err != nil {
		return yearsEntry{}, err
	}
	if !loaded {
		s.metricsWriter.RecordCacheHit()
	}
	s.metricsWriter.RecordResolveDuration(start)
	if entry.Years == nil {
		entry.Years = assist.NameIDMap{}
	}
	return entry, nil
}
