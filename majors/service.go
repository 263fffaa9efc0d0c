package majors

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/transferai/agreement-proxy/assist"
	"github.com/transferai/agreement-proxy/cache"
	"github.com/transferai/agreement-proxy/metrics"
)

const (
	majorsResourceTag       = "majors"
	availabilityResourceTag = "availability"
)

// Service provides the major/department listings and the category
// availability gate for a selection context.
type Service struct {
	cache         cache.Cache
	apiClient     assist.APIClient
	metricsWriter *metrics.MetricsWriter
}

// NewService creates the majors service
func NewService(cacheService cache.Cache, apiClient assist.APIClient) *Service {
	return &Service{
		cache:         cacheService,
		apiClient:     apiClient,
		metricsWriter: metrics.NewMetricsWriter(metrics.ServiceMajors),
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

// List returns the major or department mapping for the context, cached per
// (sending, receiving, year, category).
func (s *Service) List(ctx context.Context, sendingID, receivingID, yearID string, category assist.Category) (assist.NameIDMap, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	key := cache.BuildKey(majorsResourceTag, sendingID, receivingID, yearID, string(category))

	start := time.Now()
	loaded := false
	var listing assist.NameIDMap
	err := cache.ResolveJSON(s.cache, key, func() ([]byte, error) {
		loaded = true
		s.metricsWriter.RecordCacheMiss()
		data, err := s.apiClient.Majors(ctx, sendingID, receivingID, yearID, category)
		if err != nil {
			return nil, err
		}
		return json.Marshal(data)
	}, cache.ResolveOptions{}, &listing)
	if err != nil {
		return nil, err
	}
	if !loaded {
		s.metricsWriter.RecordCacheHit()
	}
	s.metricsWriter.RecordResolveDuration(start)
	if listing == nil {
		listing = assist.NameIDMap{}
	}
	return listing, nil
}

// Check probes both categories concurrently and returns which of them have
// agreements for the context. Each boolean is cached per category. A failed
// probe counts as unavailable and is not cached, so the next check retries.
func (s *Service) Check(ctx context.Context, sendingID, receivingID, yearID string) (Availability, error) {
	var availability Availability
	var wg sync.WaitGroup

	probe := func(category assist.Category, out *bool) {
		defer wg.Done()
		available, err := s.categoryAvailable(ctx, sendingID, receivingID, yearID, category)
		if err != nil {
			log.Printf("Majors: Availability probe for %s failed: %v", category, err)
			*out = false
			return
		}
		*out = available
	}

	wg.Add(2)
	go probe(assist.CategoryMajor, &availability.Majors)
	go probe(assist.CategoryDept, &availability.Departments)
	wg.Wait()

	return availability, nil
}

func (s *Service) categoryAvailable(ctx context.Context, sendingID, receivingID, yearID string, category assist.Category) (bool, error) {
	key := cache.BuildKey(availabilityResourceTag, sendingID, receivingID, yearID, string(category))

	start := time.Now()
	loaded := false
	var available bool
	err := cache.ResolveJSON(s.cache, key, func() ([]byte, error) {
		loaded = true
		s.metricsWriter.RecordCacheMiss()
		listing, err := s.apiClient.Majors(ctx, sendingID, receivingID, yearID, category)
		if err != nil {
			return nil, err
		}
		return json.Marshal(len(listing) > 0)
	}, cache.ResolveOptions{}, &available)
	if err != nil {
		return false, err
	}
	if !loaded {
		s.metricsWriter.RecordCacheHit()
	}
	s.metricsWriter.RecordResolveDuration(start)
	return available, nil
}
