package core

import (
	"context"
	"os"

	"github.com/transferai/agreement-proxy/academic_years"
	"github.com/transferai/agreement-proxy/agreements"
	"github.com/transferai/agreement-proxy/api"
	"github.com/transferai/agreement-proxy/assist"
	"github.com/transferai/agreement-proxy/cache"
	"github.com/transferai/agreement-proxy/config"
	"github.com/transferai/agreement-proxy/institutions"
	"github.com/transferai/agreement-proxy/majors"
	"github.com/transferai/agreement-proxy/metrics"
	"github.com/transferai/agreement-proxy/selection"
)

// Setup creates and registers all services
func Setup(ctx context.Context, cfg *config.Config) (*Registry, error) {
	registry := NewRegistry()

	// Cache tiers back every fetcher below
	cacheService, err := cache.NewService(cfg.Cache)
	if err != nil {
		return nil, err
	}
	registry.Register(cacheService)

	// One backend client shared by all fetchers, with request metrics
	apiClient := assist.NewClient(cfg, metrics.NewMetricsWriter(metrics.ServiceAssist))

	institutionsService := institutions.NewService(cacheService, cfg, apiClient)
	registry.Register(institutionsService)

	yearsService := academic_years.NewService(cacheService, apiClient)
	registry.Register(yearsService)

	majorsService := majors.NewService(cacheService, apiClient)
	registry.Register(majorsService)

	agreementsService := agreements.NewService(cacheService, apiClient)
	registry.Register(agreementsService)

	// The selection graph drives all dependent fetches
	graph := selection.NewGraph(institutionsService, yearsService, majorsService, agreementsService)
	registry.Register(graph)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := api.New(port, institutionsService, graph, cacheService, apiClient.AuthExpired())
	registry.Register(server)

	return registry, nil
}
