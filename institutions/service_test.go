package institutions

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/transferai/agreement-proxy/assist"
	mock_assist "github.com/transferai/agreement-proxy/assist/mocks"
	"github.com/transferai/agreement-proxy/cache"
	mock_cache "github.com/transferai/agreement-proxy/cache/mocks"
	"github.com/transferai/agreement-proxy/config"
	"github.com/transferai/agreement-proxy/metrics"
)

func newTestService(t *testing.T) (*Service, *mock_assist.MockAPIClient) {
	t.Helper()

	ctrl := gomock.NewController(t)
	apiClient := mock_assist.NewMockAPIClient(ctrl)

	cacheService, err := cache.NewService(cache.Config{})
	require.NoError(t, err)
	t.Cleanup(cacheService.Stop)

	cfg := config.DefaultConfig()
	cfg.Assist.CatalogRefreshInterval = 0

	return NewService(cacheService, &cfg, apiClient), apiClient
}

func TestCatalogCachedAcrossCalls(t *testing.T) {
	service, apiClient := newTestService(t)

	catalog := assist.NameIDMap{"De Anza College": "113", "Foothill College": "19"}
	apiClient.EXPECT().Institutions(gomock.Any()).Return(catalog, nil).Times(1)

	first, err := service.Catalog(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, catalog, first)

	second, err := service.Catalog(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, catalog, second)
}

func TestCatalogForceRefreshBypassesCache(t *testing.T) {
	service, apiClient := newTestService(t)

	stale := assist.NameIDMap{"De Anza College": "113"}
	fresh := assist.NameIDMap{"De Anza College": "113", "Foothill College": "19"}
	gomock.InOrder(
		apiClient.EXPECT().Institutions(gomock.Any()).Return(stale, nil),
		apiClient.EXPECT().Institutions(gomock.Any()).Return(fresh, nil),
	)

	_, err := service.Catalog(context.Background(), false)
	require.NoError(t, err)

	refreshed, err := service.Catalog(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, fresh, refreshed)

	// The refreshed copy replaced the cached one
	cached, err := service.Catalog(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, fresh, cached)
}

func TestCatalogRecordsLookupMetrics(t *testing.T) {
	service, apiClient := newTestService(t)

	apiClient.EXPECT().Institutions(gomock.Any()).
		Return(assist.NameIDMap{"De Anza College": "113"}, nil).Times(1)

	hitsBefore := testutil.ToFloat64(metrics.CacheLookupsTotal.WithLabelValues(metrics.ServiceInstitutions, "hit"))
	missesBefore := testutil.ToFloat64(metrics.CacheLookupsTotal.WithLabelValues(metrics.ServiceInstitutions, "miss"))

	_, err := service.Catalog(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, missesBefore+1, testutil.ToFloat64(metrics.CacheLookupsTotal.WithLabelValues(metrics.ServiceInstitutions, "miss")))

	_, err = service.Catalog(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, hitsBefore+1, testutil.ToFloat64(metrics.CacheLookupsTotal.WithLabelValues(metrics.ServiceInstitutions, "hit")))
	assert.Equal(t, missesBefore+1, testutil.ToFloat64(metrics.CacheLookupsTotal.WithLabelValues(metrics.ServiceInstitutions, "miss")))
}

func TestCatalogResolvesThroughCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	apiClient := mock_assist.NewMockAPIClient(ctrl)
	cacheService := mock_cache.NewMockCache(ctrl)

	cfg := config.DefaultConfig()
	cfg.Assist.CatalogRefreshInterval = 0
	service := NewService(cacheService, &cfg, apiClient)

	catalog := assist.NameIDMap{"De Anza College": "113"}
	apiClient.EXPECT().Institutions(gomock.Any()).Return(catalog, nil).Times(1)
	cacheService.EXPECT().
		Resolve("institutions", gomock.Any(), cache.ResolveOptions{ForceRefresh: true}).
		DoAndReturn(func(key string, loader cache.LoaderFunc, opts cache.ResolveOptions) ([]byte, error) {
			return loader()
		})

	result, err := service.Catalog(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, catalog, result)
}

func TestReceivingOptionsIntersection(t *testing.T) {
	service, apiClient := newTestService(t)

	apiClient.EXPECT().ReceivingInstitutions(gomock.Any(), "113").
		Return(assist.NameIDMap{"UC Berkeley": "79", "UCLA": "117"}, nil, nil).Times(1)
	apiClient.EXPECT().ReceivingInstitutions(gomock.Any(), "19").
		Return(assist.NameIDMap{"UC Berkeley": "79", "UC Davis": "89"}, nil, nil).Times(1)

	options, warnings, err := service.ReceivingOptions(context.Background(), []string{"113", "19"})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, assist.NameIDMap{"UC Berkeley": "79"}, options)

	// Per-sender results are cached, so a reshuffled selection needs no fetch
	options, _, err = service.ReceivingOptions(context.Background(), []string{"19", "113"})
	require.NoError(t, err)
	assert.Equal(t, assist.NameIDMap{"UC Berkeley": "79"}, options)
}

func TestReceivingOptionsFailedSenderFailsClosed(t *testing.T) {
	service, apiClient := newTestService(t)

	apiClient.EXPECT().ReceivingInstitutions(gomock.Any(), "113").
		Return(assist.NameIDMap{"UC Berkeley": "79"}, nil, nil).AnyTimes()
	apiClient.EXPECT().ReceivingInstitutions(gomock.Any(), "42").
		Return(nil, nil, assert.AnError).Times(2)

	options, warnings, err := service.ReceivingOptions(context.Background(), []string{"113", "42"})
	require.NoError(t, err)
	assert.Empty(t, options)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "42")

	// The failure was not cached, so the sender is retried next time
	_, warnings, err = service.ReceivingOptions(context.Background(), []string{"113", "42"})
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
}

func TestReceivingOptionsEmptySelection(t *testing.T) {
	service, _ := newTestService(t)

	options, warnings, err := service.ReceivingOptions(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, options)
	assert.Empty(t, warnings)
}

func TestReceivingOptionsBackendWarningsPropagated(t *testing.T) {
	service, apiClient := newTestService(t)

	apiClient.EXPECT().ReceivingInstitutions(gomock.Any(), "113").
		Return(assist.NameIDMap{"UC Berkeley": "79"}, []string{"partial articulation data for 2023"}, nil).Times(1)

	_, warnings, err := service.ReceivingOptions(context.Background(), []string{"113"})
	require.NoError(t, err)
	assert.Equal(t, []string{"partial articulation data for 2023"}, warnings)

	// Warnings ride along with the cached payload
	_, warnings, err = service.ReceivingOptions(context.Background(), []string{"113"})
	require.NoError(t, err)
	assert.Equal(t, []string{"partial articulation data for 2023"}, warnings)
}
