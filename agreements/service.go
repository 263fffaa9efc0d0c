package agreements

import (
	"context"
	"fmt"
	"log"

	"github.com/transferai/agreement-proxy/assist"
	"github.com/transferai/agreement-proxy/cache"
	"github.com/transferai/agreement-proxy/metrics"
)

// Service fetches agreement sets for a completed selection and aggregates
// the rendered document images behind them.
type Service struct {
	cache         cache.Cache
	apiClient     assist.APIClient
	metricsWriter *metrics.MetricsWriter
}

// NewService creates the agreements service
func NewService(cacheService cache.Cache, apiClient assist.APIClient) *Service {
	return &Service{
		cache:         cacheService,
		apiClient:     apiClient,
		metricsWriter: metrics.NewMetricsWriter(metrics.ServiceAgreements),
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

// FetchSet retrieves the agreement records for a major selection, one per
// selected sending institution, with the statewide IGETC reference prepended
// when a credential is configured. Agreement sets are selection-specific and
// fetched fresh rather than cached.
func (s *Service) FetchSet(ctx context.Context, sending []assist.Institution, receivingID, yearID, majorKey string) ([]assist.Agreement, []string, error) {
	if len(sending) == 0 {
		return nil, nil, fmt.Errorf("no sending institutions selected")
	}

	sendingIDs := make([]string, len(sending))
	namesByID := make(map[string]string, len(sending))
	for i, inst := range sending {
		sendingIDs[i] = inst.ID
		namesByID[inst.ID] = inst.Name
	}

	set, warnings, err := s.apiClient.ArticulationAgreements(ctx, assist.AgreementsRequest{
		SendingIDs:  sendingIDs,
		ReceivingID: receivingID,
		YearID:      yearID,
		MajorKey:    majorKey,
	})
	if err != nil {
		return nil, nil, err
	}

	// Backend responses carry ids only for some pairings; fill in the
	// display names from the selection
	for i := range set {
		if set[i].SendingName == "" {
			set[i].SendingName = namesByID[set[i].SendingID]
		}
	}

	if igetc, ok := s.igetcRecord(ctx, sendingIDs[0], yearID); ok {
		set = append([]assist.Agreement{igetc}, set...)
	}

	return set, warnings, nil
}

// igetcRecord fetches the IGETC reference document when a credential is
// available. Failures are logged and skipped so the per-institution
// agreements still render.
func (s *Service) igetcRecord(ctx context.Context, sendingID, yearID string) (assist.Agreement, bool) {
	if !s.apiClient.HasAuthToken() {
		return assist.Agreement{}, false
	}

	filename, err := s.apiClient.IgetcAgreement(ctx, sendingID, yearID)
	if err != nil {
		log.Printf("Agreements: IGETC fetch failed: %v", err)
		return assist.Agreement{}, false
	}
	if filename == "" {
		return assist.Agreement{}, false
	}

	return assist.Agreement{
		SendingID:   assist.IgetcID,
		SendingName: "IGETC Requirements",
		PdfFilename: filename,
		IsIgetc:     true,
	}, true
}
