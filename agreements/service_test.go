package agreements

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/transferai/agreement-proxy/assist"
	mock_assist "github.com/transferai/agreement-proxy/assist/mocks"
	"github.com/transferai/agreement-proxy/cache"
)

func newTestService(t *testing.T) (*Service, *mock_assist.MockAPIClient) {
	t.Helper()

	ctrl := gomock.NewController(t)
	apiClient := mock_assist.NewMockAPIClient(ctrl)

	cacheService, err := cache.NewService(cache.Config{})
	require.NoError(t, err)
	t.Cleanup(cacheService.Stop)

	return NewService(cacheService, apiClient), apiClient
}

var testSending = []assist.Institution{
	{Name: "De Anza College", ID: "113"},
	{Name: "Foothill College", ID: "19"},
}

func TestFetchSetMapsNames(t *testing.T) {
	service, apiClient := newTestService(t)

	apiClient.EXPECT().ArticulationAgreements(gomock.Any(), assist.AgreementsRequest{
		SendingIDs:  []string{"113", "19"},
		ReceivingID: "79",
		YearID:      "74",
		MajorKey:    "cs-bs",
	}).Return([]assist.Agreement{
		{SendingID: "113", PdfFilename: "113-79-74-cs.pdf"},
		{SendingID: "19", PdfFilename: "19-79-74-cs.pdf"},
	}, nil, nil)
	apiClient.EXPECT().HasAuthToken().Return(false)

	set, warnings, err := service.FetchSet(context.Background(), testSending, "79", "74", "cs-bs")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, set, 2)
	assert.Equal(t, "De Anza College", set[0].SendingName)
	assert.Equal(t, "Foothill College", set[1].SendingName)
	assert.False(t, set[0].IsIgetc)
}

func TestFetchSetPrependsIgetc(t *testing.T) {
	service, apiClient := newTestService(t)

	apiClient.EXPECT().ArticulationAgreements(gomock.Any(), gomock.Any()).
		Return([]assist.Agreement{{SendingID: "113", PdfFilename: "113-79-74-cs.pdf"}}, nil, nil)
	apiClient.EXPECT().HasAuthToken().Return(true)
	apiClient.EXPECT().IgetcAgreement(gomock.Any(), "113", "74").
		Return("igetc-113-74.pdf", nil)

	set, _, err := service.FetchSet(context.Background(), testSending[:1], "79", "74", "cs-bs")
	require.NoError(t, err)
	require.Len(t, set, 2)
	assert.True(t, set[0].IsIgetc)
	assert.Equal(t, assist.IgetcID, set[0].SendingID)
	assert.Equal(t, "igetc-113-74.pdf", set[0].PdfFilename)
	assert.Equal(t, "113", set[1].SendingID)
}

func TestFetchSetIgetcFailureSkipped(t *testing.T) {
	service, apiClient := newTestService(t)

	apiClient.EXPECT().ArticulationAgreements(gomock.Any(), gomock.Any()).
		Return([]assist.Agreement{{SendingID: "113"}}, nil, nil)
	apiClient.EXPECT().HasAuthToken().Return(true)
	apiClient.EXPECT().IgetcAgreement(gomock.Any(), "113", "74").
		Return("", assert.AnError)

	set, _, err := service.FetchSet(context.Background(), testSending[:1], "79", "74", "cs-bs")
	require.NoError(t, err)
	require.Len(t, set, 1)
	assert.False(t, set[0].IsIgetc)
}

func TestFetchSetRequiresSelection(t *testing.T) {
	service, _ := newTestService(t)

	_, _, err := service.FetchSet(context.Background(), nil, "79", "74", "cs-bs")
	require.Error(t, err)
}

func TestAggregateImagesFetchesDistinctDocumentsOnce(t *testing.T) {
	service, apiClient := newTestService(t)

	// Two agreements share a document; it is rendered once
	set := []assist.Agreement{
		{SendingID: "113", PdfFilename: "shared.pdf"},
		{SendingID: "19", PdfFilename: "shared.pdf"},
		{SendingID: "61", PdfFilename: "61.pdf"},
	}
	apiClient.EXPECT().PdfImages(gomock.Any(), "shared.pdf").
		Return([]string{"shared-1.png", "shared-2.png"}, nil).Times(1)
	apiClient.EXPECT().PdfImages(gomock.Any(), "61.pdf").
		Return([]string{"61-1.png"}, nil).Times(1)

	images := service.AggregateImages(context.Background(), set)
	assert.Equal(t, []string{"shared-1.png", "shared-2.png"}, images.ImagesFor(0))
	assert.Equal(t, []string{"shared-1.png", "shared-2.png"}, images.ImagesFor(1))
	assert.Equal(t, []string{"61-1.png"}, images.ImagesFor(2))

	// Documents are cached; a second aggregation needs no renders
	images = service.AggregateImages(context.Background(), set)
	assert.Equal(t, []string{"61-1.png"}, images.ImagesFor(2))
}

func TestAggregateImagesFailureNotCached(t *testing.T) {
	service, apiClient := newTestService(t)

	set := []assist.Agreement{{SendingID: "113", PdfFilename: "broken.pdf"}}
	gomock.InOrder(
		apiClient.EXPECT().PdfImages(gomock.Any(), "broken.pdf").Return(nil, assert.AnError),
		apiClient.EXPECT().PdfImages(gomock.Any(), "broken.pdf").Return([]string{"broken-1.png"}, nil),
	)

	images := service.AggregateImages(context.Background(), set)
	assert.Empty(t, images.ImagesFor(0))

	// The failed render is retried on the next aggregation
	images = service.AggregateImages(context.Background(), set)
	assert.Equal(t, []string{"broken-1.png"}, images.ImagesFor(0))
}

func TestImageSetUnionFirstOccurrenceOrder(t *testing.T) {
	service, apiClient := newTestService(t)

	set := []assist.Agreement{
		{SendingID: "113", PdfFilename: "a.pdf"},
		{SendingID: "19", PdfFilename: "b.pdf"},
	}
	apiClient.EXPECT().PdfImages(gomock.Any(), "a.pdf").
		Return([]string{"p1.png", "p2.png"}, nil)
	apiClient.EXPECT().PdfImages(gomock.Any(), "b.pdf").
		Return([]string{"p2.png", "p3.png"}, nil)

	images := service.AggregateImages(context.Background(), set)
	assert.Equal(t, []string{"p1.png", "p2.png", "p3.png"}, images.Union())
}

func TestImageSetInitialActiveIndexSkipsIgetc(t *testing.T) {
	service, apiClient := newTestService(t)
	apiClient.EXPECT().PdfImages(gomock.Any(), gomock.Any()).Return([]string{}, nil).AnyTimes()

	withIgetc := service.AggregateImages(context.Background(), []assist.Agreement{
		{SendingID: assist.IgetcID, PdfFilename: "igetc.pdf", IsIgetc: true},
		{SendingID: "113", PdfFilename: "113.pdf"},
	})
	assert.Equal(t, 1, withIgetc.InitialActiveIndex())

	igetcOnly := service.AggregateImages(context.Background(), []assist.Agreement{
		{SendingID: assist.IgetcID, PdfFilename: "igetc.pdf", IsIgetc: true},
	})
	assert.Equal(t, 0, igetcOnly.InitialActiveIndex())
}

func TestImageSetMissingDocument(t *testing.T) {
	service, _ := newTestService(t)

	images := service.AggregateImages(context.Background(), []assist.Agreement{
		{SendingID: "113", PdfFilename: ""},
	})
	assert.Empty(t, images.ImagesFor(0))
	assert.Empty(t, images.Union())
	assert.Nil(t, images.ImagesFor(5))
}
