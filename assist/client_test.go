package assist

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transferai/agreement-proxy/assist_common"
	"github.com/transferai/agreement-proxy/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		Assist:            config.DefaultAssistFetcher(),
		AuthTokens:        &config.AuthTokens{IDToken: "token-123"},
		OverrideAssistURL: server.URL,
	}
	cfg.Assist.MaxRetries = 1
	return NewClient(cfg, nil)
}

func TestClient_Institutions(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/institutions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"De Anza College":"c1","Foothill College":"c2"}`))
	}))

	institutions, err := client.Institutions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NameIDMap{"De Anza College": "c1", "Foothill College": "c2"}, institutions)
}

func TestClient_ReceivingInstitutions_PlainResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "c1", r.URL.Query().Get("sendingId"))
		_, _ = w.Write([]byte(`{"UC Berkeley":"r1"}`))
	}))

	result, warnings, err := client.ReceivingInstitutions(context.Background(), "c1")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, NameIDMap{"UC Berkeley": "r1"}, result)
}

func TestClient_ReceivingInstitutions_PartialFailureEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "c1,c2", r.URL.Query().Get("sendingId"))
		w.WriteHeader(http.StatusMultiStatus)
		_, _ = w.Write([]byte(`{"institutions":{"UC Berkeley":"r1"},"warnings":["sender c2 unavailable"]}`))
	}))

	result, warnings, err := client.ReceivingInstitutions(context.Background(), "c1", "c2")
	require.NoError(t, err)
	assert.Equal(t, NameIDMap{"UC Berkeley": "r1"}, result)
	assert.Equal(t, []string{"sender c2 unavailable"}, warnings)
}

func TestClient_AcademicYears_Envelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/academic-years", r.URL.Path)
		assert.Equal(t, "r1", r.URL.Query().Get("receivingId"))
		w.WriteHeader(http.StatusMultiStatus)
		_, _ = w.Write([]byte(`{"years":{"2024-2025":"y7"},"warnings":["sender c2 has no years"]}`))
	}))

	years, warnings, err := client.AcademicYears(context.Background(), "r1", "c1", "c2")
	require.NoError(t, err)
	assert.Equal(t, NameIDMap{"2024-2025": "y7"}, years)
	assert.Len(t, warnings, 1)
}

func TestClient_Majors(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dept", r.URL.Query().Get("categoryCode"))
		_, _ = w.Write([]byte(`{"Biology":"k1","Chemistry":"k2"}`))
	}))

	majors, err := client.Majors(context.Background(), "c1", "r1", "y7", CategoryDept)
	require.NoError(t, err)
	assert.Len(t, majors, 2)
}

func TestClient_ArticulationAgreements(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/articulation-agreements", r.URL.Path)
		_, _ = w.Write([]byte(`{"agreements":[{"sendingId":"c1","pdfFilename":"c1-r1-y7-k1.pdf"}]}`))
	}))

	agreements, warnings, err := client.ArticulationAgreements(context.Background(), AgreementsRequest{
		SendingIDs:  []string{"c1"},
		ReceivingID: "r1",
		YearID:      "y7",
		MajorKey:    "k1",
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, agreements, 1)
	assert.Equal(t, "c1-r1-y7-k1.pdf", agreements[0].PdfFilename)
}

func TestClient_ArticulationAgreements_MissingArray(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))

	_, _, err := client.ArticulationAgreements(context.Background(), AgreementsRequest{})
	assert.Error(t, err)
}

func TestClient_IgetcAgreement(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"pdfFilename":"igetc-c1-y7.pdf"}`))
	}))

	filename, err := client.IgetcAgreement(context.Background(), "c1", "y7")
	require.NoError(t, err)
	assert.Equal(t, "igetc-c1-y7.pdf", filename)
}

func TestClient_IgetcAgreement_RequiresToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not be issued without a credential")
	}))
	client.authTokens = &config.AuthTokens{}

	_, err := client.IgetcAgreement(context.Background(), "c1", "y7")
	assert.Error(t, err)
}

func TestClient_PdfImages(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/pdf-images/")
		_, _ = w.Write([]byte(`{"image_filenames":["p1.png","p2.png"]}`))
	}))

	images, err := client.PdfImages(context.Background(), "c1-r1-y7-k1.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1.png", "p2.png"}, images)
}

func TestClient_AuthExpiredEmitsNotification(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	sub := client.AuthExpired().Subscribe()
	defer sub.Cancel()

	_, err := client.Institutions(context.Background())
	assert.ErrorIs(t, err, assist_common.ErrAuthExpired)

	select {
	case <-sub.Chan():
	case <-time.After(time.Second):
		t.Fatal("auth-expired notification was not emitted")
	}
}
