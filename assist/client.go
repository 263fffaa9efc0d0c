package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"

	"github.com/transferai/agreement-proxy/assist_common"
	"github.com/transferai/agreement-proxy/config"
	"github.com/transferai/agreement-proxy/events"
	"github.com/transferai/agreement-proxy/metrics"
)

//go:generate mockgen -destination=mocks/api_client.go . APIClient

// APIClient defines the articulation backend operations the services consume
type APIClient interface {
	// Institutions fetches the full sending-institution catalog
	Institutions(ctx context.Context) (NameIDMap, error)
	// ReceivingInstitutions fetches receiving institutions with agreements
	// for the given sending institutions (comma-joined on the wire)
	ReceivingInstitutions(ctx context.Context, sendingIDs ...string) (NameIDMap, []string, error)
	// AcademicYears fetches the years valid for a (sending, receiving) pair
	AcademicYears(ctx context.Context, receivingID string, sendingIDs ...string) (NameIDMap, []string, error)
	// Majors fetches the major/department mapping for a context
	Majors(ctx context.Context, sendingID, receivingID, yearID string, category Category) (NameIDMap, error)
	// ArticulationAgreements fetches agreement records for a major selection
	ArticulationAgreements(ctx context.Context, req AgreementsRequest) ([]Agreement, []string, error)
	// IgetcAgreement fetches the IGETC reference document filename.
	// Requires an authorization credential.
	IgetcAgreement(ctx context.Context, sendingID, yearID string) (string, error)
	// PdfImages fetches the rendered page images of a source document
	PdfImages(ctx context.Context, filename string) ([]string, error)
	// HasAuthToken reports whether authorized endpoints can be called
	HasAuthToken() bool
}

// Client is the HTTP implementation of APIClient
type Client struct {
	baseURL     string
	httpClient  *assist_common.HTTPClientWithRetries
	authTokens  *config.AuthTokens
	authExpired *events.SubscriptionManager
}

// NewClient creates a backend client from configuration
func NewClient(cfg *config.Config, statusHandler assist_common.IHttpStatusHandler) *Client {
	baseURL := assist_common.DefaultAssistURL
	if cfg.OverrideAssistURL != "" {
		log.Printf("Assist: Using overridden backend URL: %s", cfg.OverrideAssistURL)
		baseURL = cfg.OverrideAssistURL
	}

	opts := assist_common.DefaultRetryOptions()
	if cfg.Assist.MaxRetries > 0 {
		opts.MaxRetries = cfg.Assist.MaxRetries
	}
	if cfg.Assist.RequestTimeout > 0 {
		opts.RequestTimeout = cfg.Assist.RequestTimeout
	}
	if cfg.Assist.ConnectionTimeout > 0 {
		opts.ConnectionTimeout = cfg.Assist.ConnectionTimeout
	}

	limiter := assist_common.NewRateLimiterProvider(cfg.Assist.RateLimit)

	return &Client{
		baseURL:     baseURL,
		httpClient:  assist_common.NewHTTPClientWithRetries(opts, statusHandler, limiter),
		authTokens:  cfg.AuthTokens,
		authExpired: events.NewSubscriptionManager(),
	}
}

// AuthExpired returns the manager for the global auth-expired notification.
// The UI layer subscribes to trigger re-authentication.
func (c *Client) AuthExpired() *events.SubscriptionManager {
	return c.authExpired
}

// HasAuthToken reports whether authorized endpoints (IGETC) can be called
func (c *Client) HasAuthToken() bool {
	return c.authTokens.HasToken()
}

func (c *Client) execute(ctx context.Context, rb *assist_common.AssistRequestBuilder) ([]byte, error) {
	req, err := rb.Build(ctx)
	if err != nil {
		return nil, err
	}

	_, body, _, err := c.httpClient.ExecuteRequest(req)
	if err != nil {
		if errors.Is(err, assist_common.ErrAuthExpired) {
			metrics.RecordAuthExpired()
			c.authExpired.Emit(ctx)
		}
		return nil, err
	}
	return body, nil
}

// Institutions fetches the full sending-institution catalog
func (c *Client) Institutions(ctx context.Context) (NameIDMap, error) {
	body, err := c.execute(ctx, assist_common.NewAssistRequestBuilder(c.baseURL, "institutions"))
	if err != nil {
		return nil, err
	}

	var institutions NameIDMap
	if err := json.Unmarshal(body, &institutions); err != nil {
		return nil, fmt.Errorf("failed to parse institutions response: %w", err)
	}
	return institutions, nil
}

// ReceivingInstitutions fetches receiving institutions for the given senders
func (c *Client) ReceivingInstitutions(ctx context.Context, sendingIDs ...string) (NameIDMap, []string, error) {
	rb := assist_common.NewAssistRequestBuilder(c.baseURL, "receiving-institutions").
		WithSendingID(sendingIDs...)

	body, err := c.execute(ctx, rb)
	if err != nil {
		return nil, nil, err
	}
	return parseMapResponse(body, "institutions")
}

// AcademicYears fetches the years valid for a (sending, receiving) pair
func (c *Client) AcademicYears(ctx context.Context, receivingID string, sendingIDs ...string) (NameIDMap, []string, error) {
	rb := assist_common.NewAssistRequestBuilder(c.baseURL, "academic-years").
		WithSendingID(sendingIDs...).
		WithReceivingID(receivingID)

	body, err := c.execute(ctx, rb)
	if err != nil {
		return nil, nil, err
	}
	return parseMapResponse(body, "years")
}

// Majors fetches the major/department mapping for a context
func (c *Client) Majors(ctx context.Context, sendingID, receivingID, yearID string, category Category) (NameIDMap, error) {
	rb := assist_common.NewAssistRequestBuilder(c.baseURL, "majors").
		WithSendingID(sendingID).
		WithReceivingID(receivingID).
		WithAcademicYearID(yearID).
		WithCategoryCode(string(category))

	body, err := c.execute(ctx, rb)
	if err != nil {
		return nil, err
	}

	var majors NameIDMap
	if err := json.Unmarshal(body, &majors); err != nil {
		return nil, fmt.Errorf("failed to parse majors response: %w", err)
	}
	return majors, nil
}

// ArticulationAgreements fetches agreement records for a major selection
func (c *Client) ArticulationAgreements(ctx context.Context, req AgreementsRequest) ([]Agreement, []string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, nil, err
	}

	rb := assist_common.NewAssistRequestBuilder(c.baseURL, "articulation-agreements").
		WithJSONBody(payload)

	body, err := c.execute(ctx, rb)
	if err != nil {
		return nil, nil, err
	}

	var response struct {
		Agreements []Agreement `json:"agreements"`
		Warnings   []string    `json:"warnings"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, nil, fmt.Errorf("failed to parse agreements response: %w", err)
	}
	if response.Agreements == nil {
		return nil, response.Warnings, fmt.Errorf("agreements response missing agreements array")
	}
	return response.Agreements, response.Warnings, nil
}

// IgetcAgreement fetches the IGETC reference document filename
func (c *Client) IgetcAgreement(ctx context.Context, sendingID, yearID string) (string, error) {
	if !c.authTokens.HasToken() {
		return "", fmt.Errorf("igetc-agreement requires an authorization credential")
	}

	rb := assist_common.NewAssistRequestBuilder(c.baseURL, "igetc-agreement").
		WithSendingID(sendingID).
		WithAcademicYearID(yearID).
		WithBearerToken(c.authTokens.IDToken)

	body, err := c.execute(ctx, rb)
	if err != nil {
		return "", err
	}

	var response struct {
		PdfFilename string `json:"pdfFilename"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse igetc response: %w", err)
	}
	return response.PdfFilename, nil
}

// PdfImages fetches the rendered page images of a source document
func (c *Client) PdfImages(ctx context.Context, filename string) ([]string, error) {
	rb := assist_common.NewAssistRequestBuilder(c.baseURL, "pdf-images/"+url.PathEscape(filename))

	body, err := c.execute(ctx, rb)
	if err != nil {
		return nil, err
	}

	var response struct {
		ImageFilenames []string `json:"image_filenames"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse pdf-images response: %w", err)
	}
	return response.ImageFilenames, nil
}

// parseMapResponse handles the two shapes the intersection endpoints return:
// a plain name->id map on full success, or {"<field>": {...}, "warnings":
// [...]} on 207 partial failure.
func parseMapResponse(body []byte, field string) (NameIDMap, []string, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s response: %w", field, err)
	}

	rawWarnings, hasWarnings := probe["warnings"]
	if !hasWarnings {
		var result NameIDMap
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, nil, fmt.Errorf("failed to parse %s response: %w", field, err)
		}
		return result, nil, nil
	}

	var warnings []string
	if err := json.Unmarshal(rawWarnings, &warnings); err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s warnings: %w", field, err)
	}

	result := NameIDMap{}
	if rawData, ok := probe[field]; ok {
		if err := json.Unmarshal(rawData, &result); err != nil {
			return nil, nil, fmt.Errorf("failed to parse %s data: %w", field, err)
		}
	}
	return result, warnings, nil
}
