package assist_common

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"
)

// DefaultAssistURL is the base URL of the articulation backend API
const DefaultAssistURL = "http://localhost:5000/api"

// buildURL safely combines a base URL with a path
func buildURL(baseURL, path string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	trimmedPath := strings.TrimLeft(path, "/")

	return baseURL + "/" + trimmedPath
}

// AssistRequestBuilder implements the Builder pattern for articulation API requests
type AssistRequestBuilder struct {
	baseURL    string
	httpMethod string
	apiPath    string
	params     map[string]string
	headers    map[string]string
	bearer     string
	body       []byte
}

// NewAssistRequestBuilder creates a new request builder for an endpoint path
func NewAssistRequestBuilder(baseURL, apiPath string) *AssistRequestBuilder {
	rb := &AssistRequestBuilder{
		baseURL:    baseURL,
		apiPath:    apiPath,
		httpMethod: http.MethodGet,
		params:     make(map[string]string),
		headers:    make(map[string]string),
	}

	rb.headers["Accept"] = "application/json"

	return rb
}

// With adds a custom parameter to the URL query
func (rb *AssistRequestBuilder) With(key, value string) *AssistRequestBuilder {
	rb.params[key] = value
	return rb
}

// WithSendingID adds the sendingId parameter. Multiple ids are comma-joined.
func (rb *AssistRequestBuilder) WithSendingID(ids ...string) *AssistRequestBuilder {
	if len(ids) > 0 {
		rb.params["sendingId"] = strings.Join(ids, ",")
	}
	return rb
}

// WithReceivingID adds the receivingId parameter
func (rb *AssistRequestBuilder) WithReceivingID(id string) *AssistRequestBuilder {
	if id != "" {
		rb.params["receivingId"] = id
	}
	return rb
}

// WithAcademicYearID adds the academicYearId parameter
func (rb *AssistRequestBuilder) WithAcademicYearID(id string) *AssistRequestBuilder {
	if id != "" {
		rb.params["academicYearId"] = id
	}
	return rb
}

// WithCategoryCode adds the categoryCode parameter
func (rb *AssistRequestBuilder) WithCategoryCode(code string) *AssistRequestBuilder {
	if code != "" {
		rb.params["categoryCode"] = code
	}
	return rb
}

// WithBearerToken attaches an authorization credential
func (rb *AssistRequestBuilder) WithBearerToken(token string) *AssistRequestBuilder {
	rb.bearer = token
	return rb
}

// WithHeader adds a custom HTTP header
func (rb *AssistRequestBuilder) WithHeader(name, value string) *AssistRequestBuilder {
	rb.headers[name] = value
	return rb
}

// WithJSONBody switches the request to POST with the given JSON payload
func (rb *AssistRequestBuilder) WithJSONBody(body []byte) *AssistRequestBuilder {
	rb.httpMethod = http.MethodPost
	rb.body = body
	rb.headers["Content-Type"] = "application/json"
	return rb
}

// BuildURL builds the complete URL for the request
func (rb *AssistRequestBuilder) BuildURL() string {
	fullPath := buildURL(rb.baseURL, rb.apiPath)

	query := url.Values{}
	for key, value := range rb.params {
		query.Add(key, value)
	}

	if encoded := query.Encode(); encoded != "" {
		return fullPath + "?" + encoded
	}
	return fullPath
}

// Build creates the HTTP request
func (rb *AssistRequestBuilder) Build(ctx context.Context) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if rb.body != nil {
		bodyReader = bytes.NewReader(rb.body)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, rb.httpMethod, rb.BuildURL(), bodyReader)
	if err != nil {
		return nil, err
	}

	for name, value := range rb.headers {
		req.Header.Set(name, value)
	}
	if rb.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+rb.bearer)
	}

	return req, nil
}
