package assist_common

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net"
	"net/http"
	"time"
)

// RetryOptions configures retry behavior for HTTP requests
type RetryOptions struct {
	MaxRetries        int
	BaseBackoff       time.Duration
	LogPrefix         string
	ConnectionTimeout time.Duration // Timeout for establishing connection
	RequestTimeout    time.Duration // Total request timeout including reading response
}

// DefaultRetryOptions returns default retry options
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxRetries:        3,
		BaseBackoff:       1000 * time.Millisecond,
		LogPrefix:         "Assist",
		ConnectionTimeout: 10 * time.Second,
		RequestTimeout:    30 * time.Second,
	}
}

// HTTPClientWithRetries wraps an HTTP Client with retry capabilities
type HTTPClientWithRetries struct {
	Client          *http.Client
	Opts            RetryOptions
	StatusHandler   IHttpStatusHandler
	LimiterProvider IRateLimiterProvider
}

// NewHTTPClientWithRetries creates a new HTTP Client with retry capabilities
func NewHTTPClientWithRetries(opts RetryOptions, handler IHttpStatusHandler, limiterProvider IRateLimiterProvider) *HTTPClientWithRetries {
	client := &http.Client{
		Timeout: opts.RequestTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: opts.ConnectionTimeout,
			}).DialContext,
		},
	}

	return &HTTPClientWithRetries{
		Client:          client,
		Opts:            opts,
		StatusHandler:   handler,
		LimiterProvider: limiterProvider,
	}
}

// SetStatusHandler sets the status handler for this Client
func (c *HTTPClientWithRetries) SetStatusHandler(handler IHttpStatusHandler) {
	c.StatusHandler = handler
}

// ExecuteRequest executes an HTTP request with retry logic.
// Returns the response (body already consumed), the body bytes, and the
// duration of the last attempt. Auth expiry and other client errors are not
// retried; network failures and retryable statuses (429, 5xx) are.
func (c *HTTPClientWithRetries) ExecuteRequest(req *http.Request) (*http.Response, []byte, time.Duration, error) {
	var lastErr error

	for attempt := 0; attempt < c.Opts.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("%s: Retry %d/%d after error: %v",
				c.Opts.LogPrefix, attempt, c.Opts.MaxRetries-1, lastErr)

			if c.StatusHandler != nil {
				c.StatusHandler.OnRetry()
			}

			backoffDuration := calculateBackoffWithJitter(c.Opts.BaseBackoff, attempt)
			log.Printf("%s: Waiting %.2fs before retry", c.Opts.LogPrefix, backoffDuration.Seconds())
			time.Sleep(backoffDuration)
		}

		requestStart := time.Now()

		// Rate limit before executing the request
		if c.LimiterProvider != nil {
			if limiter := c.LimiterProvider.GetLimiter(); limiter != nil {
				if err := limiter.Wait(req.Context()); err != nil {
					lastErr = fmt.Errorf("rate limiter wait failed: %w", err)
					if c.StatusHandler != nil {
						c.StatusHandler.OnRequest(StatusError)
					}
					break
				}
			}
		}

		resp, err := c.Client.Do(req)
		requestDuration := time.Since(requestStart)

		if err != nil {
			lastErr = fmt.Errorf("request failed after %.2fs: %v", requestDuration.Seconds(), err)
			if c.StatusHandler != nil {
				c.StatusHandler.OnRequest(StatusError)
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			if c.StatusHandler != nil {
				c.StatusHandler.OnRequest(StatusError)
			}
			continue
		}

		if resp.StatusCode == http.StatusUnauthorized {
			if c.StatusHandler != nil {
				c.StatusHandler.OnRequest(StatusAuthExpired)
			}
			return resp, body, requestDuration, fmt.Errorf("%s responded 401: %w", c.Opts.LogPrefix, ErrAuthExpired)
		}

		if !isSuccessStatus(resp.StatusCode) {
			apiErr := &APIError{StatusCode: resp.StatusCode, Message: extractServerMessage(body)}

			if isRetryableStatus(resp.StatusCode) {
				lastErr = apiErr
				if c.StatusHandler != nil {
					c.StatusHandler.OnRequest(StatusRateLimited)
				}
				continue
			}

			if c.StatusHandler != nil {
				c.StatusHandler.OnRequest(StatusError)
			}
			return resp, body, requestDuration, apiErr
		}

		if c.StatusHandler != nil {
			c.StatusHandler.OnRequest(StatusSuccess)
		}
		return resp, body, requestDuration, nil
	}

	return nil, nil, 0, fmt.Errorf("all %d attempts failed, last error: %v",
		c.Opts.MaxRetries, lastErr)
}

// isSuccessStatus covers 2xx including 207 Multi-Status partial failures,
// which the backend uses for intersections with per-sender warnings
func isSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// isRetryableStatus reports whether a status is worth another attempt
func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

// extractServerMessage pulls the backend's error message out of a response
// body shaped {"error": "..."}. Falls back to empty when the body is not JSON.
func extractServerMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error
}

// calculateBackoffWithJitter calculates backoff duration with jitter for retries
func calculateBackoffWithJitter(baseBackoff time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return baseBackoff
	}

	multiplier := uint(1) << uint(attempt-1)
	backoff := time.Duration(float64(baseBackoff) * float64(multiplier))
	jitter := time.Duration(rand.Int63n(int64(backoff / 2)))
	return backoff + jitter
}
