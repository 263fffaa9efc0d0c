package config

import "time"

// AssistFetcher configures access to the articulation backend API
type AssistFetcher struct {
	// RequestTimeout is the total per-request timeout including reading the response
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// ConnectionTimeout is the timeout for establishing a connection
	ConnectionTimeout time.Duration `yaml:"connection_timeout"`

	// MaxRetries is the number of attempts per request
	MaxRetries int `yaml:"max_retries"`

	// RateLimit caps outgoing requests to the backend
	RateLimit RateLimit `yaml:"rate_limit"`

	// CatalogRefreshInterval is how often the sending-institution catalog
	// is refreshed in the background. Zero disables the refresh.
	CatalogRefreshInterval time.Duration `yaml:"catalog_refresh_interval"`
}

// RateLimit represents a simple rpm + burst pair
type RateLimit struct {
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
	Burst              int `yaml:"burst"`
}

// DefaultAssistFetcher returns default backend access settings
func DefaultAssistFetcher() AssistFetcher {
	return AssistFetcher{
		RequestTimeout:         30 * time.Second,
		ConnectionTimeout:      10 * time.Second,
		MaxRetries:             3,
		RateLimit:              RateLimit{RateLimitPerMinute: 60, Burst: 10},
		CatalogRefreshInterval: 24 * time.Hour,
	}
}
