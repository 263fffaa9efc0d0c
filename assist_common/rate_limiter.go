package assist_common

import (
	"sync"

	"github.com/transferai/agreement-proxy/config"
	"golang.org/x/time/rate"
)

// IRateLimiterProvider provides the limiter applied to outgoing backend requests
type IRateLimiterProvider interface {
	GetLimiter() *rate.Limiter
	SetConfig(cfg config.RateLimit)
}

// RateLimiterProvider holds a single limiter for the articulation backend.
// The backend is one origin with one credential, so one bucket is enough.
type RateLimiterProvider struct {
	mu      sync.RWMutex
	limiter *rate.Limiter
	config  config.RateLimit
}

const (
	defaultRPM   = 60
	defaultBurst = 10
)

// NewRateLimiterProvider creates a provider from the configured limits
func NewRateLimiterProvider(cfg config.RateLimit) *RateLimiterProvider {
	p := &RateLimiterProvider{}
	p.SetConfig(cfg)
	return p
}

// SetConfig applies new limits, rebuilding the limiter when they changed
func (p *RateLimiterProvider) SetConfig(cfg config.RateLimit) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rpm := cfg.RateLimitPerMinute
	if rpm <= 0 {
		rpm = defaultRPM
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}

	if p.limiter != nil && p.config.RateLimitPerMinute == cfg.RateLimitPerMinute && p.config.Burst == cfg.Burst {
		return
	}

	p.config = cfg
	p.limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
}

// GetLimiter returns the current limiter
func (p *RateLimiterProvider) GetLimiter() *rate.Limiter {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.limiter
}
