// Package ratelimit wraps a fetcher with per-host token bucket rate
// control so bursts of sync requests stay polite to the source site.
package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/time/rate"

	"github.com/placepulse/placesync/internal/place"
)

// Config holds rate limiter configuration.
type Config struct {
	// RPS is the steady request rate per host. Zero or negative
	// disables limiting.
	RPS float64 `mapstructure:"rps"`
	// Burst is the token bucket size per host.
	Burst int `mapstructure:"burst"`
}

// Fetcher delegates to an inner fetcher after acquiring a token for
// the target host.
type Fetcher struct {
	inner place.Fetcher

	mu           sync.Mutex
	limiters     map[string]*rate.Limiter
	defaultRate  rate.Limit
	defaultBurst int
}

// New wraps inner with per-host rate control.
func New(inner place.Fetcher, cfg Config) *Fetcher {
	r := rate.Limit(cfg.RPS)
	if cfg.RPS <= 0 {
		r = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Fetcher{
		inner:        inner,
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  r,
		defaultBurst: burst,
	}
}

// Fetch blocks until a token is available for the URL's host, then
// delegates. A canceled context aborts the wait.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := f.limiterFor(rawURL).Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return f.inner.Fetch(ctx, rawURL)
}

func (f *Fetcher) limiterFor(rawURL string) *rate.Limiter {
	host := "unknown"
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	limiter, ok := f.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(f.defaultRate, f.defaultBurst)
		f.limiters[host] = limiter
	}
	return limiter
}
