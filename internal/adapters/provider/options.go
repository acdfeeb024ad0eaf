package provider

import (
	"net/http"
	"strings"
	"time"

	"github.com/okian/goalwatch/pkg/logger"
	"github.com/okian/goalwatch/pkg/resilience"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL sets the API root, e.g. "https://v3.football.api-sports.io".
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			c.baseURL = u
		}
	}
}

// WithAPIKey sets the x-apisports-key credential.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// WithHTTPClient replaces the transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetries sets the attempt count and exponential backoff. The wait
// before retry n (0-based) is factor^(n+1) units.
func WithRetries(attempts int, factor float64, unit time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if factor >= 1 {
			c.backoffFactor = factor
		}
		if unit >= 0 {
			c.backoffUnit = unit
		}
	}
}

// WithQuota sets the daily limit, hourly budget and emergency buffer.
func WithQuota(daily, hourly, buffer int) Option {
	return func(c *Client) {
		if daily > 0 {
			c.dailyLimit = daily
		}
		if hourly > 0 {
			c.hourlyLimit = hourly
		}
		if buffer >= 0 {
			c.emergencyBuffer = buffer
		}
	}
}

// WithBreaker configures the circuit breaker.
func WithBreaker(cfg resilience.Config) Option {
	return func(c *Client) {
		c.breakerCfg = cfg
	}
}

// WithCacheTTL sets how long team form and head-to-head lookups are cached.
// Zero disables the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl >= 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock overrides the time source used by the quota and cache.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}
