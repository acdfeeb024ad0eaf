// Package provider is the API-Football v3 client behind the analyzer's
// sports data lookups.
package provider

import (
	"context"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"

	"github.com/okian/goalwatch/internal/domain/model"
	"github.com/okian/goalwatch/pkg/logger"
	"github.com/okian/goalwatch/pkg/metrics"
	"github.com/okian/goalwatch/pkg/resilience"
)

const (
	defaultBaseURL = "https://v3.football.api-sports.io"
	apiKeyHeader   = "x-apisports-key"
	maxBodyBytes   = 8 << 20
)

// Endpoint labels used in metrics and logs.
const (
	EndpointLive       = "fixtures_live"
	EndpointStatistics = "statistics"
	EndpointEvents     = "events"
	EndpointTeamForm   = "team_form"
	EndpointH2H        = "head_to_head"
)

// Client talks to API-Football. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	baseURL    string
	apiKey     string

	attempts      int
	backoffFactor float64
	backoffUnit   time.Duration

	dailyLimit      int
	hourlyLimit     int
	emergencyBuffer int
	quota           *Quota

	breakerCfg resilience.Config
	breaker    *resilience.Breaker
	flight     singleflight.Group

	cacheTTL time.Duration
	history  *ttlCache[[]model.PastMatch]

	log logger.Logger
	now func() time.Time
}

// New constructs a Client with configuration options.
func New(opts ...Option) *Client {
	c := &Client{
		timeout:         10 * time.Second,
		baseURL:         defaultBaseURL,
		attempts:        3,
		backoffFactor:   2,
		backoffUnit:     time.Second,
		dailyLimit:      7500,
		hourlyLimit:     312,
		emergencyBuffer: 500,
		breakerCfg:      resilience.DefaultConfig(),
		cacheTTL:        10 * time.Minute,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.log == nil {
		c.log = logger.Get().Named("provider")
	}
	c.quota = NewQuota(c.dailyLimit, c.hourlyLimit, c.emergencyBuffer, c.now)
	c.breaker = resilience.New(c.breakerCfg,
		resilience.WithClock(c.now),
		resilience.WithStateChange(func(_, to resilience.State) {
			metrics.UpdateCircuitState(float64(to))
		}),
	)
	c.history = newTTLCache[[]model.PastMatch](c.cacheTTL, c.now)
	metrics.UpdateQuotaRemaining(c.quota.Remaining())
	return c
}

// Usage reports request consumption against the quota.
func (c *Client) Usage() Usage { return c.quota.Usage() }

// PruneCache drops expired form and head-to-head entries.
func (c *Client) PruneCache() int { return c.history.prune() }

// LiveFixtures returns every fixture currently in play.
func (c *Client) LiveFixtures(ctx context.Context) ([]model.FixtureSnapshot, error) {
	rows, err := fetch[[]wireFixture](ctx, c, EndpointLive, "/fixtures", url.Values{"live": {"all"}})
	if err != nil {
		return nil, crerr.Wrap(err, "fetch live fixtures")
	}
	out := make([]model.FixtureSnapshot, 0, len(rows))
	for _, r := range rows {
		if r.Fixture.ID <= 0 {
			continue
		}
		out = append(out, r.snapshot())
	}
	return out, nil
}

// Statistics returns the per-team statistics of a fixture. An empty set
// means the provider has none yet.
func (c *Client) Statistics(ctx context.Context, fixtureID int64) (model.StatisticsSet, error) {
	q := url.Values{"fixture": {strconv.FormatInt(fixtureID, 10)}}
	rows, err := fetch[[]wireStatistics](ctx, c, EndpointStatistics, "/fixtures/statistics", q)
	if err != nil {
		return nil, crerr.Wrapf(err, "fetch statistics fixture_id=%d", fixtureID)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out := make(model.StatisticsSet, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.teamStatistics())
	}
	return out, nil
}

// Events returns the event feed of a fixture.
func (c *Client) Events(ctx context.Context, fixtureID int64) (model.EventLog, error) {
	q := url.Values{"fixture": {strconv.FormatInt(fixtureID, 10)}}
	rows, err := fetch[[]wireEvent](ctx, c, EndpointEvents, "/fixtures/events", q)
	if err != nil {
		return nil, crerr.Wrapf(err, "fetch events fixture_id=%d", fixtureID)
	}
	out := make(model.EventLog, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.event())
	}
	return out, nil
}

// TeamForm returns the last n finished fixtures of a team.
func (c *Client) TeamForm(ctx context.Context, teamID int64, n int) ([]model.PastMatch, error) {
	key := "form:" + strconv.FormatInt(teamID, 10) + ":" + strconv.Itoa(n)
	return c.history.getOrLoad(ctx, key, func(ctx context.Context) ([]model.PastMatch, error) {
		q := url.Values{"team": {strconv.FormatInt(teamID, 10)}, "last": {strconv.Itoa(n)}}
		rows, err := fetch[[]wireFixture](ctx, c, EndpointTeamForm, "/fixtures", q)
		if err != nil {
			return nil, crerr.Wrapf(err, "fetch team form team_id=%d", teamID)
		}
		return pastMatches(rows), nil
	})
}

// HeadToHead returns the last n meetings between two teams.
func (c *Client) HeadToHead(ctx context.Context, teamA, teamB int64, n int) ([]model.PastMatch, error) {
	pair := strconv.FormatInt(teamA, 10) + "-" + strconv.FormatInt(teamB, 10)
	key := "h2h:" + pair + ":" + strconv.Itoa(n)
	return c.history.getOrLoad(ctx, key, func(ctx context.Context) ([]model.PastMatch, error) {
		q := url.Values{"h2h": {pair}, "last": {strconv.Itoa(n)}}
		rows, err := fetch[[]wireFixture](ctx, c, EndpointH2H, "/fixtures/headtohead", q)
		if err != nil {
			return nil, crerr.Wrapf(err, "fetch head to head %s", pair)
		}
		return pastMatches(rows), nil
	})
}

func pastMatches(rows []wireFixture) []model.PastMatch {
	out := make([]model.PastMatch, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.pastMatch())
	}
	return out
}

func fetch[T any](ctx context.Context, c *Client, endpoint, path string, query url.Values) (T, error) {
	raw, err := c.get(ctx, endpoint, path, query)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](raw)
}

// get applies the quota, breaker and request coalescing around execute.
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values) ([]byte, error) {
	if err := c.quota.Allow(); err != nil {
		metrics.RecordProviderRequest(endpoint, "quota_blocked")
		c.log.Warn(ctx, "provider request blocked by quota",
			logger.String("endpoint", endpoint),
			logger.Int("daily_remaining", c.quota.Remaining()))
		return nil, err
	}

	fullURL := c.baseURL + path
	if enc := query.Encode(); enc != "" {
		fullURL += "?" + enc
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		if err := c.breaker.Allow(); err != nil {
			metrics.RecordProviderRequest(endpoint, "circuit_open")
			return nil, crerr.Mark(crerr.Wrap(err, endpoint), ErrCircuitOpen)
		}
		raw, reqErr := c.execute(ctx, endpoint, fullURL)
		switch {
		case reqErr == nil:
			c.breaker.Success()
		case ctx.Err() != nil:
			c.breaker.Release()
		case crerr.Is(reqErr, errTransient):
			c.breaker.Failure()
		default:
			c.breaker.Success()
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}

func (c *Client) execute(ctx context.Context, endpoint, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, crerr.Wrap(err, "build request")
		}
		req.Header.Set(apiKeyHeader, c.apiKey)
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		metrics.RecordProviderLatency(endpoint, float64(time.Since(start).Milliseconds()))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			metrics.RecordProviderRequest(endpoint, "transport_error")
			lastErr = crerr.Mark(crerr.Newf("send request: %s", c.redact(err.Error())), errTransient)
			if !isTimeout(err) {
				return nil, crerr.Mark(lastErr, ErrProviderUnavailable)
			}
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			c.quota.Record()
			metrics.UpdateQuotaRemaining(c.quota.Remaining())
			metrics.RecordProviderRequest(endpoint, strconv.Itoa(resp.StatusCode))

			switch {
			case readErr != nil:
				return nil, crerr.Mark(crerr.Mark(crerr.Wrap(readErr, "read response body"), errTransient), ErrProviderUnavailable)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusTooManyRequests:
				lastErr = crerr.Mark(crerr.Newf("provider rate limited status=%d", resp.StatusCode), errTransient)
			case resp.StatusCode >= http.StatusInternalServerError:
				err := crerr.Newf("provider status=%d body=%s", resp.StatusCode, abbreviate(raw))
				return nil, crerr.Mark(crerr.Mark(err, errTransient), ErrProviderUnavailable)
			default:
				err := crerr.Newf("provider status=%d body=%s", resp.StatusCode, abbreviate(raw))
				return nil, crerr.Mark(err, ErrProviderUnavailable)
			}
		}

		if attempt == c.attempts-1 {
			break
		}
		wait := c.backoff(attempt)
		c.log.Warn(ctx, "provider request retrying",
			logger.String("endpoint", endpoint),
			logger.Int("attempt", attempt+1),
			logger.Duration("wait", wait),
			logger.Error(lastErr))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.log.Warn(ctx, "provider request failed",
		logger.String("endpoint", endpoint),
		logger.String("url", redactURL(fullURL)),
		logger.Error(lastErr))
	return nil, crerr.Mark(lastErr, ErrProviderUnavailable)
}

func (c *Client) backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(c.backoffFactor, float64(attempt+1)) * float64(c.backoffUnit))
}

func (c *Client) redact(s string) string {
	if c.apiKey != "" {
		s = strings.ReplaceAll(s, c.apiKey, "REDACTED")
	}
	return s
}

// redactURL strips credentials a caller may have put in the query.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	for _, k := range []string{"key", "api_key", "apikey", "token"} {
		if q.Has(k) {
			q.Set(k, "REDACTED")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func isTimeout(err error) bool {
	var ne net.Error
	return crerr.As(err, &ne) && ne.Timeout()
}

func abbreviate(b []byte) string {
	const limit = 256
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
