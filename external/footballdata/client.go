package footballdata

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"

	"github.com/riskibarqy/matchday-streams/internal/domain/match"
	"github.com/riskibarqy/matchday-streams/internal/platform/logging"
	"github.com/riskibarqy/matchday-streams/internal/platform/metrics"
	"github.com/riskibarqy/matchday-streams/internal/platform/resilience"
	"github.com/riskibarqy/matchday-streams/internal/usecase"
)

const (
	providerName        = "football-data"
	defaultBaseURL      = "https://api.football-data.org/v4"
	defaultTimeout      = 8 * time.Second
	defaultRetryBackoff = time.Second
	maxBodyBytes        = 6 << 20
	kickoffLayout       = "2006-01-02T15:04:05Z"
	authHeader          = "X-Auth-Token"
)

var errFootballDataTransient = crerr.New("football-data transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads fixtures from the football-data.org v4 API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	retryBackoff   time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         singleflight.Group
}

var (
	_ match.Provider = (*Client)(nil)
	_ match.Prober   = (*Client)(nil)
)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("footballdata")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	var httpClient *http.Client
	if cfg.HTTPClient != nil {
		// Work on a copy; the caller's client may be shared elsewhere.
		copied := *cfg.HTTPClient
		httpClient = &copied
	} else {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = timeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	breaker := resilience.NewCircuitBreaker(breakerCfg, resilience.OnStateChange(func(from, to resilience.CircuitState) {
		metrics.SetCircuitOpen(providerName, to != resilience.CircuitStateClosed)
		logger.Warn("football-data circuit breaker state changed", "from", from, "to", to)
	}))

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     max(cfg.MaxRetries, 0),
		retryBackoff:   backoff,
		logger:         logger,
		breaker:        breaker,
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchByDate returns the fixtures kicking off on date (YYYY-MM-DD) in the
// order the API lists them. A payload without a matches key yields no fixtures.
func (c *Client) FetchByDate(ctx context.Context, date string) ([]match.Fixture, error) {
	if _, err := match.ParseDate(date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	var envelope matchesEnvelope
	query := map[string]string{
		"dateFrom": date,
		"dateTo":   date,
	}
	if _, err := c.doJSON(ctx, "/matches", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch matches date=%s: %w", date, err)
	}

	if envelope.Matches == nil {
		c.logger.WarnContext(ctx, "football-data payload has no matches key", "date", date)
		return []match.Fixture{}, nil
	}

	items := *envelope.Matches
	out := make([]match.Fixture, 0, len(items))
	for _, item := range items {
		fixture, err := mapFixture(item)
		if err != nil {
			return nil, fmt.Errorf("map match date=%s: %w", date, err)
		}
		out = append(out, fixture)
	}

	return out, nil
}

// Probe performs one unguarded GET /matches and returns the raw status and body.
func (c *Client) Probe(ctx context.Context) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/matches", nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	c.decorate(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("send request: %s", sanitizeSensitiveText(err.Error(), c.token))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, raw, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) ([]byte, error) {
	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	ch := c.flight.DoChan(fullURL, func() (any, error) {
		// Coalesced callers share this request, so it must outlive whichever of
		// them started it. The HTTP client timeout still bounds every attempt.
		flightCtx := context.WithoutCancel(ctx)
		if c.circuitEnabled {
			if err := c.breaker.Allow(); err != nil {
				c.logger.WarnContext(flightCtx, "football-data circuit breaker rejected request", "state", c.breaker.State())
				metrics.UpstreamRequests.WithLabelValues(providerName, "rejected").Inc()
				return nil, fmt.Errorf("%w: fixtures provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
			}
		}

		raw, reqErr := c.executeRequest(flightCtx, fullURL)
		if c.circuitEnabled {
			c.recordOutcome(reqErr)
		}
		return raw, reqErr
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	raw, ok := res.Val.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", res.Val)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode provider payload: %w", err)
	}

	return raw, nil
}

// recordOutcome feeds one admitted request into the breaker. A cancelled
// request says nothing about upstream health and only frees its slot.
func (c *Client) recordOutcome(err error) {
	switch {
	case isCallerContextErr(err):
		c.breaker.Release()
	case isCircuitFailure(err):
		c.breaker.RecordFailure()
	default:
		c.breaker.RecordSuccess()
	}
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		c.decorate(req)

		started := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			metrics.ObserveUpstream(providerName, "error", time.Since(started))
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			lastErr = fmt.Errorf("%w: send request: %s", errFootballDataTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			metrics.ObserveUpstream(providerName, outcomeForStatus(resp.StatusCode), time.Since(started))

			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errFootballDataTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errFootballDataTransient, resp.StatusCode, abbreviateBody(sanitizeBody(raw, c.token)))
			default:
				lastErr = fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(sanitizeBody(raw, c.token)))
				c.logger.WarnContext(ctx, "football-data request rejected", "url", fullURL, "status", resp.StatusCode)
				return nil, lastErr
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * c.retryBackoff
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "football-data request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("accept", "application/json")
	if c.token != "" {
		req.Header.Set(authHeader, c.token)
	}
}

func mapFixture(item matchItem) (match.Fixture, error) {
	kickoff, err := time.Parse(kickoffLayout, strings.TrimSpace(item.UTCDate))
	if err != nil {
		return match.Fixture{}, fmt.Errorf("parse utcDate %q of match %d: %w", item.UTCDate, item.ID, err)
	}

	return match.Fixture{
		ExternalID:  item.ID,
		HomeTeam:    item.HomeTeam.Name,
		AwayTeam:    item.AwayTeam.Name,
		HomeCrest:   item.HomeTeam.Crest,
		AwayCrest:   item.AwayTeam.Crest,
		KickoffAt:   kickoff,
		Status:      item.Status,
		HomeScore:   item.Score.FullTime.Home,
		AwayScore:   item.Score.FullTime.Away,
		Competition: item.Competition.Name,
	}, nil
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" || token == "" {
		return value
	}
	return strings.ReplaceAll(value, token, "REDACTED")
}

func sanitizeBody(body []byte, token string) []byte {
	return []byte(sanitizeSensitiveText(string(body), token))
}

func isCircuitFailure(err error) bool {
	if err == nil || isCallerContextErr(err) {
		return false
	}
	return stderrors.Is(err, errFootballDataTransient)
}

// isCallerContextErr matches only the bare ctx.Err() values executeRequest
// returns. A Client.Timeout error also wraps context.DeadlineExceeded but is
// an upstream failure, hence the identity comparison.
func isCallerContextErr(err error) bool {
	return err == context.Canceled || err == context.DeadlineExceeded
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func outcomeForStatus(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "ok"
	case code == http.StatusTooManyRequests:
		return "throttled"
	case code >= http.StatusInternalServerError:
		return "server_error"
	default:
		return "client_error"
	}
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
