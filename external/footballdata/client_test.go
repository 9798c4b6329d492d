package footballdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/matchday-streams/internal/platform/logging"
	"github.com/riskibarqy/matchday-streams/internal/platform/resilience"
	"github.com/riskibarqy/matchday-streams/internal/usecase"
)

const testToken = "secret-token"

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*ClientConfig)) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := ClientConfig{
		HTTPClient:   server.Client(),
		BaseURL:      server.URL,
		Token:        testToken,
		Timeout:      2 * time.Second,
		RetryBackoff: time.Millisecond,
		Logger:       logging.NewNop(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewClient(cfg)
}

func TestFetchByDate_MapsFixturesInSourceOrder(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/matches" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Auth-Token"); got != testToken {
			t.Errorf("unexpected auth header %q", got)
		}
		if r.URL.Query().Get("dateFrom") != "2024-12-10" || r.URL.Query().Get("dateTo") != "2024-12-10" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"resultSet": {"count": 2},
			"matches": [
				{
					"id": 501,
					"utcDate": "2024-12-10T17:45:00Z",
					"status": "IN_PLAY",
					"homeTeam": {"id": 1, "name": "FC Red Bull Salzburg", "crest": "https://crests.test/1.png"},
					"awayTeam": {"id": 2, "name": "Paris Saint-Germain FC", "crest": "https://crests.test/2.png"},
					"score": {"fullTime": {"home": null, "away": 2}},
					"competition": {"id": 2001, "name": "UEFA Champions League"}
				},
				{
					"id": 502,
					"utcDate": "2024-12-10T20:00:00Z",
					"status": "TIMED",
					"homeTeam": {"id": 3, "name": "Girona FC"},
					"awayTeam": {"id": 4, "name": "Liverpool FC"},
					"score": {"fullTime": {"home": null, "away": null}},
					"competition": {"id": 2001, "name": "UEFA Champions League"}
				}
			]
		}`))
	}, nil)

	fixtures, err := client.FetchByDate(context.Background(), "2024-12-10")
	if err != nil {
		t.Fatalf("FetchByDate error: %v", err)
	}
	if len(fixtures) != 2 {
		t.Fatalf("expected 2 fixtures, got %d", len(fixtures))
	}

	first := fixtures[0]
	if first.ExternalID != 501 || first.HomeTeam != "FC Red Bull Salzburg" || first.AwayTeam != "Paris Saint-Germain FC" {
		t.Fatalf("unexpected first fixture: %+v", first)
	}
	if first.HomeScore != nil || first.AwayScore == nil || *first.AwayScore != 2 {
		t.Fatalf("unexpected scores: home=%v away=%v", first.HomeScore, first.AwayScore)
	}
	if first.KickoffAt.Format("15:04") != "17:45" {
		t.Fatalf("unexpected kickoff %v", first.KickoffAt)
	}
	if first.HomeCrest != "https://crests.test/1.png" || first.Competition != "UEFA Champions League" {
		t.Fatalf("unexpected crest/competition: %+v", first)
	}
	if fixtures[1].ExternalID != 502 || fixtures[1].HomeCrest != "" {
		t.Fatalf("unexpected second fixture: %+v", fixtures[1])
	}
}

func TestFetchByDate_MissingMatchesKeyReturnsEmpty(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message": "nothing here"}`))
	}, nil)

	fixtures, err := client.FetchByDate(context.Background(), "2024-12-10")
	if err != nil {
		t.Fatalf("FetchByDate error: %v", err)
	}
	if fixtures == nil || len(fixtures) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", fixtures)
	}
}

func TestFetchByDate_BadKickoffFailsWholeRequest(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"matches": [
			{"id": 1, "utcDate": "2024-12-10T17:45:00Z", "homeTeam": {"name": "A"}, "awayTeam": {"name": "B"}},
			{"id": 2, "utcDate": "2024-12-10 20:00", "homeTeam": {"name": "C"}, "awayTeam": {"name": "D"}}
		]}`))
	}, nil)

	if _, err := client.FetchByDate(context.Background(), "2024-12-10"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestFetchByDate_RejectsInvalidDate(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		calls.Add(1)
	}, nil)

	if _, err := client.FetchByDate(context.Background(), "10-12-2024"); err == nil {
		t.Fatalf("expected error for invalid date")
	}
	if calls.Load() != 0 {
		t.Fatalf("invalid date must not reach the provider")
	}
}

func TestFetchByDate_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`upstream hiccup`))
			return
		}
		_, _ = w.Write([]byte(`{"matches": []}`))
	}, func(cfg *ClientConfig) {
		cfg.MaxRetries = 2
	})

	fixtures, err := client.FetchByDate(context.Background(), "2024-12-10")
	if err != nil {
		t.Fatalf("FetchByDate error: %v", err)
	}
	if len(fixtures) != 0 {
		t.Fatalf("expected no fixtures, got %d", len(fixtures))
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestFetchByDate_ClientErrorIsNotRetriedAndRedacted(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message": "token secret-token is not allowed"}`))
	}, func(cfg *ClientConfig) {
		cfg.MaxRetries = 3
	})

	_, err := client.FetchByDate(context.Background(), "2024-12-10")
	if err == nil {
		t.Fatalf("expected error")
	}
	if strings.Contains(err.Error(), testToken) {
		t.Fatalf("token leaked into error: %v", err)
	}
	if !strings.Contains(err.Error(), "status=403") {
		t.Fatalf("expected status in error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestFetchByDate_CircuitOpensOnTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, func(cfg *ClientConfig) {
		cfg.CircuitBreaker = resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		}
	})

	for i := 0; i < 2; i++ {
		if _, err := client.FetchByDate(context.Background(), "2024-12-10"); err == nil {
			t.Fatalf("expected failure on attempt %d", i)
		}
	}

	_, err := client.FetchByDate(context.Background(), "2024-12-10")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected open breaker error, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("open breaker must not reach provider, got %d calls", calls.Load())
	}
}

func TestProbe_ReturnsRawStatusAndBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Auth-Token") != testToken {
			t.Errorf("missing auth header")
		}
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"slow down"}`))
	}, nil)

	status, body, err := client.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe error: %v", err)
	}
	if status != http.StatusTooManyRequests || string(body) != `{"message":"slow down"}` {
		t.Fatalf("unexpected probe result status=%d body=%s", status, body)
	}
}

func TestFetchByDate_RetryableBodyIsRedacted(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`gateway rejected token secret-token`))
	}, nil)

	_, err := client.FetchByDate(context.Background(), "2024-12-10")
	if err == nil {
		t.Fatalf("expected error")
	}
	if strings.Contains(err.Error(), testToken) {
		t.Fatalf("token leaked into error: %v", err)
	}
	if !strings.Contains(err.Error(), "REDACTED") {
		t.Fatalf("expected redacted body in error, got %v", err)
	}
}

func TestFetchByDate_UpstreamTimeoutIsFetchFailure(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, func(cfg *ClientConfig) {
		cfg.Timeout = 100 * time.Millisecond
		cfg.CircuitBreaker = resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		}
	})

	fixtures, err := client.FetchByDate(context.Background(), "2024-12-10")
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if fixtures != nil {
		t.Fatalf("expected no fixtures on timeout, got %v", fixtures)
	}
	if state := client.breaker.State(); state != resilience.CircuitStateOpen {
		t.Fatalf("upstream timeout should count against the breaker, state=%s", state)
	}
}

func TestFetchByDate_CancelledCallerDoesNotFailCoalescedCaller(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	var requestCancelled atomic.Bool

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(started) })
		<-release
		if r.Context().Err() != nil {
			requestCancelled.Store(true)
			return
		}
		_, _ = w.Write([]byte(`{"matches": [{"id": 7, "utcDate": "2024-12-01T18:00:00Z", "status": "TIMED",` +
			`"homeTeam": {"name": "Girona FC"}, "awayTeam": {"name": "Liverpool FC"}}]}`))
	}, nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := client.FetchByDate(firstCtx, "2024-12-01")
		firstErr <- err
	}()
	<-started

	type result struct {
		fixtures int
		err      error
	}
	second := make(chan result, 1)
	go func() {
		fixtures, err := client.FetchByDate(context.Background(), "2024-12-01")
		second <- result{fixtures: len(fixtures), err: err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected first caller to see context.Canceled, got %v", err)
	}
	close(release)

	res := <-second
	if res.err != nil {
		t.Fatalf("second caller failed: %v", res.err)
	}
	if res.fixtures != 1 {
		t.Fatalf("expected 1 fixture, got %d", res.fixtures)
	}
	if requestCancelled.Load() {
		t.Fatalf("shared upstream request was cancelled with the first caller")
	}
}

func TestFetchByDate_CallerDeadlinesDoNotOpenCircuit(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(200 * time.Millisecond):
		}
		_, _ = w.Write([]byte(`{"matches": []}`))
	}, func(cfg *ClientConfig) {
		cfg.CircuitBreaker = resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 3,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		}
	})

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		_, err := client.FetchByDate(ctx, "2024-12-10")
		cancel()
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("attempt %d: expected deadline exceeded, got %v", i, err)
		}
	}

	if _, err := client.FetchByDate(context.Background(), "2024-12-10"); err != nil {
		t.Fatalf("healthy caller rejected after caller deadlines: %v", err)
	}
	if state := client.breaker.State(); state != resilience.CircuitStateClosed {
		t.Fatalf("expected closed breaker, got %s", state)
	}
}

func TestNewClient_DoesNotMutateCallerHTTPClient(t *testing.T) {
	t.Parallel()

	shared := &http.Client{}
	client := NewClient(ClientConfig{
		HTTPClient: shared,
		Token:      testToken,
		Timeout:    3 * time.Second,
		Logger:     logging.NewNop(),
	})

	if shared.Timeout != 0 {
		t.Fatalf("caller client timeout changed to %s", shared.Timeout)
	}
	if client.httpClient.Timeout != 3*time.Second {
		t.Fatalf("unexpected client timeout %s", client.httpClient.Timeout)
	}
}
