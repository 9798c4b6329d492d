package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/matchday-streams/internal/config"
	"github.com/riskibarqy/matchday-streams/internal/platform/logging"
)

func testConfig(upstreamURL string) config.Config {
	return config.Config{
		AppEnv:                           config.EnvDev,
		ServiceName:                      "matchday-streams-api",
		HTTPAddr:                         "127.0.0.1:0",
		ReadTimeout:                      time.Second,
		WriteTimeout:                     5 * time.Second,
		CORSAllowedOrigins:               []string{"*"},
		FootballAPIKey:                   "test-key",
		FootballAPIBaseURL:               upstreamURL,
		FootballAPITimeout:               time.Second,
		FootballAPICircuitEnabled:        true,
		FootballAPICircuitFailureCount:   5,
		FootballAPICircuitOpenTimeout:    time.Second,
		FootballAPICircuitHalfOpenMaxReq: 1,
		MatchesCacheTTL:                  30 * time.Second,
		MatchesRangeMaxDays:              7,
		MatchesRangeConcurrency:          2,
		DiagnosticsEnabled:               true,
	}
}

func TestNew_WiresRouterAgainstUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Auth-Token") != "test-key" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"matches":[{"id":1,"utcDate":"2024-12-10T17:45:00Z","status":"FINISHED",` +
			`"homeTeam":{"name":"FC Red Bull Salzburg","crest":"s.png"},` +
			`"awayTeam":{"name":"Paris Saint-Germain FC","crest":"p.png"},` +
			`"score":{"fullTime":{"home":0,"away":3}}}]}`))
	}))
	defer upstream.Close()

	a, err := New(testConfig(upstream.URL), logging.NewNop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	defer func() { _ = a.Close() }()

	if a.Warmer != nil {
		t.Fatalf("expected no warmer when disabled")
	}

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/matches/2024-12-10", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "https://embedme.top/embed/delta/salzburg-vs-psg-19296295/1") {
		t.Fatalf("expected resolved stream url in %s", rec.Body.String())
	}
}

func TestNew_FailsOnMissingCatalog(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.StreamCatalogPath = t.TempDir() + "/missing.yaml"

	if _, err := New(cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for missing catalog file")
	}
}

func TestNew_RejectsInvalidRedisURL(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.RedisURL = "not-a-redis-url"

	if _, err := New(cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for invalid REDIS_URL")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.WarmerEnabled = true
	cfg.WarmerInterval = time.Hour
	cfg.WarmerDays = 1
	cfg.WarmerWorkers = 1

	a, err := New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	if a.Warmer == nil {
		t.Fatalf("expected warmer when enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("run did not stop after cancel")
	}
}
