package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/matchday-streams/external/footballdata"
	"github.com/riskibarqy/matchday-streams/internal/config"
	"github.com/riskibarqy/matchday-streams/internal/domain/stream"
	"github.com/riskibarqy/matchday-streams/internal/infrastructure/catalog"
	"github.com/riskibarqy/matchday-streams/internal/infrastructure/sharedcache"
	"github.com/riskibarqy/matchday-streams/internal/interfaces/httpapi"
	"github.com/riskibarqy/matchday-streams/internal/platform/cache"
	"github.com/riskibarqy/matchday-streams/internal/platform/logging"
	"github.com/riskibarqy/matchday-streams/internal/platform/resilience"
	"github.com/riskibarqy/matchday-streams/internal/usecase"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout  = 10 * time.Second
	redisPingTimeout = 2 * time.Second
)

// App holds the wired HTTP server and its background workers.
type App struct {
	Server *http.Server
	// Warmer is nil unless WARMER_ENABLED=true.
	Warmer *usecase.Warmer

	shared *sharedcache.Store
	logger *logging.Logger
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	streamCatalog, err := catalog.Load(cfg.StreamCatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load stream catalog: %w", err)
	}
	resolver := stream.NewResolver(streamCatalog)
	logger.Info("stream catalog loaded",
		"path", cfg.StreamCatalogPath,
		"entries", len(streamCatalog.Streams),
		"aliases", len(streamCatalog.Aliases),
	)

	client := footballdata.NewClient(footballdata.ClientConfig{
		BaseURL:    cfg.FootballAPIBaseURL,
		Token:      cfg.FootballAPIKey,
		Timeout:    cfg.FootballAPITimeout,
		MaxRetries: cfg.FootballAPIMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FootballAPICircuitEnabled,
			FailureThreshold: cfg.FootballAPICircuitFailureCount,
			OpenTimeout:      cfg.FootballAPICircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FootballAPICircuitHalfOpenMaxReq,
		},
	})

	a := &App{logger: logger}

	var shared usecase.SharedMatchCache
	if cfg.RedisURL != "" {
		store, err := sharedcache.New(cfg.RedisURL, cfg.MatchesCacheTTL)
		if err != nil {
			return nil, fmt.Errorf("init shared cache: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		if err := store.Ping(pingCtx); err != nil {
			// Redis failures degrade to the in-process cache.
			logger.Warn("shared cache unreachable at start", "target", redisTarget(cfg.RedisURL), "error", err)
		} else {
			logger.Info("shared cache enabled", "target", redisTarget(cfg.RedisURL))
		}
		cancel()
		a.shared = store
		shared = store
	}

	matchService := usecase.NewMatchService(
		client,
		resolver,
		cache.NewStore(cfg.MatchesCacheTTL, cache.WithName("matches")),
		shared,
		usecase.MatchServiceConfig{
			RangeMaxDays:     cfg.MatchesRangeMaxDays,
			RangeConcurrency: cfg.MatchesRangeConcurrency,
		},
		logger,
	)

	if cfg.WarmerEnabled {
		a.Warmer = usecase.NewWarmer(matchService, usecase.WarmerConfig{
			Interval: cfg.WarmerInterval,
			Days:     cfg.WarmerDays,
			Workers:  cfg.WarmerWorkers,
		}, logger)
	}

	handler := httpapi.NewHandler(matchService, client, logger)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MetricsEnabled:     cfg.MetricsEnabled,
		DiagnosticsEnabled: cfg.DiagnosticsEnabled,
	})

	a.Server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	return a, nil
}

// Run serves HTTP and runs the warmer until ctx is cancelled, then shuts the
// server down gracefully.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("http server starting", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if a.Warmer != nil {
		g.Go(func() error {
			return a.Warmer.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		a.logger.Info("http server stopped")
		return nil
	})

	return g.Wait()
}

// Close releases connections held outside the HTTP server.
func (a *App) Close() error {
	if a.shared == nil {
		return nil
	}
	return a.shared.Close()
}
