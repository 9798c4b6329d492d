package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/riskibarqy/matchday-streams/internal/domain/match"
	"github.com/riskibarqy/matchday-streams/internal/domain/stream"
	"github.com/riskibarqy/matchday-streams/internal/platform/cache"
	"github.com/riskibarqy/matchday-streams/internal/platform/logging"
	"github.com/riskibarqy/matchday-streams/internal/platform/metrics"
)

const (
	matchesCacheKeyPrefix   = "matches_"
	defaultRangeMaxDays     = 7
	defaultRangeConcurrency = 3
)

// SharedMatchCache is an optional cache tier shared between replicas.
type SharedMatchCache interface {
	GetRecords(ctx context.Context, cacheKey string) ([]match.Record, bool, error)
	SetRecords(ctx context.Context, cacheKey string, records []match.Record) error
}

type MatchServiceConfig struct {
	RangeMaxDays     int
	RangeConcurrency int
}

// StreamLink is a catalog entry with its playback URL.
type StreamLink struct {
	Entry stream.Entry
	URL   string
}

type MatchService struct {
	provider match.Provider
	resolver *stream.Resolver
	cache    *cache.Store
	shared   SharedMatchCache
	cfg      MatchServiceConfig
	logger   *logging.Logger
}

func NewMatchService(
	provider match.Provider,
	resolver *stream.Resolver,
	store *cache.Store,
	shared SharedMatchCache,
	cfg MatchServiceConfig,
	logger *logging.Logger,
) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.RangeMaxDays <= 0 {
		cfg.RangeMaxDays = defaultRangeMaxDays
	}
	if cfg.RangeConcurrency <= 0 {
		cfg.RangeConcurrency = defaultRangeConcurrency
	}
	if store == nil {
		store = cache.NewStore(30*time.Second, cache.WithName("matches"))
	}

	return &MatchService{
		provider: provider,
		resolver: resolver,
		cache:    store,
		shared:   shared,
		cfg:      cfg,
		logger:   logger,
	}
}

// MatchesCacheKey is the cache key of one calendar date.
func MatchesCacheKey(date string) string {
	return matchesCacheKeyPrefix + date
}

// FetchMatches calls the provider and enriches every fixture with its stream.
// It never touches the cache.
func (s *MatchService) FetchMatches(ctx context.Context, date string) ([]match.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.FetchMatches")
	defer span.End()

	if s.provider == nil {
		return nil, fmt.Errorf("%w: fixtures provider is not configured", ErrDependencyUnavailable)
	}

	fixtures, err := s.provider.FetchByDate(ctx, date)
	if err != nil {
		s.logger.ErrorContext(ctx, "fetch matches failed", "date", date, "error", err)
		return nil, fmt.Errorf("%w: fetch matches date=%s: %w", ErrDependencyUnavailable, date, err)
	}

	records := make([]match.Record, 0, len(fixtures))
	for _, f := range fixtures {
		var (
			url   string
			found bool
		)
		if s.resolver != nil {
			url, found = s.resolver.Resolve(f.HomeTeam, f.AwayTeam)
		}
		metrics.ObserveStream(found)
		records = append(records, match.NewRecord(f, url, found))
	}

	s.logger.DebugContext(ctx, "matches fetched", "date", date, "count", len(records))
	return records, nil
}

// ListByDate returns the enriched matches of date, served from the cache while fresh.
func (s *MatchService) ListByDate(ctx context.Context, date string) ([]match.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListByDate")
	defer span.End()

	date, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}

	key := MatchesCacheKey(date)
	records, err := cache.GetOrLoadAs(ctx, s.cache, key, func(ctx context.Context) ([]match.Record, error) {
		return s.loadShared(ctx, date, key)
	})
	if err != nil {
		return nil, err
	}

	return append(make([]match.Record, 0, len(records)), records...), nil
}

// Refresh fetches date from the provider and overwrites its cache entries.
func (s *MatchService) Refresh(ctx context.Context, date string) ([]match.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Refresh")
	defer span.End()

	date, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}

	records, err := s.FetchMatches(ctx, date)
	if err != nil {
		return nil, err
	}

	key := MatchesCacheKey(date)
	s.cache.Set(ctx, key, records)
	s.storeShared(ctx, key, records)
	return append(make([]match.Record, 0, len(records)), records...), nil
}

// ListByDateRange lists every date from..to inclusive, in date order.
func (s *MatchService) ListByDateRange(ctx context.Context, from, to string) ([]match.Day, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListByDateRange")
	defer span.End()

	dates, err := s.expandRange(from, to)
	if err != nil {
		return nil, err
	}

	mapper := iter.Mapper[string, match.Day]{MaxGoroutines: s.cfg.RangeConcurrency}
	days, err := mapper.MapErr(dates, func(date *string) (match.Day, error) {
		records, err := s.ListByDate(ctx, *date)
		if err != nil {
			return match.Day{}, err
		}
		return match.Day{Date: *date, Matches: records}, nil
	})
	if err != nil {
		return nil, err
	}

	return days, nil
}

// Streams lists the catalog with built URLs.
func (s *MatchService) Streams() []StreamLink {
	if s.resolver == nil {
		return []StreamLink{}
	}

	entries := s.resolver.Entries()
	out := make([]StreamLink, 0, len(entries))
	for _, e := range entries {
		out = append(out, StreamLink{Entry: e, URL: s.resolver.URL(e)})
	}
	return out
}

func (s *MatchService) loadShared(ctx context.Context, date, key string) ([]match.Record, error) {
	if s.shared != nil {
		records, found, err := s.shared.GetRecords(ctx, key)
		if err != nil {
			s.logger.WarnContext(ctx, "shared cache read failed", "key", key, "error", err)
		} else if found {
			return records, nil
		}
	}

	records, err := s.FetchMatches(ctx, date)
	if err != nil {
		return nil, err
	}
	s.storeShared(ctx, key, records)
	return records, nil
}

func (s *MatchService) storeShared(ctx context.Context, key string, records []match.Record) {
	if s.shared == nil {
		return
	}
	if err := s.shared.SetRecords(ctx, key, records); err != nil {
		s.logger.WarnContext(ctx, "shared cache write failed", "key", key, "error", err)
	}
}

func (s *MatchService) expandRange(from, to string) ([]string, error) {
	start, err := match.ParseDate(from)
	if err != nil {
		return nil, fmt.Errorf("%w: from must be YYYY-MM-DD", ErrInvalidInput)
	}
	end, err := match.ParseDate(to)
	if err != nil {
		return nil, fmt.Errorf("%w: to must be YYYY-MM-DD", ErrInvalidInput)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: to must not be before from", ErrInvalidInput)
	}

	days := int(end.Sub(start).Hours()/24) + 1
	if days > s.cfg.RangeMaxDays {
		return nil, fmt.Errorf("%w: range covers %d days, max=%d", ErrInvalidInput, days, s.cfg.RangeMaxDays)
	}

	dates := make([]string, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(match.DateLayout))
	}
	return dates, nil
}

func normalizeDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return "", fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if _, err := match.ParseDate(date); err != nil {
		return "", fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrInvalidInput, date)
	}
	return date, nil
}
