package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/matchday-streams/internal/domain/match"
	"github.com/riskibarqy/matchday-streams/internal/platform/logging"
)

// MatchRefresher reloads one date into the cache.
type MatchRefresher interface {
	Refresh(ctx context.Context, date string) ([]match.Record, error)
}

type WarmerConfig struct {
	Interval time.Duration
	Days     int
	Workers  int
}

// Warmer keeps the next few days of fixtures in the cache so browsers rarely
// wait on the provider.
type Warmer struct {
	refresher MatchRefresher
	cfg       WarmerConfig
	logger    *logging.Logger
	now       func() time.Time
}

func NewWarmer(refresher MatchRefresher, cfg WarmerConfig, logger *logging.Logger) *Warmer {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Days <= 0 {
		cfg.Days = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}

	return &Warmer{
		refresher: refresher,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Run warms once immediately and then every interval until ctx is done.
func (w *Warmer) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := w.WarmOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.WarnContext(ctx, "match warmer pass failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// WarmOnce refreshes today and the following days, returning how many dates succeeded.
func (w *Warmer) WarmOnce(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Warmer.WarmOnce")
	defer span.End()

	dates := w.dates()
	pool, err := ants.NewPool(min(w.cfg.Workers, len(dates)))
	if err != nil {
		return 0, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu        sync.Mutex
		errs      []error
		refreshed int
		workers   sync.WaitGroup
	)
	for _, date := range dates {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			records, err := w.refresher.Refresh(ctx, date)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("warm date=%s: %w", date, err))
				return
			}
			refreshed++
			w.logger.DebugContext(ctx, "warmed matches", "date", date, "count", len(records))
		}); err != nil {
			workers.Done()
			workers.Wait()
			return refreshed, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	return refreshed, errors.Join(errs...)
}

func (w *Warmer) dates() []string {
	today := w.now().UTC()
	out := make([]string, 0, w.cfg.Days)
	for i := 0; i < w.cfg.Days; i++ {
		out = append(out, today.AddDate(0, 0, i).Format(match.DateLayout))
	}
	return out
}
