package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/matchday-streams/internal/platform/metrics"
	"golang.org/x/sync/singleflight"
)

type entry struct {
	value    any
	storedAt time.Time
}

// Store is an in-process TTL cache. An entry is fresh while now-storedAt < ttl;
// stale entries are replaced by the next load for their key.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	name    string
	now     func() time.Time
	flight  singleflight.Group
}

type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithName labels the store in metrics.
func WithName(name string) Option {
	return func(s *Store) {
		if strings.TrimSpace(name) != "" {
			s.name = name
		}
	}
}

// NewStore builds a store; ttl <= 0 keeps entries until overwritten.
func NewStore(ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		name:    "default",
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || !s.fresh(e) {
		return nil, false
	}

	return e.value, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	s.setAt(key, value, s.now())
}

func (s *Store) setAt(key string, value any, storedAt time.Time) {
	if key == "" {
		return
	}

	s.mu.Lock()
	s.entries[key] = entry{
		value:    value,
		storedAt: storedAt,
	}
	s.mu.Unlock()
}

// GetOrLoad returns the fresh value for key or runs loader once for all
// concurrent callers and stores its result. Loader errors are not cached. A
// caller whose ctx ends stops waiting while the load itself carries on.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		metrics.ObserveCache(s.name, true)
		return value, nil
	}
	metrics.ObserveCache(s.name, false)

	// Freshness counts from the start of the call, not from when the load finished.
	startedAt := s.now()
	// The shared load must not die with whichever caller happened to start it.
	loadCtx := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(key, func() (any, error) {
		if cached, ok := s.Get(loadCtx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(loadCtx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.setAt(key, loaded, startedAt)
		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val, nil
	}
}

// GetOrLoadAs is GetOrLoad with a typed loader.
func GetOrLoadAs[T any](ctx context.Context, s *Store, key string, loader func(context.Context) (T, error)) (T, error) {
	var zero T
	if loader == nil {
		return zero, fmt.Errorf("loader is required")
	}

	value, err := s.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return loader(ctx)
	})
	if err != nil {
		return zero, err
	}

	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("cache key %q holds %T, want %T", key, value, zero)
	}
	return typed, nil
}

func (s *Store) fresh(e entry) bool {
	if s.ttl <= 0 {
		return true
	}
	return s.now().Sub(e.storedAt) < s.ttl
}
