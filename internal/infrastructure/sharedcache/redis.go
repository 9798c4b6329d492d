package sharedcache

import (
	"context"
	"errors"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
	goredis "github.com/redis/go-redis/v9"

	"github.com/riskibarqy/matchday-streams/internal/domain/match"
	"github.com/riskibarqy/matchday-streams/internal/platform/metrics"
)

const defaultPrefix = "matchday:"

// Store keeps enriched match lists in Redis so replicas share one upstream budget.
type Store struct {
	client goredis.Cmdable
	closer func() error
	prefix string
	ttl    time.Duration
}

// New connects to the Redis instance described by rawURL (redis://...).
func New(rawURL string, ttl time.Duration) (*Store, error) {
	opts, err := goredis.ParseURL(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, crerr.Wrap(err, "parse REDIS_URL")
	}
	client := goredis.NewClient(opts)
	return &Store{
		client: client,
		closer: client.Close,
		prefix: defaultPrefix,
		ttl:    ttl,
	}, nil
}

// NewWithClient wraps an existing client; the caller owns its lifecycle.
func NewWithClient(client goredis.Cmdable, ttl time.Duration) *Store {
	return &Store{client: client, prefix: defaultPrefix, ttl: ttl}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer()
}

func (s *Store) key(cacheKey string) string {
	return s.prefix + cacheKey
}

// GetRecords returns the records stored under cacheKey. A missing key is not an error.
func (s *Store) GetRecords(ctx context.Context, cacheKey string) ([]match.Record, bool, error) {
	raw, err := s.client.Get(ctx, s.key(cacheKey)).Bytes()
	if errors.Is(err, goredis.Nil) {
		metrics.ObserveCache("redis", false)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, crerr.Wrapf(err, "redis get %s", cacheKey)
	}

	records, err := DecodeRecords(raw)
	if err != nil {
		return nil, false, err
	}
	metrics.ObserveCache("redis", true)
	return records, true, nil
}

func (s *Store) SetRecords(ctx context.Context, cacheKey string, records []match.Record) error {
	raw, err := EncodeRecords(records)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(cacheKey), raw, s.ttl).Err(); err != nil {
		return crerr.Wrapf(err, "redis set %s", cacheKey)
	}
	return nil
}

type storedRecord struct {
	ExternalID  int64     `json:"external_id"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	HomeCrest   string    `json:"home_crest,omitempty"`
	AwayCrest   string    `json:"away_crest,omitempty"`
	KickoffAt   time.Time `json:"kickoff_at"`
	Status      string    `json:"status"`
	HomeScore   *int      `json:"home_score"`
	AwayScore   *int      `json:"away_score"`
	Competition string    `json:"competition"`
	StreamURL   string    `json:"stream_url,omitempty"`
	HasStream   bool      `json:"has_stream"`
}

func EncodeRecords(records []match.Record) ([]byte, error) {
	out := make([]storedRecord, 0, len(records))
	for _, r := range records {
		out = append(out, storedRecord{
			ExternalID:  r.ExternalID,
			HomeTeam:    r.HomeTeam,
			AwayTeam:    r.AwayTeam,
			HomeCrest:   r.HomeCrest,
			AwayCrest:   r.AwayCrest,
			KickoffAt:   r.KickoffAt,
			Status:      r.Status,
			HomeScore:   r.HomeScore,
			AwayScore:   r.AwayScore,
			Competition: r.Competition,
			StreamURL:   r.StreamURL,
			HasStream:   r.HasStream,
		})
	}

	raw, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(out)
	if err != nil {
		return nil, crerr.Wrap(err, "encode records")
	}
	return raw, nil
}

func DecodeRecords(raw []byte) ([]match.Record, error) {
	var stored []storedRecord
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(raw, &stored); err != nil {
		return nil, crerr.Wrap(err, "decode records")
	}

	out := make([]match.Record, 0, len(stored))
	for _, item := range stored {
		out = append(out, match.Record{
			Fixture: match.Fixture{
				ExternalID:  item.ExternalID,
				HomeTeam:    item.HomeTeam,
				AwayTeam:    item.AwayTeam,
				HomeCrest:   item.HomeCrest,
				AwayCrest:   item.AwayCrest,
				KickoffAt:   item.KickoffAt,
				Status:      item.Status,
				HomeScore:   item.HomeScore,
				AwayScore:   item.AwayScore,
				Competition: item.Competition,
			},
			StreamURL: item.StreamURL,
			HasStream: item.HasStream,
		})
	}
	return out, nil
}
