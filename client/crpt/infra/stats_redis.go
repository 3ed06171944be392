package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crpt-gateway/client/crpt/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStatsStore acumula resultados dos envios em hashes do Redis:
//
//	{prefix}:total            outcome -> contador
//	{prefix}:group:{pg}       outcome -> contador
//	{prefix}:minute:{yyyymmddHHMM}  outcome -> contador (expira em ttl)
//	{prefix}:status           código HTTP -> contador
type RedisStatsStore struct {
	rdb redis.Cmdable

	prefix string
	// ttl vale só para os buckets por minuto; total e por grupo são cumulativos.
	ttl time.Duration

	perMinute bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsPerMinute(enabled bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.perMinute = enabled }
}

func NewRedisStatsStore(rdb redis.Cmdable, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:       rdb,
		prefix:    "crpt:stats",
		ttl:       24 * time.Hour,
		perMinute: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.SubmissionEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := string(ev.Outcome)
	if field == "" {
		field = string(domain.OutcomeFailed)
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	if g := ev.ProductGroup.String(); g != "" {
		pipe.HIncrBy(ctx, s.prefix+":group:"+g, field, 1)
	}

	if s.perMinute {
		bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	if ev.StatusCode > 0 {
		pipe.HIncrBy(ctx, s.prefix+":status", fmt.Sprint(ev.StatusCode), 1)
	}

	_, err := pipe.Exec(ctx)
	return err
}
