package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ripple/internal/observability"

	"github.com/redis/go-redis/v9"
)

// GetJSON reads key and unmarshals it into dest. It reports (true, nil) on a
// hit. A Redis failure is reported as a miss: the caller falls through to the
// database and the error surfaces only through the RedisErrors metric.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	ctx, span := observability.TraceRedisOperation(ctx, "get")
	defer span.End()

	s, err := client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		span.RecordError(err)
		return false, nil
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		// A corrupt entry must not take the read path down. Drop it so the
		// next read repopulates.
		span.RecordError(err)
		Invalidate(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON marshals v and stores it under key with the given TTL. Storing is
// best-effort; Redis failures are swallowed.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ctx, span := observability.TraceRedisOperation(ctx, "set")
	defer span.End()

	if err := client.Set(ctx, key, b, ttl).Err(); err != nil {
		span.RecordError(err)
	}
	return nil
}

// CacheAside serves dest from Redis when possible, otherwise runs fetch
// (which must populate dest) and stores the result under key. Only fetch
// errors propagate: a broken cache degrades to reading through.
func CacheAside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}
