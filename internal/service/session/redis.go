package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV persists histories in Redis under the same session:<id> schema the
// frontend's previous deployment used, so existing records stay readable.
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV connects using a redis:// or rediss:// URL.
func NewRedisKV(rawURL string) (*RedisKV, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return &RedisKV{client: redis.NewClient(opts)}, nil
}

// Ping verifies connectivity, intended for startup checks.
func (r *RedisKV) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (r *RedisKV) Close() error { return r.client.Close() }

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisKV) Delete(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
