// Package cache is a small JSON-over-redis store. A Store without a client
// is a valid no-op cache: every Get misses and every write succeeds, so
// callers never branch on whether redis is configured.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/bazaar/config"
)

type Store struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// New wraps rdb. Keys are namespaced with prefix; ttl applies to every Set.
func New(rdb *redis.Client, prefix string, ttl time.Duration) *Store {
	return &Store{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Connect dials the configured redis and verifies it with a ping. On
// failure it returns a no-op Store along with the error so the caller can
// log and carry on.
func Connect(ctx context.Context, prefix string) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return New(nil, prefix, 0), fmt.Errorf("cache: redis ping: %w", err)
	}
	return New(rdb, prefix, config.CatalogCacheTTL()), nil
}

// Enabled reports whether the store is backed by redis.
func (s *Store) Enabled() bool { return s != nil && s.rdb != nil }

// Client is the underlying redis client, nil when disabled.
func (s *Store) Client() *redis.Client {
	if !s.Enabled() {
		return nil
	}
	return s.rdb
}

func (s *Store) key(k string) string { return s.prefix + k }

// Get unmarshals the value at key into dest. It reports a hit; a miss is
// not an error.
func (s *Store) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	raw, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// A value we cannot decode is as good as absent.
		_ = s.rdb.Del(ctx, s.key(key)).Err()
		return false, nil
	}
	return true, nil
}

// Set stores value under key for the store's TTL.
func (s *Store) Set(ctx context.Context, key string, value interface{}) error {
	if !s.Enabled() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	return s.rdb.Set(ctx, s.key(key), data, s.ttl).Err()
}

// Del removes keys.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	if !s.Enabled() || len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	return s.rdb.Del(ctx, full...).Err()
}

func (s *Store) Close() error {
	if !s.Enabled() {
		return nil
	}
	return s.rdb.Close()
}
