package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDriver keeps jobs in a redis list: LPUSH to enqueue, RPOP/BRPOP to
// take the oldest.
type RedisDriver struct {
	rdb *redis.Client
	key string
}

// NewRedisDriver queues onto the list at key. Share the client with
// pkg/cache.
func NewRedisDriver(rdb *redis.Client, key string) *RedisDriver {
	return &RedisDriver{rdb: rdb, key: key}
}

func (d *RedisDriver) Push(ctx context.Context, payload []byte) error {
	if err := d.rdb.LPush(ctx, d.key, payload).Err(); err != nil {
		return fmt.Errorf("queue/redis: push: %w", err)
	}
	return nil
}

func (d *RedisDriver) Pop(ctx context.Context, wait time.Duration) ([]byte, error) {
	if wait <= 0 {
		raw, err := d.rdb.RPop(ctx, d.key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("queue/redis: pop: %w", err)
		}
		return raw, nil
	}

	result, err := d.rdb.BRPop(ctx, wait, d.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("queue/redis: pop: %w", err)
	}
	if len(result) < 2 {
		return nil, nil
	}
	return []byte(result[1]), nil
}

// Len is the length of the backing list.
func (d *RedisDriver) Len(ctx context.Context) (int64, error) {
	return d.rdb.LLen(ctx, d.key).Result()
}
