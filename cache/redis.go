package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const pendingOrderPrefix = "pending_order:"

// RedisOrderCache shares pending orders across instances with a Redis TTL.
type RedisOrderCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisOrderCache(client *redis.Client, ttl time.Duration) *RedisOrderCache {
	return &RedisOrderCache{redis: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (c *RedisOrderCache) Put(ctx context.Context, orderID string, amount int64) error {
	if err := c.redis.Set(ctx, pendingOrderPrefix+orderID, amount, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache pending order: %w", err)
	}
	return nil
}

func (c *RedisOrderCache) Get(ctx context.Context, orderID string) (int64, error) {
	val, err := c.redis.Get(ctx, pendingOrderPrefix+orderID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrOrderNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup pending order: %w", err)
	}
	amount, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt pending order %s: %w", orderID, err)
	}
	return amount, nil
}

func (c *RedisOrderCache) Close() error {
	return c.redis.Close()
}
