package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefix for cached answers
const cacheKeyPrefix = "answer:"

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects and pings the server.
func NewRedisCache(addr, password string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewRedisCacheWithClient(client), nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) GetAnswer(ctx context.Context, key string) (string, bool, error) {
	answer, err := c.client.Get(ctx, cacheKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return answer, true, nil
}

func (c *RedisCache) SetAnswer(ctx context.Context, key, answer string, ttl time.Duration) error {
	return c.client.Set(ctx, cacheKeyPrefix+key, answer, ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
