package cache

import (
	"context"
	"time"
)

// NoOpCache never stores anything; every lookup is a miss.
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) GetAnswer(ctx context.Context, key string) (string, bool, error) {
	return "", false, nil
}

func (c *NoOpCache) SetAnswer(ctx context.Context, key, answer string, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}
