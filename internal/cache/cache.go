package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores generated answers keyed by model and question.
type Cache interface {
	// GetAnswer returns ok=false on a miss.
	GetAnswer(ctx context.Context, key string) (answer string, ok bool, err error)

	// SetAnswer stores an answer with TTL.
	SetAnswer(ctx context.Context, key, answer string, ttl time.Duration) error

	// Close closes the cache connection
	Close() error
}

// GenerateCacheKey derives a stable key from the model identifier and the exact question.
func GenerateCacheKey(model, question string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(question))
	return hex.EncodeToString(h.Sum(nil))
}
