package queue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"support-bot/internal/retry"
)

// EventType enumerates published event categories.
type EventType string

const (
	EventTypeDocumentUploaded EventType = "document.uploaded"
)

// Event is a fire-and-forget notification for downstream consumers.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       EventType `json:"type"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Publisher emits events to a bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// PublishWithRetry attempts to publish with retries and exponential backoff.
func PublishWithRetry(ctx context.Context, p Publisher, event Event, attempts int, base time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if err := p.Publish(ctx, event); err == nil {
			return nil
		} else if attempt == attempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry.ExponentialBackoff(attempt, base)):
		}
	}
	return nil
}

// NoOp drops every event.
type NoOp struct{}

func (NoOp) Publish(context.Context, Event) error { return nil }

func (NoOp) Close() error { return nil }
