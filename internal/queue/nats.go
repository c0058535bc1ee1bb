package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// SubjectPrefix namespaces every published subject.
const SubjectPrefix = "supportbot."

// NewNATS constructs a thin NATS-based publisher.
func NewNATS(log *slog.Logger, nc *nats.Conn) Publisher {
	return &natsPublisher{log: log, nc: nc}
}

type natsPublisher struct {
	log *slog.Logger
	nc  *nats.Conn
}

func (p *natsPublisher) Publish(_ context.Context, event Event) error {
	if event.Type == "" {
		return errors.New("event type required")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.UploadedAt.IsZero() {
		event.UploadedAt = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := p.nc.Publish(Subject(event.Type), body); err != nil {
		return err
	}
	p.log.Debug("event published", "id", event.ID, "type", event.Type)
	return nil
}

func (p *natsPublisher) Close() error {
	return p.nc.Drain()
}

// Subject returns the NATS subject an event type is published on.
func Subject(t EventType) string {
	return SubjectPrefix + string(t)
}
