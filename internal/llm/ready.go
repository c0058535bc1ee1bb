package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"support-bot/internal/retry"
)

// DefaultProbeTimeout bounds a single liveness probe when ReadyOptions leaves it unset.
const DefaultProbeTimeout = 5 * time.Second

// ReadyOptions bounds the startup liveness probe.
type ReadyOptions struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// ProbeTimeout caps each Ping so a backend that accepts but never replies still uses up attempts.
	ProbeTimeout time.Duration
}

// WaitReady probes g until it answers or the attempt budget runs out.
func WaitReady(ctx context.Context, log *slog.Logger, g Generator, opts ReadyOptions) error {
	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}
	var lastErr error
	for attempt := 0; attempt < opts.Attempts; attempt++ {
		lastErr = ping(ctx, g, opts.ProbeTimeout)
		if lastErr == nil {
			log.Info("inference backend ready", "model", g.Model(), "attempts", attempt+1)
			return nil
		}
		if attempt == opts.Attempts-1 {
			break
		}
		delay := retry.CappedBackoff(attempt, opts.BaseDelay, opts.MaxDelay)
		log.Warn("inference backend not ready", "attempt", attempt+1, "retry_in", delay, "err", lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("backend not ready after %d attempts: %w", opts.Attempts, lastErr)
}

func ping(ctx context.Context, g Generator, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return g.Ping(ctx)
}
