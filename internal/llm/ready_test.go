package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWaitReady(t *testing.T) {
	opts := ReadyOptions{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	t.Run("ready on first probe", func(t *testing.T) {
		g := new(MockGenerator)
		g.On("Ping", mock.Anything).Return(nil).Once()

		require.NoError(t, WaitReady(context.Background(), discardLogger(), g, opts))
		g.AssertExpectations(t)
	})

	t.Run("ready after failures", func(t *testing.T) {
		g := new(MockGenerator)
		g.On("Ping", mock.Anything).Return(errors.New("connection refused")).Twice()
		g.On("Ping", mock.Anything).Return(nil).Once()

		require.NoError(t, WaitReady(context.Background(), discardLogger(), g, opts))
		g.AssertExpectations(t)
	})

	t.Run("never ready", func(t *testing.T) {
		g := new(MockGenerator)
		g.On("Ping", mock.Anything).Return(errors.New("connection refused")).Times(3)

		err := WaitReady(context.Background(), discardLogger(), g, opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 3 attempts")
		assert.Contains(t, err.Error(), "connection refused")
		g.AssertExpectations(t)
	})

	t.Run("context cancelled while waiting", func(t *testing.T) {
		g := new(MockGenerator)
		g.On("Ping", mock.Anything).Return(errors.New("connection refused"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := WaitReady(ctx, discardLogger(), g, ReadyOptions{Attempts: 5, BaseDelay: time.Hour})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestWaitReadyBoundsEachProbe(t *testing.T) {
	t.Run("ping that never returns on its own", func(t *testing.T) {
		g := new(MockGenerator)
		g.On("Ping", mock.Anything).
			Run(func(args mock.Arguments) { <-args.Get(0).(context.Context).Done() }).
			Return(context.DeadlineExceeded).Times(2)

		opts := ReadyOptions{Attempts: 2, BaseDelay: time.Millisecond, ProbeTimeout: 20 * time.Millisecond}
		err := WaitReady(context.Background(), discardLogger(), g, opts)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		g.AssertExpectations(t)
	})

	t.Run("ollama that accepts but never replies", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		opts := ReadyOptions{Attempts: 3, BaseDelay: time.Millisecond, ProbeTimeout: 50 * time.Millisecond}
		done := make(chan error, 1)
		go func() {
			done <- WaitReady(context.Background(), discardLogger(), NewOllama(server.URL, "m", 0), opts)
		}()

		select {
		case err := <-done:
			require.Error(t, err)
			assert.Contains(t, err.Error(), "after 3 attempts")
		case <-time.After(5 * time.Second):
			t.Fatal("WaitReady hung on an unresponsive backend")
		}
	})
}
