package llm

import (
	"context"
	"errors"
	"fmt"
)

// NoResponse is returned as the answer when the backend reply carries no text.
const NoResponse = "No response from AI"

// ErrUnavailable marks transport failures: the backend could not be reached or did not reply.
var ErrUnavailable = errors.New("inference backend unavailable")

// Generator turns a prompt into generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Ping reports whether the backend is ready to serve generations.
	Ping(ctx context.Context) error
	Model() string
}

// StatusError is returned when the backend answered with a non-200 status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Failed to get response from AI. Status code: %d, Response: %s", e.Code, e.Body)
}

// unavailable wraps a transport error so callers can match ErrUnavailable
// while the message stays the underlying one.
type unavailable struct{ err error }

func (u *unavailable) Error() string { return u.err.Error() }

func (u *unavailable) Unwrap() []error { return []error{ErrUnavailable, u.err} }

func wrapUnavailable(err error) error {
	if err == nil {
		return nil
	}
	return &unavailable{err: err}
}
