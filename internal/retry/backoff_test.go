package retry

import (
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	base := 100 * time.Millisecond

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, 1600 * time.Millisecond},
	}

	for _, tt := range tests {
		result := ExponentialBackoff(tt.attempt, base)
		if result != tt.expected {
			t.Errorf("attempt %d: got %v, want %v", tt.attempt, result, tt.expected)
		}
	}
}

func TestCappedBackoff(t *testing.T) {
	base := time.Second
	max := 10 * time.Second

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{-1, time.Second},
		{0, time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 10 * time.Second},
		{63, 10 * time.Second},
	}

	for _, tt := range tests {
		if got := CappedBackoff(tt.attempt, base, max); got != tt.expected {
			t.Errorf("attempt %d: got %v, want %v", tt.attempt, got, tt.expected)
		}
	}
}

func TestCappedBackoffWithoutCap(t *testing.T) {
	if got := CappedBackoff(5, time.Millisecond, 0); got != 32*time.Millisecond {
		t.Errorf("got %v, want 32ms", got)
	}
}
