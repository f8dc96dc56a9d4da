package util

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func fastRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	result, err := RetryWithBackoff(fastRetryConfig(), func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("connection reset by peer")
		}
		return "ok", nil
	}, "test-op")

	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if result != "ok" {
		t.Errorf("expected result 'ok', got %q", result)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	attempts := 0
	_, err := RetryWithBackoff(fastRetryConfig(), func() (int, error) {
		attempts++
		return 0, errors.New("invalid api key")
	}, "test-op")

	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt for non-retryable error, got %d", attempts)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	_, err := RetryWithBackoff(fastRetryConfig(), func() (int, error) {
		attempts++
		return 0, fmt.Errorf("search: %w", ErrRateLimited)
	}, "test-op")

	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected wrapped ErrRateLimited, got %v", err)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err       error
		retryable bool
	}{
		{nil, false},
		{ErrRateLimited, true},
		{fmt.Errorf("search/byterm: %w", ErrRateLimited), true},
		{errors.New("request timed out"), true},
		{errors.New("service unavailable (503)"), true},
		{errors.New("invalid credentials"), false},
		{ErrNotFound, false},
	}

	for _, tt := range tests {
		if got := IsRetryableError(tt.err); got != tt.retryable {
			t.Errorf("IsRetryableError(%v) = %v, expected %v", tt.err, got, tt.retryable)
		}
	}
}
