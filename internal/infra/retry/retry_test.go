package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("plain"), false},
		{&HTTPError{StatusCode: 400}, false},
		{&HTTPError{StatusCode: 429}, true},
		{&HTTPError{StatusCode: 503}, true},
		{fmt.Errorf("wrapped: %w", &HTTPError{StatusCode: 502}), true},
	}
	for _, c := range cases {
		if got := IsRetryable(c.err); got != c.want {
			t.Fatalf("IsRetryable(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestBackoffStaysUnderCeiling(t *testing.T) {
	for attempt := 0; attempt < 10; attempt++ {
		d := Backoff(attempt, 10*time.Millisecond, 50*time.Millisecond)
		if d < 0 || d > 50*time.Millisecond {
			t.Fatalf("attempt %d: backoff %v out of range", attempt, d)
		}
	}
	if d := Backoff(3, 0, time.Second); d != 0 {
		t.Fatalf("zero base should give zero delay, got %v", d)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Options{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}, func() error {
		calls++
		if calls < 3 {
			return &HTTPError{StatusCode: 500}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	calls := 0
	perm := &HTTPError{StatusCode: 400, Message: "bad request"}
	err := Do(context.Background(), Options{MaxRetries: 5, BaseDelay: time.Millisecond}, func() error {
		calls++
		return perm
	})
	if !errors.Is(err, perm) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDoGivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Options{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}, func() error {
		calls++
		return &HTTPError{StatusCode: 503}
	})
	if err == nil || calls != 3 {
		t.Fatalf("expected failure after 3 calls, got err=%v calls=%d", err, calls)
	}
}

func TestDoWaitsFullRetryAfter(t *testing.T) {
	calls := 0
	start := time.Now()
	err := Do(context.Background(), Options{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}, func() error {
		calls++
		if calls == 1 {
			return &HTTPError{StatusCode: 429, RetryAfter: 50 * time.Millisecond}
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("expected success on 2nd call, got err=%v calls=%d", err, calls)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("retry_after cut short: waited %v, want at least 50ms", elapsed)
	}
}

func TestDoReturnsRetryAfterPastDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	calls := 0
	start := time.Now()
	err := Do(ctx, Options{MaxRetries: 3, BaseDelay: time.Millisecond}, func() error {
		calls++
		return &HTTPError{StatusCode: 429, RetryAfter: time.Hour}
	})
	var he *HTTPError
	if !errors.As(err, &he) || he.StatusCode != 429 {
		t.Fatalf("expected the 429 back, got %v", err)
	}
	if calls != 1 || time.Since(start) > 500*time.Millisecond {
		t.Fatalf("expected an immediate give-up, got %d calls after %v", calls, time.Since(start))
	}
}

func TestDoHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, Options{MaxRetries: 3}, func() error {
		t.Fatalf("fn must not run with a cancelled context")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
