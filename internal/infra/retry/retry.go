package retry

// Exponential backoff with full jitter for outbound deliveries.
// Only HTTPError values with a retryable status are retried. A 429 with
// RetryAfter waits exactly that long, even past MaxDelay; if the wait would
// outlast the context deadline the 429 is returned at once.

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"
)

type Options struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// HTTPError is a failed delivery with its status code.
type HTTPError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "http error: <nil>"
	}
	if e.Message == "" {
		return fmt.Sprintf("http error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("http error (%d): %s", e.StatusCode, e.Message)
}

func IsRetryable(err error) bool {
	var he *HTTPError
	if !errors.As(err, &he) {
		return false
	}
	switch he.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func clamp(d, max time.Duration) time.Duration {
	if max > 0 && d > max {
		return max
	}
	return d
}

// Backoff returns a random delay in [0, min(base*2^attempt, max)].
func Backoff(attempt int, base, max time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if base <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	ceiling := clamp(base<<attempt, max)
	if ceiling <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(ceiling) + 1))
}

// nextDelay is how long to sleep after a failed attempt.
func nextDelay(attempt int, err error, opts Options) time.Duration {
	var he *HTTPError
	if errors.As(err, &he) && he.StatusCode == http.StatusTooManyRequests && he.RetryAfter > 0 {
		return he.RetryAfter
	}
	return Backoff(attempt, opts.BaseDelay, opts.MaxDelay)
}

// Do calls fn until it succeeds, returns a non-retryable error,
// runs out of attempts or ctx is done.
func Do(ctx context.Context, opts Options, fn func() error) error {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 300 * time.Millisecond
	}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		switch {
		case err == nil:
			return nil
		case attempt >= opts.MaxRetries, !IsRetryable(err):
			return err
		}

		sleep := nextDelay(attempt, err, opts)
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < sleep {
			return err
		}

		t := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
