package fs

import (
	"context"
	"fmt"
	"os"
	"time"
)

// WaitForFile polls until path exists and is non-empty, backing off
// exponentially up to 500ms between checks.
func WaitForFile(ctx context.Context, path string, maxWait time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	delay := 50 * time.Millisecond
	for {
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			return nil
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("timeout waiting for file %s after %v: %w", path, maxWait, ctx.Err())
		case <-t.C:
		}

		if delay *= 2; delay > 500*time.Millisecond {
			delay = 500 * time.Millisecond
		}
	}
}
