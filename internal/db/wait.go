package db

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// WaitForReady pings p with exponential backoff until it answers or timeout expires.
func WaitForReady(ctx context.Context, p Pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 0

	var lastErr error
	op := func() error {
		lastErr = p.Ping(ctx)
		return lastErr
	}
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		if lastErr != nil {
			return fmt.Errorf("timeout waiting for database: %w", lastErr)
		}
		return fmt.Errorf("timeout waiting for database: %w", err)
	}
	return nil
}
