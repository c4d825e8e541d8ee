package db

import (
	"context"
	"errors"
	"testing"
	"time"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestWaitForReady_EventuallySucceeds(t *testing.T) {
	calls := 0
	p := pingerFunc(func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	if err := WaitForReady(context.Background(), p, 5*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 pings, got %d", calls)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	down := errors.New("connection refused")
	p := pingerFunc(func(context.Context) error { return down })

	start := time.Now()
	err := WaitForReady(context.Background(), p, 300*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, down) {
		t.Errorf("expected last ping error to be wrapped, got %v", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Errorf("WaitForReady overran its timeout: %v", time.Since(start))
	}
}
