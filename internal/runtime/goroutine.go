package runtime

import (
	"context"
	"time"
)

// GoroutineSpawner is the zero-dependency Spawner backend: every call to Go
// starts a plain goroutine with no supervision. It is the right choice for
// short-lived CLI invocations and tests where nothing needs to join on
// detached work at shutdown.
type GoroutineSpawner struct{}

// NewGoroutineSpawner constructs a GoroutineSpawner.
func NewGoroutineSpawner() *GoroutineSpawner { return &GoroutineSpawner{} }

func (GoroutineSpawner) Go(ctx context.Context, fn func(context.Context)) {
	go fn(ctx)
}

func (GoroutineSpawner) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
