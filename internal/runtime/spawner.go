package runtime

import (
	"context"
	"time"
)

// Spawner schedules detached work and provides a cancellable sleep. It is
// the Go equivalent of the async-runtime-compat shim the original system
// uses to stay agnostic of a specific async executor: here it stays
// agnostic of whether detached work runs on a bare goroutine or is tracked
// by an errgroup.Group.
type Spawner interface {
	// Go schedules fn to run in its own goroutine. fn must observe ctx
	// cancellation itself; Go does not return a handle to wait on.
	Go(ctx context.Context, fn func(context.Context))

	// Sleep blocks for d or until ctx is cancelled, whichever comes first.
	// It returns ctx.Err() if cancelled, nil otherwise.
	Sleep(ctx context.Context, d time.Duration) error
}
