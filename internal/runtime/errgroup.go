package runtime

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrgroupSpawner tracks every goroutine it starts on an errgroup.Group, so
// the daemon can Wait() for all detached work to drain during a graceful
// shutdown instead of leaking goroutines past process exit.
type ErrgroupSpawner struct {
	group *errgroup.Group
}

// NewErrgroupSpawner constructs an ErrgroupSpawner backed by group. Pass a
// group created with errgroup.WithContext so spawned work observes
// group-wide cancellation.
func NewErrgroupSpawner(group *errgroup.Group) *ErrgroupSpawner {
	return &ErrgroupSpawner{group: group}
}

func (s *ErrgroupSpawner) Go(ctx context.Context, fn func(context.Context)) {
	s.group.Go(func() error {
		fn(ctx)
		return nil
	})
}

func (s *ErrgroupSpawner) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until every goroutine started via Go has returned.
func (s *ErrgroupSpawner) Wait() error {
	return s.group.Wait()
}
