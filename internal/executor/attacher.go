package executor

import (
	"context"
	"time"
)

// AttachConfig controls how Attacher.Attach reads from and controls an
// already-running service, carried explicitly into the signature rather
// than left implicit the way the Rust original's AttachConfig is.
type AttachConfig struct {
	FollowFromStart bool
	HistoryLines    int           // 0 means "use the backend's default"
	Timeout         time.Duration // 0 means "no timeout"
}

// DefaultAttachConfig matches original_source's AttachConfig::default().
func DefaultAttachConfig() AttachConfig {
	return AttachConfig{FollowFromStart: false, HistoryLines: 100, Timeout: 30 * time.Second}
}

// ServiceStatus is the status of an attached (not launched) service.
type ServiceStatus int

const (
	AttachedRunning ServiceStatus = iota
	AttachedStopped
	AttachedFailed
	AttachedUnknown
)

func (s ServiceStatus) String() string {
	switch s {
	case AttachedRunning:
		return "running"
	case AttachedStopped:
		return "stopped"
	case AttachedFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// AttachedHandle controls a service that harness did not spawn itself —
// richer than ProcessHandle since the remote side may support an explicit
// reload or a graceful restart distinct from stop-then-start.
type AttachedHandle interface {
	ID() string
	Status(ctx context.Context) (ServiceStatus, error)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error
	Reload(ctx context.Context) error
	Disconnect(ctx context.Context) error
}

// Attacher binds to an existing running service (by name, container ID, or
// unit name, depending on the backend) without spawning it.
type Attacher interface {
	Attach(ctx context.Context, target string, config AttachConfig) (<-chan ProcessEvent, AttachedHandle, error)
}
