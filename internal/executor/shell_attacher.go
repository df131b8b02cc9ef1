package executor

import (
	"bufio"
	"context"
	"os/exec"
	"strings"
	"time"

	"harness/internal/harnesserr"
)

// ShellAttacher binds to a service managed by an external control plane
// (systemd, a container's own supervisor, a process manager) through a set
// of shell commands rather than a dedicated client library — the lowest
// common denominator every such control plane supports. StatusCmd's output
// is matched case-insensitively, line by line: "stopped"/"inactive"/"dead"
// gives AttachedStopped, "failed" gives AttachedFailed, and
// "running"/"active" gives AttachedRunning, checked in that order so that
// "inactive" is not read as "active"; anything else is AttachedUnknown.
type ShellAttacher struct {
	Name                                     string
	StatusCmd, StartCmd, StopCmd, RestartCmd string
	ReloadCmd                                string // optional
	Runner                                   func(ctx context.Context, shellCmd string) ([]byte, error)
}

func NewShellAttacher(name, statusCmd, startCmd, stopCmd, restartCmd string) *ShellAttacher {
	return &ShellAttacher{
		Name: name, StatusCmd: statusCmd, StartCmd: startCmd,
		StopCmd: stopCmd, RestartCmd: restartCmd,
	}
}

func (a *ShellAttacher) run(ctx context.Context, shellCmd string) ([]byte, error) {
	if a.Runner != nil {
		return a.Runner(ctx, shellCmd)
	}
	return exec.CommandContext(ctx, "sh", "-c", shellCmd).CombinedOutput()
}

func (a *ShellAttacher) Attach(ctx context.Context, target string, config AttachConfig) (<-chan ProcessEvent, AttachedHandle, error) {
	events := make(chan ProcessEvent, 4)
	events <- ProcessEvent{Timestamp: time.Now(), Type: EventStarted}
	if config.HistoryLines == 0 {
		config = DefaultAttachConfig()
	}
	handle := &shellHandle{attacher: a, target: target, events: events}
	return events, handle, nil
}

type shellHandle struct {
	attacher *ShellAttacher
	target   string
	events   chan ProcessEvent
}

func (h *shellHandle) ID() string { return h.target }

func (h *shellHandle) Status(ctx context.Context) (ServiceStatus, error) {
	out, err := h.attacher.run(ctx, h.attacher.StatusCmd)
	if err != nil {
		return AttachedUnknown, harnesserr.NewHealthCheckError("command", err.Error())
	}
	return parseStatusOutput(out), nil
}

func parseStatusOutput(out []byte) ServiceStatus {
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := strings.ToLower(scanner.Text())
		switch {
		case strings.Contains(line, "stopped"), strings.Contains(line, "inactive"), strings.Contains(line, "dead"):
			return AttachedStopped
		case strings.Contains(line, "failed"):
			return AttachedFailed
		case strings.Contains(line, "running"), strings.Contains(line, "active"):
			return AttachedRunning
		}
	}
	return AttachedUnknown
}

func (h *shellHandle) Start(ctx context.Context) error {
	_, err := h.attacher.run(ctx, h.attacher.StartCmd)
	return wrapShellErr(err)
}

func (h *shellHandle) Stop(ctx context.Context) error {
	_, err := h.attacher.run(ctx, h.attacher.StopCmd)
	return wrapShellErr(err)
}

func (h *shellHandle) Restart(ctx context.Context) error {
	_, err := h.attacher.run(ctx, h.attacher.RestartCmd)
	return wrapShellErr(err)
}

func (h *shellHandle) Reload(ctx context.Context) error {
	if h.attacher.ReloadCmd == "" {
		return h.Restart(ctx)
	}
	_, err := h.attacher.run(ctx, h.attacher.ReloadCmd)
	return wrapShellErr(err)
}

func (h *shellHandle) Disconnect(ctx context.Context) error {
	close(h.events)
	return nil
}

func wrapShellErr(err error) error {
	if err == nil {
		return nil
	}
	return harnesserr.NewBackendError("shell-attacher", err.Error())
}
