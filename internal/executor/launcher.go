package executor

import (
	"context"
	"strings"
)

// Launcher spawns a command against a target and returns a channel of raw
// process events plus a handle to control the running process. The event
// channel is closed once the process has exited and its final event has
// been delivered.
//
// Launchers compose: in ContainerLauncher{Inner: RemoteLauncher{Inner:
// LocalLauncher}} the outer launcher rewrites the command line first, so
// Launch on the outer ContainerLauncher ends up running
// `ssh host -- <runtime> run --rm <image> <cmd...>` as a single local process.
type Launcher interface {
	Launch(ctx context.Context, target string, cmd Command) (<-chan ProcessEvent, ProcessHandle, error)
}

// Execute runs cmd against target, draining its event channel into a
// single string and waiting for it to exit. It is the convenience method
// original_source's launcher.rs provides as Launcher::execute's default
// implementation, layered on top of Launch rather than duplicating the
// spawn logic.
func Execute(ctx context.Context, l Launcher, target string, cmd Command) (ExitResult, error) {
	events, handle, err := l.Launch(ctx, target, cmd)
	if err != nil {
		return ExitResult{}, err
	}

	var output strings.Builder
	for ev := range events {
		if ev.Type == EventStdout || ev.Type == EventStderr {
			output.WriteString(ev.Data)
			output.WriteByte('\n')
		}
	}

	status, err := handle.Wait(ctx)
	if err != nil {
		return ExitResult{}, err
	}
	return ExitResult{Status: status, Output: output.String()}, nil
}
