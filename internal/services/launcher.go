package services

import (
	"fmt"

	"harness/internal/executor"
)

// BuildLauncher composes the executor.Launcher stack implied by target.Kind.
// A remote-container target produces ContainerLauncher{Inner: RemoteLauncher{Inner:
// LocalLauncher}}: the container rewrite runs first, turning the service
// command into "runtime run --rm image cmd…", and RemoteLauncher's own
// rewrite wraps that into "ssh host -- runtime run --rm image cmd…" for
// LocalLauncher to spawn verbatim — not an SSH session running an
// equivalent string, the literal argv.
func BuildLauncher(target Target, auth AuthProvider) (executor.Launcher, error) {
	switch target.Kind {
	case KindProcess:
		return executor.NewLocalLauncher(), nil

	case KindContainer:
		return &executor.ContainerLauncher{
			Inner:     executor.NewLocalLauncher(),
			Runtime:   target.Container.Runtime,
			Image:     target.Container.Image,
			ExtraArgs: target.Container.ExtraArgs,
		}, nil

	case KindRemote:
		if _, err := auth.AuthFor(target.Remote); err != nil {
			return nil, fmt.Errorf("resolve remote auth: %w", err)
		}
		return executor.NewRemoteLauncher(
			target.Remote.Host, target.Remote.Port, target.Remote.User,
			executor.NewLocalLauncher(),
		), nil

	case KindRemoteContainer:
		if _, err := auth.AuthFor(target.Remote); err != nil {
			return nil, fmt.Errorf("resolve remote auth: %w", err)
		}
		inner := executor.NewRemoteLauncher(
			target.Remote.Host, target.Remote.Port, target.Remote.User,
			executor.NewLocalLauncher(),
		)
		return &executor.ContainerLauncher{
			Inner:     inner,
			Runtime:   target.Container.Runtime,
			Image:     target.Container.Image,
			ExtraArgs: target.Container.ExtraArgs,
		}, nil

	default:
		return nil, fmt.Errorf("unknown target kind: %s", target.Kind)
	}
}

// BuildAttacher returns the executor.Attacher implied by an Attach target.
// Only KindAttach is supported — calling it for any other Kind is a
// programmer error, since those targets are spawned through BuildLauncher
// instead.
func BuildAttacher(target Target) (executor.Attacher, error) {
	if target.Kind != KindAttach {
		return nil, fmt.Errorf("target kind %q cannot be attached", target.Kind)
	}
	attacher := executor.NewShellAttacher(
		"", target.Attach.StatusCmd, target.Attach.StartCmd,
		target.Attach.StopCmd, target.Attach.RestartCmd,
	)
	attacher.ReloadCmd = target.Attach.ReloadCmd
	return attacher, nil
}
