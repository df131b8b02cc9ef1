package executor

import (
	"context"
	"strconv"

	"golang.org/x/crypto/ssh"
)

// RemoteAuth bundles the SSH authentication methods and host-key
// verification callback an AuthProvider resolves before a remote launch is
// attempted. RemoteLauncher itself no longer dials natively — it shells
// out to the system `ssh` binary, which authenticates via SSH_AUTH_SOCK
// and verifies host keys via ~/.ssh/known_hosts on its own — so these
// fields exist purely so AuthProvider.AuthFor can still perform that
// preflight check (agent reachable, host key resolvable) before a launch
// is attempted, failing fast with an error instead of letting
// the ssh subprocess fail and parsing its stderr.
type RemoteAuth struct {
	Methods []ssh.AuthMethod
	HostKey ssh.HostKeyCallback
}

// RemoteLauncher rewrites a command into `ssh [-p port] [user@]host -- cmd
// cmd.Args…` and delegates the rewritten command to Inner, the base
// launcher that actually spawns the `ssh` binary. This mirrors
// ContainerLauncher's rewrite-then-delegate shape: RemoteLauncher never
// talks SSH itself, so composing ContainerLauncher{Inner: RemoteLauncher{Inner:
// LocalLauncher}} produces the exact argv `ssh host -- runtime run --rm
// image cmd…` that LocalLauncher spawns, rather than an SSH session
// running an equivalent-but-unverified command string.
type RemoteLauncher struct {
	Inner Launcher
	Host  string
	Port  int
	User  string
}

// NewRemoteLauncher constructs a RemoteLauncher targeting host:port as
// user. A nil inner defaults to LocalLauncher when Launch is called.
func NewRemoteLauncher(host string, port int, user string, inner Launcher) *RemoteLauncher {
	return &RemoteLauncher{Host: host, Port: port, User: user, Inner: inner}
}

func (r *RemoteLauncher) Launch(ctx context.Context, target string, cmd Command) (<-chan ProcessEvent, ProcessHandle, error) {
	inner := r.Inner
	if inner == nil {
		inner = NewLocalLauncher()
	}
	return inner.Launch(ctx, target, r.rewrite(cmd))
}

func (r *RemoteLauncher) rewrite(cmd Command) Command {
	dest := r.Host
	if r.User != "" {
		dest = r.User + "@" + r.Host
	}

	args := make([]string, 0, len(cmd.Args)+5)
	if r.Port != 0 && r.Port != 22 {
		args = append(args, "-p", strconv.Itoa(r.Port))
	}
	args = append(args, dest, "--", cmd.Path)
	args = append(args, cmd.Args...)

	return Command{
		Path:       "ssh",
		Args:       args,
		Env:        cmd.Env,
		WorkingDir: cmd.WorkingDir,
		Stdin:      cmd.Stdin,
	}
}
