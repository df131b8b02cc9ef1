package executor

import "context"

// ContainerLauncher rewrites a command into a container-runtime invocation
// (`<runtime> run --rm <image> <cmd.Path> <cmd.Args...>`) and delegates the
// rewritten command to Inner. Wrapping a LocalLauncher runs the container on
// this host; wrapping a RemoteLauncher runs it on a remote host over SSH —
// the runtime binary itself never needs to be local.
type ContainerLauncher struct {
	Inner     Launcher
	Runtime   string // "docker", "podman", "nerdctl"
	Image     string
	ExtraArgs []string
}

func (c *ContainerLauncher) Launch(ctx context.Context, target string, cmd Command) (<-chan ProcessEvent, ProcessHandle, error) {
	rewritten := c.rewrite(cmd)
	return c.Inner.Launch(ctx, target, rewritten)
}

func (c *ContainerLauncher) rewrite(cmd Command) Command {
	args := make([]string, 0, len(c.ExtraArgs)+len(cmd.Args)+4)
	args = append(args, "run", "--rm")
	args = append(args, c.ExtraArgs...)
	args = append(args, c.Image, cmd.Path)
	args = append(args, cmd.Args...)

	return Command{
		Path:       c.Runtime,
		Args:       args,
		Env:        cmd.Env,
		WorkingDir: cmd.WorkingDir,
		Stdin:      cmd.Stdin,
	}
}
