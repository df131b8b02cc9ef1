package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteLauncherRewritesCommand(t *testing.T) {
	inner := &fakeLauncher{}
	r := &RemoteLauncher{Inner: inner, Host: "db.internal", User: "deploy"}

	_, _, err := r.Launch(context.Background(), "svc", Command{Path: "redis-server", Args: []string{"--port", "6380"}})
	require.NoError(t, err)

	assert.Equal(t, "ssh", inner.gotCmd.Path)
	assert.Equal(t, []string{"deploy@db.internal", "--", "redis-server", "--port", "6380"}, inner.gotCmd.Args)
}

func TestRemoteLauncherAddsPortFlagWhenNonStandard(t *testing.T) {
	inner := &fakeLauncher{}
	r := &RemoteLauncher{Inner: inner, Host: "db.internal", Port: 2222}

	_, _, err := r.Launch(context.Background(), "svc", Command{Path: "echo"})
	require.NoError(t, err)

	assert.Equal(t, []string{"-p", "2222", "db.internal", "--", "echo"}, inner.gotCmd.Args)
}

func TestRemoteLauncherZeroValueHasNilInner(t *testing.T) {
	r := &RemoteLauncher{Host: "127.0.0.1"}
	assert.Nil(t, r.Inner)
}

// TestContainerLauncherWithInnerRemoteProducesVerbatimSSHCommand asserts the
// literal composed argv: a ContainerLauncher wrapping a RemoteLauncher
// wrapping a terminal launcher spawns exactly
// "ssh host -- runtime run --rm image cmd…", not an SSH session running an
// equivalent command string.
func TestContainerLauncherWithInnerRemoteProducesVerbatimSSHCommand(t *testing.T) {
	terminal := &fakeLauncher{}
	remote := &RemoteLauncher{Inner: terminal, Host: "db.internal"}
	container := &ContainerLauncher{Inner: remote, Runtime: "docker", Image: "redis:7"}

	_, _, err := container.Launch(context.Background(), "svc", Command{Path: "redis-server", Args: []string{"--port", "6380"}})
	require.NoError(t, err)

	assert.Equal(t, "ssh", terminal.gotCmd.Path)
	assert.Equal(t, []string{
		"db.internal", "--",
		"docker", "run", "--rm", "redis:7", "redis-server", "--port", "6380",
	}, terminal.gotCmd.Args)
}
