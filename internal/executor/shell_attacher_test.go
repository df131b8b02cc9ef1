package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellAttacherStatusParsing(t *testing.T) {
	a := NewShellAttacher("redis", "status", "start", "stop", "restart")
	a.Runner = func(ctx context.Context, cmd string) ([]byte, error) {
		switch cmd {
		case "status":
			return []byte("active (running)\n"), nil
		}
		return nil, nil
	}

	_, handle, err := a.Attach(context.Background(), "redis", DefaultAttachConfig())
	require.NoError(t, err)

	status, err := handle.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, AttachedRunning, status)
}

func TestShellAttacherStartStopRestart(t *testing.T) {
	var calls []string
	a := NewShellAttacher("redis", "status", "start", "stop", "restart")
	a.Runner = func(ctx context.Context, cmd string) ([]byte, error) {
		calls = append(calls, cmd)
		return nil, nil
	}

	_, handle, err := a.Attach(context.Background(), "redis", DefaultAttachConfig())
	require.NoError(t, err)

	require.NoError(t, handle.Start(context.Background()))
	require.NoError(t, handle.Stop(context.Background()))
	require.NoError(t, handle.Restart(context.Background()))

	assert.Equal(t, []string{"start", "stop", "restart"}, calls)
}
