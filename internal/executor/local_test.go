package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLauncherRunsEchoAndExitsZero(t *testing.T) {
	l := NewLocalLauncher()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, handle, err := l.Launch(ctx, "command", Command{Path: "echo", Args: []string{"hello"}})
	require.NoError(t, err)

	var lines []string
	for ev := range events {
		if ev.Type == EventStdout {
			lines = append(lines, ev.Data)
		}
	}

	status, err := handle.Wait(ctx)
	require.NoError(t, err)
	assert.True(t, status.Success())
	assert.Contains(t, lines, "hello")
}

func TestLocalLauncherNonZeroExit(t *testing.T) {
	l := NewLocalLauncher()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, handle, err := l.Launch(ctx, "command", Command{Path: "sh", Args: []string{"-c", "exit 7"}})
	require.NoError(t, err)
	for range events {
	}

	status, err := handle.Wait(ctx)
	require.NoError(t, err)
	require.NotNil(t, status.Code)
	assert.Equal(t, 7, *status.Code)
	assert.False(t, status.Success())
}

func TestExecuteDrainsOutput(t *testing.T) {
	l := NewLocalLauncher()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := Execute(ctx, l, "command", Command{Path: "echo", Args: []string{"captured"}})
	require.NoError(t, err)
	assert.Contains(t, result.Output, "captured")
	assert.True(t, result.Success())
}
