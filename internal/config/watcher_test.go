package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherEmitsReloadOnFileWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "harness.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o644))

	w := NewWatcher(path, 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan HarnessConfig, 1)
	require.NoError(t, w.Start(ctx, changes))
	defer w.Stop()

	updated := validYAML + "\n  cache:\n    type: process\n    process:\n      binary: /bin/cache\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case cfg := <-changes:
		require.Len(t, cfg.Services, 3)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherDropsInvalidReloadWithoutSendingIt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "harness.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o644))

	w := NewWatcher(path, 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan HarnessConfig, 1)
	require.NoError(t, w.Start(ctx, changes))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("not: valid: yaml: ["), 0o644))

	select {
	case <-changes:
		t.Fatal("watcher should not emit an invalid configuration")
	case <-time.After(300 * time.Millisecond):
	}
}
