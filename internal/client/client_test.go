package client_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harness/internal/client"
	"harness/internal/daemon"
	"harness/internal/executor"
	"harness/internal/orchestrator"
	"harness/internal/registry"
	"harness/internal/services"
	"harness/internal/task"
)

type noopAuthProvider struct{}

func (noopAuthProvider) AuthFor(services.RemoteSpec) (executor.RemoteAuth, error) {
	return executor.RemoteAuth{}, nil
}

func newTestDaemon(t *testing.T) *httptest.Server {
	t.Helper()
	reg := registry.New(registry.NewMemoryBackend())
	lookup := services.NewRegistryLookup(reg)
	orch := orchestrator.New(reg, lookup, noopAuthProvider{})
	runner := task.NewRunner(reg, task.NewRegistry())

	srv := daemon.New(orch, reg, lookup, runner, daemon.CertDirProvider{Dir: t.TempDir()})
	ts := httptest.NewTLSServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dialTestClient(t *testing.T, ts *httptest.Server) *client.Client {
	t.Helper()
	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	host := u.Hostname()
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	c, err := client.Dial(context.Background(), client.Config{
		Host:               host,
		Port:               port,
		InsecureSkipVerify: true,
		DialTimeout:        5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClientStartStopServiceRoundTrip(t *testing.T) {
	ts := newTestDaemon(t)
	c := dialTestClient(t, ts)
	ctx := context.Background()

	cfg, err := json.Marshal(map[string]any{
		"type":    "process",
		"process": map[string]any{"binary": "sh", "args": []string{"-c", "sleep 5"}},
	})
	require.NoError(t, err)

	require.NoError(t, c.StartService(ctx, "echoer", cfg))

	entry, err := c.GetServiceStatus(ctx, "echoer")
	require.NoError(t, err)
	assert.Equal(t, registry.StateRunning, entry.State)

	require.NoError(t, c.StopService(ctx, "echoer", false, 5))
}

func TestClientGetServiceStatusUnknownReturnsError(t *testing.T) {
	ts := newTestDaemon(t)
	c := dialTestClient(t, ts)

	_, err := c.GetServiceStatus(context.Background(), "missing")
	assert.Error(t, err)
}

func TestClientSetAndGetEnvironmentVariables(t *testing.T) {
	ts := newTestDaemon(t)
	c := dialTestClient(t, ts)
	ctx := context.Background()

	require.NoError(t, c.SetEnvironmentVariables(ctx, map[string]string{"DB_HOST": "10.0.0.5"}))

	vars, err := c.GetEnvironmentVariables(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", vars["DB_HOST"])
}

func TestClientListServicesReflectsRegistrations(t *testing.T) {
	ts := newTestDaemon(t)
	c := dialTestClient(t, ts)
	ctx := context.Background()

	cfg, err := json.Marshal(map[string]any{
		"type":    "process",
		"process": map[string]any{"binary": "sh", "args": []string{"-c", "sleep 5"}},
	})
	require.NoError(t, err)
	require.NoError(t, c.StartService(ctx, "db", cfg))
	defer c.StopService(ctx, "db", true, 1)

	list, err := c.ListServices(ctx)
	require.NoError(t, err)
	assert.Contains(t, list, "db")
}

func TestClientSubscribeReceivesStateChangedEvent(t *testing.T) {
	ts := newTestDaemon(t)
	c := dialTestClient(t, ts)
	ctx := context.Background()

	require.NoError(t, c.Subscribe(ctx, []registry.EventType{registry.EventStateChanged}))

	cfg, err := json.Marshal(map[string]any{
		"type":    "process",
		"process": map[string]any{"binary": "sh", "args": []string{"-c", "sleep 5"}},
	})
	require.NoError(t, err)
	require.NoError(t, c.StartService(ctx, "cache", cfg))
	defer c.StopService(ctx, "cache", true, 1)

	select {
	case raw := <-c.Events:
		var frame struct {
			Type  string         `json:"type"`
			Event registry.Event `json:"event"`
		}
		require.NoError(t, json.Unmarshal(raw, &frame))
		assert.Equal(t, "Event", frame.Type)
		assert.Equal(t, "cache", frame.Event.ServiceName)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for subscribed event")
	}
}

func TestClientShutdownSucceeds(t *testing.T) {
	ts := newTestDaemon(t)
	c := dialTestClient(t, ts)

	require.NoError(t, c.Shutdown(context.Background()))
}
