package daemon

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harness/internal/executor"
	"harness/internal/orchestrator"
	"harness/internal/registry"
	"harness/internal/services"
	"harness/internal/task"
)

// memCertProvider delegates to CertDirProvider over a per-test temp
// directory, so tests exercising ServeTLS get a self-signed certificate
// without touching a shared path.
type memCertProvider struct {
	dir string
}

func (p memCertProvider) EnsureCertificate(regenerate bool) (tls.Certificate, error) {
	return CertDirProvider{Dir: p.dir}.EnsureCertificate(regenerate)
}

func newTestServer(t *testing.T) (*Server, *registry.Registry) {
	t.Helper()
	reg := registry.New(registry.NewMemoryBackend())
	lookup := services.NewRegistryLookup(reg)
	orch := orchestrator.New(reg, lookup, noopAuthProvider{})

	taskTypes := task.NewRegistry()
	taskTypes.Register(task.TypeDeployPackage, task.NewDeployPackageTask)
	runner := task.NewRunner(reg, taskTypes)

	srv := New(orch, reg, lookup, runner, memCertProvider{dir: t.TempDir()})
	return srv, reg
}

type noopAuthProvider struct{}

func (noopAuthProvider) AuthFor(services.RemoteSpec) (executor.RemoteAuth, error) {
	return executor.RemoteAuth{}, nil
}

func TestDispatchStartServiceRegistersAndStarts(t *testing.T) {
	srv, reg := newTestServer(t)
	ctx := context.Background()

	resp := srv.dispatch(ctx, nil, mustDecode(t, `{
		"type": "StartService",
		"name": "echoer",
		"config": {"type": "process", "process": {"binary": "sh", "args": ["-c", "sleep 5"]}}
	}`))

	assertSuccess(t, resp)

	entry, err := reg.Get(ctx, "echoer")
	require.NoError(t, err)
	assert.Equal(t, registry.StateRunning, entry.State)

	stopResp := srv.dispatch(ctx, nil, mustDecode(t, `{"type": "StopService", "name": "echoer"}`))
	assertSuccess(t, stopResp)
}

func TestDispatchGetServiceStatusUnknownServiceReturnsError(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := srv.dispatch(context.Background(), nil, &GetServiceStatusRequest{Type: ReqGetServiceStatus, Name: "missing"})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"Error"`)
}

func TestDispatchListServicesReturnsRegisteredEntries(t *testing.T) {
	srv, reg := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, reg.Put(ctx, registry.ServiceEntry{Name: "web", State: registry.StateRegistered}))

	resp := srv.dispatch(ctx, nil, &ListServicesRequest{Type: ReqListServices})
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"web"`)
}

func TestDispatchSetAndGetEnvironmentVariablesRoundTrips(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx := context.Background()

	setResp := srv.dispatch(ctx, nil, &SetEnvironmentVariablesRequest{
		Type:      ReqSetEnvironmentVariables,
		Variables: map[string]string{"DB_HOST": "10.0.0.5"},
	})
	assertSuccess(t, setResp)

	getResp := srv.dispatch(ctx, nil, &GetEnvironmentVariablesRequest{Type: ReqGetEnvironmentVariables})
	raw, err := json.Marshal(getResp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"DB_HOST":"10.0.0.5"`)

	v, ok := srv.lookup.LookupEnv("DB_HOST")
	require.True(t, ok)
	assert.Equal(t, "10.0.0.5", v)
}

func TestDispatchUnknownActionReturnsError(t *testing.T) {
	srv, reg := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, srv.orch.Register(ctx, orchestrator.ServiceDefinition{
		Name:   "echoer",
		Target: services.Target{Kind: services.KindProcess, Command: executor.Command{Path: "sh", Args: []string{"-c", "sleep 5"}}},
	}))
	require.NoError(t, srv.orch.Start(ctx, []string{"echoer"}))
	defer srv.orch.Stop(ctx, []string{"echoer"}, true, 0)

	resp := srv.dispatch(ctx, nil, &ServiceActionRequest{Type: ReqServiceAction, Name: "echoer", Action: "dance"})
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"Error"`)

	_, err = reg.Get(ctx, "echoer")
	require.NoError(t, err)
}

func TestDispatchUnknownRequestTypeReturnsProtocolError(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := srv.dispatch(context.Background(), nil, struct{}{})
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "unhandled request")
}

func TestCertDirProviderGeneratesAndReloadsSameCertificate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	provider := CertDirProvider{Dir: dir}

	first, err := provider.EnsureCertificate(false)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "cert.pem"))
	require.NoError(t, err)

	second, err := provider.EnsureCertificate(false)
	require.NoError(t, err)
	assert.Equal(t, first.Certificate, second.Certificate)

	third, err := provider.EnsureCertificate(true)
	require.NoError(t, err)
	assert.NotEqual(t, first.Certificate, third.Certificate)
}

func mustDecode(t *testing.T, raw string) any {
	t.Helper()
	req, err := decodeRequest([]byte(raw))
	require.NoError(t, err)
	return req
}

func assertSuccess(t *testing.T, resp any) {
	t.Helper()
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"Success"`)
}
