package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harness/internal/executor"
	"harness/internal/registry"
	"harness/internal/services"
)

func newTestOrchestrator() (*Orchestrator, *registry.Registry) {
	reg := registry.New(registry.NewMemoryBackend())
	lookup := services.NewRegistryLookup(reg)
	return New(reg, lookup, noopAuthProvider{}), reg
}

type noopAuthProvider struct{}

func (noopAuthProvider) AuthFor(services.RemoteSpec) (executor.RemoteAuth, error) {
	return executor.RemoteAuth{}, nil
}

func processDef(name string, deps []string, args ...string) ServiceDefinition {
	return ServiceDefinition{
		Name:         name,
		Target:       services.Target{Kind: services.KindProcess, Command: executor.Command{Path: "sh", Args: args}},
		Dependencies: deps,
	}
}

func TestStartRunsLocalProcessToRunning(t *testing.T) {
	o, reg := newTestOrchestrator()
	ctx := context.Background()

	require.NoError(t, o.Register(ctx, processDef("echoer", nil, "-c", "echo hi; sleep 5")))
	require.NoError(t, o.Start(ctx, []string{"echoer"}))

	entry, err := reg.Get(ctx, "echoer")
	require.NoError(t, err)
	assert.Equal(t, registry.StateRunning, entry.State)

	require.NoError(t, o.Stop(ctx, []string{"echoer"}, false, time.Second))
}

func TestStartRendersOutputsFromEnvAndHostname(t *testing.T) {
	o, reg := newTestOrchestrator()
	ctx := context.Background()

	def := processDef("echoer", nil, "-c", "sleep 5")
	def.Env = map[string]string{"GREETING": "hello"}
	def.Outputs = map[string]string{
		"banner": "{{ .env.GREETING }}, {{ .name }}",
	}

	require.NoError(t, o.Register(ctx, def))
	require.NoError(t, o.Start(ctx, []string{"echoer"}))

	entry, err := reg.Get(ctx, "echoer")
	require.NoError(t, err)
	assert.Equal(t, "hello, echoer", entry.Outputs["banner"])

	require.NoError(t, o.Stop(ctx, []string{"echoer"}, false, time.Second))
}

func TestStartOrdersDependenciesBeforeDependents(t *testing.T) {
	o, reg := newTestOrchestrator()
	ctx := context.Background()

	require.NoError(t, o.Register(ctx, processDef("db", nil, "-c", "sleep 5")))
	require.NoError(t, o.Register(ctx, processDef("api", []string{"db"}, "-c", "sleep 5")))

	require.NoError(t, o.Start(ctx, []string{"api"}))

	db, err := reg.Get(ctx, "db")
	require.NoError(t, err)
	api, err := reg.Get(ctx, "api")
	require.NoError(t, err)
	assert.Equal(t, registry.StateRunning, db.State)
	assert.Equal(t, registry.StateRunning, api.State)

	require.NoError(t, o.Stop(ctx, []string{"api", "db"}, false, time.Second))
}

func TestStopRefusesWhenDependentStillRunningUnlessForced(t *testing.T) {
	o, reg := newTestOrchestrator()
	ctx := context.Background()

	require.NoError(t, o.Register(ctx, processDef("db", nil, "-c", "sleep 5")))
	require.NoError(t, o.Register(ctx, processDef("api", []string{"db"}, "-c", "sleep 5")))
	require.NoError(t, o.Start(ctx, []string{"api"}))

	err := o.Stop(ctx, []string{"db"}, false, time.Second)
	require.Error(t, err)

	require.NoError(t, o.Stop(ctx, []string{"db"}, true, time.Second))

	entry, err := reg.Get(ctx, "db")
	require.NoError(t, err)
	assert.Equal(t, registry.StateStopped, entry.State)

	_ = o.Stop(ctx, []string{"api"}, true, time.Second)
}

func TestStopEscalatesToKillOnTimeout(t *testing.T) {
	o, reg := newTestOrchestrator()
	ctx := context.Background()

	require.NoError(t, o.Register(ctx, processDef("stubborn", nil, "-c", "trap '' TERM; sleep 30")))
	require.NoError(t, o.Start(ctx, []string{"stubborn"}))

	start := time.Now()
	require.NoError(t, o.Stop(ctx, []string{"stubborn"}, false, 500*time.Millisecond))
	assert.Less(t, time.Since(start), 5*time.Second)

	entry, err := reg.Get(ctx, "stubborn")
	require.NoError(t, err)
	assert.Equal(t, registry.StateStopped, entry.State)
}

func TestRegisterRejectsCyclicDependencies(t *testing.T) {
	o, _ := newTestOrchestrator()
	ctx := context.Background()

	require.NoError(t, o.Register(ctx, processDef("a", []string{"b"}, "-c", "sleep 1")))
	err := o.Register(ctx, processDef("b", []string{"a"}, "-c", "sleep 1"))
	require.Error(t, err)
}

func TestStartSkipsAlreadyRunningService(t *testing.T) {
	o, reg := newTestOrchestrator()
	ctx := context.Background()

	require.NoError(t, o.Register(ctx, processDef("idempotent", nil, "-c", "sleep 5")))
	require.NoError(t, o.Start(ctx, []string{"idempotent"}))
	require.NoError(t, o.Start(ctx, []string{"idempotent"}))

	entry, err := reg.Get(ctx, "idempotent")
	require.NoError(t, err)
	assert.Equal(t, registry.StateRunning, entry.State)

	require.NoError(t, o.Stop(ctx, []string{"idempotent"}, false, time.Second))
}

func TestRegisterAddsImplicitDependencyFromServiceRef(t *testing.T) {
	o, reg := newTestOrchestrator()
	ctx := context.Background()

	require.NoError(t, o.Register(ctx, processDef("db", nil, "-c", "sleep 5")))

	consumer := ServiceDefinition{
		Name: "api",
		Target: services.Target{
			Kind: services.KindProcess,
			Command: executor.Command{
				Path: "sh",
				Args: []string{"-c", "sleep 5"},
				Env:  map[string]string{"DB_HOST": "${db.ip}"},
			},
		},
	}
	require.NoError(t, o.Register(ctx, consumer))

	entry, err := reg.Get(ctx, "api")
	require.NoError(t, err)
	assert.Contains(t, entry.Dependencies, "db")
}

func attachDef(name, statusCmd string) ServiceDefinition {
	return ServiceDefinition{
		Name: name,
		Target: services.Target{
			Kind: services.KindAttach,
			Attach: services.AttachSpec{
				StatusCmd:  statusCmd,
				StartCmd:   "true",
				StopCmd:    "true",
				RestartCmd: "true",
			},
		},
	}
}

func TestStartAttachesAndReconcilesRunningState(t *testing.T) {
	o, reg := newTestOrchestrator()
	ctx := context.Background()

	require.NoError(t, o.Register(ctx, attachDef("sshd", "echo running")))
	require.NoError(t, o.Start(ctx, []string{"sshd"}))

	entry, err := reg.Get(ctx, "sshd")
	require.NoError(t, err)
	assert.Equal(t, registry.StateRunning, entry.State)
}

func TestStartAttachesAndReconcilesUnknownStateOnUnrecognizedStatus(t *testing.T) {
	o, reg := newTestOrchestrator()
	ctx := context.Background()

	require.NoError(t, o.Register(ctx, attachDef("mystery", "echo banana")))
	require.NoError(t, o.Start(ctx, []string{"mystery"}))

	entry, err := reg.Get(ctx, "mystery")
	require.NoError(t, err)
	assert.Equal(t, registry.StateUnknown, entry.State)
}

func TestStopDisconnectsAttachedService(t *testing.T) {
	o, reg := newTestOrchestrator()
	ctx := context.Background()

	require.NoError(t, o.Register(ctx, attachDef("sshd", "echo running")))
	require.NoError(t, o.Start(ctx, []string{"sshd"}))
	require.NoError(t, o.Stop(ctx, []string{"sshd"}, false, time.Second))

	entry, err := reg.Get(ctx, "sshd")
	require.NoError(t, err)
	assert.Equal(t, registry.StateStopped, entry.State)
}

func TestActionRejectsUnsupportedVerbOnAttachedService(t *testing.T) {
	o, _ := newTestOrchestrator()
	ctx := context.Background()

	require.NoError(t, o.Register(ctx, attachDef("sshd", "echo running")))
	require.NoError(t, o.Start(ctx, []string{"sshd"}))

	err := o.Action(ctx, "sshd", ActionKill)
	assert.Error(t, err)
}
