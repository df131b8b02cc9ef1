package app

import (
	"context"
	"fmt"
	"path/filepath"

	"harness/internal/config"
	"harness/internal/daemon"
	"harness/internal/orchestrator"
	"harness/internal/registry"
	"harness/internal/services"
	"harness/internal/task"
)

// Services holds every component the daemon wires together: the service
// registry and its backing store, the orchestrator that drives service
// lifecycles, the one-shot task runner, and the WebSocket/monitoring
// server that exposes all of it to clients.
type Services struct {
	Registry     *registry.Registry
	Lookup       *services.RegistryLookup
	Orchestrator *orchestrator.Orchestrator
	Runner       *task.Runner
	Daemon       *daemon.Server

	definitions []orchestrator.ServiceDefinition
}

// InitializeServices loads cfg.ConfigPath, builds the registry backend
// (Badger-backed when cfg.Persistent, in-memory otherwise), and wires an
// orchestrator, task runner, and daemon server around it. It registers
// every service definition found in the configuration file but does not
// start any of them — that's Services.StartAutoStart's job, called from the
// command that actually wants services running (serve, not validate).
func InitializeServices(cfg *Config) (*Services, error) {
	harnessCfg, err := config.Load(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration from %s: %w", cfg.ConfigPath, err)
	}

	defs, err := config.BuildServiceDefinitions(harnessCfg)
	if err != nil {
		return nil, fmt.Errorf("build service definitions: %w", err)
	}

	backend, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}

	reg := registry.New(backend)
	lookup := services.NewRegistryLookup(reg)
	orch := orchestrator.New(reg, lookup, NewSSHAgentAuthProvider())
	runner := task.NewRunner(reg, task.NewRegistry())

	certs := daemon.CertDirProvider{Dir: cfg.DataDir}
	srv := daemon.New(orch, reg, lookup, runner, certs)

	ctx := context.Background()
	for _, def := range defs {
		if err := orch.Register(ctx, def); err != nil {
			return nil, fmt.Errorf("register service %s: %w", def.Name, err)
		}
	}

	return &Services{
		Registry:     reg,
		Lookup:       lookup,
		Orchestrator: orch,
		Runner:       runner,
		Daemon:       srv,
		definitions:  defs,
	}, nil
}

func newBackend(cfg *Config) (registry.Backend, error) {
	if !cfg.Persistent {
		return registry.NewMemoryBackend(), nil
	}
	backend, err := registry.OpenBadgerBackend(filepath.Join(cfg.DataDir, "registry.db"))
	if err != nil {
		return nil, fmt.Errorf("open persistent registry at %s: %w", cfg.DataDir, err)
	}
	return backend, nil
}

// StartAutoStart starts every registered service, in dependency order, via
// the orchestrator — used by the `serve` command so a daemon boots its
// configured services immediately rather than waiting for a client to ask.
func (s *Services) StartAutoStart(ctx context.Context) error {
	names := make([]string, 0, len(s.definitions))
	for _, def := range s.definitions {
		names = append(names, def.Name)
	}
	if len(names) == 0 {
		return nil
	}
	return s.Orchestrator.Start(ctx, names)
}
