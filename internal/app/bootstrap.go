package app

import (
	"fmt"
	"io"
	"os"

	"harness/pkg/logging"
)

// Application bootstraps the daemon's components from a Config and runs
// them until shutdown.
type Application struct {
	config   *Config
	services *Services
}

// NewApplication performs the daemon's bootstrap sequence: configure
// logging, load and validate the service configuration file, and wire the
// registry/orchestrator/task runner/daemon server stack around it.
func NewApplication(cfg *Config) (*Application, error) {
	level := logging.InfoLevel
	if cfg.Debug {
		level = logging.DebugLevel
	}
	var output io.Writer = os.Stdout
	logging.Init(logging.Config{Level: level, Output: output})

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", cfg.DataDir, err)
	}

	svcs, err := InitializeServices(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize services: %w", err)
	}

	return &Application{config: cfg, services: svcs}, nil
}

// Services exposes the bootstrapped component set.
func (a *Application) Services() *Services {
	return a.services
}
