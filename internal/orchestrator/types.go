package orchestrator

import (
	"time"

	"harness/internal/registry"
	"harness/internal/services"
)

// ServiceDefinition is everything the orchestrator needs to start and stop
// one configured service. It is built by internal/config from the loaded
// configuration file.
type ServiceDefinition struct {
	Name           string
	Target         services.Target
	Env            map[string]string
	Dependencies   []string
	Outputs        map[string]string
	HealthCheck    *registry.HealthCheck
	StartupTimeout time.Duration
	StopTimeout    time.Duration
}

const (
	defaultStartupTimeout = 30 * time.Second
	defaultStopTimeout    = 30 * time.Second
)

func (d ServiceDefinition) startupTimeout() time.Duration {
	if d.StartupTimeout > 0 {
		return d.StartupTimeout
	}
	return defaultStartupTimeout
}

func (d ServiceDefinition) stopTimeout() time.Duration {
	if d.StopTimeout > 0 {
		return d.StopTimeout
	}
	return defaultStopTimeout
}
