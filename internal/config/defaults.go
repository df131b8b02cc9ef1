package config

const (
	defaultNetworkName = "default"
	defaultNetworkType = "local"

	defaultDockerRuntime = "docker"

	defaultStartupTimeoutSeconds = 30
	defaultStopTimeoutSeconds    = 30

	defaultHealthCheckIntervalSeconds = 10
	defaultHealthCheckTimeoutSeconds  = 5
)

// applyDefaults fills in zero-valued fields the orchestrator requires a
// value for, mutating cfg in place. It runs before Validate so that
// validation sees a fully-populated document.
func applyDefaults(cfg *HarnessConfig) {
	if cfg.Networks == nil {
		cfg.Networks = map[string]NetworkConfig{}
	}
	if _, ok := cfg.Networks[defaultNetworkName]; !ok {
		cfg.Networks[defaultNetworkName] = NetworkConfig{Type: defaultNetworkType}
	}

	for name, svc := range cfg.Services {
		if svc.Network == "" {
			svc.Network = defaultNetworkName
		}
		if svc.StartupTimeoutSeconds == 0 {
			svc.StartupTimeoutSeconds = defaultStartupTimeoutSeconds
		}
		if svc.StopTimeoutSeconds == 0 {
			svc.StopTimeoutSeconds = defaultStopTimeoutSeconds
		}
		if svc.Docker != nil && svc.Docker.Runtime == "" {
			svc.Docker.Runtime = defaultDockerRuntime
		}
		if svc.Remote != nil && svc.Remote.Docker != nil && svc.Remote.Docker.Runtime == "" {
			svc.Remote.Docker.Runtime = defaultDockerRuntime
		}
		if svc.HealthCheck != nil {
			if svc.HealthCheck.IntervalSeconds == 0 {
				svc.HealthCheck.IntervalSeconds = defaultHealthCheckIntervalSeconds
			}
			if svc.HealthCheck.TimeoutSeconds == 0 {
				svc.HealthCheck.TimeoutSeconds = defaultHealthCheckTimeoutSeconds
			}
		}
		cfg.Services[name] = svc
	}
}
