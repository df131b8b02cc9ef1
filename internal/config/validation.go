package config

import (
	"fmt"
	"sort"

	"harness/internal/dependency"
	"harness/internal/harnesserr"
)

// Validate checks a HarnessConfig for internal consistency: known network
// references, a populated target block of each service's Type, well-formed health
// checks, and an acyclic dependency graph. It assumes applyDefaults has
// already run. Every failure is reported as a *harnesserr.ConfigError so
// callers can surface validation problems the same way as any other
// configuration error, never as a runtime failure.
func Validate(cfg HarnessConfig) error {
	for _, name := range sortedServiceNames(cfg.Services) {
		svc := cfg.Services[name]

		if _, ok := cfg.Networks[svc.Network]; !ok {
			return harnesserr.NewConfigError(fmt.Sprintf("service %q references unknown network %q", name, svc.Network))
		}

		if err := validateTarget(name, svc); err != nil {
			return err
		}

		if svc.HealthCheck != nil {
			if err := validateHealthCheck(name, svc.HealthCheck); err != nil {
				return err
			}
		}

		for _, dep := range svc.Dependencies {
			if _, ok := cfg.Services[dep]; !ok {
				return harnesserr.NewConfigError(fmt.Sprintf("service %q depends on unknown service %q", name, dep))
			}
		}
	}

	return validateAcyclic(cfg.Services)
}

func validateTarget(name string, svc ServiceConfig) error {
	switch svc.Type {
	case ServiceTypeProcess:
		if svc.Process == nil {
			return harnesserr.NewConfigError(fmt.Sprintf("service %q is type %q but has no process target", name, svc.Type))
		}
		if svc.Process.Binary == "" {
			return harnesserr.NewConfigError(fmt.Sprintf("service %q process target has no binary", name))
		}
	case ServiceTypeDocker:
		if svc.Docker == nil {
			return harnesserr.NewConfigError(fmt.Sprintf("service %q is type %q but has no docker target", name, svc.Type))
		}
		if svc.Docker.Image == "" {
			return harnesserr.NewConfigError(fmt.Sprintf("service %q docker target has no image", name))
		}
	case ServiceTypeAttach:
		if svc.Attach == nil {
			return harnesserr.NewConfigError(fmt.Sprintf("service %q is type %q but has no attach target", name, svc.Type))
		}
		if svc.Attach.StatusCmd == "" || svc.Attach.StartCmd == "" || svc.Attach.StopCmd == "" || svc.Attach.RestartCmd == "" {
			return harnesserr.NewConfigError(fmt.Sprintf("service %q attach target needs status_cmd, start_cmd, stop_cmd, and restart_cmd", name))
		}
	case ServiceTypeRemote:
		if svc.Remote == nil {
			return harnesserr.NewConfigError(fmt.Sprintf("service %q is type %q but has no remote target", name, svc.Type))
		}
		if svc.Remote.Host == "" {
			return harnesserr.NewConfigError(fmt.Sprintf("service %q remote target has no host", name))
		}
		switch svc.Remote.InnerType {
		case ServiceTypeProcess:
			if svc.Remote.Process == nil || svc.Remote.Process.Binary == "" {
				return harnesserr.NewConfigError(fmt.Sprintf("service %q remote process target has no binary", name))
			}
		case ServiceTypeDocker:
			if svc.Remote.Docker == nil || svc.Remote.Docker.Image == "" {
				return harnesserr.NewConfigError(fmt.Sprintf("service %q remote docker target has no image", name))
			}
		default:
			return harnesserr.NewConfigError(fmt.Sprintf("service %q remote target has unknown inner_type %q", name, svc.Remote.InnerType))
		}
	default:
		return harnesserr.NewConfigError(fmt.Sprintf("service %q has unknown type %q", name, svc.Type))
	}
	return nil
}

func validateHealthCheck(name string, hc *HealthCheckConfig) error {
	switch hc.Kind {
	case HealthCheckCommand:
		if hc.Command == "" {
			return harnesserr.NewConfigError(fmt.Sprintf("service %q command health check has no command", name))
		}
	case HealthCheckHTTP:
		if hc.URL == "" {
			return harnesserr.NewConfigError(fmt.Sprintf("service %q http health check has no url", name))
		}
	case HealthCheckTCP:
		if hc.TCPHost == "" || hc.TCPPort == 0 {
			return harnesserr.NewConfigError(fmt.Sprintf("service %q tcp health check needs tcp_host and tcp_port", name))
		}
	default:
		return harnesserr.NewConfigError(fmt.Sprintf("service %q has unknown health check kind %q", name, hc.Kind))
	}
	return nil
}

// validateAcyclic builds a throwaway dependency graph from the declared
// (explicit) edges and rejects the config if it is not a DAG. Implicit
// edges discovered from variable references are added later, at
// registration time, by the orchestrator itself — they can only make the
// graph stricter, never looser, so checking explicit edges here is
// sufficient to catch a cycle the author wrote by hand.
func validateAcyclic(services map[string]ServiceConfig) error {
	graph := dependency.New()
	for _, name := range sortedServiceNames(services) {
		svc := services[name]
		deps := make([]dependency.NodeID, 0, len(svc.Dependencies))
		for _, dep := range svc.Dependencies {
			deps = append(deps, dependency.NodeID(dep))
		}
		if err := graph.AddNode(dependency.Node{ID: dependency.NodeID(name), DependsOn: deps}); err != nil {
			return harnesserr.NewConfigError(err.Error())
		}
	}
	return nil
}

func sortedServiceNames(services map[string]ServiceConfig) []string {
	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
