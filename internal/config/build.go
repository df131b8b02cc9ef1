package config

import (
	"time"

	"harness/internal/executor"
	"harness/internal/orchestrator"
	"harness/internal/registry"
	"harness/internal/services"
)

// BuildServiceDefinitions converts a validated HarnessConfig into the
// orchestrator.ServiceDefinition values the daemon registers at startup.
// Config must already have had applyDefaults and Validate applied — Load
// and Parse both guarantee this, so callers working from those should never
// need to call Validate again themselves.
func BuildServiceDefinitions(cfg HarnessConfig) ([]orchestrator.ServiceDefinition, error) {
	defs := make([]orchestrator.ServiceDefinition, 0, len(cfg.Services))
	for name, svc := range cfg.Services {
		target, err := buildTarget(svc)
		if err != nil {
			return nil, err
		}
		defs = append(defs, orchestrator.ServiceDefinition{
			Name:           name,
			Target:         target,
			Env:            svc.Env,
			Dependencies:   svc.Dependencies,
			Outputs:        svc.Outputs,
			HealthCheck:    buildHealthCheck(svc.HealthCheck),
			StartupTimeout: time.Duration(svc.StartupTimeoutSeconds) * time.Second,
			StopTimeout:    time.Duration(svc.StopTimeoutSeconds) * time.Second,
		})
	}
	return defs, nil
}

func buildTarget(svc ServiceConfig) (services.Target, error) {
	switch svc.Type {
	case ServiceTypeProcess:
		return services.Target{
			Kind:    services.KindProcess,
			Command: buildCommand(svc.Process),
		}, nil

	case ServiceTypeDocker:
		return services.Target{
			Kind:      services.KindContainer,
			Command:   buildCommand(nil),
			Container: buildContainerSpec(svc.Docker),
		}, nil

	case ServiceTypeAttach:
		return services.Target{
			Kind:   services.KindAttach,
			Attach: buildAttachSpec(svc.Attach),
		}, nil

	case ServiceTypeRemote:
		remote := services.RemoteSpec{
			Host:        svc.Remote.Host,
			Port:        svc.Remote.Port,
			User:        svc.Remote.User,
			KnownHostID: svc.Remote.KnownHostID,
		}
		switch svc.Remote.InnerType {
		case ServiceTypeProcess:
			return services.Target{
				Kind:    services.KindRemote,
				Command: buildCommand(svc.Remote.Process),
				Remote:  remote,
			}, nil
		case ServiceTypeDocker:
			return services.Target{
				Kind:      services.KindRemoteContainer,
				Command:   buildCommand(nil),
				Container: buildContainerSpec(svc.Remote.Docker),
				Remote:    remote,
			}, nil
		}
	}

	// Validate rejects every other combination before BuildServiceDefinitions
	// ever runs, so this path is unreachable in practice.
	return services.Target{}, nil
}

func buildCommand(p *ProcessTarget) executor.Command {
	if p == nil {
		return executor.Command{}
	}
	return executor.Command{
		Path:       p.Binary,
		Args:       p.Args,
		Env:        p.Env,
		WorkingDir: p.Cwd,
	}
}

func buildContainerSpec(d *DockerTarget) services.ContainerSpec {
	if d == nil {
		return services.ContainerSpec{}
	}
	return services.ContainerSpec{
		Runtime:   d.Runtime,
		Image:     d.Image,
		ExtraArgs: buildContainerArgs(d),
	}
}

// buildContainerArgs translates port and volume mappings into the
// "-p"/"-v" flags a docker-compatible CLI runtime expects, following the
// same flat-string-slice shape ContainerLauncher already appends its own
// image/args onto.
func buildContainerArgs(d *DockerTarget) []string {
	var args []string
	for _, p := range d.Ports {
		args = append(args, "-p", p)
	}
	for _, v := range d.Volumes {
		args = append(args, "-v", v)
	}
	return args
}

func buildAttachSpec(a *AttachTarget) services.AttachSpec {
	if a == nil {
		return services.AttachSpec{}
	}
	return services.AttachSpec{
		StatusCmd:  a.StatusCmd,
		StartCmd:   a.StartCmd,
		StopCmd:    a.StopCmd,
		RestartCmd: a.RestartCmd,
		ReloadCmd:  a.ReloadCmd,
	}
}

func buildHealthCheck(hc *HealthCheckConfig) *registry.HealthCheck {
	if hc == nil {
		return nil
	}
	return &registry.HealthCheck{
		Kind:           registry.ProbeKind(hc.Kind),
		Command:        hc.Command,
		ExpectedExit:   hc.ExpectedExit,
		URL:            hc.URL,
		ExpectedStatus: hc.ExpectedStatus,
		TCPHost:        hc.TCPHost,
		TCPPort:        hc.TCPPort,
		Interval:       time.Duration(hc.IntervalSeconds) * time.Second,
		Timeout:        time.Duration(hc.TimeoutSeconds) * time.Second,
	}
}
