package config

// HarnessConfig is the top-level shape of the YAML configuration file: a
// version marker, named networks, and named services. Variable references
// in any string field follow the "${...}" grammar implemented by
// internal/resolver and are left unresolved until the orchestrator starts
// the service they belong to.
type HarnessConfig struct {
	Version  int                      `yaml:"version"`
	Networks map[string]NetworkConfig `yaml:"networks"`
	Services map[string]ServiceConfig `yaml:"services"`
}

// NetworkConfig names an execution network services can be attached to.
// Only "local" is meaningful to the core today; the field exists so
// container/remote networking concerns have somewhere to live without
// overloading ServiceConfig.
type NetworkConfig struct {
	Type string `yaml:"type"`
}

// ServiceConfig is one named service's declarative configuration. Type
// selects which of Process, Docker, Remote, or Attach is used; Validate
// checks that the selected block is set and does not check that the
// others are empty.
type ServiceConfig struct {
	Type         string            `yaml:"type"`
	Network      string            `yaml:"network,omitempty"`
	Dependencies []string          `yaml:"dependencies,omitempty"`
	Env          map[string]string `yaml:"env,omitempty"`
	HealthCheck  *HealthCheckConfig `yaml:"health_check,omitempty"`

	// Outputs are rendered once the service reaches Running, through
	// text/template with Sprig funcs against a context of the service's
	// resolved env, IP, host, port, and endpoints. Unlike the "${...}"
	// references above, an Outputs template uses "{{ }}" syntax and may
	// call Sprig functions.
	Outputs map[string]string `yaml:"outputs,omitempty"`

	StartupTimeoutSeconds int `yaml:"startup_timeout_seconds,omitempty"`
	StopTimeoutSeconds    int `yaml:"stop_timeout_seconds,omitempty"`

	Process *ProcessTarget `yaml:"process,omitempty"`
	Docker  *DockerTarget  `yaml:"docker,omitempty"`
	Remote  *RemoteTarget  `yaml:"remote,omitempty"`
	Attach  *AttachTarget  `yaml:"attach,omitempty"`
}

const (
	ServiceTypeProcess = "process"
	ServiceTypeDocker  = "docker"
	ServiceTypeRemote  = "remote"
	ServiceTypeAttach  = "attach"
)

// ProcessTarget runs a binary directly as a child of the daemon.
type ProcessTarget struct {
	Binary string            `yaml:"binary"`
	Args   []string          `yaml:"args,omitempty"`
	Env    map[string]string `yaml:"env,omitempty"`
	Cwd    string            `yaml:"cwd,omitempty"`
}

// DockerTarget runs a container image via a local container runtime.
type DockerTarget struct {
	Runtime string            `yaml:"runtime,omitempty"`
	Image   string            `yaml:"image"`
	Env     map[string]string `yaml:"env,omitempty"`
	Ports   []string          `yaml:"ports,omitempty"`
	Volumes []string          `yaml:"volumes,omitempty"`
}

// RemoteTarget runs a process or a container on a remote host reached over
// SSH. InnerType selects which of Process or Docker describes the command
// that runs once connected.
type RemoteTarget struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port,omitempty"`
	User        string `yaml:"user,omitempty"`
	KnownHostID string `yaml:"known_host_id,omitempty"`

	InnerType string         `yaml:"inner_type"`
	Process   *ProcessTarget `yaml:"process,omitempty"`
	Docker    *DockerTarget  `yaml:"docker,omitempty"`
}

// AttachTarget binds to a service harness did not spawn, through shell
// commands run against whatever control plane already manages it
// (systemd, a supervisor, a container runtime's own CLI).
type AttachTarget struct {
	StatusCmd  string `yaml:"status_cmd"`
	StartCmd   string `yaml:"start_cmd"`
	StopCmd    string `yaml:"stop_cmd"`
	RestartCmd string `yaml:"restart_cmd"`
	ReloadCmd  string `yaml:"reload_cmd,omitempty"`
}

// HealthCheckConfig is the YAML shape of a registry.HealthCheck.
type HealthCheckConfig struct {
	Kind           string `yaml:"kind"`
	Command        string `yaml:"command,omitempty"`
	ExpectedExit   int    `yaml:"expected_exit,omitempty"`
	URL            string `yaml:"url,omitempty"`
	ExpectedStatus int    `yaml:"expected_status,omitempty"`
	TCPHost        string `yaml:"tcp_host,omitempty"`
	TCPPort        int    `yaml:"tcp_port,omitempty"`

	IntervalSeconds int `yaml:"interval_seconds,omitempty"`
	TimeoutSeconds  int `yaml:"timeout_seconds,omitempty"`
}

const (
	HealthCheckCommand = "command"
	HealthCheckHTTP    = "http"
	HealthCheckTCP     = "tcp"
)
