package services

import "harness/internal/executor"

// Kind discriminates how a service's target maps onto a launcher stack.
type Kind string

const (
	KindProcess         Kind = "process"
	KindContainer       Kind = "container"
	KindRemote          Kind = "remote"
	KindRemoteContainer Kind = "remote-container"
	KindAttach          Kind = "attach"
)

// ContainerSpec configures a ContainerLauncher rewrite.
type ContainerSpec struct {
	Runtime   string
	Image     string
	ExtraArgs []string
}

// RemoteSpec configures a RemoteLauncher connection.
type RemoteSpec struct {
	Host        string
	Port        int
	User        string
	KnownHostID string // fingerprint checked by the host-key callback
}

// AttachSpec configures a ShellAttacher binding to a service harness did
// not spawn — one managed by systemd, a container's own supervisor, or
// any other external control plane reachable through shell commands.
type AttachSpec struct {
	StatusCmd  string
	StartCmd   string
	StopCmd    string
	RestartCmd string
	ReloadCmd  string // optional; falls back to RestartCmd
}

// Target is a service's launch configuration as declared in the
// configuration file: Kind selects which of Container / Remote / Attach
// are populated, and KindRemoteContainer uses both Container and Remote.
type Target struct {
	Kind      Kind
	Command   executor.Command
	Container ContainerSpec
	Remote    RemoteSpec
	Attach    AttachSpec
}

// AuthProvider resolves SSH authentication methods and the host-key
// callback for a RemoteSpec at launch time, keeping credential material
// out of configuration structs.
type AuthProvider interface {
	AuthFor(spec RemoteSpec) (executor.RemoteAuth, error)
}
