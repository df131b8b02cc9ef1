package executor

import "time"

// StdinMode selects whether a launched process's stdin is left unattached
// or piped back to the caller as a StdinHandle.
type StdinMode int

const (
	// StdinNone connects the child's stdin to the null device.
	StdinNone StdinMode = iota
	// StdinPiped requests a writable pipe, retrievable via
	// ProcessHandle.Stdin once the process has started.
	StdinPiped
)

// Command describes a program to run: the executable, its arguments, the
// environment to run it in, the working directory, and whether its stdin
// should be piped back to the caller. It is the Go counterpart of the Rust
// Command builder, expressed as a plain struct rather than a fluent builder
// since Go has no method chaining idiom for this pattern in the pack's
// style.
type Command struct {
	Path       string
	Args       []string
	Env        map[string]string
	WorkingDir string
	Stdin      StdinMode
}

// ExecutionContext carries an environment, working directory, and
// free-form metadata — the Go counterpart of original_source's
// ExecutionContext{env, working_dir, metadata}. No launcher in this
// package takes one.
type ExecutionContext struct {
	Env        map[string]string
	WorkingDir string
	Metadata   map[string]string
}

// ProcessEventType discriminates the kind of event on a process's event
// channel.
type ProcessEventType int

const (
	EventStarted ProcessEventType = iota
	EventExited
	EventStdout
	EventStderr
)

func (t ProcessEventType) String() string {
	switch t {
	case EventStarted:
		return "started"
	case EventExited:
		return "exited"
	case EventStdout:
		return "stdout"
	case EventStderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// ProcessEvent is a single raw event emitted by a running process: a start
// notification carrying its PID, an exit notification carrying its status,
// or a line of stdout/stderr in Data.
type ProcessEvent struct {
	Timestamp time.Time
	Type      ProcessEventType
	PID       int
	ExitCode  *int
	Signal    *int
	Data      string
}

// ExitStatus is a process's terminal state.
type ExitStatus struct {
	Code   *int
	Signal *int
}

// Success reports whether the process exited with code 0.
func (s ExitStatus) Success() bool { return s.Code != nil && *s.Code == 0 }

// TerminatedBySignal reports whether a signal (rather than a normal exit)
// ended the process.
func (s ExitStatus) TerminatedBySignal() bool { return s.Signal != nil }

// ExitResult bundles a terminal ExitStatus with everything the process
// wrote to stdout/stderr while Execute drained its event stream —
// the Go counterpart of original_source launcher.rs's convenience method.
type ExitResult struct {
	Status ExitStatus
	Output string
}

func (r ExitResult) Success() bool { return r.Status.Success() }

// LogSource distinguishes stdout from stderr for LogFilter.
type LogSource int

const (
	SourceStdout LogSource = iota
	SourceStderr
)

// LogFilter inspects a log line before it is turned into a ProcessEvent.
// Returning ok=false drops the line.
type LogFilter interface {
	Filter(line string, source LogSource) (out string, ok bool)
}

// NoOpFilter passes every line through unchanged.
type NoOpFilter struct{}

func (NoOpFilter) Filter(line string, _ LogSource) (string, bool) { return line, true }
