package harnesserr

import "fmt"

// SpawnError reports a failure to spawn a process, container, or remote
// session, mirroring original_source's Error::SpawnFailed.
type SpawnError struct {
	Reason string
}

func (e *SpawnError) Error() string { return fmt.Sprintf("failed to spawn process: %s", e.Reason) }

func NewSpawnError(reason string) *SpawnError { return &SpawnError{Reason: reason} }

// SignalError reports a failure to deliver a signal to a running process.
type SignalError struct {
	Signal int
	Reason string
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("failed to send signal %d: %s", e.Signal, e.Reason)
}

func NewSignalError(signal int, reason string) *SignalError {
	return &SignalError{Signal: signal, Reason: reason}
}

// NotFoundError reports a missing service, subscription, or task entry.
type NotFoundError struct {
	Kind string // "service", "subscription", "task"
	Name string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s not found: %s", e.Kind, e.Name) }

func NewNotFoundError(kind, name string) *NotFoundError {
	return &NotFoundError{Kind: kind, Name: name}
}

// AuthError reports an authentication or authorization failure; the CLI
// maps it to its auth-failed exit code.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string { return fmt.Sprintf("authentication failed: %s", e.Reason) }

func NewAuthError(reason string) *AuthError { return &AuthError{Reason: reason} }

// ProtocolError reports a malformed or unexpected daemon wire message.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string { return fmt.Sprintf("protocol error: %s", e.Reason) }

func NewProtocolError(reason string) *ProtocolError { return &ProtocolError{Reason: reason} }

// ConfigError reports a configuration parse, validation, or reference
// resolution failure. Offset is the byte offset into the source document
// where the problem was detected, or -1 when not applicable.
type ConfigError struct {
	Reason string
	Offset int
}

func (e *ConfigError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("config error at offset %d: %s", e.Offset, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

func NewConfigError(reason string) *ConfigError { return &ConfigError{Reason: reason, Offset: -1} }

func NewConfigErrorAt(reason string, offset int) *ConfigError {
	return &ConfigError{Reason: reason, Offset: offset}
}

// TimeoutError reports an operation that exceeded its deadline.
type TimeoutError struct {
	Operation string
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("timed out: %s", e.Operation) }

func NewTimeoutError(operation string) *TimeoutError { return &TimeoutError{Operation: operation} }

// HealthCheckError reports a failed health probe.
type HealthCheckError struct {
	Probe  string // "command", "http", "tcp"
	Reason string
}

func (e *HealthCheckError) Error() string {
	return fmt.Sprintf("%s health check failed: %s", e.Probe, e.Reason)
}

func NewHealthCheckError(probe, reason string) *HealthCheckError {
	return &HealthCheckError{Probe: probe, Reason: reason}
}

// BackendError reports a failure in a registry storage backend
// (memory or badger).
type BackendError struct {
	Backend string
	Reason  string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend error: %s", e.Backend, e.Reason)
}

func NewBackendError(backend, reason string) *BackendError {
	return &BackendError{Backend: backend, Reason: reason}
}
