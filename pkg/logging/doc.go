// Package logging provides the process-wide structured logger used by every
// component of harness: the orchestrator, the registry, the daemon, and the
// CLI. It wraps zerolog with the subsystem-tagged child-logger convention
// (WithComponent/WithService/WithSession) and an Audit helper for
// security-relevant events.
package logging
