// Package daemon implements the TLS WebSocket server that exposes the
// orchestrator, registry, and task runner to clients: a tagged-JSON
// request/response protocol on one frame type, plus out-of-band Event
// frames delivered only to connections that asked for them.
package daemon
