// Package registry implements the service registry: a pluggable storage
// backend (in-memory or embedded persistent) for ServiceEntry records, plus
// subscription-based event broadcast to daemon connections.
package registry
