// Package orchestrator drives the service lifecycle state machine:
// Registered -> Starting -> Running -> Stopping -> Stopped, with cfg-error,
// spawn-fail, and crash all routing to Failed. It computes dependency
// order via internal/dependency, resolves configuration via
// internal/resolver, launches processes via internal/executor, schedules
// health probes, and records every transition in internal/registry.
package orchestrator
