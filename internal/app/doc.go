// Package app bootstraps the daemon from a Config: load and validate the
// service configuration file, wire the registry, orchestrator, task
// runner, and daemon server together, and run them until shutdown.
package app
