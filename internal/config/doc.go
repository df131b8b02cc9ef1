// Package config loads, validates, and watches the YAML configuration
// file describing networks and services, converting a validated document
// into the orchestrator.ServiceDefinition values the rest of the daemon
// acts on.
package config
