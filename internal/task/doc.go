// Package task implements the typed-action framework: services and
// one-shot deployments both declare a JSON input type and a JSON event
// type, erased behind a common JsonService so the orchestrator never
// needs to know a concrete action's Go types. A Task additionally
// exposes an idempotency check and is persisted in the registry under a
// "task:<name>" key-space parallel to "service:<name>".
package task
