// Package services bridges a service's configured target (process,
// container, or remote host) to a concrete executor.Launcher stack, and
// adapts the live registry into the lookup interface the resolver needs to
// evaluate "${service.property}" references.
package services
