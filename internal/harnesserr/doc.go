// Package harnesserr defines the typed error families used across the
// executor, registry, orchestrator, resolver, and daemon packages, plus the
// flat, non-recursive ContextError used to attach layered context to an
// error without building a deep wrapped chain.
package harnesserr
