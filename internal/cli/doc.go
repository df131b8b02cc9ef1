// Package cli holds formatting and connection helpers shared by harness's
// cobra commands: plain-table rendering (kubectl-style, no box drawing),
// daemon endpoint detection and reachability checks, and a ConnectionError
// classifier that turns a raw dial/TLS error into an actionable message.
package cli
