// Package client implements the CLI-facing WebSocket client: one TLS
// connection per invocation, sending a single tagged request and waiting
// for its matching response while an asynchronous Event/TaskEvent stream is
// drained into a side channel.
package client
