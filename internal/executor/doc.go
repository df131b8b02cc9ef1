// Package executor implements the command execution layer: a composable
// Launcher that spawns processes locally, inside a container runtime, or on
// a remote host over SSH, plus an Attacher that binds to an already-running
// service without spawning it. Composition is dynamic (interface-based)
// rather than generic/static, since the daemon needs to build a launcher
// chain from runtime configuration rather than from compile-time types.
package executor
