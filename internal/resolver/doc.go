// Package resolver parses and substitutes "${...}" expressions inside
// configuration strings against live registry state and the daemon's held
// environment variable map.
package resolver
