package config

import (
	"fmt"

	"harness/internal/harnesserr"
)

// newYAMLConfigError wraps a YAML decode failure as a ConfigError. yaml.v3
// doesn't expose a byte offset for parse errors the way internal/resolver
// does, so Offset is left at its -1 "unknown" default.
func newYAMLConfigError(err error) *harnesserr.ConfigError {
	return harnesserr.NewConfigError(fmt.Sprintf("invalid configuration: %v", err))
}
