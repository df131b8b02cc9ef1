package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads, parses, defaults, and validates the configuration file at
// path. A malformed document or a failed validation both come back as a
// *harnesserr.ConfigError; a missing or unreadable file comes back as a
// plain wrapped error, since that is an I/O problem rather than a
// malformed document.
func Load(path string) (HarnessConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return HarnessConfig{}, fmt.Errorf("read config %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes raw YAML bytes into a validated HarnessConfig. It is
// split out from Load so callers that already have the bytes in hand
// (the file watcher reloading on change, tests) don't need a real file.
func Parse(data []byte) (HarnessConfig, error) {
	var cfg HarnessConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return HarnessConfig{}, newYAMLConfigError(err)
	}
	return Normalize(cfg)
}

// Normalize applies defaults and validates a HarnessConfig assembled by a
// caller other than Load/Parse — e.g. a single service definition received
// over the daemon's wire protocol and merged into a one-service config
// before BuildServiceDefinitions.
func Normalize(cfg HarnessConfig) (HarnessConfig, error) {
	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return HarnessConfig{}, err
	}
	return cfg, nil
}
