package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfigAppliesDefaults(t *testing.T) {
	cfg := NewConfig("/etc/harness/config.yaml")
	assert.Equal(t, "/etc/harness/config.yaml", cfg.ConfigPath)
	assert.Equal(t, 9443, cfg.ListenPort)
	assert.Equal(t, "0.0.0.0", cfg.ListenHost)
	assert.NotEmpty(t, cfg.DataDir)
	assert.False(t, cfg.Persistent)
}
