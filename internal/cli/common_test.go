package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectDaemonEndpoint(t *testing.T) {
	host, port := DetectDaemonEndpoint()
	assert.Equal(t, DefaultDaemonHost, host)
	assert.Equal(t, DefaultDaemonPort, port)
}

func TestCheckServerRunningNoDaemonListening(t *testing.T) {
	err := CheckServerRunning("127.0.0.1", 1)
	assert.Error(t, err)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "Error: boom", FormatError(assertError{"boom"}))
	assert.Equal(t, "✓ done", FormatSuccess("done"))
	assert.Equal(t, "⚠ careful", FormatWarning("careful"))
}

type assertError struct{ msg string }

func (e assertError) Error() string { return e.msg }
