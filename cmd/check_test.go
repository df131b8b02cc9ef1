package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCmdReportsOutputOnSuccess(t *testing.T) {
	cmd := newCheckCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--", "echo", "ready"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "ready")
}

func TestCheckCmdFailsOnNonZeroExit(t *testing.T) {
	cmd := newCheckCmd()
	cmd.SetArgs([]string{"--", "sh", "-c", "exit 1"})
	assert.Error(t, cmd.Execute())
}
