package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"harness/internal/harnesserr"
)

func TestExitCodeForKnownErrorTypes(t *testing.T) {
	assert.Equal(t, ExitCodeNotFound, exitCodeFor(harnesserr.NewNotFoundError("service", "web")))
	assert.Equal(t, ExitCodeAuthFailed, exitCodeFor(harnesserr.NewAuthError("bad key")))
	assert.Equal(t, ExitCodeTimeout, exitCodeFor(harnesserr.NewTimeoutError("start")))
	assert.Equal(t, ExitCodeError, exitCodeFor(errors.New("boom")))
}

func TestExitCodeForWrappedError(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), harnesserr.NewNotFoundError("service", "web"))
	assert.Equal(t, ExitCodeNotFound, exitCodeFor(wrapped))
}
