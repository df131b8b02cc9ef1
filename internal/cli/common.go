package cli

import (
	"context"
	"fmt"
	"time"

	"harness/internal/client"
)

// DefaultDaemonHost and DefaultDaemonPort are the endpoint the CLI dials
// when no --host/--port is given.
const (
	DefaultDaemonHost = "127.0.0.1"
	DefaultDaemonPort = 9443
)

// DetectDaemonEndpoint returns the host/port a CLI invocation should dial
// when the user didn't pass --host/--port explicitly.
func DetectDaemonEndpoint() (string, int) {
	return DefaultDaemonHost, DefaultDaemonPort
}

// CheckServerRunning verifies that a daemon is reachable at host:port by
// opening and immediately closing a connection. It's used before commands
// that require a live daemon, to turn a confusing dial failure deep inside
// a client call into an upfront, actionable message.
func CheckServerRunning(host string, port int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := client.Dial(ctx, client.Config{Host: host, Port: port, InsecureSkipVerify: true})
	if err != nil {
		return fmt.Errorf("harness daemon is not running at %s:%d. Start it with: harness serve", host, port)
	}
	return c.Close()
}

// FormatError formats an error message for consistent CLI output display.
// It prefixes the error message with "Error: " for clear identification.
//
// Args:
//   - err: The error to format
//
// Returns:
//   - string: Formatted error message with "Error: " prefix
func FormatError(err error) string {
	return fmt.Sprintf("Error: %v", err)
}

// FormatSuccess formats a success message for CLI output with a checkmark icon.
// Used to provide positive feedback to users when operations complete successfully.
//
// Args:
//   - msg: The success message to format
//
// Returns:
//   - string: Formatted success message with "✓ " prefix
func FormatSuccess(msg string) string {
	return fmt.Sprintf("✓ %s", msg)
}

// FormatWarning formats a warning message for CLI output with a warning icon.
// Used to alert users about potential issues or important information.
//
// Args:
//   - msg: The warning message to format
//
// Returns:
//   - string: Formatted warning message with "⚠ " prefix
func FormatWarning(msg string) string {
	return fmt.Sprintf("⚠ %s", msg)
}
