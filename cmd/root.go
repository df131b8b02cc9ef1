package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"harness/internal/harnesserr"
)

// Exit codes for CLI commands.
const (
	ExitCodeSuccess     = 0
	ExitCodeError       = 1
	ExitCodeNotFound    = 2
	ExitCodeAuthFailed  = 3
	ExitCodeTimeout     = 4
)

// rootCmd is the entry point when harness is invoked with no subcommand.
var rootCmd = &cobra.Command{
	Use:          "harness",
	Short:        "Run and manage local, containerized, and remote services",
	Long:         `harness starts, stops, and monitors services described in a YAML configuration file, through a daemon reachable over a TLS WebSocket connection.`,
	SilenceUsage: true,
}

// SetVersion injects the build-time version string into the root command.
func SetVersion(v string) { rootCmd.Version = v }

// Execute runs the root command and exits the process with a code derived
// from the returned error's type.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "harness version %s\n" .Version}}`)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	var notFound *harnesserr.NotFoundError
	if errors.As(err, &notFound) {
		return ExitCodeNotFound
	}
	var authErr *harnesserr.AuthError
	if errors.As(err, &authErr) {
		return ExitCodeAuthFailed
	}
	var timeoutErr *harnesserr.TimeoutError
	if errors.As(err, &timeoutErr) {
		return ExitCodeTimeout
	}
	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newStopCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newDaemonCmd())
	rootCmd.AddCommand(newEnvCmd())
	rootCmd.AddCommand(newCheckCmd())
}
