package cli

import (
	"github.com/spf13/cobra"

	"harness/internal/client"
)

// CommandFlags holds the common flag values used across commands that
// connect to a daemon.
type CommandFlags struct {
	// OutputFormat specifies the desired output format (table, json).
	OutputFormat string
	// NoHeaders suppresses the header row in table output.
	NoHeaders bool
	// Host is the daemon host to connect to.
	Host string
	// Port is the daemon's WebSocket port.
	Port int
	// Insecure skips TLS certificate verification, for daemons running
	// with a self-signed certificate the client hasn't been given.
	Insecure bool
}

// RegisterCommonFlags registers the flags shared by commands that produce
// formatted output and talk to a daemon: --output, --no-headers, --host,
// --port, --insecure.
func RegisterCommonFlags(cmd *cobra.Command, flags *CommandFlags) {
	cmd.PersistentFlags().StringVarP(&flags.OutputFormat, "output", "o", "table", "Output format (table, json)")
	cmd.PersistentFlags().BoolVar(&flags.NoHeaders, "no-headers", false, "Suppress header row in table output")
	RegisterConnectionFlags(cmd, flags)
}

// RegisterConnectionFlags registers only the daemon-connection flags
// (--host, --port, --insecure), for commands with no formatted output.
func RegisterConnectionFlags(cmd *cobra.Command, flags *CommandFlags) {
	host, port := DetectDaemonEndpoint()
	cmd.PersistentFlags().StringVar(&flags.Host, "host", host, "Daemon host")
	cmd.PersistentFlags().IntVar(&flags.Port, "port", port, "Daemon WebSocket port")
	cmd.PersistentFlags().BoolVar(&flags.Insecure, "insecure", false, "Skip TLS certificate verification")
}

// ClientConfig builds the client.Config these flags describe.
func (f *CommandFlags) ClientConfig() client.Config {
	return client.Config{Host: f.Host, Port: f.Port, InsecureSkipVerify: f.Insecure}
}
